package domain

import "time"

type ActivityAction string

const (
	ActionCreate  ActivityAction = "create"
	ActionDelete  ActivityAction = "delete"
	ActionMove    ActivityAction = "move"
	ActionReorder ActivityAction = "reorder"
	ActionRepair  ActivityAction = "repair"
)

// Activity is a best-effort audit record of a mutation
type Activity struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Action    ActivityAction `json:"action"`
	LinkID    *int64         `json:"link_id,omitempty"`
	Detail    string         `json:"detail"`
	CreatedAt time.Time      `json:"created_at"`
}
