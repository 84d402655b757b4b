package domain

import "time"

// Profile is the public face of an owner (link-in-bio page)
type Profile struct {
	OwnerID   string    `json:"owner_id"`
	Handle    string    `json:"handle"`
	Title     string    `json:"title"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Links     []Link    `json:"links,omitempty"` // Active links only, populated for the public page
}
