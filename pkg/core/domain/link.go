package domain

import "time"

// Link is one outbound link on an owner's profile. Order is its zero-based
// display position, unique within OwnerID.
type Link struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"owner_id"`
	OriginalURL string    `json:"original_url"`
	Title       string    `json:"title"`
	Active      bool      `json:"active"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompareLinks orders links by (Order, CreatedAt, ID).
func CompareLinks(a, b Link) int {
	if a.Order != b.Order {
		if a.Order < b.Order {
			return -1
		}
		return 1
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}
