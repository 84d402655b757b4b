package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
)

// OwnerTx is a storage transaction bound to a single owner's sequence.
// Every statement is implicitly scoped to that owner.
type OwnerTx interface {
	ListLinks(ctx context.Context) ([]domain.Link, error)
	CountLinks(ctx context.Context) (int, error)
	// MinOrder is the lowest order value held by the owner, 0 when empty.
	MinOrder(ctx context.Context) (int, error)
	GetLink(ctx context.Context, id int64) (*domain.Link, error) // nil, nil when absent
	InsertLink(ctx context.Context, link *domain.Link) error
	DeleteLink(ctx context.Context, id int64) error
	// ShiftOrders adds delta to every order in the inclusive range [from, to].
	ShiftOrders(ctx context.Context, from, to, delta int) error
	SetOrder(ctx context.Context, id int64, order int) error
}

// LinkRepository defines storage operations for links
type LinkRepository interface {
	// WithOwnerTx runs fn inside one atomic transaction. If fn returns an
	// error the transaction is rolled back and nothing fn wrote is visible.
	WithOwnerTx(ctx context.Context, ownerID string, fn func(tx OwnerTx) error) error

	GetByID(ctx context.Context, id int64) (*domain.Link, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Link, error)
	UpdatePayload(ctx context.Context, link *domain.Link) error
	Dump(ctx context.Context) ([]domain.Link, error) // For migration
	Import(ctx context.Context, link *domain.Link) error
} // LinkRepository ends here

// ProfileRepository stores public profiles
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile *domain.Profile) error
	GetProfileByOwner(ctx context.Context, ownerID string) (*domain.Profile, error)
	GetProfileByHandle(ctx context.Context, handle string) (*domain.Profile, error)
}

// ActivityRepository is the best-effort audit side channel
type ActivityRepository interface {
	RecordActivity(ctx context.Context, activity *domain.Activity) error
	ListActivity(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error)
}

// OrderingService maintains, diagnoses and repairs link ordering
type OrderingService interface {
	Append(ctx context.Context, link *domain.Link) error
	Remove(ctx context.Context, ownerID string, linkID int64) error
	MoveTo(ctx context.Context, ownerID string, linkID int64, newIndex int) error
	Reorder(ctx context.Context, ownerID string, linkIDs []int64) error
	Diagnose(ctx context.Context, ownerID string) (*domain.DiagnosticReport, error)
	Repair(ctx context.Context, ownerID string) (*domain.RepairResult, error)
}

// LinkService defines the link management use cases
type LinkService interface {
	CreateLink(ctx context.Context, ownerID, originalURL, title string) (*domain.Link, error)
	UpdateLink(ctx context.Context, ownerID string, id int64, originalURL, title string, active *bool) (*domain.Link, error)
	DeleteLink(ctx context.Context, ownerID string, id int64) error
	MoveLink(ctx context.Context, ownerID string, id int64, index int) error
	ReorderLinks(ctx context.Context, ownerID string, linkIDs []int64) error
	ListLinks(ctx context.Context, ownerID string) ([]domain.Link, error)
	ListActivity(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error)
}

// ProfileService defines business logic for public profiles
type ProfileService interface {
	SaveProfile(ctx context.Context, ownerID, handle, title, bio string) (*domain.Profile, error)
	GetPublicProfile(ctx context.Context, handle string) (*domain.Profile, error)
}
