package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
)

// OrderingService owns every write to a link's order value. Each mutation
// runs inside a single owner transaction.
type OrderingService struct {
	repo     ports.LinkRepository
	activity ports.ActivityRepository
	policy   DiagnosticsPolicy
	logger   *zap.Logger
}

type OrderingOption func(*OrderingService)

func WithDiagnosticsPolicy(policy DiagnosticsPolicy) OrderingOption {
	return func(s *OrderingService) { s.policy = policy }
}

// NewOrderingService builds the engine. activity may be nil.
func NewOrderingService(repo ports.LinkRepository, activity ports.ActivityRepository, logger *zap.Logger, opts ...OrderingOption) *OrderingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderingService{
		repo:     repo,
		activity: activity,
		policy:   DefaultDiagnosticsPolicy(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append stores link at the end of its owner's sequence.
func (s *OrderingService) Append(ctx context.Context, link *domain.Link) error {
	if link.OwnerID == "" {
		return fmt.Errorf("%w: owner is required", domain.ErrInvalidArgument)
	}

	err := s.repo.WithOwnerTx(ctx, link.OwnerID, func(tx ports.OwnerTx) error {
		n, err := tx.CountLinks(ctx)
		if err != nil {
			return err
		}
		link.Order = n
		return tx.InsertLink(ctx, link)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("link appended", zap.String("owner_id", link.OwnerID), zap.Int64("link_id", link.ID), zap.Int("order", link.Order))
	s.record(ctx, link.OwnerID, domain.ActionCreate, &link.ID, fmt.Sprintf("appended at %d", link.Order))
	return nil
}

// Remove deletes the link and closes the gap it leaves behind.
func (s *OrderingService) Remove(ctx context.Context, ownerID string, linkID int64) error {
	var removedAt int
	err := s.repo.WithOwnerTx(ctx, ownerID, func(tx ports.OwnerTx) error {
		link, err := tx.GetLink(ctx, linkID)
		if err != nil {
			return err
		}
		if link == nil {
			return fmt.Errorf("%w: link %d", domain.ErrNotFound, linkID)
		}
		removedAt = link.Order

		if err := tx.DeleteLink(ctx, linkID); err != nil {
			return err
		}
		n, err := tx.CountLinks(ctx)
		if err != nil {
			return err
		}
		return tx.ShiftOrders(ctx, removedAt+1, n, -1)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("link removed", zap.String("owner_id", ownerID), zap.Int64("link_id", linkID), zap.Int("order", removedAt))
	s.record(ctx, ownerID, domain.ActionDelete, &linkID, fmt.Sprintf("removed from %d", removedAt))
	return nil
}

// MoveTo takes the link out of the sequence and reinserts it at newIndex,
// shifting only the links between the old and new position. newIndex is
// never clamped.
func (s *OrderingService) MoveTo(ctx context.Context, ownerID string, linkID int64, newIndex int) error {
	var from int
	moved := false
	err := s.repo.WithOwnerTx(ctx, ownerID, func(tx ports.OwnerTx) error {
		moved = false
		link, err := tx.GetLink(ctx, linkID)
		if err != nil {
			return err
		}
		if link == nil {
			return fmt.Errorf("%w: link %d", domain.ErrNotFound, linkID)
		}
		n, err := tx.CountLinks(ctx)
		if err != nil {
			return err
		}
		if newIndex < 0 || newIndex >= n {
			return fmt.Errorf("%w: index %d outside [0, %d)", domain.ErrInvalidArgument, newIndex, n)
		}

		from = link.Order
		if from == newIndex {
			return nil
		}

		// Park the moved link below every order, legacy negatives included.
		low, err := tx.MinOrder(ctx)
		if err != nil {
			return err
		}
		if err := tx.SetOrder(ctx, linkID, min(low, 0)-1); err != nil {
			return err
		}
		if from < newIndex {
			err = tx.ShiftOrders(ctx, from+1, newIndex, -1)
		} else {
			err = tx.ShiftOrders(ctx, newIndex, from-1, 1)
		}
		if err != nil {
			return err
		}
		if err := tx.SetOrder(ctx, linkID, newIndex); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		return err
	}
	if !moved {
		return nil
	}

	s.logger.Debug("link moved", zap.String("owner_id", ownerID), zap.Int64("link_id", linkID),
		zap.Int("from", from), zap.Int("to", newIndex))
	s.record(ctx, ownerID, domain.ActionMove, &linkID, fmt.Sprintf("moved %d -> %d", from, newIndex))
	return nil
}

// Reorder applies a full permutation. linkIDs must name every link of the
// owner exactly once.
func (s *OrderingService) Reorder(ctx context.Context, ownerID string, linkIDs []int64) error {
	changed := 0
	err := s.repo.WithOwnerTx(ctx, ownerID, func(tx ports.OwnerTx) error {
		links, err := tx.ListLinks(ctx)
		if err != nil {
			return err
		}
		ordered, err := permute(links, linkIDs)
		if err != nil {
			return err
		}
		changed, err = renumber(ctx, tx, ordered)
		return err
	})
	if err != nil {
		return err
	}

	if changed > 0 {
		s.logger.Debug("links reordered", zap.String("owner_id", ownerID), zap.Int("changed", changed))
		s.record(ctx, ownerID, domain.ActionReorder, nil, fmt.Sprintf("%d links changed position", changed))
	}
	return nil
}

func permute(links []domain.Link, linkIDs []int64) ([]domain.Link, error) {
	if len(linkIDs) != len(links) {
		return nil, fmt.Errorf("%w: expected %d link ids, got %d", domain.ErrInvalidArgument, len(links), len(linkIDs))
	}

	byID := make(map[int64]domain.Link, len(links))
	for _, l := range links {
		byID[l.ID] = l
	}

	ordered := make([]domain.Link, 0, len(linkIDs))
	for _, id := range linkIDs {
		l, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: link %d is unknown or listed twice", domain.ErrInvalidArgument, id)
		}
		delete(byID, id)
		ordered = append(ordered, l)
	}
	return ordered, nil
}

// Diagnose audits the owner's committed sequence. It never writes.
func (s *OrderingService) Diagnose(ctx context.Context, ownerID string) (*domain.DiagnosticReport, error) {
	links, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(links, domain.CompareLinks)

	report := BuildReport(ownerID, links, s.policy)
	if !report.Consistent {
		s.logger.Warn("ordering anomalies detected", zap.String("owner_id", ownerID),
			zap.Int("items", report.TotalItems), zap.Int("anomalies", len(report.Anomalies)))
	}
	return report, nil
}

func (s *OrderingService) record(ctx context.Context, ownerID string, action domain.ActivityAction, linkID *int64, detail string) {
	if s.activity == nil {
		return
	}
	entry := &domain.Activity{OwnerID: ownerID, Action: action, LinkID: linkID, Detail: detail}
	if err := s.activity.RecordActivity(ctx, entry); err != nil {
		s.logger.Warn("activity log write failed", zap.String("owner_id", ownerID),
			zap.String("action", string(action)), zap.Error(err))
	}
}

var _ ports.OrderingService = (*OrderingService)(nil)
