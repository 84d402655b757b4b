package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/wadjakorntonsri/go-linkbio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
)

// Repair renumbers the owner's links to {0..N-1}, keeping their relative
// (order, created_at) sequence. A consistent sequence is left untouched.
func (s *OrderingService) Repair(ctx context.Context, ownerID string) (*domain.RepairResult, error) {
	result := &domain.RepairResult{}
	err := s.repo.WithOwnerTx(ctx, ownerID, func(tx ports.OwnerTx) error {
		links, err := tx.ListLinks(ctx)
		if err != nil {
			return err
		}
		slices.SortStableFunc(links, domain.CompareLinks)

		result.ItemCount = len(links)
		result.Changed, err = renumber(ctx, tx, links)
		return err
	})
	if err != nil {
		s.logger.Error("repair failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrRepairFailed, err)
	}
	result.Success = true

	if result.Changed > 0 {
		s.logger.Info("ordering repaired", zap.String("owner_id", ownerID),
			zap.Int("items", result.ItemCount), zap.Int("changed", result.Changed))
		s.record(ctx, ownerID, domain.ActionRepair, nil,
			fmt.Sprintf("renumbered %d of %d links", result.Changed, result.ItemCount))
	}
	return result, nil
}

// renumber assigns ordered[i] the order i in two phases. Phase one parks
// every link on a distinct value below the current minimum, so phase two
// can never hit a value another link still holds.
func renumber(ctx context.Context, tx ports.OwnerTx, ordered []domain.Link) (int, error) {
	changed := 0
	base := 0
	for i, l := range ordered {
		if l.Order != i {
			changed++
		}
		base = min(base, l.Order)
	}
	if changed == 0 {
		return 0, nil
	}

	for i, l := range ordered {
		if err := tx.SetOrder(ctx, l.ID, base-(i+1)); err != nil {
			return 0, err
		}
	}
	for i, l := range ordered {
		if err := tx.SetOrder(ctx, l.ID, i); err != nil {
			return 0, err
		}
	}
	return changed, nil
}
