package discounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/internal/pricing"
	"github.com/hims91/audio-nature-nexus-backend/pkg/db"
	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	"github.com/hims91/audio-nature-nexus-backend/pkg/enums"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
)

// Service validates and redeems discount codes. Validation is advisory
// and never blocks a quote; redemption is the only mutation and runs
// inside the order-creation transaction.
type Service interface {
	Validate(ctx context.Context, code string, subtotalCents int) (*pricing.DiscountInput, error)
	Redeem(ctx context.Context, tx *gorm.DB, code string) (bool, error)
}

type service struct {
	repo Repository
}

// NewService wires the discount dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discounts repository required")
	}
	return &service{repo: repo}, nil
}

// Validate resolves a code into calculator input. A rejected code comes
// back with a machine-readable reason and no error; only storage
// failures error out.
func (s *service) Validate(ctx context.Context, code string, subtotalCents int) (*pricing.DiscountInput, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, nil
	}

	input := &pricing.DiscountInput{Code: strings.ToUpper(trimmed)}

	row, err := s.repo.FindByCode(ctx, trimmed)
	if err != nil {
		if db.IsNotFound(err) {
			input.Reason = enums.DiscountReasonNotFound
			return input, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount code")
	}

	if reason := applicability(row, subtotalCents, time.Now().UTC()); reason != enums.DiscountReasonNone {
		input.Reason = reason
		return input, nil
	}

	input.Type = row.DiscountType
	input.Value = row.DiscountValue
	input.MaximumDiscountCents = row.MaximumDiscountCents
	return input, nil
}

// Redeem commits one use of the code. Returns false when the limit was
// reached in the meantime; the caller decides whether that aborts the
// surrounding work.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction required")
	}
	applied, err := s.repo.WithTx(tx).IncrementUsage(ctx, code)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem discount code")
	}
	return applied, nil
}

func applicability(row *models.DiscountCode, subtotalCents int, now time.Time) enums.DiscountReason {
	if !row.IsActive {
		return enums.DiscountReasonInactive
	}
	if row.StartsAt != nil && now.Before(*row.StartsAt) {
		return enums.DiscountReasonNotStarted
	}
	if row.ExpiresAt != nil && now.After(*row.ExpiresAt) {
		return enums.DiscountReasonExpired
	}
	if subtotalCents < row.MinimumOrderCents {
		return enums.DiscountReasonBelowMinimum
	}
	if row.UsageLimit != nil && row.UsageCount >= *row.UsageLimit {
		return enums.DiscountReasonUsageExhausted
	}
	return enums.DiscountReasonNone
}
