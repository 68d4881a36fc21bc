package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
)

const ReasonInsufficientStock = "insufficient_stock"

// CommitRequest asks for stock to be decremented for one order line.
type CommitRequest struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Qty       int
}

// CommitResult reports the stock outcome for one line. Committed=false
// never aborts the surrounding order; the caller flags the order for
// manual follow-up instead.
type CommitResult struct {
	ProductID   uuid.UUID
	VariantID   *uuid.UUID
	Committed   bool
	Backordered bool
	Reason      string
}

// Commit decrements on-hand stock for each request inside the supplied
// transaction. The decrement is a single conditional UPDATE, so two
// orders racing for the last unit resolve to one success. Untracked
// products commit without touching stock; backorder-enabled products
// commit by draining to zero.
func Commit(ctx context.Context, tx *gorm.DB, requests []CommitRequest) ([]CommitResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory commit")
	}
	for _, req := range requests {
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory commit qty must be positive")
		}
	}

	results := make([]CommitResult, 0, len(requests))
	for _, req := range requests {
		result := CommitResult{ProductID: req.ProductID, VariantID: req.VariantID}

		record, err := findRecord(ctx, tx, req.ProductID, req.VariantID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				// No inventory row means the product is not stock-managed.
				result.Committed = true
				results = append(results, result)
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory record")
		}

		if !record.TrackInventory {
			result.Committed = true
			results = append(results, result)
			continue
		}

		decremented, err := conditionalDecrement(ctx, tx, req)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement inventory")
		}
		if decremented {
			result.Committed = true
			results = append(results, result)
			continue
		}

		if record.AllowBackorder {
			if err := drainToZero(ctx, tx, req); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backorder inventory")
			}
			result.Committed = true
			result.Backordered = true
			results = append(results, result)
			continue
		}

		result.Reason = ReasonInsufficientStock
		results = append(results, result)
	}
	return results, nil
}

// Restock returns stock when an unshipped order is cancelled.
func Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory restock")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE inventory_records
		SET quantity_on_hand = quantity_on_hand + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND `+variantClause(variantID)+` AND track_inventory = ?
	`, append([]any{qty, productID}, variantArgs(variantID, true)...)...)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restock inventory")
	}
	return nil
}

func findRecord(ctx context.Context, tx *gorm.DB, productID uuid.UUID, variantID *uuid.UUID) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	query := tx.WithContext(ctx).Where("product_id = ?", productID)
	if variantID != nil {
		query = query.Where("variant_id = ?", *variantID)
	} else {
		query = query.Where("variant_id IS NULL")
	}
	if err := query.First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func conditionalDecrement(ctx context.Context, tx *gorm.DB, req CommitRequest) (bool, error) {
	res := tx.WithContext(ctx).Exec(`
		UPDATE inventory_records
		SET quantity_on_hand = quantity_on_hand - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND `+variantClause(req.VariantID)+` AND quantity_on_hand >= ?
	`, append([]any{req.Qty, req.ProductID}, variantArgs(req.VariantID, req.Qty)...)...)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func drainToZero(ctx context.Context, tx *gorm.DB, req CommitRequest) error {
	res := tx.WithContext(ctx).Exec(`
		UPDATE inventory_records
		SET quantity_on_hand = 0,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND `+variantClause(req.VariantID)+`
	`, append([]any{req.ProductID}, variantArgs(req.VariantID)...)...)
	return res.Error
}

func variantClause(variantID *uuid.UUID) string {
	if variantID != nil {
		return "variant_id = ?"
	}
	return "variant_id IS NULL"
}

func variantArgs(variantID *uuid.UUID, rest ...any) []any {
	args := []any{}
	if variantID != nil {
		args = append(args, *variantID)
	}
	return append(args, rest...)
}
