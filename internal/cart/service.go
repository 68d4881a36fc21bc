package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hims91/audio-nature-nexus-backend/internal/catalog"
	"github.com/hims91/audio-nature-nexus-backend/pkg/db"
	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
)

const maxLineQuantity = 99

// AddItemInput adds or tops up one cart line.
type AddItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

// Service owns cart reads and mutations. Prices captured here are
// add-time snapshots; quoting re-prices against the live catalog.
type Service interface {
	Get(ctx context.Context, token string) (*models.CartRecord, error)
	Create(ctx context.Context) (*models.CartRecord, error)
	AddItem(ctx context.Context, token string, input AddItemInput) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, token string, itemID uuid.UUID) (*models.CartRecord, error)
}

type service struct {
	repo    Repository
	catalog catalog.Repository
}

// NewService wires the cart service.
func NewService(repo Repository, catalogRepo catalog.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, catalog: catalogRepo}, nil
}

func (s *service) Get(ctx context.Context, token string) (*models.CartRecord, error) {
	return s.findByToken(ctx, token)
}

func (s *service) Create(ctx context.Context) (*models.CartRecord, error) {
	record := &models.CartRecord{
		ID:    uuid.New(),
		Token: uuid.NewString(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return record, nil
}

func (s *service) AddItem(ctx context.Context, token string, input AddItemInput) (*models.CartRecord, error) {
	if input.Quantity <= 0 || input.Quantity > maxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be between 1 and %d", maxLineQuantity))
	}

	record, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.FindByIDs(ctx, []uuid.UUID{input.ProductID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	product, ok := products[input.ProductID]
	if !ok || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	price := product.PriceCents
	if input.VariantID != nil {
		variant, found := findProductVariant(product, *input.VariantID)
		if !found || !variant.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant is not available")
		}
		if variant.PriceCents != nil {
			price = *variant.PriceCents
		}
	}

	item := models.CartItem{
		ID:             uuid.New(),
		CartID:         record.ID,
		ProductID:      input.ProductID,
		VariantID:      input.VariantID,
		Quantity:       input.Quantity,
		UnitPriceCents: price,
	}
	if err := s.repo.UpsertItem(ctx, record.ID, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}

	return s.findByToken(ctx, token)
}

func (s *service) RemoveItem(ctx context.Context, token string, itemID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.RemoveItem(ctx, record.ID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	return s.findByToken(ctx, token)
}

func (s *service) findByToken(ctx context.Context, token string) (*models.CartRecord, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	record, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

func findProductVariant(product models.Product, id uuid.UUID) (models.ProductVariant, bool) {
	for _, variant := range product.Variants {
		if variant.ID == id {
			return variant, true
		}
	}
	return models.ProductVariant{}, false
}
