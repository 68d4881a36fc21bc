package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hims91/audio-nature-nexus-backend/api/responses"
	"github.com/hims91/audio-nature-nexus-backend/api/validators"
	cartsvc "github.com/hims91/audio-nature-nexus-backend/internal/cart"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid4"`
	VariantID *string `json:"variant_id,omitempty" validate:"omitempty,uuid4"`
	Quantity  int     `json:"quantity" validate:"required,min=1,max=99"`
}

// CartCreate mints an empty anonymous cart.
func CartCreate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		record, err := svc.Create(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// CartFetch returns the cart for the token in the path.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		record, err := svc.Get(r.Context(), cartTokenParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// CartAddItem adds or tops up a line and returns the updated cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var variantID *uuid.UUID
		if payload.VariantID != nil {
			parsed, err := uuid.Parse(*payload.VariantID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id"))
				return
			}
			variantID = &parsed
		}

		record, err := svc.AddItem(r.Context(), cartTokenParam(r), cartsvc.AddItemInput{
			ProductID: productID,
			VariantID: variantID,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// CartRemoveItem deletes a line and returns the updated cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		rawItemID := strings.TrimSpace(chi.URLParam(r, "itemId"))
		itemID, err := uuid.Parse(rawItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		record, err := svc.RemoveItem(r.Context(), cartTokenParam(r), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func cartTokenParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "cartToken"))
}
