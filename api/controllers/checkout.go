package controllers

import (
	"net/http"
	"strings"

	"github.com/hims91/audio-nature-nexus-backend/api/responses"
	"github.com/hims91/audio-nature-nexus-backend/api/validators"
	checkoutsvc "github.com/hims91/audio-nature-nexus-backend/internal/checkout"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
	"github.com/hims91/audio-nature-nexus-backend/pkg/types"
)

type shippingAddressRequest struct {
	Name       string  `json:"name"`
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country"`
}

func (r shippingAddressRequest) toAddress() *types.Address {
	country := strings.TrimSpace(r.Country)
	if country == "" {
		country = "US"
	}
	return &types.Address{
		Name:       strings.TrimSpace(r.Name),
		Line1:      strings.TrimSpace(r.Line1),
		Line2:      r.Line2,
		City:       strings.TrimSpace(r.City),
		State:      strings.TrimSpace(r.State),
		PostalCode: strings.TrimSpace(r.PostalCode),
		Country:    country,
	}
}

type checkoutQuoteRequest struct {
	CartToken       string                  `json:"cart_token" validate:"required"`
	DiscountCode    string                  `json:"discount_code,omitempty"`
	ShippingAddress *shippingAddressRequest `json:"shipping_address,omitempty"`
}

type checkoutBeginRequest struct {
	CartToken       string                 `json:"cart_token" validate:"required"`
	Email           string                 `json:"email" validate:"required,email"`
	DiscountCode    string                 `json:"discount_code,omitempty"`
	ShippingAddress shippingAddressRequest `json:"shipping_address" validate:"required"`
}

// CheckoutQuote re-prices a cart without side effects. The quote is
// advisory; Begin recomputes it before anything is handed to Stripe.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkoutsvc.QuoteInput{
			CartToken:    strings.TrimSpace(payload.CartToken),
			DiscountCode: strings.TrimSpace(payload.DiscountCode),
		}
		if payload.ShippingAddress != nil {
			input.ShippingAddress = payload.ShippingAddress.toAddress()
		}

		result, err := svc.Quote(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckoutBegin re-prices the cart, creates the Stripe Checkout
// session and returns the redirect URL.
func CheckoutBegin(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutBeginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Begin(r.Context(), checkoutsvc.BeginInput{
			CartToken:       strings.TrimSpace(payload.CartToken),
			Email:           strings.TrimSpace(payload.Email),
			DiscountCode:    strings.TrimSpace(payload.DiscountCode),
			ShippingAddress: payload.ShippingAddress.toAddress(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
