package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hims91/audio-nature-nexus-backend/api/responses"
	checkoutsvc "github.com/hims91/audio-nature-nexus-backend/internal/checkout"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
)

const pollTrigger = "poll"

// OrderBySession is the confirmation-page poll target. Each call runs a
// reconciliation attempt, so the endpoint keeps working even when the
// webhook never arrives: the order materializes on the first poll that
// sees the session paid. Until then the endpoint answers 404.
func OrderBySession(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session id is required"))
			return
		}

		result, err := svc.Reconcile(r.Context(), sessionID, pollTrigger)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch result.Outcome {
		case checkoutsvc.OutcomeOrderCreated, checkoutsvc.OutcomeAlreadyExists:
			responses.WriteSuccess(w, result.Order)
		case checkoutsvc.OutcomePaymentFailed:
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeStateConflict, "payment failed").
					WithDetails(map[string]any{"outcome": string(result.Outcome)}))
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not ready"))
		}
	}
}
