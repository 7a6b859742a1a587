package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
)

type reconcileRequest struct {
	Email string `json:"email"`
}

type reconcileResponse struct {
	DeletedCount int      `json:"deletedCount"`
	DeletedIDs   []string `json:"deletedIds"`
}

// ReconcileOrphans deletes auth records for the email that no profile
// references.
func (a *App) ReconcileOrphans(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Email == "" {
		a.error(w, http.StatusBadRequest, "email is required")
		return
	}

	result, err := a.Reconciler.Reconcile(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			a.error(w, http.StatusBadRequest, "email is required")
			return
		}
		a.Logger.Error().Err(err).Msg("reconciliation failed")
		a.error(w, http.StatusInternalServerError, "failed to reconcile")
		return
	}

	switch {
	case result.Matched == 0:
		a.json(w, http.StatusOK, map[string]string{"message": "no users"})
	case result.Orphans == 0:
		a.json(w, http.StatusOK, map[string]string{"message": "no orphans"})
	default:
		ids := result.DeletedIDs
		if ids == nil {
			ids = []string{}
		}
		a.json(w, http.StatusOK, reconcileResponse{
			DeletedCount: len(ids),
			DeletedIDs:   ids,
		})
	}
}
