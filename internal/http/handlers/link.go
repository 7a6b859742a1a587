package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
)

type linkRequest struct {
	Email             string `json:"email"`
	ProviderSubjectID string `json:"providerSubjectId"`
}

// LinkFederated installs a derived password on the auth record for the
// email so the federated account can use the password sign-in flow.
func (a *App) LinkFederated(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Email == "" || req.ProviderSubjectID == "" {
		a.error(w, http.StatusBadRequest, "email and providerSubjectId are required")
		return
	}

	_, err := a.Linker.Link(r.Context(), req.Email, req.ProviderSubjectID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			a.error(w, http.StatusBadRequest, "email and providerSubjectId are required")
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusBadRequest, "user not found")
		default:
			a.Logger.Error().Err(err).Msg("federated link failed")
			a.error(w, http.StatusInternalServerError, "failed to link identity")
		}
		return
	}

	a.json(w, http.StatusOK, map[string]bool{"success": true})
}
