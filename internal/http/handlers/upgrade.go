package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
	"github.com/talgurevich/hitquote-accounts/internal/obs"
	"github.com/talgurevich/hitquote-accounts/internal/upgrade"
)

type submitUpgradeRequest struct {
	AuthUserID    string `json:"authUserId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	RequestedPlan string `json:"requestedPlan"`
}

type upgradeRequestDTO struct {
	ID            string    `json:"id"`
	AuthUserID    string    `json:"authUserId"`
	BusinessID    *string   `json:"businessId"`
	UserEmail     string    `json:"userEmail"`
	UserName      string    `json:"userName"`
	RequestedPlan string    `json:"requestedPlan"`
	Status        string    `json:"status"`
	AdminNotes    *string   `json:"adminNotes"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toUpgradeDTO(req *domain.UpgradeRequest) upgradeRequestDTO {
	return upgradeRequestDTO{
		ID:            req.ID,
		AuthUserID:    req.AuthUserID,
		BusinessID:    req.BusinessID,
		UserEmail:     req.UserEmail,
		UserName:      req.UserName,
		RequestedPlan: req.RequestedPlan,
		Status:        string(req.Status),
		AdminNotes:    req.AdminNotes,
		CreatedAt:     req.CreatedAt,
	}
}

// SubmitUpgrade creates a pending upgrade request for the user.
func (a *App) SubmitUpgrade(w http.ResponseWriter, r *http.Request) {
	var req submitUpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		obs.UpgradeSubmission("invalid")
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.AuthUserID == "" || req.Email == "" {
		obs.UpgradeSubmission("invalid")
		a.error(w, http.StatusBadRequest, "authUserId and email are required")
		return
	}

	created, err := a.Upgrader.Submit(r.Context(), upgrade.SubmitInput{
		AuthUserID:    req.AuthUserID,
		Email:         req.Email,
		DisplayName:   req.DisplayName,
		RequestedPlan: req.RequestedPlan,
	})
	if err != nil {
		var conflict *domain.ConflictError
		switch {
		case errors.As(err, &conflict):
			obs.UpgradeSubmission("conflict")
			a.json(w, http.StatusConflict, map[string]string{
				"error":     "an upgrade request is already pending",
				"requestId": conflict.ExistingID,
			})
		case errors.Is(err, domain.ErrInvalidArgument):
			obs.UpgradeSubmission("invalid")
			a.error(w, http.StatusBadRequest, "authUserId and email are required")
		default:
			obs.UpgradeSubmission("error")
			a.Logger.Error().Err(err).Msg("upgrade submission failed")
			a.error(w, http.StatusInternalServerError, "failed to submit upgrade request")
		}
		return
	}

	obs.UpgradeSubmission("created")
	a.json(w, http.StatusOK, map[string]string{
		"requestId": created.ID,
		"status":    string(created.Status),
	})
}

// UpgradeStatus reports the latest upgrade request for a user.
func (a *App) UpgradeStatus(w http.ResponseWriter, r *http.Request) {
	authUserID := r.URL.Query().Get("authUserId")
	if authUserID == "" {
		a.error(w, http.StatusBadRequest, "authUserId is required")
		return
	}

	req, err := a.Upgrader.Status(r.Context(), authUserID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			a.error(w, http.StatusBadRequest, "authUserId is required")
			return
		}
		a.Logger.Error().Err(err).Msg("upgrade status lookup failed")
		a.error(w, http.StatusInternalServerError, "failed to load upgrade status")
		return
	}

	if req == nil {
		a.json(w, http.StatusOK, map[string]any{"hasRequest": false, "request": nil})
		return
	}
	a.json(w, http.StatusOK, map[string]any{"hasRequest": true, "request": toUpgradeDTO(req)})
}
