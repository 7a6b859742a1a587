package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
	"github.com/talgurevich/hitquote-accounts/internal/infra"
	"github.com/talgurevich/hitquote-accounts/internal/reconcile"
	"github.com/talgurevich/hitquote-accounts/internal/upgrade"
)

// Reconciler removes orphaned auth records for an email.
type Reconciler interface {
	Reconcile(ctx context.Context, email string) (*reconcile.Result, error)
}

// Linker installs a derived password for a federated identity.
type Linker interface {
	Link(ctx context.Context, email, providerSubjectID string) (string, error)
}

// Upgrader runs the upgrade request workflow.
type Upgrader interface {
	Submit(ctx context.Context, in upgrade.SubmitInput) (*domain.UpgradeRequest, error)
	Status(ctx context.Context, authUserID string) (*domain.UpgradeRequest, error)
}

// App bundles the handler dependencies.
type App struct {
	Logger     infra.Logger
	Reconciler Reconciler
	Linker     Linker
	Upgrader   Upgrader
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}
