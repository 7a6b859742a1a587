package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{
		BaseURL:    srv.URL,
		ServiceKey: "service-key",
		PageSize:   2,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client, srv
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "https://identity.example.com"}); !errors.Is(err, ErrMissingServiceKey) {
		t.Fatalf("expected ErrMissingServiceKey, got %v", err)
	}
	if _, err := NewClient(Options{ServiceKey: "key"}); !errors.Is(err, ErrMissingBaseURL) {
		t.Fatalf("expected ErrMissingBaseURL, got %v", err)
	}
}

func TestListUsersPaginatesAndAuthenticates(t *testing.T) {
	pagesServed := map[int]bool{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/admin/users" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Fatalf("Authorization header = %q", got)
		}
		if got := r.Header.Get("apikey"); got != "service-key" {
			t.Fatalf("apikey header = %q", got)
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pagesServed[page] = true
		users := []map[string]string{}
		if page == 1 {
			users = append(users,
				map[string]string{"id": "u1", "email": "a@example.com"},
				map[string]string{"id": "u2", "email": "b@example.com"},
			)
		} else if page == 2 {
			users = append(users, map[string]string{"id": "u3", "email": "c@example.com"})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"users": users})
	}))

	records, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if !pagesServed[1] || !pagesServed[2] {
		t.Fatalf("expected both pages fetched, got %v", pagesServed)
	}
	if records[2].ID != "u3" {
		t.Fatalf("records[2].ID = %q, want u3", records[2].ID)
	}
}

func TestDeleteUserHitsAdminEndpoint(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "{}")
	}))

	if err := client.DeleteUser(context.Background(), "user-42"); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/auth/v1/admin/users/user-42" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
}

func TestUpdatePasswordSendsPayload(t *testing.T) {
	var payload map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("method = %q, want PUT", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		fmt.Fprint(w, "{}")
	}))

	if err := client.UpdatePassword(context.Background(), "user-42", "secret-value"); err != nil {
		t.Fatalf("UpdatePassword returned error: %v", err)
	}
	if payload["password"] != "secret-value" {
		t.Fatalf("password payload = %q", payload["password"])
	}
}

func TestErrorsWrapUpstreamWithStoreMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "invalid service key"})
	}))

	err := client.DeleteUser(context.Background(), "user-42")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if want := "invalid service key"; err == nil || !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q missing store message %q", err, want)
	}
}
