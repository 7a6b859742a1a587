package link

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
)

type fakeIdentityStore struct {
	records   []domain.AuthRecord
	listErr   error
	updateErr error
	passwords map[string]string
	updates   int
}

func (f *fakeIdentityStore) ListUsers(ctx context.Context) ([]domain.AuthRecord, error) {
	return f.records, f.listErr
}

func (f *fakeIdentityStore) DeleteUser(ctx context.Context, id string) error {
	return errors.New("not used")
}

func (f *fakeIdentityStore) UpdatePassword(ctx context.Context, id, password string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.passwords == nil {
		f.passwords = map[string]string{}
	}
	f.passwords[id] = password
	f.updates++
	return nil
}

func TestLinkRequiresInputs(t *testing.T) {
	svc := NewService(&fakeIdentityStore{}, zerolog.Nop())

	if _, err := svc.Link(context.Background(), "", "sub-1"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing email, got %v", err)
	}
	if _, err := svc.Link(context.Background(), "a@b.com", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing subject id, got %v", err)
	}
}

func TestLinkUnknownEmailMutatesNothing(t *testing.T) {
	ids := &fakeIdentityStore{records: []domain.AuthRecord{{ID: "u1", Email: "other@b.com"}}}
	svc := NewService(ids, zerolog.Nop())

	_, err := svc.Link(context.Background(), "a@b.com", "sub-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ids.updates != 0 {
		t.Fatalf("expected no password updates, got %d", ids.updates)
	}
}

func TestLinkIsIdempotent(t *testing.T) {
	ids := &fakeIdentityStore{records: []domain.AuthRecord{{ID: "u1", Email: "a@b.com"}}}
	svc := NewService(ids, zerolog.Nop())

	id1, err := svc.Link(context.Background(), "a@b.com", "google-sub-9")
	if err != nil {
		t.Fatalf("first Link returned error: %v", err)
	}
	first := ids.passwords["u1"]

	id2, err := svc.Link(context.Background(), "a@b.com", "google-sub-9")
	if err != nil {
		t.Fatalf("second Link returned error: %v", err)
	}
	if id1 != "u1" || id2 != "u1" {
		t.Fatalf("record ids = %q, %q; want u1", id1, id2)
	}
	if ids.passwords["u1"] != first {
		t.Fatalf("second link changed the installed secret")
	}
	if ids.updates != 2 {
		t.Fatalf("updates = %d, want 2", ids.updates)
	}
}

func TestLinkUpstreamFailurePropagates(t *testing.T) {
	ids := &fakeIdentityStore{
		records:   []domain.AuthRecord{{ID: "u1", Email: "a@b.com"}},
		updateErr: domain.ErrUpstream,
	}
	svc := NewService(ids, zerolog.Nop())

	if _, err := svc.Link(context.Background(), "a@b.com", "sub-1"); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestDeriveSecretStripsNonAlphanumerics(t *testing.T) {
	tests := []struct {
		subject string
		email   string
		want    string
	}{
		{"sub-1", "a@b.com", "sub-1abcom"},
		{"sub-1", "first.last+tag@example.co.uk", "sub-1firstlasttagexamplecouk"},
		{"109", "UPPER@x.COM", "109UPPERxCOM"},
		{"s", "", "s"},
	}

	for _, tc := range tests {
		if got := DeriveSecret(tc.subject, tc.email); got != tc.want {
			t.Fatalf("DeriveSecret(%q, %q) = %q, want %q", tc.subject, tc.email, got, tc.want)
		}
	}
}

func TestDeriveSecretIsDeterministic(t *testing.T) {
	a := DeriveSecret("google-oauth2|12345", "user@example.com")
	b := DeriveSecret("google-oauth2|12345", "user@example.com")
	if a != b {
		t.Fatalf("derivation not deterministic: %q vs %q", a, b)
	}
}
