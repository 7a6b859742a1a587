package reconcile

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
	deleted   []string
	deleteErr map[string]error
}

func (f *fakeIdentityStore) ListUsers(ctx context.Context) ([]domain.AuthRecord, error) {
	return f.records, f.listErr
}

func (f *fakeIdentityStore) DeleteUser(ctx context.Context, id string) error {
	if err, ok := f.deleteErr[id]; ok {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIdentityStore) UpdatePassword(ctx context.Context, id, password string) error {
	return errors.New("not used")
}

type fakeProfiles struct {
	// byAuthID maps auth ids to a profile; missing ids return ErrNotFound.
	byAuthID map[string]*domain.Profile
	failFor  map[string]error
}

func (f *fakeProfiles) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Profile, error) {
	if err, ok := f.failFor[authUserID]; ok {
		return nil, err
	}
	if p, ok := f.byAuthID[authUserID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

type fakeRequests struct {
	reviewerDeletes []string
	deleteErr       error
}

func (f *fakeRequests) CreatePending(ctx context.Context, req *domain.UpgradeRequest) error {
	return errors.New("not used")
}

func (f *fakeRequests) PendingByAuthUserID(ctx context.Context, authUserID string) (*domain.UpgradeRequest, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeRequests) LatestByAuthUserID(ctx context.Context, authUserID string) (*domain.UpgradeRequest, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeRequests) DeleteByReviewer(ctx context.Context, authUserID string) (int64, error) {
	f.reviewerDeletes = append(f.reviewerDeletes, authUserID)
	return 0, f.deleteErr
}

func newService(ids *fakeIdentityStore, profiles *fakeProfiles, requests *fakeRequests) *Service {
	return NewService(ids, profiles, requests, zerolog.Nop())
}

func TestReconcileRequiresEmail(t *testing.T) {
	svc := newService(&fakeIdentityStore{}, &fakeProfiles{}, &fakeRequests{})
	if _, err := svc.Reconcile(context.Background(), ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestReconcileUnknownEmailDeletesNothing(t *testing.T) {
	ids := &fakeIdentityStore{records: []domain.AuthRecord{{ID: "u1", Email: "other@x.com"}}}
	svc := newService(ids, &fakeProfiles{}, &fakeRequests{})

	res, err := svc.Reconcile(context.Background(), "missing@x.com")
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if res.Matched != 0 || len(res.DeletedIDs) != 0 {
		t.Fatalf("expected no matches, got %+v", res)
	}
	if len(ids.deleted) != 0 {
		t.Fatalf("expected no deletions, got %v", ids.deleted)
	}
}

func TestReconcileEmailMatchIsCaseSensitive(t *testing.T) {
	ids := &fakeIdentityStore{records: []domain.AuthRecord{{ID: "u1", Email: "User@x.com"}}}
	svc := newService(ids, &fakeProfiles{}, &fakeRequests{})

	res, err := svc.Reconcile(context.Background(), "user@x.com")
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if res.Matched != 0 {
		t.Fatalf("expected case-sensitive mismatch, got %+v", res)
	}
}

func TestReconcileDeletesOnlyOrphans(t *testing.T) {
	ids := &fakeIdentityStore{records: []domain.AuthRecord{
		{ID: "linked", Email: "orphan@x.com"},
		{ID: "orphan", Email: "orphan@x.com"},
		{ID: "unrelated", Email: "other@x.com"},
	}}
	profiles := &fakeProfiles{byAuthID: map[string]*domain.Profile{
		"linked": {ID: "p1", AuthUserID: "linked"},
	}}
	requests := &fakeRequests{}
	svc := newService(ids, profiles, requests)

	res, err := svc.Reconcile(context.Background(), "orphan@x.com")
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if res.Matched != 2 || res.Orphans != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.DeletedIDs) != 1 || res.DeletedIDs[0] != "orphan" {
		t.Fatalf("DeletedIDs = %v, want [orphan]", res.DeletedIDs)
	}
	if len(requests.reviewerDeletes) != 1 || requests.reviewerDeletes[0] != "orphan" {
		t.Fatalf("dependent cleanup = %v, want [orphan]", requests.reviewerDeletes)
	}
	for _, id := range ids.deleted {
		if id == "linked" {
			t.Fatal("linked record must never be deleted")
		}
	}
}

func TestReconcileLookupFailureIsNotAnOrphan(t *testing.T) {
	ids := &fakeIdentityStore{records: []domain.AuthRecord{{ID: "u1", Email: "a@x.com"}}}
	profiles := &fakeProfiles{failFor: map[string]error{"u1": errors.New("store timeout")}}
	svc := newService(ids, profiles, &fakeRequests{})

	res, err := svc.Reconcile(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if res.Orphans != 0 || len(ids.deleted) != 0 {
		t.Fatalf("lookup failure must keep the record, got %+v deleted %v", res, ids.deleted)
	}
}

func TestReconcileOneFailedDeletionDoesNotAbortOthers(t *testing.T) {
	ids := &fakeIdentityStore{
		records: []domain.AuthRecord{
			{ID: "o1", Email: "a@x.com"},
			{ID: "o2", Email: "a@x.com"},
		},
		deleteErr: map[string]error{"o1": errors.New("store error")},
	}
	svc := newService(ids, &fakeProfiles{}, &fakeRequests{})

	res, err := svc.Reconcile(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if len(res.DeletedIDs) != 1 || res.DeletedIDs[0] != "o2" {
		t.Fatalf("DeletedIDs = %v, want [o2]", res.DeletedIDs)
	}
	if res.Orphans != 2 {
		t.Fatalf("Orphans = %d, want 2", res.Orphans)
	}
}

func TestReconcileDependentCleanupFailureStillDeletesParent(t *testing.T) {
	ids := &fakeIdentityStore{records: []domain.AuthRecord{{ID: "o1", Email: "a@x.com"}}}
	requests := &fakeRequests{deleteErr: errors.New("fk busy")}
	svc := newService(ids, &fakeProfiles{}, requests)

	res, err := svc.Reconcile(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if len(res.DeletedIDs) != 1 {
		t.Fatalf("parent delete should still be attempted, got %+v", res)
	}
}

func TestReconcileListFailurePropagates(t *testing.T) {
	ids := &fakeIdentityStore{listErr: domain.ErrUpstream}
	svc := newService(ids, &fakeProfiles{}, &fakeRequests{})

	if _, err := svc.Reconcile(context.Background(), "a@x.com"); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
