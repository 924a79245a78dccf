package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bonusthoughts-backend/internal/models"
)

func strptr(s string) *string { return &s }

func seedUser(store *fakeStore, uid, email string) {
	if err := store.UpsertProfile(context.Background(), uid, email); err != nil {
		panic(err)
	}
}

func TestSearch_EmailTermQueriesBothCollections(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedUser(store, "uid_alice", "alice@example.com")
	pendingFor(store, "alice@example.com", "Queued System")
	_, err := store.CreateActive(ctx, "uid_alice", &models.Product{
		Name: "Live System", Status: models.StatusActive, Version: "v1", NextRenewal: "2025-12-01",
	})
	require.NoError(t, err)

	svc := NewAdminService(store, store, &fakeAudit{}, nil)

	results, err := svc.Search(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, results, 2)

	byName := map[string]*models.Deployment{}
	for _, d := range results {
		byName[d.Name] = d
	}
	require.Contains(t, byName, "Queued System")
	require.Contains(t, byName, "Live System")
	assert.Equal(t, models.ScopePending, byName["Queued System"].Ref.Scope)
	assert.Equal(t, models.ScopeActive, byName["Live System"].Ref.Scope)
	assert.Equal(t, "uid_alice", byName["Live System"].Ref.OwnerID)

	assert.Contains(t, store.pendingQueries, "alice@example.com")
	assert.Contains(t, store.emailResolutions, "alice@example.com")
}

func TestSearch_UIDTermNeverTouchesPendingCollection(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	_, err := store.CreateActive(ctx, "uid_12345", &models.Product{
		Name: "Live System", Status: models.StatusActive, Version: "v1", NextRenewal: "2025-12-01",
	})
	require.NoError(t, err)

	svc := NewAdminService(store, store, &fakeAudit{}, nil)

	results, err := svc.Search(ctx, "uid_12345")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.ScopeActive, results[0].Ref.Scope)

	assert.Empty(t, store.pendingQueries, "a uid search must not query the pending collection")
	assert.Contains(t, store.activeQueries, "uid_12345")
}

func TestSearch_EmailWithoutAccountReturnsPendingOnly(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	pendingFor(store, "ghost@acme.com", "Queued System")

	svc := NewAdminService(store, store, &fakeAudit{}, nil)

	// No profile for this email: not a failure, just zero active results.
	results, err := svc.Search(ctx, "ghost@acme.com")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.ScopePending, results[0].Ref.Scope)
}

func TestSearch_NormalizesEmailTerm(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	pendingFor(store, "bob@acme.com", "Queued System")

	svc := NewAdminService(store, store, &fakeAudit{}, nil)

	results, err := svc.Search(ctx, "  BOB@Acme.com ")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_RejectsEmptyTerm(t *testing.T) {
	svc := NewAdminService(newFakeStore(), newFakeStore(), &fakeAudit{}, nil)
	_, err := svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeploy_PreprovisionNormalizesAndValidatesEmail(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	audit := &fakeAudit{}
	svc := NewAdminService(store, store, audit, nil)

	dep, err := svc.Deploy(ctx, "uid_admin", models.DeployRequest{
		TargetEmail: " Bob@Acme.com ",
		Name:        "AI Overwatch",
		Status:      models.StatusActive,
		Version:     "v1.0.0",
		NextRenewal: "2025-12-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ScopePending, dep.Ref.Scope)
	assert.Equal(t, "bob@acme.com", dep.TargetEmail)

	_, err = svc.Deploy(ctx, "uid_admin", models.DeployRequest{
		TargetEmail: "not-an-email",
		Name:        "AI Overwatch",
		Status:      models.StatusActive,
		Version:     "v1.0.0",
		NextRenewal: "2025-12-01",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "DEPLOYMENT_PREPROVISION", audit.entries[0].Action)
}

func TestDeploy_ExistingUserRequiresKnownUID(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedUser(store, "uid_alice", "alice@example.com")
	svc := NewAdminService(store, store, &fakeAudit{}, nil)

	req := models.DeployRequest{
		Name:        "AI Overwatch",
		Status:      models.StatusDeploying,
		Version:     "v1.0.0",
		NextRenewal: "2025-12-01",
	}

	req.TargetUserID = "uid_typo"
	_, err := svc.Deploy(ctx, "uid_admin", req)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 0, store.activeCount("uid_typo"), "a typo must not create an orphaned deployment")

	req.TargetUserID = "uid_alice"
	dep, err := svc.Deploy(ctx, "uid_admin", req)
	require.NoError(t, err)
	assert.Equal(t, models.ScopeActive, dep.Ref.Scope)
	assert.Equal(t, "uid_alice", dep.Ref.OwnerID)
	assert.Equal(t, 1, store.activeCount("uid_alice"))
}

func TestDeploy_RequiresExactlyOneTarget(t *testing.T) {
	svc := NewAdminService(newFakeStore(), newFakeStore(), &fakeAudit{}, nil)
	req := models.DeployRequest{
		Name: "X", Status: models.StatusActive, Version: "v1", NextRenewal: "2025-12-01",
	}

	_, err := svc.Deploy(context.Background(), "uid_admin", req)
	assert.ErrorIs(t, err, ErrAmbiguousTarget)

	req.TargetUserID = "uid_alice"
	req.TargetEmail = "alice@example.com"
	_, err = svc.Deploy(context.Background(), "uid_admin", req)
	assert.ErrorIs(t, err, ErrAmbiguousTarget)
}

func TestDeploy_RejectsUnknownStatus(t *testing.T) {
	svc := NewAdminService(newFakeStore(), newFakeStore(), &fakeAudit{}, nil)
	_, err := svc.Deploy(context.Background(), "uid_admin", models.DeployRequest{
		TargetEmail: "bob@acme.com",
		Name:        "X",
		Status:      "Broken",
		Version:     "v1",
		NextRenewal: "2025-12-01",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateDeployment_RoundTripChangesOnlyPatchedFields(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	product := &models.Product{
		Name: "AI Overwatch", Status: models.StatusActive, Version: "v1.0.0", NextRenewal: "2025-12-01",
	}
	id, err := store.CreateActive(ctx, "uid_alice", product)
	require.NoError(t, err)
	before, err := store.ListActiveByOwner(ctx, "uid_alice")
	require.NoError(t, err)
	createdAt := before[0].CreatedAt

	svc := NewAdminService(store, store, &fakeAudit{}, nil)

	ref := models.ActiveRef("uid_alice", id)
	err = svc.UpdateDeployment(ctx, "uid_admin", ref, models.ProductPatch{Status: strptr(models.StatusMaintenance)})
	require.NoError(t, err)

	after, err := store.ListActiveByOwner(ctx, "uid_alice")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, models.StatusMaintenance, after[0].Status)
	assert.Equal(t, "AI Overwatch", after[0].Name)
	assert.Equal(t, "v1.0.0", after[0].Version)
	assert.Equal(t, "2025-12-01", after[0].NextRenewal)
	assert.Equal(t, createdAt, after[0].CreatedAt)
}

func TestUpdateDeployment_RejectsEmptyAndInvalidPatches(t *testing.T) {
	svc := NewAdminService(newFakeStore(), newFakeStore(), &fakeAudit{}, nil)
	ref := models.ActiveRef("uid_alice", "prod_1")

	err := svc.UpdateDeployment(context.Background(), "uid_admin", ref, models.ProductPatch{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.UpdateDeployment(context.Background(), "uid_admin", ref, models.ProductPatch{Status: strptr("Nonsense")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateDeployment_UnknownRefIsNotFound(t *testing.T) {
	store := newFakeStore()
	svc := NewAdminService(store, store, &fakeAudit{}, nil)

	err := svc.UpdateDeployment(context.Background(), "uid_admin", models.PendingRef("missing"), models.ProductPatch{
		Name: strptr("Renamed"),
	})
	assert.ErrorIs(t, err, ErrDeploymentNotFound)
}

func TestDeleteDeployment_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	p := pendingFor(store, "bob@acme.com", "Queued System")
	svc := NewAdminService(store, store, &fakeAudit{}, nil)

	ref := models.PendingRef(p.ID)
	require.NoError(t, svc.DeleteDeployment(ctx, "uid_admin", ref))
	require.NoError(t, svc.DeleteDeployment(ctx, "uid_admin", ref), "repeat delete must not fail")
	assert.Equal(t, 0, store.pendingCount())
}

func TestListUsers_ServesRosterFromCacheOnRepeat(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedUser(store, "uid_alice", "alice@example.com")
	seedUser(store, "uid_bob", "bob@acme.com")
	rosterCache := newFakeCache()

	svc := NewAdminService(store, store, &fakeAudit{}, rosterCache)

	first, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, rosterCache.sets)

	second, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Equal(t, 1, rosterCache.sets, "a cache hit must not rewrite the roster")
}

func TestAdminActions_SucceedWhenAuditLoggingFails(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	audit := &fakeAudit{fail: assert.AnError}
	svc := NewAdminService(store, store, audit, nil)

	_, err := svc.Deploy(ctx, "uid_admin", models.DeployRequest{
		TargetEmail: "bob@acme.com",
		Name:        "AI Overwatch",
		Status:      models.StatusActive,
		Version:     "v1.0.0",
		NextRenewal: "2025-12-01",
	})
	assert.NoError(t, err, "audit is best-effort and must not fail the action")
}
