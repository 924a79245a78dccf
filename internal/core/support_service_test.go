package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bonusthoughts-backend/internal/models"
)

func TestSubmit_CreatesTicketAndNotifies(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	id, err := store.CreateActive(ctx, "uid_alice", &models.Product{
		Name: "AI Overwatch", Status: models.StatusActive, Version: "v1.0.0", NextRenewal: "2025-12-01",
	})
	require.NoError(t, err)
	notifier := &fakeNotifier{}

	svc := NewSupportService(store, store, notifier)

	request, err := svc.Submit(ctx, "uid_alice", "Alice@Example.com", models.CreateSupportRequest{
		ProductID: id,
		Message:   "The dashboard shows stale data.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, request.ID)
	assert.True(t, strings.HasPrefix(request.Ticket, "T-"))
	assert.Equal(t, "pending", request.Status)
	assert.Equal(t, "alice@example.com", request.UserEmail)
	assert.Equal(t, "AI Overwatch", request.ProductName)

	require.Len(t, notifier.subjects, 1)
	assert.Contains(t, notifier.subjects[0], request.Ticket)
}

func TestSubmit_TicketsAreUnique(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	id, err := store.CreateActive(ctx, "uid_alice", &models.Product{
		Name: "AI Overwatch", Status: models.StatusActive, Version: "v1.0.0", NextRenewal: "2025-12-01",
	})
	require.NoError(t, err)

	svc := NewSupportService(store, store, nil)

	req := models.CreateSupportRequest{ProductID: id, Message: "msg"}
	first, err := svc.Submit(ctx, "uid_alice", "alice@example.com", req)
	require.NoError(t, err)
	second, err := svc.Submit(ctx, "uid_alice", "alice@example.com", req)
	require.NoError(t, err)
	assert.NotEqual(t, first.Ticket, second.Ticket)
}

func TestSubmit_RejectsDeploymentOwnedBySomeoneElse(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	id, err := store.CreateActive(ctx, "uid_alice", &models.Product{
		Name: "AI Overwatch", Status: models.StatusActive, Version: "v1.0.0", NextRenewal: "2025-12-01",
	})
	require.NoError(t, err)

	svc := NewSupportService(store, store, nil)

	_, err = svc.Submit(ctx, "uid_mallory", "mallory@example.com", models.CreateSupportRequest{
		ProductID: id,
		Message:   "give me access",
	})
	assert.ErrorIs(t, err, ErrDeploymentNotFound)
}

func TestSubmit_RejectsEmptyMessage(t *testing.T) {
	svc := NewSupportService(newFakeStore(), newFakeStore(), nil)
	_, err := svc.Submit(context.Background(), "uid_alice", "alice@example.com", models.CreateSupportRequest{
		ProductID: "prod_1",
		Message:   "   ",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmit_SucceedsWhenNotifierFails(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	id, err := store.CreateActive(ctx, "uid_alice", &models.Product{
		Name: "AI Overwatch", Status: models.StatusActive, Version: "v1.0.0", NextRenewal: "2025-12-01",
	})
	require.NoError(t, err)
	notifier := &fakeNotifier{fail: assert.AnError}

	svc := NewSupportService(store, store, notifier)

	request, err := svc.Submit(ctx, "uid_alice", "alice@example.com", models.CreateSupportRequest{
		ProductID: id,
		Message:   "still works",
	})
	require.NoError(t, err, "notification is best-effort and must not fail the submit")
	assert.NotEmpty(t, request.Ticket)
}
