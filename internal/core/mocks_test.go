package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bonusthoughts-backend/internal/db"
	"bonusthoughts-backend/internal/models"
)

// fakeStore simulates the profile collection, both deployment collections
// and the support request collection in memory. It implements
// db.UserRepository, db.ProductRepository and db.RequestRepository so the
// services can be exercised without Firestore. Error fields inject
// failures; the migration failure leaves state untouched, mirroring the
// all-or-nothing batch commit.
type fakeStore struct {
	mu sync.Mutex

	users    map[string]*models.User               // uid -> profile
	active   map[string]map[string]*models.Product // uid -> id -> product
	pending  map[string]*models.PendingProduct     // id -> pending
	requests map[string]*models.SupportRequest     // id -> request

	seq int

	failUpsert  error
	failPending error
	failActive  error
	failMigrate error

	upsertCalls      int
	pendingQueries   []string // emails passed to ListPendingByEmail
	activeQueries    []string // uids passed to ListActiveByOwner
	emailResolutions []string // emails passed to ListActiveByOwnerEmail
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*models.User),
		active:   make(map[string]map[string]*models.Product),
		pending:  make(map[string]*models.PendingProduct),
		requests: make(map[string]*models.SupportRequest),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%d", prefix, f.seq)
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- db.UserRepository ---

func (f *fakeStore) UpsertProfile(ctx context.Context, userID, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert != nil {
		return f.failUpsert
	}
	f.upsertCalls++
	user, ok := f.users[userID]
	if !ok {
		user = &models.User{ID: userID}
		f.users[userID] = user
	}
	user.Email = normalize(email)
	user.LastSeen = time.Now().UTC()
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == normalize(email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("email '%s': %w", email, db.ErrNotFound)
}

func (f *fakeStore) ListAll(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := []*models.User{}
	for _, user := range f.users {
		if user.Email == "" {
			continue
		}
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

// --- db.ProductRepository ---

func (f *fakeStore) CreateActive(ctx context.Context, ownerID string, product *models.Product) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("prod")
	stored := *product
	stored.ID = id
	stored.OwnerID = ownerID
	stored.CreatedAt = time.Now().UTC()
	if f.active[ownerID] == nil {
		f.active[ownerID] = make(map[string]*models.Product)
	}
	f.active[ownerID][id] = &stored
	product.ID = id
	product.OwnerID = ownerID
	return id, nil
}

func (f *fakeStore) CreatePending(ctx context.Context, pending *models.PendingProduct) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	normalized := normalize(pending.TargetEmail)
	if !strings.Contains(normalized, "@") {
		return "", fmt.Errorf("target email '%s': %w", pending.TargetEmail, db.ErrInvalidEmail)
	}
	pending.TargetEmail = normalized
	id := f.nextID("pend")
	stored := *pending
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	f.pending[id] = &stored
	pending.ID = id
	return id, nil
}

func (f *fakeStore) ListActiveByOwner(ctx context.Context, ownerID string) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failActive != nil {
		return nil, f.failActive
	}
	f.activeQueries = append(f.activeQueries, ownerID)
	products := []*models.Product{}
	for _, p := range f.active[ownerID] {
		copied := *p
		products = append(products, &copied)
	}
	return products, nil
}

func (f *fakeStore) ListActiveByOwnerEmail(ctx context.Context, email string) ([]*models.Product, error) {
	f.mu.Lock()
	f.emailResolutions = append(f.emailResolutions, normalize(email))
	var ownerID string
	for uid, user := range f.users {
		if user.Email == normalize(email) {
			ownerID = uid
			break
		}
	}
	f.mu.Unlock()
	if ownerID == "" {
		return nil, fmt.Errorf("no profile for email '%s': %w", email, db.ErrNotFound)
	}
	return f.ListActiveByOwner(ctx, ownerID)
}

func (f *fakeStore) ListPendingByEmail(ctx context.Context, email string) ([]*models.PendingProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPending != nil {
		return nil, f.failPending
	}
	normalized := normalize(email)
	f.pendingQueries = append(f.pendingQueries, normalized)
	pending := []*models.PendingProduct{}
	for _, p := range f.pending {
		if p.TargetEmail == normalized {
			copied := *p
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

func (f *fakeStore) MigratePending(ctx context.Context, ownerID string, pending []*models.PendingProduct) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMigrate != nil {
		// All-or-nothing: a failed commit leaves both collections as they were.
		return f.failMigrate
	}
	if f.active[ownerID] == nil {
		f.active[ownerID] = make(map[string]*models.Product)
	}
	for _, p := range pending {
		if _, ok := f.pending[p.ID]; !ok {
			return fmt.Errorf("pending deployment '%s' vanished before commit", p.ID)
		}
	}
	for _, p := range pending {
		id := f.nextID("prod")
		f.active[ownerID][id] = &models.Product{
			ID:          id,
			OwnerID:     ownerID,
			Name:        p.Name,
			Status:      p.Status,
			Version:     p.Version,
			NextRenewal: p.NextRenewal,
			CreatedAt:   time.Now().UTC(),
		}
		delete(f.pending, p.ID)
	}
	return nil
}

func (f *fakeStore) Update(ctx context.Context, ref models.ProductRef, patch models.ProductPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch ref.Scope {
	case models.ScopePending:
		p, ok := f.pending[ref.ID]
		if !ok {
			return fmt.Errorf("pending '%s': %w", ref.ID, db.ErrNotFound)
		}
		applyPatch(&p.Name, &p.Status, &p.Version, &p.NextRenewal, patch)
	case models.ScopeActive:
		p, ok := f.active[ref.OwnerID][ref.ID]
		if !ok {
			return fmt.Errorf("active '%s': %w", ref.ID, db.ErrNotFound)
		}
		applyPatch(&p.Name, &p.Status, &p.Version, &p.NextRenewal, patch)
	default:
		return errors.New("unknown scope")
	}
	return nil
}

func applyPatch(name, status, version, nextRenewal *string, patch models.ProductPatch) {
	if patch.Name != nil {
		*name = *patch.Name
	}
	if patch.Status != nil {
		*status = *patch.Status
	}
	if patch.Version != nil {
		*version = *patch.Version
	}
	if patch.NextRenewal != nil {
		*nextRenewal = *patch.NextRenewal
	}
}

func (f *fakeStore) Delete(ctx context.Context, ref models.ProductRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch ref.Scope {
	case models.ScopePending:
		delete(f.pending, ref.ID)
	case models.ScopeActive:
		delete(f.active[ref.OwnerID], ref.ID)
	default:
		return errors.New("unknown scope")
	}
	return nil
}

// --- db.RequestRepository ---

func (f *fakeStore) Create(ctx context.Context, req *models.SupportRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("req")
	stored := *req
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	f.requests[id] = &stored
	req.ID = id
	return id, nil
}

func (f *fakeStore) pendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *fakeStore) activeCount(ownerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active[ownerID])
}

// fakeAudit records audit entries in memory.
type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
	fail    error
}

func (a *fakeAudit) CreateAuditLog(ctx context.Context, entry models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return a.fail
	}
	a.entries = append(a.entries, entry)
	return nil
}

// fakeCache is an in-memory cache.Cache with hit/miss counters.
type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	gets   int
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.values[key], nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.values[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

// fakeNotifier records support notifications.
type fakeNotifier struct {
	mu       sync.Mutex
	subjects []string
	fail     error
}

func (n *fakeNotifier) Send(subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.subjects = append(n.subjects, subject)
	return nil
}
