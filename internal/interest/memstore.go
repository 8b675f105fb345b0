package interest

import (
	"context"
	"sort"
	"sync"
	"time"

	"matchwell/backend/internal/models"
)

type pairKey struct{ from, to uint }

func unordered(a, b uint) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// MemoryStore is a Store kept in process memory. It backs tests and local runs without
// postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	interests map[string]models.Interest
	pairs     map[pairKey]string
	declined  map[pairKey]models.DeclinedMarker

	locksMu sync.Mutex
	locks   map[pairKey]*sync.Mutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		interests: make(map[string]models.Interest),
		pairs:     make(map[pairKey]string),
		declined:  make(map[pairKey]models.DeclinedMarker),
		locks:     make(map[pairKey]*sync.Mutex),
	}
}

func (s *MemoryStore) pairLock(a, b uint) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	key := unordered(a, b)
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *MemoryStore) WithinPair(ctx context.Context, a, b uint, fn func(tx Tx) error) error {
	l := s.pairLock(a, b)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		store:    s,
		upserts:  make(map[string]models.Interest),
		deletes:  make(map[string]bool),
		declined: make(map[pairKey]models.DeclinedMarker),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Interest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.interests[id]
	if !ok {
		return nil, ErrNoRecord
	}
	return &in, nil
}

func (s *MemoryStore) FindPair(_ context.Context, senderID, receiverID uint) (*models.Interest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.pairs[pairKey{senderID, receiverID}]
	if !ok {
		return nil, ErrNoRecord
	}
	in := s.interests[id]
	return &in, nil
}

func (s *MemoryStore) ListByReceiver(_ context.Context, receiverID uint, status models.InterestStatus) ([]models.Interest, error) {
	return s.list(func(in models.Interest) bool {
		return in.ReceiverID == receiverID && (status == "" || in.Status == status)
	}), nil
}

func (s *MemoryStore) ListBySender(_ context.Context, senderID uint) ([]models.Interest, error) {
	return s.list(func(in models.Interest) bool { return in.SenderID == senderID }), nil
}

func (s *MemoryStore) list(match func(models.Interest) bool) []models.Interest {
	s.mu.RLock()
	var out []models.Interest
	for _, in := range s.interests {
		if match(in) {
			out = append(out, in)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) Declined(_ context.Context, userID, declinedUserID uint) (*models.DeclinedMarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.declined[pairKey{userID, declinedUserID}]
	if !ok {
		return nil, ErrNoRecord
	}
	return &m, nil
}

// Count returns the number of interest rows, for tests and diagnostics.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.interests)
}

// DeclinedCount returns the number of declined markers.
func (s *MemoryStore) DeclinedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.declined)
}

// memTx stages writes and applies them on commit.
type memTx struct {
	store    *MemoryStore
	upserts  map[string]models.Interest
	deletes  map[string]bool
	declined map[pairKey]models.DeclinedMarker
}

func (tx *memTx) Get(ctx context.Context, id string) (*models.Interest, error) {
	if tx.deletes[id] {
		return nil, ErrNoRecord
	}
	if in, ok := tx.upserts[id]; ok {
		return &in, nil
	}
	return tx.store.Get(ctx, id)
}

func (tx *memTx) FindPair(ctx context.Context, senderID, receiverID uint) (*models.Interest, error) {
	for _, in := range tx.upserts {
		if in.SenderID == senderID && in.ReceiverID == receiverID {
			return &in, nil
		}
	}
	in, err := tx.store.FindPair(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if tx.deletes[in.ID] {
		return nil, ErrNoRecord
	}
	return in, nil
}

func (tx *memTx) Create(ctx context.Context, in *models.Interest) error {
	if _, err := tx.FindPair(ctx, in.SenderID, in.ReceiverID); err == nil {
		return ErrPairExists
	}
	now := time.Now().UTC()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now
	}
	if in.UpdatedAt.IsZero() {
		in.UpdatedAt = in.CreatedAt
	}
	delete(tx.deletes, in.ID)
	tx.upserts[in.ID] = *in
	return nil
}

func (tx *memTx) UpdateStatus(ctx context.Context, id string, status models.InterestStatus, at time.Time) error {
	in, err := tx.Get(ctx, id)
	if err != nil {
		return err
	}
	in.Status = status
	in.UpdatedAt = at
	tx.upserts[id] = *in
	return nil
}

func (tx *memTx) Delete(ctx context.Context, id string) error {
	if _, err := tx.Get(ctx, id); err != nil {
		return err
	}
	delete(tx.upserts, id)
	tx.deletes[id] = true
	return nil
}

func (tx *memTx) UpsertDeclined(_ context.Context, marker models.DeclinedMarker) error {
	key := pairKey{marker.UserID, marker.DeclinedUserID}
	now := time.Now().UTC()
	if existing, ok := tx.declined[key]; ok {
		marker.CreatedAt = existing.CreatedAt
	} else if existing, err := tx.store.Declined(context.Background(), marker.UserID, marker.DeclinedUserID); err == nil {
		marker.CreatedAt = existing.CreatedAt
	} else {
		marker.CreatedAt = now
	}
	marker.UpdatedAt = now
	tx.declined[key] = marker
	return nil
}

func (tx *memTx) commit() {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range tx.deletes {
		if in, ok := s.interests[id]; ok {
			delete(s.pairs, pairKey{in.SenderID, in.ReceiverID})
			delete(s.interests, id)
		}
	}
	for id, in := range tx.upserts {
		s.interests[id] = in
		s.pairs[pairKey{in.SenderID, in.ReceiverID}] = id
	}
	for key, m := range tx.declined {
		s.declined[key] = m
	}
}
