package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mams-ops/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// storedCredential is the on-disk shape of one registered account in the
// registered-users blob.
type storedCredential struct {
	PasswordHash string     `json:"password_hash"`
	User         types.User `json:"user"`
}

// MemoryUserRepository is an in-memory credential store keyed by username,
// seeded with the demo accounts. When a state path is configured, every
// mutation writes the full registered-users blob through to disk, and a
// restart restores it; without the blob the store starts seed-only.
type MemoryUserRepository struct {
	mu         sync.Mutex
	byUsername map[string]storedCredential
	nextID     int
	statePath  string
}

// NewMemoryUserRepository builds the store, loading statePath if the blob
// exists and seeding the demo accounts otherwise. An empty statePath
// disables persistence.
func NewMemoryUserRepository(statePath string) (*MemoryUserRepository, error) {
	r := &MemoryUserRepository{
		byUsername: make(map[string]storedCredential),
		nextID:     1,
		statePath:  statePath,
	}

	if statePath != "" {
		data, err := os.ReadFile(statePath)
		if err == nil {
			if err := json.Unmarshal(data, &r.byUsername); err != nil {
				return nil, fmt.Errorf("decode registered users: %w", err)
			}
			for _, cred := range r.byUsername {
				if cred.User.ID >= r.nextID {
					r.nextID = cred.User.ID + 1
				}
			}
			return r, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	now := time.Now()
	for _, account := range DemoAccounts() {
		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user := account.User
		user.ID = r.nextID
		user.PasswordHash = string(hash)
		user.CreatedAt = now
		user.UpdatedAt = now
		r.byUsername[user.Username] = storedCredential{
			PasswordHash: user.PasswordHash,
			User:         user,
		}
		r.nextID++
	}
	return r, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cred := range r.byUsername {
		if cred.User.ID == id {
			return cred.User, nil
		}
	}
	return types.User{}, ErrNotFound
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.byUsername[username]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return cred.User, nil
}

func (r *MemoryUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byUsername[user.Username]; exists {
		return types.User{}, ErrAlreadyExists
	}

	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++
	r.byUsername[user.Username] = storedCredential{
		PasswordHash: user.PasswordHash,
		User:         user,
	}
	if err := r.persistLocked(); err != nil {
		delete(r.byUsername, user.Username)
		r.nextID--
		return types.User{}, err
	}
	return user, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, cred := range r.byUsername {
		if cred.User.ID != user.ID {
			continue
		}
		user.CreatedAt = cred.User.CreatedAt
		user.UpdatedAt = time.Now()
		if username != user.Username {
			if _, taken := r.byUsername[user.Username]; taken {
				return types.User{}, ErrAlreadyExists
			}
			delete(r.byUsername, username)
		}
		r.byUsername[user.Username] = storedCredential{
			PasswordHash: user.PasswordHash,
			User:         user,
		}
		if err := r.persistLocked(); err != nil {
			return types.User{}, err
		}
		return user, nil
	}
	return types.User{}, ErrNotFound
}

func (r *MemoryUserRepository) persistLocked() error {
	if r.statePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(r.byUsername, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.statePath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(r.statePath, data, 0o600)
}

// memoryLedger is an append-only in-memory record sequence kept newest
// first. Identifiers come from a monotonic counter, not the collection
// length, so they stay unique even if records are ever removed.
type memoryLedger[T any] struct {
	mu      sync.Mutex
	prefix  string
	next    int
	records []T
}

func newMemoryLedger[T any](prefix string, seed []T) *memoryLedger[T] {
	l := &memoryLedger[T]{
		prefix: prefix,
		next:   len(seed) + 1,
	}
	// Seeds are declared oldest first; store newest first.
	for i := len(seed) - 1; i >= 0; i-- {
		l.records = append(l.records, seed[i])
	}
	return l
}

func (l *memoryLedger[T]) list() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.records))
	copy(out, l.records)
	return out
}

func (l *memoryLedger[T]) append(rec T, setID func(*T, string)) T {
	l.mu.Lock()
	defer l.mu.Unlock()
	setID(&rec, recordID(l.prefix, int64(l.next)))
	l.next++
	l.records = append([]T{rec}, l.records...)
	return rec
}

// MemoryPurchaseRepository is the in-memory purchase ledger.
type MemoryPurchaseRepository struct {
	ledger *memoryLedger[types.Purchase]
}

func NewMemoryPurchaseRepository() *MemoryPurchaseRepository {
	return &MemoryPurchaseRepository{ledger: newMemoryLedger("PUR", DemoPurchases())}
}

func (r *MemoryPurchaseRepository) List(ctx context.Context) ([]types.Purchase, error) {
	return r.ledger.list(), nil
}

func (r *MemoryPurchaseRepository) Create(ctx context.Context, p types.Purchase) (types.Purchase, error) {
	p.CreatedAt = time.Now()
	return r.ledger.append(p, func(rec *types.Purchase, id string) { rec.ID = id }), nil
}

// MemoryTransferRepository is the in-memory transfer ledger.
type MemoryTransferRepository struct {
	ledger *memoryLedger[types.Transfer]
}

func NewMemoryTransferRepository() *MemoryTransferRepository {
	return &MemoryTransferRepository{ledger: newMemoryLedger("TXF", DemoTransfers())}
}

func (r *MemoryTransferRepository) List(ctx context.Context) ([]types.Transfer, error) {
	return r.ledger.list(), nil
}

func (r *MemoryTransferRepository) Create(ctx context.Context, t types.Transfer) (types.Transfer, error) {
	t.CreatedAt = time.Now()
	return r.ledger.append(t, func(rec *types.Transfer, id string) { rec.ID = id }), nil
}

// MemoryAssignmentRepository is the in-memory assignment ledger.
type MemoryAssignmentRepository struct {
	ledger *memoryLedger[types.Assignment]
}

func NewMemoryAssignmentRepository() *MemoryAssignmentRepository {
	return &MemoryAssignmentRepository{ledger: newMemoryLedger("ASG", DemoAssignments())}
}

func (r *MemoryAssignmentRepository) List(ctx context.Context) ([]types.Assignment, error) {
	return r.ledger.list(), nil
}

func (r *MemoryAssignmentRepository) Create(ctx context.Context, a types.Assignment) (types.Assignment, error) {
	a.CreatedAt = time.Now()
	return r.ledger.append(a, func(rec *types.Assignment, id string) { rec.ID = id }), nil
}

// MemoryExpenditureRepository is the in-memory expenditure ledger.
type MemoryExpenditureRepository struct {
	ledger *memoryLedger[types.Expenditure]
}

func NewMemoryExpenditureRepository() *MemoryExpenditureRepository {
	return &MemoryExpenditureRepository{ledger: newMemoryLedger("EXP", DemoExpenditures())}
}

func (r *MemoryExpenditureRepository) List(ctx context.Context) ([]types.Expenditure, error) {
	return r.ledger.list(), nil
}

func (r *MemoryExpenditureRepository) Create(ctx context.Context, e types.Expenditure) (types.Expenditure, error) {
	e.CreatedAt = time.Now()
	return r.ledger.append(e, func(rec *types.Expenditure, id string) { rec.ID = id }), nil
}
