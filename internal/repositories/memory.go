package repositories

import (
	"sync"
	"time"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// In-memory repository implementations. They back the engine in tests and
// single-process deployments and mirror the semantics of the Postgres
// implementations: unique user per wallet, unique idempotency keys, and
// value-copy isolation so callers never share mutable state with the store.

// MemoryWalletRepository is a thread-safe in-memory WalletRepository.
type MemoryWalletRepository struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[uint]models.Wallet
	byUser map[uint]uint
}

func NewMemoryWalletRepository() *MemoryWalletRepository {
	return &MemoryWalletRepository{
		nextID: 1,
		byID:   make(map[uint]models.Wallet),
		byUser: make(map[uint]uint),
	}
}

func copyWallet(w models.Wallet) *models.Wallet {
	out := w
	out.Balances = make(models.BalanceMap, len(w.Balances))
	for c, b := range w.Balances {
		out.Balances[c] = b
	}
	return &out
}

func (r *MemoryWalletRepository) Create(wallet *models.Wallet) error {
	if wallet == nil {
		return ErrInvalidWalletData
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byUser[wallet.UserID]; exists {
		return ErrDuplicateWallet
	}
	wallet.ID = r.nextID
	r.nextID++
	now := time.Now()
	wallet.CreatedAt = now
	wallet.UpdatedAt = now
	r.byID[wallet.ID] = *copyWallet(*wallet)
	r.byUser[wallet.UserID] = wallet.ID
	return nil
}

func (r *MemoryWalletRepository) GetByID(id uint) (*models.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byID[id]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return copyWallet(w), nil
}

func (r *MemoryWalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[userID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	w := r.byID[id]
	return copyWallet(w), nil
}

func (r *MemoryWalletRepository) Update(wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[wallet.ID]; !ok {
		return ErrWalletNotFound
	}
	wallet.UpdatedAt = time.Now()
	r.byID[wallet.ID] = *copyWallet(*wallet)
	return nil
}

func (r *MemoryWalletRepository) GetByStatus(status string) ([]*models.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Wallet
	for _, w := range r.byID {
		if w.Status == status {
			out = append(out, copyWallet(w))
		}
	}
	return out, nil
}

// MemoryTransactionRepository is a thread-safe in-memory TransactionRepository.
type MemoryTransactionRepository struct {
	mu      sync.RWMutex
	nextID  uint
	entries []models.Transaction
	byTxID  map[string]int
	byKey   map[string]int
}

func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{
		nextID: 1,
		byTxID: make(map[string]int),
		byKey:  make(map[string]int),
	}
}

func (r *MemoryTransactionRepository) Create(tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[tx.IdempotencyKey]; exists {
		return ErrDuplicateKey
	}
	tx.ID = r.nextID
	r.nextID++
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	r.byTxID[tx.TransactionID] = len(r.entries)
	r.byKey[tx.IdempotencyKey] = len(r.entries)
	r.entries = append(r.entries, *tx)
	return nil
}

func (r *MemoryTransactionRepository) Update(tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byTxID[tx.TransactionID]
	if !ok {
		return ErrTransactionNotFound
	}
	tx.UpdatedAt = time.Now()
	r.entries[idx] = *tx
	return nil
}

func (r *MemoryTransactionRepository) GetByTransactionID(transactionID string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byTxID[transactionID]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	out := r.entries[idx]
	return &out, nil
}

func (r *MemoryTransactionRepository) FindByIdempotencyKey(key string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byKey[key]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	out := r.entries[idx]
	return &out, nil
}

func (r *MemoryTransactionRepository) ListByWallet(walletID uint, limit, offset int) ([]*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Transaction
	skipped := 0
	// Newest first, like the SQL implementation's ORDER BY created_at DESC.
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].WalletID != walletID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		e := r.entries[i]
		out = append(out, &e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryTransactionRepository) ListByWalletAndRange(walletID uint, start, end time.Time) ([]*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Transaction
	for i := range r.entries {
		e := r.entries[i]
		if e.WalletID != walletID || e.CreatedAt.Before(start) || e.CreatedAt.After(end) {
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}

func (r *MemoryTransactionRepository) ListByReference(reference string) ([]*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Transaction
	for i := range r.entries {
		if r.entries[i].Reference != reference {
			continue
		}
		e := r.entries[i]
		out = append(out, &e)
	}
	return out, nil
}

// MemoryTransferRepository is a thread-safe in-memory TransferRepository.
type MemoryTransferRepository struct {
	mu         sync.RWMutex
	nextID     uint
	transfers  []models.Transfer
	byPublicID map[string]int
	byKey      map[string]int
}

func NewMemoryTransferRepository() *MemoryTransferRepository {
	return &MemoryTransferRepository{
		nextID:     1,
		byPublicID: make(map[string]int),
		byKey:      make(map[string]int),
	}
}

func (r *MemoryTransferRepository) Create(t *models.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[t.IdempotencyKey]; exists {
		return ErrDuplicateKey
	}
	t.ID = r.nextID
	r.nextID++
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.byPublicID[t.PublicID] = len(r.transfers)
	r.byKey[t.IdempotencyKey] = len(r.transfers)
	r.transfers = append(r.transfers, *t)
	return nil
}

func (r *MemoryTransferRepository) Update(t *models.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byPublicID[t.PublicID]
	if !ok {
		return ErrTransferNotFound
	}
	t.UpdatedAt = time.Now()
	r.transfers[idx] = *t
	return nil
}

func (r *MemoryTransferRepository) GetByPublicID(publicID string) (*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byPublicID[publicID]
	if !ok {
		return nil, ErrTransferNotFound
	}
	out := r.transfers[idx]
	return &out, nil
}

func (r *MemoryTransferRepository) FindByIdempotencyKey(key string) (*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byKey[key]
	if !ok {
		return nil, ErrTransferNotFound
	}
	out := r.transfers[idx]
	return &out, nil
}

func (r *MemoryTransferRepository) list(match func(*models.Transfer) bool) []*models.Transfer {
	var out []*models.Transfer
	for i := range r.transfers {
		t := r.transfers[i]
		if match(&t) {
			out = append(out, &t)
		}
	}
	return out
}

func (r *MemoryTransferRepository) ListByWallet(walletID uint) ([]*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(t *models.Transfer) bool {
		return t.FromWalletID == walletID || (t.ToWalletID != nil && *t.ToWalletID == walletID)
	}), nil
}

func (r *MemoryTransferRepository) ListBySource(walletID uint) ([]*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(t *models.Transfer) bool { return t.FromWalletID == walletID }), nil
}

func (r *MemoryTransferRepository) ListByTarget(walletID uint) ([]*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(t *models.Transfer) bool {
		return t.ToWalletID != nil && *t.ToWalletID == walletID
	}), nil
}

func (r *MemoryTransferRepository) ListByStatus(status string) ([]*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(t *models.Transfer) bool { return t.Status == status }), nil
}

func (r *MemoryTransferRepository) CountBySourceSince(walletID uint, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for i := range r.transfers {
		t := &r.transfers[i]
		if t.FromWalletID == walletID && !t.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryTransferRepository) SumBySourceSince(walletID uint, since time.Time) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := decimal.Zero
	for i := range r.transfers {
		t := &r.transfers[i]
		if t.FromWalletID != walletID || t.CreatedAt.Before(since) {
			continue
		}
		if t.Status == models.TransferCompleted || t.Status == models.TransferProcessing {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (r *MemoryTransferRepository) HasTransferred(fromWalletID, toWalletID uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.transfers {
		t := &r.transfers[i]
		if t.FromWalletID == fromWalletID && t.ToWalletID != nil && *t.ToWalletID == toWalletID {
			return true, nil
		}
	}
	return false, nil
}
