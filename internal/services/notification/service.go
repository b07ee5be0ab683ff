// Package notification fans transfer and wallet events out to registered
// observers. Dispatch is asynchronous and panic-isolated: a slow or
// failing observer can never affect the outcome of the operation that
// emitted the event.
package notification

import (
	"log"
	"sync"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// TransferObserver receives transfer lifecycle events.
type TransferObserver interface {
	OnTransferInitiated(t *models.Transfer)
	OnTransferCompleted(t *models.Transfer)
	OnTransferFailed(t *models.Transfer, reason string)
	OnTransferNeedsReview(t *models.Transfer, reason string)
}

// WalletObserver receives balance events.
type WalletObserver interface {
	OnBalanceChanged(w *models.Wallet, currency string, oldBalance, newBalance decimal.Decimal)
	OnLowBalance(w *models.Wallet, currency string, balance decimal.Decimal)
}

// Service is the observer registry supplied at construction time.
type Service struct {
	mu        sync.RWMutex
	transfers []TransferObserver
	wallets   []WalletObserver
}

// NewService creates an empty notification service.
func NewService() *Service { return &Service{} }

// AddTransferObserver registers a transfer observer.
func (s *Service) AddTransferObserver(o TransferObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers = append(s.transfers, o)
}

// AddWalletObserver registers a wallet observer.
func (s *Service) AddWalletObserver(o WalletObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets = append(s.wallets, o)
}

// dispatch runs fn in its own goroutine, swallowing panics so observer
// failures never propagate into transfer control flow.
func dispatch(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("notification observer panicked: %v", r)
			}
		}()
		fn()
	}()
}

func (s *Service) transferObservers() []TransferObserver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TransferObserver, len(s.transfers))
	copy(out, s.transfers)
	return out
}

func (s *Service) walletObservers() []WalletObserver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]WalletObserver, len(s.wallets))
	copy(out, s.wallets)
	return out
}

// TransferInitiated notifies observers that execution has started.
func (s *Service) TransferInitiated(t *models.Transfer) {
	snapshot := *t
	for _, o := range s.transferObservers() {
		o := o
		dispatch(func() { o.OnTransferInitiated(&snapshot) })
	}
}

// TransferCompleted notifies observers of a terminal success.
func (s *Service) TransferCompleted(t *models.Transfer) {
	snapshot := *t
	for _, o := range s.transferObservers() {
		o := o
		dispatch(func() { o.OnTransferCompleted(&snapshot) })
	}
}

// TransferFailed notifies observers of a terminal failure.
func (s *Service) TransferFailed(t *models.Transfer, reason string) {
	snapshot := *t
	for _, o := range s.transferObservers() {
		o := o
		dispatch(func() { o.OnTransferFailed(&snapshot, reason) })
	}
}

// TransferNeedsReview notifies observers that a transfer was parked for
// manual fraud review.
func (s *Service) TransferNeedsReview(t *models.Transfer, reason string) {
	snapshot := *t
	for _, o := range s.transferObservers() {
		o := o
		dispatch(func() { o.OnTransferNeedsReview(&snapshot, reason) })
	}
}

// BalanceChanged notifies observers of a wallet balance mutation.
func (s *Service) BalanceChanged(w *models.Wallet, currency string, oldBalance, newBalance decimal.Decimal) {
	snapshot := *w
	for _, o := range s.walletObservers() {
		o := o
		dispatch(func() { o.OnBalanceChanged(&snapshot, currency, oldBalance, newBalance) })
	}
}

// LowBalance notifies observers that a balance fell under the threshold.
func (s *Service) LowBalance(w *models.Wallet, currency string, balance decimal.Decimal) {
	snapshot := *w
	for _, o := range s.walletObservers() {
		o := o
		dispatch(func() { o.OnLowBalance(&snapshot, currency, balance) })
	}
}
