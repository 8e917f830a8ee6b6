// Package memory is a ledger.Repository kept entirely in process memory. It
// backs the demo mode and tests; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type Store struct {
	mu             sync.RWMutex
	transactions   []ledger.Transaction
	accounts       []ledger.Account
	categories     []ledger.Category
	paymentMethods []ledger.PaymentMethod
	now            func() time.Time
}

// New returns a store seeded with the default account and the built-in
// categories and payment methods.
func New() *Store {
	return &Store{
		accounts:       []ledger.Account{ledger.DefaultAccount()},
		categories:     ledger.BuiltinCategories(),
		paymentMethods: ledger.BuiltinPaymentMethods(),
		now:            time.Now,
	}
}

func (s *Store) ListTransactions(_ context.Context) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.transactions), nil
}

func (s *Store) InsertTransaction(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNew(tx); err != nil {
		return ledger.Transaction{}, err
	}

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now()
	}

	s.transactions = append(s.transactions, tx)

	return tx, nil
}

// InsertTransactions stores every transaction or, if any is rejected, none of them.
func (s *Store) InsertTransactions(_ context.Context, txs []ledger.Transaction) ([]ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(txs))
	out := make([]ledger.Transaction, 0, len(txs))

	for _, tx := range txs {
		if err := s.checkNew(tx); err != nil {
			return nil, err
		}

		if _, dup := seen[tx.ID]; dup {
			return nil, ledger.WrapRepo("inserting transactions", fmt.Errorf("transaction %s: %w", tx.ID, ledger.ErrAlreadyExists))
		}

		seen[tx.ID] = struct{}{}

		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = s.now()
		}

		out = append(out, tx)
	}

	s.transactions = append(s.transactions, out...)

	return slices.Clone(out), nil
}

func (s *Store) checkNew(tx ledger.Transaction) error {
	if tx.ID == "" {
		return ledger.WrapRepo("inserting transaction", fmt.Errorf("%w: empty id", ledger.ErrMalformedTransaction))
	}

	if slices.ContainsFunc(s.transactions, func(t ledger.Transaction) bool { return t.ID == tx.ID }) {
		return ledger.WrapRepo("inserting transaction", fmt.Errorf("transaction %s: %w", tx.ID, ledger.ErrAlreadyExists))
	}

	return nil
}

func (s *Store) DeleteTransactions(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if !slices.ContainsFunc(s.transactions, func(t ledger.Transaction) bool { return t.ID == id }) {
			return ledger.WrapRepo("deleting transactions", fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound))
		}
	}

	s.transactions = slices.DeleteFunc(s.transactions, func(t ledger.Transaction) bool {
		return slices.Contains(ids, t.ID)
	})

	return nil
}

func (s *Store) ListAccounts(_ context.Context) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.accounts), nil
}

func (s *Store) InsertAccount(_ context.Context, acc ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.accounts, acc.ID, accountID) >= 0 {
		return ledger.Account{}, ledger.WrapRepo("inserting account", fmt.Errorf("account %s: %w", acc.ID, ledger.ErrAlreadyExists))
	}

	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = s.now()
	}

	s.accounts = append(s.accounts, acc)

	return acc, nil
}

func (s *Store) UpdateAccount(_ context.Context, acc ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.accounts, acc.ID, accountID)
	if i < 0 {
		return ledger.Account{}, ledger.WrapRepo("updating account", fmt.Errorf("account %s: %w", acc.ID, ledger.ErrNotFound))
	}

	acc.CreatedAt = s.accounts[i].CreatedAt
	s.accounts[i] = acc

	return acc, nil
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	if id == ledger.DefaultAccountID {
		return ledger.WrapRepo("deleting account", fmt.Errorf("account %s: %w", id, ledger.ErrProtected))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.accounts, id, accountID)
	if i < 0 {
		return ledger.WrapRepo("deleting account", fmt.Errorf("account %s: %w", id, ledger.ErrNotFound))
	}

	s.accounts = slices.Delete(s.accounts, i, i+1)

	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.categories), nil
}

func (s *Store) InsertCategory(_ context.Context, c ledger.Category) (ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.categories, c.ID, categoryID) >= 0 {
		return ledger.Category{}, ledger.WrapRepo("inserting category", fmt.Errorf("category %s: %w", c.ID, ledger.ErrAlreadyExists))
	}

	c.Builtin = false
	s.categories = append(s.categories, c)

	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c ledger.Category) (ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.categories, c.ID, categoryID)
	if i < 0 {
		return ledger.Category{}, ledger.WrapRepo("updating category", fmt.Errorf("category %s: %w", c.ID, ledger.ErrNotFound))
	}

	if s.categories[i].Builtin {
		return ledger.Category{}, ledger.WrapRepo("updating category", fmt.Errorf("category %s: %w", c.ID, ledger.ErrProtected))
	}

	s.categories[i] = c

	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.categories, id, categoryID)
	if i < 0 {
		return ledger.WrapRepo("deleting category", fmt.Errorf("category %s: %w", id, ledger.ErrNotFound))
	}

	if s.categories[i].Builtin {
		return ledger.WrapRepo("deleting category", fmt.Errorf("category %s: %w", id, ledger.ErrProtected))
	}

	s.categories = slices.Delete(s.categories, i, i+1)

	return nil
}

func (s *Store) ListPaymentMethods(_ context.Context) ([]ledger.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.paymentMethods), nil
}

func (s *Store) InsertPaymentMethod(_ context.Context, pm ledger.PaymentMethod) (ledger.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.paymentMethods, pm.ID, paymentMethodID) >= 0 {
		return ledger.PaymentMethod{}, ledger.WrapRepo("inserting payment method", fmt.Errorf("payment method %s: %w", pm.ID, ledger.ErrAlreadyExists))
	}

	pm.Builtin = false
	s.paymentMethods = append(s.paymentMethods, pm)

	return pm, nil
}

func (s *Store) UpdatePaymentMethod(_ context.Context, pm ledger.PaymentMethod) (ledger.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.paymentMethods, pm.ID, paymentMethodID)
	if i < 0 {
		return ledger.PaymentMethod{}, ledger.WrapRepo("updating payment method", fmt.Errorf("payment method %s: %w", pm.ID, ledger.ErrNotFound))
	}

	if s.paymentMethods[i].Builtin {
		return ledger.PaymentMethod{}, ledger.WrapRepo("updating payment method", fmt.Errorf("payment method %s: %w", pm.ID, ledger.ErrProtected))
	}

	s.paymentMethods[i] = pm

	return pm, nil
}

func (s *Store) DeletePaymentMethod(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.paymentMethods, id, paymentMethodID)
	if i < 0 {
		return ledger.WrapRepo("deleting payment method", fmt.Errorf("payment method %s: %w", id, ledger.ErrNotFound))
	}

	if s.paymentMethods[i].Builtin {
		return ledger.WrapRepo("deleting payment method", fmt.Errorf("payment method %s: %w", id, ledger.ErrProtected))
	}

	s.paymentMethods = slices.Delete(s.paymentMethods, i, i+1)

	return nil
}

func accountID(a ledger.Account) string              { return a.ID }
func categoryID(c ledger.Category) string            { return c.ID }
func paymentMethodID(pm ledger.PaymentMethod) string { return pm.ID }

func indexOf[T any](items []T, id string, key func(T) string) int {
	return slices.IndexFunc(items, func(it T) bool { return key(it) == id })
}
