// Package store is the database/sql implementation of ledger.Repository. The
// same queries serve PostgreSQL and SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/pocket/internal/database"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
	now     func() time.Time
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect, now: time.Now}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// rebind rewrites $N placeholders into SQLite's ?N form.
func (s *Store) rebind(query string) string {
	if s.dialect == database.SQLite {
		return strings.ReplaceAll(query, "$", "?")
	}

	return query
}

// Expected column order: id, created_at, description, amount, type, category, date, payment_method, account_id, transfer_id
func scanTransaction(sc scanner) (ledger.Transaction, error) {
	var tx ledger.Transaction

	var typeStr string

	if err := sc.Scan(
		&tx.ID, &tx.CreatedAt, &tx.Description, &tx.Amount, &typeStr, &tx.Category,
		&tx.Date, &tx.PaymentMethod, &tx.AccountID, &tx.TransferID,
	); err != nil {
		return ledger.Transaction{}, err
	}

	tx.Type = ledger.Type(typeStr)

	return tx, nil
}

const selectTransactionColumns = `
	id, created_at, description, amount, type, category, date, payment_method, account_id, transfer_id
`

func (s *Store) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions ORDER BY date ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, ledger.WrapRepo("listing transactions", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, ledger.WrapRepo("scanning transaction", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, ledger.WrapRepo("iterating transactions", err)
	}

	return txs, nil
}

func (s *Store) insertTransaction(ctx context.Context, ex execer, tx ledger.Transaction) (ledger.Transaction, error) {
	query := s.rebind(`
		INSERT INTO transactions (id, created_at, description, amount, type, category, date, payment_method, account_id, transfer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now()
	}

	tx.CreatedAt = tx.CreatedAt.UTC()
	tx.Date = tx.Date.UTC()

	_, err := ex.ExecContext(ctx, query,
		tx.ID,
		tx.CreatedAt,
		tx.Description,
		tx.Amount,
		string(tx.Type),
		tx.Category,
		tx.Date,
		tx.PaymentMethod,
		tx.AccountID,
		tx.TransferID,
	)
	if err != nil {
		return ledger.Transaction{}, ledger.WrapRepo("inserting transaction", err)
	}

	return tx, nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	return s.insertTransaction(ctx, s.db, tx)
}

// InsertTransactions writes all rows inside one database transaction.
func (s *Store) InsertTransactions(ctx context.Context, txs []ledger.Transaction) ([]ledger.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, ledger.WrapRepo("beginning transaction", err)
	}
	defer dbTx.Rollback()

	out := make([]ledger.Transaction, 0, len(txs))

	for _, tx := range txs {
		saved, err := s.insertTransaction(ctx, dbTx, tx)
		if err != nil {
			return nil, err
		}

		out = append(out, saved)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, ledger.WrapRepo("committing transaction", err)
	}

	return out, nil
}

// DeleteTransactions removes every id or none: a missing id aborts the whole delete.
func (s *Store) DeleteTransactions(ctx context.Context, ids ...string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.WrapRepo("beginning transaction", err)
	}
	defer dbTx.Rollback()

	query := s.rebind(`DELETE FROM transactions WHERE id = $1`)

	for _, id := range ids {
		res, err := dbTx.ExecContext(ctx, query, id)
		if err != nil {
			return ledger.WrapRepo("deleting transaction", err)
		}

		if err := expectRow(res, "transaction", id); err != nil {
			return ledger.WrapRepo("deleting transaction", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return ledger.WrapRepo("committing transaction", err)
	}

	return nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, initial_balance, created_at FROM accounts ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, ledger.WrapRepo("listing accounts", err)
	}
	defer rows.Close()

	var accounts []ledger.Account

	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.InitialBalance, &a.CreatedAt); err != nil {
			return nil, ledger.WrapRepo("scanning account", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, ledger.WrapRepo("iterating accounts", err)
	}

	return accounts, nil
}

func (s *Store) InsertAccount(ctx context.Context, acc ledger.Account) (ledger.Account, error) {
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = s.now()
	}

	acc.CreatedAt = acc.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO accounts (id, name, initial_balance, created_at) VALUES ($1, $2, $3, $4)`),
		acc.ID, acc.Name, acc.InitialBalance, acc.CreatedAt,
	)
	if err != nil {
		return ledger.Account{}, ledger.WrapRepo("inserting account", err)
	}

	return acc, nil
}

func (s *Store) UpdateAccount(ctx context.Context, acc ledger.Account) (ledger.Account, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE accounts SET name = $1, initial_balance = $2 WHERE id = $3`),
		acc.Name, acc.InitialBalance, acc.ID,
	)
	if err != nil {
		return ledger.Account{}, ledger.WrapRepo("updating account", err)
	}

	if err := expectRow(res, "account", acc.ID); err != nil {
		return ledger.Account{}, ledger.WrapRepo("updating account", err)
	}

	err = s.db.QueryRowContext(ctx, s.rebind(`SELECT created_at FROM accounts WHERE id = $1`), acc.ID).Scan(&acc.CreatedAt)
	if err != nil {
		return ledger.Account{}, ledger.WrapRepo("reading account", err)
	}

	return acc, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if id == ledger.DefaultAccountID {
		return ledger.WrapRepo("deleting account", fmt.Errorf("account %s: %w", id, ledger.ErrProtected))
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM accounts WHERE id = $1`), id)
	if err != nil {
		return ledger.WrapRepo("deleting account", err)
	}

	return ledger.WrapRepo("deleting account", expectRow(res, "account", id))
}

func (s *Store) ListCategories(ctx context.Context) ([]ledger.Category, error) {
	// Built-ins first in seed order, then user categories by name.
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color, builtin FROM categories`)
	if err != nil {
		return nil, ledger.WrapRepo("listing categories", err)
	}
	defer rows.Close()

	var categories []ledger.Category

	for rows.Next() {
		var c ledger.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Builtin); err != nil {
			return nil, ledger.WrapRepo("scanning category", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, ledger.WrapRepo("iterating categories", err)
	}

	return sortByBuiltinOrder(categories, builtinCategoryOrder, func(c ledger.Category) (string, string, bool) {
		return c.ID, c.Name, c.Builtin
	}), nil
}

func (s *Store) InsertCategory(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	c.Builtin = false

	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO categories (id, name, color, builtin) VALUES ($1, $2, $3, $4)`),
		c.ID, c.Name, c.Color, c.Builtin,
	)
	if err != nil {
		return ledger.Category{}, ledger.WrapRepo("inserting category", err)
	}

	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE categories SET name = $1, color = $2 WHERE id = $3 AND builtin = FALSE`),
		c.Name, c.Color, c.ID,
	)
	if err != nil {
		return ledger.Category{}, ledger.WrapRepo("updating category", err)
	}

	if err := s.explainMiss(ctx, res, "categories", "category", c.ID); err != nil {
		return ledger.Category{}, ledger.WrapRepo("updating category", err)
	}

	c.Builtin = false

	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM categories WHERE id = $1 AND builtin = FALSE`), id)
	if err != nil {
		return ledger.WrapRepo("deleting category", err)
	}

	return ledger.WrapRepo("deleting category", s.explainMiss(ctx, res, "categories", "category", id))
}

func (s *Store) ListPaymentMethods(ctx context.Context) ([]ledger.PaymentMethod, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, builtin FROM payment_methods`)
	if err != nil {
		return nil, ledger.WrapRepo("listing payment methods", err)
	}
	defer rows.Close()

	var methods []ledger.PaymentMethod

	for rows.Next() {
		var pm ledger.PaymentMethod
		if err := rows.Scan(&pm.ID, &pm.Name, &pm.Builtin); err != nil {
			return nil, ledger.WrapRepo("scanning payment method", err)
		}

		methods = append(methods, pm)
	}

	if err := rows.Err(); err != nil {
		return nil, ledger.WrapRepo("iterating payment methods", err)
	}

	return sortByBuiltinOrder(methods, builtinPaymentMethodOrder, func(pm ledger.PaymentMethod) (string, string, bool) {
		return pm.ID, pm.Name, pm.Builtin
	}), nil
}

func (s *Store) InsertPaymentMethod(ctx context.Context, pm ledger.PaymentMethod) (ledger.PaymentMethod, error) {
	pm.Builtin = false

	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO payment_methods (id, name, builtin) VALUES ($1, $2, $3)`),
		pm.ID, pm.Name, pm.Builtin,
	)
	if err != nil {
		return ledger.PaymentMethod{}, ledger.WrapRepo("inserting payment method", err)
	}

	return pm, nil
}

func (s *Store) UpdatePaymentMethod(ctx context.Context, pm ledger.PaymentMethod) (ledger.PaymentMethod, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE payment_methods SET name = $1 WHERE id = $2 AND builtin = FALSE`),
		pm.Name, pm.ID,
	)
	if err != nil {
		return ledger.PaymentMethod{}, ledger.WrapRepo("updating payment method", err)
	}

	if err := s.explainMiss(ctx, res, "payment_methods", "payment method", pm.ID); err != nil {
		return ledger.PaymentMethod{}, ledger.WrapRepo("updating payment method", err)
	}

	pm.Builtin = false

	return pm, nil
}

func (s *Store) DeletePaymentMethod(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM payment_methods WHERE id = $1 AND builtin = FALSE`), id)
	if err != nil {
		return ledger.WrapRepo("deleting payment method", err)
	}

	return ledger.WrapRepo("deleting payment method", s.explainMiss(ctx, res, "payment_methods", "payment method", id))
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ledger.ErrNotFound)
	}

	return nil
}

// explainMiss turns a write that matched no row into ErrProtected when the row
// exists but is built in, and ErrNotFound otherwise.
func (s *Store) explainMiss(ctx context.Context, res sql.Result, table, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n > 0 {
		return nil
	}

	var exists int

	err = s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM `+table+` WHERE id = $1`), id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ledger.ErrNotFound)
	}

	if err != nil {
		return err
	}

	return fmt.Errorf("%s %s: %w", kind, id, ledger.ErrProtected)
}
