package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocket/internal/database"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
	"github.com/MrJamesThe3rd/pocket/internal/ledger/store"
)

// stores returns one migrated store per available dialect. PostgreSQL is only
// exercised when POCKET_TEST_POSTGRES_DSN points at a disposable database.
func stores(t *testing.T) map[database.Dialect]*store.Store {
	t.Helper()

	out := make(map[database.Dialect]*store.Store)

	path := filepath.Join(t.TempDir(), "pocket.db")
	require.NoError(t, database.Migrate(database.SQLite, path))

	db, err := database.Open(database.SQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	out[database.SQLite] = store.New(db, database.SQLite)

	if dsn := os.Getenv("POCKET_TEST_POSTGRES_DSN"); dsn != "" {
		require.NoError(t, database.Migrate(database.Postgres, dsn))

		pg, err := database.Open(database.Postgres, dsn)
		require.NoError(t, err)

		t.Cleanup(func() {
			pg.Close()
			require.NoError(t, database.Rollback(database.Postgres, dsn))
		})

		out[database.Postgres] = store.New(pg, database.Postgres)
	}

	return out
}

func TestStore_Seed(t *testing.T) {
	for dialect, s := range stores(t) {
		t.Run(string(dialect), func(t *testing.T) {
			ctx := context.Background()

			accounts, err := s.ListAccounts(ctx)
			require.NoError(t, err)
			require.Len(t, accounts, 1)
			assert.Equal(t, ledger.DefaultAccountID, accounts[0].ID)

			categories, err := s.ListCategories(ctx)
			require.NoError(t, err)
			assert.Equal(t, ledger.BuiltinCategories(), categories)

			methods, err := s.ListPaymentMethods(ctx)
			require.NoError(t, err)
			assert.Equal(t, ledger.BuiltinPaymentMethods(), methods)
		})
	}
}

func TestStore_TransactionRoundTrip(t *testing.T) {
	for dialect, s := range stores(t) {
		t.Run(string(dialect), func(t *testing.T) {
			ctx := context.Background()

			in := ledger.Transaction{
				ID:            "tx-1",
				CreatedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
				Description:   "Mercado",
				Amount:        4590,
				Type:          ledger.TypeExpense,
				Category:      "food",
				Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				PaymentMethod: "pix",
				AccountID:     ledger.DefaultAccountID,
			}

			saved, err := s.InsertTransaction(ctx, in)
			require.NoError(t, err)
			assert.Equal(t, in, saved)

			txs, err := s.ListTransactions(ctx)
			require.NoError(t, err)
			require.Len(t, txs, 1)

			got := txs[0]
			assert.Equal(t, in.ID, got.ID)
			assert.Equal(t, in.Amount, got.Amount)
			assert.Equal(t, in.Type, got.Type)
			assert.Equal(t, in.Category, got.Category)
			assert.Equal(t, in.PaymentMethod, got.PaymentMethod)
			assert.Empty(t, got.TransferID)
			assert.True(t, in.Date.Equal(got.Date))
			assert.True(t, in.CreatedAt.Equal(got.CreatedAt))

			_, err = s.InsertTransaction(ctx, in)
			var repoErr *ledger.RepositoryError
			assert.ErrorAs(t, err, &repoErr, "duplicate ids are rejected by the primary key")
		})
	}
}

func TestStore_InsertTransactions_Atomic(t *testing.T) {
	for dialect, s := range stores(t) {
		t.Run(string(dialect), func(t *testing.T) {
			ctx := context.Background()

			_, err := s.InsertTransaction(ctx, ledger.Transaction{
				ID: "taken", Amount: 1, Type: ledger.TypeIncome, Category: "other", AccountID: ledger.DefaultAccountID,
			})
			require.NoError(t, err)

			_, err = s.InsertTransactions(ctx, []ledger.Transaction{
				{ID: "leg-a", Amount: 100, Type: ledger.TypeExpense, Category: ledger.CategoryTransfer, AccountID: ledger.DefaultAccountID, TransferID: "tr"},
				{ID: "taken", Amount: 100, Type: ledger.TypeIncome, Category: ledger.CategoryTransfer, AccountID: ledger.DefaultAccountID, TransferID: "tr"},
			})
			require.Error(t, err)

			txs, err := s.ListTransactions(ctx)
			require.NoError(t, err)
			assert.Len(t, txs, 1, "the first leg must have been rolled back")

			err = s.DeleteTransactions(ctx, "taken", "missing")
			assert.ErrorIs(t, err, ledger.ErrNotFound)

			txs, err = s.ListTransactions(ctx)
			require.NoError(t, err)
			assert.Len(t, txs, 1, "a failed delete must remove nothing")

			require.NoError(t, s.DeleteTransactions(ctx, "taken"))
		})
	}
}

func TestStore_ReferenceData(t *testing.T) {
	for dialect, s := range stores(t) {
		t.Run(string(dialect), func(t *testing.T) {
			ctx := context.Background()

			acc, err := s.InsertAccount(ctx, ledger.Account{ID: "savings", Name: "Poupança", InitialBalance: 10000})
			require.NoError(t, err)

			updated, err := s.UpdateAccount(ctx, ledger.Account{ID: "savings", Name: "Reserva", InitialBalance: -50})
			require.NoError(t, err)
			assert.True(t, acc.CreatedAt.Equal(updated.CreatedAt))
			assert.Equal(t, int64(-50), updated.InitialBalance)

			_, err = s.UpdateAccount(ctx, ledger.Account{ID: "ghost"})
			assert.ErrorIs(t, err, ledger.ErrNotFound)

			assert.ErrorIs(t, s.DeleteAccount(ctx, ledger.DefaultAccountID), ledger.ErrProtected)
			require.NoError(t, s.DeleteAccount(ctx, "savings"))
			assert.ErrorIs(t, s.DeleteAccount(ctx, "savings"), ledger.ErrNotFound)

			_, err = s.InsertCategory(ctx, ledger.Category{ID: "pets", Name: "Pets", Color: "#aa00aa"})
			require.NoError(t, err)

			_, err = s.UpdateCategory(ctx, ledger.Category{ID: "pets", Name: "Animais", Color: "#000000"})
			require.NoError(t, err)

			_, err = s.UpdateCategory(ctx, ledger.Category{ID: "food", Name: "Comida"})
			assert.ErrorIs(t, err, ledger.ErrProtected)

			categories, err := s.ListCategories(ctx)
			require.NoError(t, err)
			assert.Equal(t, ledger.Category{ID: "pets", Name: "Animais", Color: "#000000"}, categories[len(categories)-1])

			assert.ErrorIs(t, s.DeleteCategory(ctx, ledger.CategoryTransfer), ledger.ErrProtected)
			assert.ErrorIs(t, s.DeleteCategory(ctx, "ghost"), ledger.ErrNotFound)
			require.NoError(t, s.DeleteCategory(ctx, "pets"))

			_, err = s.InsertPaymentMethod(ctx, ledger.PaymentMethod{ID: "pm-1", Name: "Vale"})
			require.NoError(t, err)

			_, err = s.UpdatePaymentMethod(ctx, ledger.PaymentMethod{ID: "pm-1", Name: "Vale Refeição"})
			require.NoError(t, err)

			assert.ErrorIs(t, s.DeletePaymentMethod(ctx, "cash"), ledger.ErrProtected)
			require.NoError(t, s.DeletePaymentMethod(ctx, "pm-1"))
		})
	}
}

func TestStore_ServiceTransfer(t *testing.T) {
	for dialect, s := range stores(t) {
		t.Run(string(dialect), func(t *testing.T) {
			ctx := context.Background()
			svc := ledger.NewService(s)

			_, err := svc.CreateAccount(ctx, ledger.AccountParams{ID: "savings", Name: "Poupança", InitialBalance: 10000})
			require.NoError(t, err)

			_, err = svc.Transfer(ctx, ledger.TransferRequest{
				FromAccountID: ledger.DefaultAccountID,
				ToAccountID:   "savings",
				Amount:        5000,
				Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			})
			require.NoError(t, err)

			sum, err := svc.Summary(ctx, ledger.Filter{})
			require.NoError(t, err)
			assert.Equal(t, int64(10000), sum.Balance)

			require.Len(t, sum.Accounts, 2)

			for _, b := range sum.Accounts {
				switch b.Account.ID {
				case ledger.DefaultAccountID:
					assert.Equal(t, int64(-5000), b.Balance)
				case "savings":
					assert.Equal(t, int64(15000), b.Balance)
				}
			}
		})
	}
}
