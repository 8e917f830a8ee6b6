package ledger

import (
	"time"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

const (
	// DefaultAccountID is the account that always exists and cannot be deleted.
	DefaultAccountID = "default"

	// CategoryTransfer is the reserved category carried by both legs of a transfer.
	CategoryTransfer = "transfer"

	// CategoryOther is used when no category was given and none could be suggested.
	CategoryOther = "other"
)

// Transaction represents a single income or expense attributed to an account.
// DateOnly returns midnight UTC of t's calendar day as seen in t's own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type Transaction struct {
	ID            string
	CreatedAt     time.Time
	Description   string
	Amount        int64 // Amount in cents, never negative; the sign is carried by Type
	Type          Type
	Category      string
	Date          time.Time
	PaymentMethod string
	AccountID     string
	TransferID    string // Shared by both legs of a transfer, empty otherwise
}

// IsTransferLeg reports whether the transaction is one side of a transfer pair.
func (t Transaction) IsTransferLeg() bool {
	return t.TransferID != ""
}

// Account holds funds; its balance is derived from InitialBalance and the transaction history.
type Account struct {
	ID             string
	Name           string
	InitialBalance int64 // Opening balance in cents, may be negative
	CreatedAt      time.Time
}

// Category classifies transactions. Built-in categories cannot be deleted.
type Category struct {
	ID      string
	Name    string
	Color   string
	Builtin bool
}

// PaymentMethod describes how a transaction was paid. Built-in methods cannot be deleted.
type PaymentMethod struct {
	ID      string
	Name    string
	Builtin bool
}

// DefaultAccount returns the distinguished account seeded into every store.
func DefaultAccount() Account {
	return Account{ID: DefaultAccountID, Name: "Carteira"}
}

// BuiltinCategories returns the fixed category set, in display order.
func BuiltinCategories() []Category {
	return []Category{
		{ID: "food", Name: "Alimentação", Color: "#ef4444", Builtin: true},
		{ID: "rent", Name: "Aluguel", Color: "#3b82f6", Builtin: true},
		{ID: "transport", Name: "Transporte", Color: "#f59e0b", Builtin: true},
		{ID: "entertainment", Name: "Lazer", Color: "#8b5cf6", Builtin: true},
		{ID: "health", Name: "Saúde", Color: "#10b981", Builtin: true},
		{ID: "salary", Name: "Salário", Color: "#22c55e", Builtin: true},
		{ID: CategoryOther, Name: "Outros", Color: "#6b7280", Builtin: true},
		{ID: CategoryTransfer, Name: "Transferência", Color: "#0ea5e9", Builtin: true},
	}
}

// BuiltinPaymentMethods returns the fixed payment method set.
func BuiltinPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: "cash", Name: "Dinheiro", Builtin: true},
		{ID: "debit-card", Name: "Cartão de Débito", Builtin: true},
		{ID: "credit-card", Name: "Cartão de Crédito", Builtin: true},
		{ID: "pix", Name: "Pix", Builtin: true},
		{ID: "bank-transfer", Name: "Transferência Bancária", Builtin: true},
	}
}

// IsBuiltinCategory reports whether id names one of the built-in categories.
func IsBuiltinCategory(id string) bool {
	for _, c := range BuiltinCategories() {
		if c.ID == id {
			return true
		}
	}

	return false
}

// IsBuiltinPaymentMethod reports whether id names one of the built-in payment methods.
func IsBuiltinPaymentMethod(id string) bool {
	for _, pm := range BuiltinPaymentMethods() {
		if pm.ID == id {
			return true
		}
	}

	return false
}
