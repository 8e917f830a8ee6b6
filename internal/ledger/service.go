package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	ListTransactions(ctx context.Context) ([]Transaction, error)
	InsertTransaction(ctx context.Context, tx Transaction) (Transaction, error)
	// DeleteTransactions removes all ids or none of them.
	DeleteTransactions(ctx context.Context, ids ...string) error

	ListAccounts(ctx context.Context) ([]Account, error)
	InsertAccount(ctx context.Context, acc Account) (Account, error)
	UpdateAccount(ctx context.Context, acc Account) (Account, error)
	DeleteAccount(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]Category, error)
	InsertCategory(ctx context.Context, c Category) (Category, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error)
	InsertPaymentMethod(ctx context.Context, pm PaymentMethod) (PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, pm PaymentMethod) (PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id string) error
}

// BatchInserter is implemented by stores that can insert several transactions
// as a single atomic write.
type BatchInserter interface {
	InsertTransactions(ctx context.Context, txs []Transaction) ([]Transaction, error)
}

// Notifier is told about every successful write.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Suggester proposes a category id for a description. It returns "" when it has no suggestion.
type Suggester interface {
	Suggest(ctx context.Context, description string) (string, error)
}

type EventKind string

const (
	EventTransactionCreated   EventKind = "transaction.created"
	EventTransactionsDeleted  EventKind = "transaction.deleted"
	EventTransferRecorded     EventKind = "transfer.recorded"
	EventAccountChanged       EventKind = "account.changed"
	EventCategoryChanged      EventKind = "category.changed"
	EventPaymentMethodChanged EventKind = "payment_method.changed"
)

// Event describes a change to the ledger.
type Event struct {
	Kind EventKind
	IDs  []string
	At   time.Time
}

type Service struct {
	repo      Repository
	notifier  Notifier
	suggester Suggester
	builder   *Builder
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithSuggester(sg Suggester) Option {
	return func(s *Service) { s.suggester = sg }
}

func WithBuilder(b *Builder) Option {
	return func(s *Service) { s.builder = b }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, builder: NewBuilder()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load reads every collection from the repository into a fresh State.
func (s *Service) Load(ctx context.Context) (*State, error) {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	methods, err := s.repo.ListPaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing payment methods: %w", err)
	}

	return &State{
		Transactions:   txs,
		Accounts:       accounts,
		Categories:     categories,
		PaymentMethods: methods,
		Filter:         Filter{AccountID: AllAccounts, Type: AllTypes},
	}, nil
}

// Summary loads the ledger and summarizes it under filter.
func (s *Service) Summary(ctx context.Context, filter Filter) (Summary, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return Summary{}, err
	}

	st.Filter = filter

	return Summarize(*st)
}

// ListTransactions returns the transactions matching filter, newest first.
func (s *Service) ListTransactions(ctx context.Context, filter Filter) ([]Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return SortByDateDesc(FilterTransactions(txs, filter)), nil
}

type CreateParams struct {
	Description   string
	Amount        int64
	Type          Type
	Category      string
	Date          time.Time
	PaymentMethod string
	AccountID     string
}

// CreateTransaction validates params against the current reference data and stores a new transaction.
// An empty category is filled from the suggester, falling back to "other".
func (s *Service) CreateTransaction(ctx context.Context, params CreateParams) (*Transaction, error) {
	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if err := CheckAmount(params.Amount); err != nil {
		return nil, err
	}

	if !params.Type.Valid() {
		return nil, ErrInvalidType
	}

	if params.AccountID == "" {
		params.AccountID = DefaultAccountID
	}

	if params.Category == "" {
		params.Category = s.suggestCategory(ctx, params.Description)
	}

	if err := s.checkReferences(ctx, params); err != nil {
		return nil, err
	}

	tx, err := s.repo.InsertTransaction(ctx, Transaction{
		ID:            s.builder.NewID(),
		CreatedAt:     s.builder.Now(),
		Description:   strings.TrimSpace(params.Description),
		Amount:        params.Amount,
		Type:          params.Type,
		Category:      params.Category,
		Date:          DateOnly(params.Date),
		PaymentMethod: params.PaymentMethod,
		AccountID:     params.AccountID,
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, EventTransactionCreated, tx.ID)

	return &tx, nil
}

func (s *Service) suggestCategory(ctx context.Context, description string) string {
	if s.suggester == nil || strings.TrimSpace(description) == "" {
		return CategoryOther
	}

	suggested, err := s.suggester.Suggest(ctx, description)
	if err != nil {
		slog.WarnContext(ctx, "category suggestion failed", "error", err)
		return CategoryOther
	}

	if suggested == "" {
		return CategoryOther
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil || !containsID(categories, suggested, func(c Category) string { return c.ID }) {
		slog.WarnContext(ctx, "suggested category unavailable", "category", suggested, "error", err)
		return CategoryOther
	}

	return suggested
}

func (s *Service) checkReferences(ctx context.Context, params CreateParams) error {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	if _, ok := findAccount(accounts, params.AccountID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, params.AccountID)
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	if !containsID(categories, params.Category, func(c Category) string { return c.ID }) {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, params.Category)
	}

	if params.PaymentMethod == "" {
		return nil
	}

	methods, err := s.repo.ListPaymentMethods(ctx)
	if err != nil {
		return fmt.Errorf("listing payment methods: %w", err)
	}

	if !containsID(methods, params.PaymentMethod, func(pm PaymentMethod) string { return pm.ID }) {
		return fmt.Errorf("%w: %s", ErrUnknownPaymentMethod, params.PaymentMethod)
	}

	return nil
}

// DeleteTransaction removes a transaction. Deleting either leg of a transfer
// removes both legs in one atomic call.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}

	var target *Transaction

	for i := range txs {
		if txs[i].ID == id {
			target = &txs[i]
			break
		}
	}

	if target == nil {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}

	ids := []string{target.ID}

	if target.IsTransferLeg() {
		for _, t := range txs {
			if t.TransferID == target.TransferID && t.ID != target.ID {
				ids = append(ids, t.ID)
			}
		}
	}

	if err := s.repo.DeleteTransactions(ctx, ids...); err != nil {
		return err
	}

	s.notify(ctx, EventTransactionsDeleted, ids...)

	return nil
}

// Transfer builds a transfer pair and persists both legs or neither. When the
// store cannot insert both legs atomically they are written one after the other
// and the first leg is deleted again if the second fails; the caller then gets a
// *TransferPartiallyFailedError.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	existing, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	t, err := s.builder.Build(accounts, existing, req)
	if err != nil {
		return nil, err
	}

	if batch, ok := s.repo.(BatchInserter); ok {
		saved, err := batch.InsertTransactions(ctx, t.Legs())
		if err != nil {
			return nil, err
		}

		if len(saved) != 2 {
			return nil, fmt.Errorf("inserting transfer %s: store returned %d legs", t.TransferID, len(saved))
		}

		t.Expense, t.Income = saved[0], saved[1]
	} else {
		if err := s.insertLegs(ctx, &t); err != nil {
			return nil, err
		}
	}

	s.notify(ctx, EventTransferRecorded, t.Expense.ID, t.Income.ID)

	return &t, nil
}

func (s *Service) insertLegs(ctx context.Context, t *Transfer) error {
	expense, err := s.repo.InsertTransaction(ctx, t.Expense)
	if err != nil {
		return err
	}

	income, err := s.repo.InsertTransaction(ctx, t.Income)
	if err == nil {
		t.Expense, t.Income = expense, income
		return nil
	}

	partial := &TransferPartiallyFailedError{
		TransferID:     t.TransferID,
		PersistedLegID: expense.ID,
		Err:            err,
	}

	if derr := s.repo.DeleteTransactions(ctx, expense.ID); derr != nil {
		slog.ErrorContext(ctx, "failed to roll back transfer leg",
			"transfer_id", t.TransferID, "leg_id", expense.ID, "error", derr)

		partial.Err = errors.Join(err, derr)

		return partial
	}

	partial.Compensated = true

	return partial
}

func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

type AccountParams struct {
	ID             string // Derived from Name when empty
	Name           string
	InitialBalance int64
}

func (s *Service) CreateAccount(ctx context.Context, params AccountParams) (*Account, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	if err := CheckAmount(params.InitialBalance); err != nil {
		return nil, err
	}

	id := params.ID
	if id == "" {
		id = Slugify(name)
	}

	if err := CheckID(id); err != nil {
		return nil, fmt.Errorf("account %q: %w", id, err)
	}

	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	if _, dup := findAccount(accounts, id); dup {
		return nil, fmt.Errorf("account %s: %w", id, ErrAlreadyExists)
	}

	acc, err := s.repo.InsertAccount(ctx, Account{
		ID:             id,
		Name:           name,
		InitialBalance: params.InitialBalance,
		CreatedAt:      s.builder.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, EventAccountChanged, acc.ID)

	return &acc, nil
}

type AccountUpdate struct {
	Name           *string
	InitialBalance *int64
}

func (s *Service) UpdateAccount(ctx context.Context, id string, upd AccountUpdate) (*Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	acc, ok := findAccount(accounts, id)
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, ErrEmptyName
		}

		acc.Name = name
	}

	if upd.InitialBalance != nil {
		if err := CheckAmount(*upd.InitialBalance); err != nil {
			return nil, err
		}

		acc.InitialBalance = *upd.InitialBalance
	}

	saved, err := s.repo.UpdateAccount(ctx, acc)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, EventAccountChanged, saved.ID)

	return &saved, nil
}

// DeleteAccount removes an account. The default account is protected, and an
// account still referenced by transactions is refused so that no balance is lost.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if id == DefaultAccountID {
		return fmt.Errorf("account %s: %w", id, ErrProtected)
	}

	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}

	for _, t := range txs {
		if t.AccountID == id {
			return fmt.Errorf("account %s: %w", id, ErrInUse)
		}
	}

	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		return err
	}

	s.notify(ctx, EventAccountChanged, id)

	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

type CategoryParams struct {
	ID    string // Derived from Name when empty
	Name  string
	Color string
}

func (s *Service) CreateCategory(ctx context.Context, params CategoryParams) (*Category, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	id := params.ID
	if id == "" {
		id = Slugify(name)
	}

	if err := CheckID(id); err != nil {
		return nil, fmt.Errorf("category %q: %w", id, err)
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	if containsID(categories, id, func(c Category) string { return c.ID }) {
		return nil, fmt.Errorf("category %s: %w", id, ErrAlreadyExists)
	}

	color := params.Color
	if color == "" {
		color = "#cccccc"
	}

	c, err := s.repo.InsertCategory(ctx, Category{ID: id, Name: name, Color: color})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, EventCategoryChanged, c.ID)

	return &c, nil
}

type CategoryUpdate struct {
	Name  *string
	Color *string
}

func (s *Service) UpdateCategory(ctx context.Context, id string, upd CategoryUpdate) (*Category, error) {
	if IsBuiltinCategory(id) {
		return nil, fmt.Errorf("category %s: %w", id, ErrProtected)
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	var current *Category

	for i := range categories {
		if categories[i].ID == id {
			current = &categories[i]
			break
		}
	}

	if current == nil {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, ErrEmptyName
		}

		current.Name = name
	}

	if upd.Color != nil {
		current.Color = *upd.Color
	}

	saved, err := s.repo.UpdateCategory(ctx, *current)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, EventCategoryChanged, saved.ID)

	return &saved, nil
}

// DeleteCategory removes a user-defined category. Transactions referring to it are left untouched.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if IsBuiltinCategory(id) {
		return fmt.Errorf("category %s: %w", id, ErrProtected)
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.notify(ctx, EventCategoryChanged, id)

	return nil
}

func (s *Service) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx)
}

func (s *Service) CreatePaymentMethod(ctx context.Context, name string) (*PaymentMethod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	pm, err := s.repo.InsertPaymentMethod(ctx, PaymentMethod{ID: s.builder.NewID(), Name: name})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, EventPaymentMethodChanged, pm.ID)

	return &pm, nil
}

func (s *Service) UpdatePaymentMethod(ctx context.Context, id, name string) (*PaymentMethod, error) {
	if IsBuiltinPaymentMethod(id) {
		return nil, fmt.Errorf("payment method %s: %w", id, ErrProtected)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	pm, err := s.repo.UpdatePaymentMethod(ctx, PaymentMethod{ID: id, Name: name})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, EventPaymentMethodChanged, pm.ID)

	return &pm, nil
}

func (s *Service) DeletePaymentMethod(ctx context.Context, id string) error {
	if IsBuiltinPaymentMethod(id) {
		return fmt.Errorf("payment method %s: %w", id, ErrProtected)
	}

	if err := s.repo.DeletePaymentMethod(ctx, id); err != nil {
		return err
	}

	s.notify(ctx, EventPaymentMethodChanged, id)

	return nil
}

func (s *Service) notify(ctx context.Context, kind EventKind, ids ...string) {
	if s.notifier == nil {
		return
	}

	e := Event{Kind: kind, IDs: ids, At: s.builder.Now()}
	if err := s.notifier.Notify(ctx, e); err != nil {
		slog.WarnContext(ctx, "failed to publish ledger event", "kind", kind, "error", err)
	}
}

func containsID[T any](items []T, id string, key func(T) string) bool {
	for _, it := range items {
		if key(it) == id {
			return true
		}
	}

	return false
}
