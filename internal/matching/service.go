package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

var ErrEmptyPattern = errors.New("pattern must not be empty")

// Rule maps every description containing Pattern to a category.
type Rule struct {
	Pattern    string
	CategoryID string
	CreatedAt  time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the category of the longest pattern contained in the
	// lower-cased description, or "" when no rule applies.
	FindMatch(ctx context.Context, description string) (string, error)
	SaveRule(ctx context.Context, rule Rule) error
	ListRules(ctx context.Context) ([]Rule, error)
}

// Categories lists the categories a rule may point at. *ledger.Service satisfies it.
type Categories interface {
	ListCategories(ctx context.Context) ([]ledger.Category, error)
}

type Service struct {
	repo       Repository
	categories Categories
}

func NewService(repo Repository, categories Categories) *Service {
	return &Service{repo: repo, categories: categories}
}

// Normalize lower-cases and trims a description or pattern so that matching is case-insensitive.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Suggest returns the category learned for description, or "" when none matches.
func (s *Service) Suggest(ctx context.Context, description string) (string, error) {
	norm := Normalize(description)
	if norm == "" {
		return "", nil
	}

	category, err := s.repo.FindMatch(ctx, norm)
	if err != nil {
		return "", fmt.Errorf("finding match: %w", err)
	}

	return category, nil
}

// Learn remembers that descriptions containing pattern belong to categoryID,
// replacing any earlier rule for the same pattern.
func (s *Service) Learn(ctx context.Context, pattern, categoryID string) (*Rule, error) {
	pattern = Normalize(pattern)
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	known := false

	for _, c := range categories {
		if c.ID == categoryID {
			known = true
			break
		}
	}

	if !known {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownCategory, categoryID)
	}

	rule := Rule{Pattern: pattern, CategoryID: categoryID, CreatedAt: time.Now().UTC()}
	if err := s.repo.SaveRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("saving rule: %w", err)
	}

	return &rule, nil
}

func (s *Service) Rules(ctx context.Context) ([]Rule, error) {
	return s.repo.ListRules(ctx)
}
