package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/MrJamesThe3rd/pocket/internal/matching"
)

type Store struct {
	mu    sync.RWMutex
	rules map[string]matching.Rule
}

func New() *Store {
	return &Store{rules: make(map[string]matching.Rule)}
}

func (s *Store) FindMatch(_ context.Context, description string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best matching.Rule

	for _, r := range s.rules {
		if !strings.Contains(description, r.Pattern) {
			continue
		}

		switch {
		case len(r.Pattern) > len(best.Pattern):
			best = r
		case len(r.Pattern) == len(best.Pattern) && r.CreatedAt.After(best.CreatedAt):
			best = r
		}
	}

	return best.CategoryID, nil
}

func (s *Store) SaveRule(_ context.Context, rule matching.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules[rule.Pattern] = rule

	return nil
}

func (s *Store) ListRules(_ context.Context) ([]matching.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]matching.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		rules = append(rules, r)
	}

	slices.SortFunc(rules, func(a, b matching.Rule) int { return strings.Compare(a.Pattern, b.Pattern) })

	return rules, nil
}
