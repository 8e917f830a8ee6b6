package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/pocket/internal/database"
	"github.com/MrJamesThe3rd/pocket/internal/matching"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) rebind(query string) string {
	if s.dialect == database.SQLite {
		return strings.ReplaceAll(query, "$", "?")
	}

	return query
}

func (s *Store) FindMatch(ctx context.Context, description string) (string, error) {
	query := s.rebind(`
		SELECT category_id
		FROM category_rules
		WHERE $1 LIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`)

	var category string

	err := s.db.QueryRowContext(ctx, query, description).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return category, nil
}

func (s *Store) SaveRule(ctx context.Context, rule matching.Rule) error {
	query := s.rebind(`
		INSERT INTO category_rules (pattern, category_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (pattern) DO UPDATE SET category_id = EXCLUDED.category_id, created_at = EXCLUDED.created_at
	`)

	_, err := s.db.ExecContext(ctx, query, rule.Pattern, rule.CategoryID, rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving rule: %w", err)
	}

	return nil
}

func (s *Store) ListRules(ctx context.Context) ([]matching.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT pattern, category_id, created_at FROM category_rules ORDER BY pattern ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []matching.Rule

	for rows.Next() {
		var r matching.Rule
		if err := rows.Scan(&r.Pattern, &r.CategoryID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return rules, nil
}
