package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/htlin222/gkahoot/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogSource loads the question catalog from Postgres instead of a CSV
// upload, for deployments that manage the question list centrally. Only the
// catalog lives here; computed stats stay in process memory.
type CatalogSource struct {
	pool *pgxpool.Pool
}

func NewCatalogSource(pool *pgxpool.Pool) *CatalogSource {
	return &CatalogSource{pool: pool}
}

func (s *CatalogSource) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT "index", link, ans FROM questions ORDER BY "index"`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.Index, &q.Link, &q.Answer); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Link = strings.TrimSpace(q.Link)
		q.Answer = strings.ToUpper(strings.TrimSpace(q.Answer))
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrCatalogNoValidRows
	}
	return questions, nil
}
