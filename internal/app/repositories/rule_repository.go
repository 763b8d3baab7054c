package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kthdsp/teachalloc/internal/db"
)

// RuleRepository reads the operator-tunable allocation rules.
type RuleRepository struct {
	db db.Querier
}

// NewRuleRepository creates a new RuleRepository bound to the given querier.
func NewRuleRepository(q db.Querier) *RuleRepository {
	return &RuleRepository{db: q}
}

// FindMaxInstancesPerPeriod returns the configured maximum number of
// distinct course instances per employee and period. found is false when no
// rule row exists; the engine then applies its configured default.
func (r *RuleRepository) FindMaxInstancesPerPeriod(ctx context.Context) (limit int, found bool, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT max_instances_per_period FROM allocation_rule ORDER BY rule_id LIMIT 1`).
		Scan(&limit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("error reading allocation rule: %w", err)
	}

	return limit, true, nil
}
