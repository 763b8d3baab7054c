package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CreateDefaultData inserts the baseline activity catalog, the allocation
// rule and a small demo data set. Every statement is idempotent so the
// seeder can run on every startup.
func CreateDefaultData(ctx context.Context, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data...")

	if err := seedActivities(ctx, pool); err != nil {
		return fmt.Errorf("failed to seed teaching activities: %w", err)
	}
	if err := seedRule(ctx, pool); err != nil {
		return fmt.Errorf("failed to seed allocation rule: %w", err)
	}
	if err := seedDemoData(ctx, pool); err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	lgr.Info().Msg("Default data in place")
	return nil
}

func seedActivities(ctx context.Context, pool *pgxpool.Pool) error {
	activities := []struct {
		name      string
		factor    string
		isDerived bool
	}{
		{"Lecture", "1.00", false},
		{"Exercise", "1.00", false},
		{"Lab", "1.00", false},
		{"Seminar", "1.50", false},
		{"Examination", "1.00", true},
		{"Administration", "1.00", true},
	}

	for _, a := range activities {
		_, err := pool.Exec(ctx, `
			INSERT INTO teaching_activity (activity_name, factor, is_derived)
			VALUES ($1, $2, $3)
			ON CONFLICT (activity_name) DO NOTHING`,
			a.name, a.factor, a.isDerived)
		if err != nil {
			return err
		}
	}
	return nil
}

func seedRule(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO allocation_rule (max_instances_per_period)
		SELECT 4
		WHERE NOT EXISTS (SELECT 1 FROM allocation_rule)`)
	return err
}

func seedDemoData(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`INSERT INTO course_layout (course_code, course_name, version_no, credits)
		 VALUES ('IV1351', 'Data Storage Paradigms', 1, 7.5),
		        ('ID1212', 'Network Programming', 1, 7.5)
		 ON CONFLICT (course_code) DO NOTHING`,

		`INSERT INTO course_instance (instance_id, course_code, study_year, study_period, num_students, layout_version_no)
		 VALUES ('IV1351-2025-P2', 'IV1351', 2025, 'P2', 120, 1),
		        ('ID1212-2025-P2', 'ID1212', 2025, 'P2', 90, 1),
		        ('IV1351-2026-P2', 'IV1351', 2026, 'P2', 0, 1)
		 ON CONFLICT (instance_id) DO NOTHING`,

		`INSERT INTO person (personal_number, first_name, last_name)
		 VALUES ('198005121234', 'Anna', 'Lindqvist'),
		        ('197511093456', 'Erik', 'Bergstrom')
		 ON CONFLICT (personal_number) DO NOTHING`,

		`INSERT INTO employee (personal_number)
		 SELECT pn FROM (VALUES ('198005121234'), ('197511093456')) AS v(pn)
		 WHERE NOT EXISTS (SELECT 1 FROM employee e WHERE e.personal_number = v.pn)`,

		`INSERT INTO employee_salary_history (employee_id, version_no, hourly_rate)
		 SELECT e.employee_id, 1, 600.00
		 FROM employee e
		 WHERE NOT EXISTS (
		     SELECT 1 FROM employee_salary_history sh WHERE sh.employee_id = e.employee_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
