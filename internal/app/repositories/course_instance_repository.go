package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kthdsp/teachalloc/internal/app/models"
	"github.com/kthdsp/teachalloc/internal/db"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

// instanceColumns are the columns every course instance read selects,
// joined with the course layout for the course name.
const instanceColumns = `ci.instance_id, ci.course_code, cl.course_name, ci.study_year,
	ci.study_period, ci.num_students, ci.layout_version_no`

// CourseInstanceRepository handles database access for course instances.
type CourseInstanceRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewCourseInstanceRepository creates a new CourseInstanceRepository bound to
// the given querier (pool or transaction).
func NewCourseInstanceRepository(q db.Querier) *CourseInstanceRepository {
	return &CourseInstanceRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindAll retrieves all course instances, newest study year first.
func (r *CourseInstanceRepository) FindAll(ctx context.Context) ([]*models.CourseInstance, error) {
	sql, args, err := r.sb.Select("ci.instance_id", "ci.course_code", "cl.course_name",
		"ci.study_year", "ci.study_period", "ci.num_students", "ci.layout_version_no").
		From("course_instance ci").
		Join("course_layout cl ON cl.course_code = ci.course_code").
		OrderBy("ci.study_year DESC", "ci.study_period", "ci.course_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course instance query: %w", err)
	}

	return r.queryInstances(ctx, sql, args...)
}

// FindByYear retrieves course instances for one study year.
func (r *CourseInstanceRepository) FindByYear(ctx context.Context, year int) ([]*models.CourseInstance, error) {
	sql, args, err := r.sb.Select("ci.instance_id", "ci.course_code", "cl.course_name",
		"ci.study_year", "ci.study_period", "ci.num_students", "ci.layout_version_no").
		From("course_instance ci").
		Join("course_layout cl ON cl.course_code = ci.course_code").
		Where(squirrel.Eq{"ci.study_year": year}).
		OrderBy("ci.study_period", "ci.course_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course instance query: %w", err)
	}

	return r.queryInstances(ctx, sql, args...)
}

// FindByID retrieves the course instance with the given ID. With lock set,
// the row is read FOR NO KEY UPDATE so concurrent writers on the same
// instance block until this transaction ends. The clause must stay literal
// SQL; it names the locked relation explicitly.
func (r *CourseInstanceRepository) FindByID(ctx context.Context, instanceID string, lock bool) (*models.CourseInstance, error) {
	query := `
		SELECT ` + instanceColumns + `
		FROM course_instance ci
		JOIN course_layout cl ON cl.course_code = ci.course_code
		WHERE ci.instance_id = $1`
	if lock {
		query += ` FOR NO KEY UPDATE OF ci`
	}

	var instance models.CourseInstance
	err := r.db.QueryRow(ctx, query, instanceID).Scan(
		&instance.InstanceID,
		&instance.CourseCode,
		&instance.CourseName,
		&instance.StudyYear,
		&instance.StudyPeriod,
		&instance.NumStudents,
		&instance.LayoutVersionNo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("error retrieving course instance %s: %w", instanceID, err)
	}

	return &instance, nil
}

// UpdateStudents writes back the student count of an instance. Callers must
// hold the instance lock taken by FindByID with lock set, so the
// read-modify-write cannot lose a concurrent update.
func (r *CourseInstanceRepository) UpdateStudents(ctx context.Context, instance *models.CourseInstance) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE course_instance SET num_students = $1 WHERE instance_id = $2`,
		instance.NumStudents, instance.InstanceID)
	if err != nil {
		return fmt.Errorf("error updating course instance %s: %w", instance.InstanceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInstanceNotFound
	}
	return nil
}

func (r *CourseInstanceRepository) queryInstances(ctx context.Context, sql string, args ...any) ([]*models.CourseInstance, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing course instances: %w", err)
	}
	defer rows.Close()

	var instances []*models.CourseInstance
	for rows.Next() {
		var instance models.CourseInstance
		if err := rows.Scan(
			&instance.InstanceID,
			&instance.CourseCode,
			&instance.CourseName,
			&instance.StudyYear,
			&instance.StudyPeriod,
			&instance.NumStudents,
			&instance.LayoutVersionNo,
		); err != nil {
			return nil, err
		}
		instances = append(instances, &instance)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return instances, nil
}
