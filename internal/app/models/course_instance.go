package models

import (
	"fmt"

	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

// CourseInstance represents one offering of a course in a specific year and
// study period. The student count is only ever changed through
// IncreaseStudents; callers never overwrite it directly.
type CourseInstance struct {
	InstanceID      string      `json:"instanceId"`
	CourseCode      string      `json:"courseCode"`
	CourseName      string      `json:"courseName"`
	StudyYear       int         `json:"studyYear"`
	StudyPeriod     StudyPeriod `json:"studyPeriod"`
	NumStudents     int         `json:"numStudents"`
	LayoutVersionNo int         `json:"layoutVersionNo"`
}

// IncreaseStudents adds count students to the instance. A negative count is
// rejected as invalid input, never silently ignored.
func (ci *CourseInstance) IncreaseStudents(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: student increase must not be negative, got %d",
			apperrors.ErrValidationFailed, count)
	}
	ci.NumStudents += count
	return nil
}
