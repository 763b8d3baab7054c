package models

// StudyPeriod represents one of the four study periods in an academic year.
type StudyPeriod string

// Study period constants
const (
	PeriodP1 StudyPeriod = "P1"
	PeriodP2 StudyPeriod = "P2"
	PeriodP3 StudyPeriod = "P3"
	PeriodP4 StudyPeriod = "P4"
)

// IsValid reports whether the period is one of the four known study periods.
func (p StudyPeriod) IsValid() bool {
	switch p {
	case PeriodP1, PeriodP2, PeriodP3, PeriodP4:
		return true
	}
	return false
}
