package report

import (
	"school_inspection_bot/internal/domain/period"
)

// SectionCounts holds, per category, how many reports carry an observation.
type SectionCounts struct {
	Maintenance int
	AC          int
	Cleaning    int
}

// Get returns the count for c.
func (s SectionCounts) Get(c Category) int {
	switch c {
	case CategoryMaintenance:
		return s.Maintenance
	case CategoryAC:
		return s.AC
	case CategoryCleaning:
		return s.Cleaning
	}
	return 0
}

// CountSections tallies observations in reports without modifying them.
func CountSections(reports []VisitReport) SectionCounts {
	var counts SectionCounts
	for _, r := range reports {
		if HasObservation(r.MaintenanceNotes) {
			counts.Maintenance++
		}
		if HasObservation(r.ACNotes) {
			counts.AC++
		}
		if HasObservation(r.CleaningNotes) {
			counts.Cleaning++
		}
	}
	return counts
}

// Summary is the aggregated report set for one resolved period.
// Reports are ordered by (VisitDate, SupervisorName).
type Summary struct {
	Period  period.Period
	Range   period.Range
	Reports []VisitReport
	Counts  SectionCounts
}

// Artifact is a rendered, deliverable file.
type Artifact struct {
	FileName string
	Content  []byte
}
