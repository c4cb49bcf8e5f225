// internal/domain/report/category.go
package report

import "strings"

// NoneSentinel is the literal supervisors type when a section has nothing to report.
const NoneSentinel = "لا يوجد"

// Category is one of the three inspection sections of a visit.
type Category string

const (
	CategoryMaintenance Category = "maintenance"
	CategoryAC          Category = "ac"
	CategoryCleaning    Category = "cleaning"
)

// Categories lists the sections in sheet order.
var Categories = []Category{CategoryMaintenance, CategoryAC, CategoryCleaning}

// Title is the Arabic section name, also used as the sheet name.
func (c Category) Title() string {
	switch c {
	case CategoryMaintenance:
		return "الصيانة"
	case CategoryAC:
		return "التكييف"
	case CategoryCleaning:
		return "النظافة"
	}
	return string(c)
}

// HasObservation is true when note is neither blank nor the none sentinel.
func HasObservation(note string) bool {
	trimmed := strings.TrimSpace(note)
	return trimmed != "" && !strings.EqualFold(trimmed, NoneSentinel)
}

// DisplayNote substitutes the none sentinel for blank notes. Anything else,
// including a typed sentinel, is shown as written.
func DisplayNote(note string) string {
	if strings.TrimSpace(note) == "" {
		return NoneSentinel
	}
	return note
}
