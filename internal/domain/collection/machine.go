// internal/domain/collection/machine.go
package collection

import (
	"fmt"
	"strings"
	"time"

	"school_inspection_bot/internal/domain/period"
	"school_inspection_bot/internal/domain/report"
)

// Button labels and callback data exchanged with the transport.
const (
	ManualNameLabel    = "✍️ كتابة يدوياً"
	CancelLabel        = "إلغاء"
	TodayLabel         = "📅 اليوم"
	YesterdayLabel     = "📅 أمس"
	ManualDateLabel    = "✍️ إدخال تاريخ"
	ConfirmLabel       = "✅ اعتماد وإرسال"
	CancelReviewLabel  = "❌ إلغاء"
	ConfirmData        = "confirm_report"
	CancelReviewData   = "cancel_report"
	notesHint          = "(إذا لم يكن هناك ملاحظات، اكتب: لا يوجد)"
	dateFormatExample  = "أدخل التاريخ بالصيغة: YYYY-MM-DD\nمثال: 2024-12-17"
	msgCancelled       = "تم إلغاء العملية"
	msgReportCancelled = "❌ تم إلغاء التقرير"
	msgCommitted       = "✅ تم اعتماد التقرير بنجاح!"
	msgSessionClosed   = "لا توجد عملية جارية. أرسل /report لبدء تقرير جديد"
)

// Machine drives the visit-report conversation. It holds only configuration;
// every transition is a pure function of its inputs.
type Machine struct {
	supervisorNames []string
}

func NewMachine(supervisorNames []string) *Machine {
	names := make([]string, 0, len(supervisorNames))
	for _, n := range supervisorNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return &Machine{supervisorNames: names}
}

// Start opens a new session at SupervisorName.
func (m *Machine) Start(submitterID int64, now time.Time) (Session, Reply) {
	s := Session{
		SubmitterID: submitterID,
		State:       StateSupervisorName,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	return s, m.Prompt(s)
}

// Transition applies ev to s. today feeds the "today"/"yesterday" quick choices.
// The returned session is a copy; s is never modified. On ActionCommit the
// session is already in StateCommitted and the caller must persist the draft.
func (m *Machine) Transition(s Session, ev Event, today time.Time) (Session, Reply, Action) {
	if s.State.Terminal() {
		return s, Reply{Text: msgSessionClosed, RemoveKeyboard: true}, ActionNone
	}
	if ev.Kind == EventCancel {
		return cancel(s, msgCancelled)
	}

	switch s.State {
	case StateSupervisorName:
		return m.onSupervisorName(s, ev)
	case StateVisitDate:
		return m.onVisitDate(s, ev, today)
	case StateSchoolName:
		if strings.TrimSpace(ev.Payload) == "" {
			return s, m.Prompt(s), ActionNone
		}
		s.Draft.SchoolName = ev.Payload
		return m.advance(s, StateMaintenanceNotes)
	case StateMaintenanceNotes, StateACNotes, StateCleaningNotes:
		return m.onNote(s, ev)
	case StateReviewAndConfirm:
		return m.onReview(s, ev)
	}
	return s, m.Prompt(s), ActionNone
}

func (m *Machine) onSupervisorName(s Session, ev Event) (Session, Reply, Action) {
	text := strings.TrimSpace(ev.Payload)
	switch {
	case text == CancelLabel:
		return cancel(s, msgCancelled)
	case text == ManualNameLabel:
		s.ManualEntry = true
		return s, m.Prompt(s), ActionNone
	case text == "":
		return s, m.Prompt(s), ActionNone
	}
	s.Draft.SupervisorName = text
	return m.advance(s, StateVisitDate)
}

func (m *Machine) onVisitDate(s Session, ev Event, today time.Time) (Session, Reply, Action) {
	text := strings.TrimSpace(ev.Payload)
	day := period.DateOf(today)

	switch text {
	case TodayLabel:
		s.Draft.VisitDate = day
	case YesterdayLabel:
		s.Draft.VisitDate = day.AddDate(0, 0, -1)
	case ManualDateLabel:
		s.ManualEntry = true
		return s, m.Prompt(s), ActionNone
	default:
		d, err := time.Parse(period.DateLayout, text)
		if err != nil {
			return s, Reply{Text: "⚠️ صيغة تاريخ خاطئة. يرجى إدخال التاريخ بالصيغة: YYYY-MM-DD\nمثال: 2024-12-17"}, ActionNone
		}
		s.Draft.VisitDate = d
	}
	return m.advance(s, StateSchoolName)
}

// onNote stages free text verbatim; blank-looking notes are kept as typed.
func (m *Machine) onNote(s Session, ev Event) (Session, Reply, Action) {
	if ev.Payload == "" {
		return s, m.Prompt(s), ActionNone
	}
	switch s.State {
	case StateMaintenanceNotes:
		s.Draft.MaintenanceNotes = ev.Payload
		return m.advance(s, StateACNotes)
	case StateACNotes:
		s.Draft.ACNotes = ev.Payload
		return m.advance(s, StateCleaningNotes)
	default:
		s.Draft.CleaningNotes = ev.Payload
		return m.advance(s, StateReviewAndConfirm)
	}
}

func (m *Machine) onReview(s Session, ev Event) (Session, Reply, Action) {
	switch strings.TrimSpace(ev.Payload) {
	case ConfirmData, ConfirmLabel:
		if !s.Draft.Complete() {
			return s, m.Prompt(s), ActionNone
		}
		s.State = StateCommitted
		s.ManualEntry = false
		return s, Reply{Text: msgCommitted, RemoveKeyboard: true}, ActionCommit
	case CancelReviewData, CancelReviewLabel:
		return cancel(s, msgReportCancelled)
	}
	return s, m.Prompt(s), ActionNone
}

func (m *Machine) advance(s Session, next State) (Session, Reply, Action) {
	s.State = next
	s.ManualEntry = false
	return s, m.Prompt(s), ActionNone
}

func cancel(s Session, text string) (Session, Reply, Action) {
	s.State = StateCancelled
	s.Draft = Draft{}
	s.ManualEntry = false
	return s, Reply{Text: text, RemoveKeyboard: true}, ActionCancel
}

// Prompt renders the question for the session's current step.
func (m *Machine) Prompt(s Session) Reply {
	switch s.State {
	case StateSupervisorName:
		if s.ManualEntry {
			return Reply{Text: "اكتب اسم المشرف:", Choices: [][]Choice{{{Label: CancelLabel}}}}
		}
		return Reply{
			Text:    "📝 إرسال تقرير زيارة جديد\n\nالخطوة 1️⃣: اختر اسم المشرف",
			Choices: m.nameKeyboard(),
		}
	case StateVisitDate:
		if s.ManualEntry {
			return Reply{Text: dateFormatExample, RemoveKeyboard: true}
		}
		return Reply{
			Text: "الخطوة 2️⃣: اختر تاريخ الزيارة",
			Choices: [][]Choice{
				{{Label: TodayLabel}, {Label: YesterdayLabel}},
				{{Label: ManualDateLabel}},
			},
		}
	case StateSchoolName:
		return Reply{
			Text:           fmt.Sprintf("تاريخ الزيارة: %s\n\nالخطوة 3️⃣: أدخل اسم المدرسة", s.Draft.VisitDate.Format(period.DateLayout)),
			RemoveKeyboard: true,
		}
	case StateMaintenanceNotes:
		return Reply{Text: "الخطوة 4️⃣: أدخل ملاحظات الصيانة\n" + notesHint}
	case StateACNotes:
		return Reply{Text: "الخطوة 5️⃣: أدخل ملاحظات التكييف\n" + notesHint}
	case StateCleaningNotes:
		return Reply{Text: "الخطوة 6️⃣: أدخل ملاحظات النظافة\n" + notesHint}
	case StateReviewAndConfirm:
		return Reply{
			Text:   ReviewText(s.Draft),
			Inline: true,
			Choices: [][]Choice{{
				{Label: ConfirmLabel, Data: ConfirmData},
				{Label: CancelReviewLabel, Data: CancelReviewData},
			}},
		}
	}
	return Reply{Text: msgSessionClosed, RemoveKeyboard: true}
}

// nameKeyboard lays supervisor names out two per row, then the manual entry row.
func (m *Machine) nameKeyboard() [][]Choice {
	rows := make([][]Choice, 0, len(m.supervisorNames)/2+2)
	for i := 0; i < len(m.supervisorNames); i += 2 {
		row := []Choice{{Label: m.supervisorNames[i]}}
		if i+1 < len(m.supervisorNames) {
			row = append(row, Choice{Label: m.supervisorNames[i+1]})
		}
		rows = append(rows, row)
	}
	return append(rows, []Choice{{Label: ManualNameLabel}})
}

// ReviewText summarises a draft for the confirmation step.
func ReviewText(d Draft) string {
	var b strings.Builder
	b.WriteString("📋 مراجعة التقرير:\n\n")
	fmt.Fprintf(&b, "👤 المشرف: %s\n", d.SupervisorName)
	fmt.Fprintf(&b, "📅 التاريخ: %s\n", d.VisitDate.Format(period.DateLayout))
	fmt.Fprintf(&b, "🏫 المدرسة: %s\n\n", d.SchoolName)
	fmt.Fprintf(&b, "🔧 الصيانة:\n%s\n\n", d.MaintenanceNotes)
	fmt.Fprintf(&b, "❄️ التكييف:\n%s\n\n", d.ACNotes)
	fmt.Fprintf(&b, "🧹 النظافة:\n%s", d.CleaningNotes)
	b.WriteString("\n\nهل تريد اعتماد وإرسال التقرير؟")
	return b.String()
}

// Announcement is the message posted to the shared group once r is committed.
func Announcement(r report.VisitReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 تقرير زيارة: %s\n", r.VisitDate.Format(period.DateLayout))
	fmt.Fprintf(&b, "👤 المشرف: %s\n", r.SupervisorName)
	fmt.Fprintf(&b, "🏫 المدرسة: %s\n\n", r.SchoolName)
	fmt.Fprintf(&b, "🔧 الصيانة:\n%s\n\n", r.MaintenanceNotes)
	fmt.Fprintf(&b, "❄️ التكييف:\n%s\n\n", r.ACNotes)
	fmt.Fprintf(&b, "🧹 النظافة:\n%s", r.CleaningNotes)
	return b.String()
}
