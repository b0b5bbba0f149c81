package model

// EventType identifies a scored gamification action. The set is closed:
// anything outside it is rejected at the HTTP boundary with a 422 before it
// reaches the points ledger.
type EventType string

const (
	EventNewReport      EventType = "new_report"
	EventConfirmIssue   EventType = "confirm_issue"
	EventReportResolved EventType = "report_resolved"
)

// eventPoints maps each event kind to its fixed award.
var eventPoints = map[EventType]int64{
	EventNewReport:      10,
	EventConfirmIssue:   5,
	EventReportResolved: 20,
}

// Points returns the fixed point value for a recognized event type.
// ok is false for anything outside the closed set.
func (e EventType) Points() (points int64, ok bool) {
	points, ok = eventPoints[e]
	return points, ok
}

// Valid reports whether e is one of the recognized event kinds.
func (e EventType) Valid() bool {
	_, ok := eventPoints[e]
	return ok
}
