package domain

// EventKind is the fixed vocabulary of order events the replay scan cares
// about. Kinds outside this set are carried through the scan unchanged and
// simply do not move any of the rolling indices.
type EventKind string

const (
	EventPlaceOrder   EventKind = "PLACE_ORDER"
	EventCanceled     EventKind = "CANCELED"
	EventIssueCreated EventKind = "ISSUE_CREATED"
	EventAddPromotion EventKind = "ADD_PROMOTION"
	EventComplete     EventKind = "COMPLETE"
	EventReportFailed EventKind = "REPORT_FAILED"
)

// DecisionOutcome is the result of one replay scan.
type DecisionOutcome string

const (
	DecisionReplay DecisionOutcome = "REPLAY"
	DecisionIgnore DecisionOutcome = "IGNORE"
)

// ReplayDecision pairs the outcome with the order and the failure document it
// was computed for. Computed fresh per scan; never persisted.
type ReplayDecision struct {
	Outcome    DecisionOutcome
	OrderID    string
	DocumentID string
}
