package replay

import "github.com/plateful/tax-reporter/internal/domain"

// EventScan is the folded view of one order's event stream: the position of
// the last occurrence of each event class, in stream order. An index of -1
// means the class never occurred.
type EventScan struct {
	LastFailure   int
	LastComplete  int
	LastAvailable int
	IsHQ          bool
}

// NewEventScan returns a scan with every index unset.
func NewEventScan() EventScan {
	return EventScan{LastFailure: -1, LastComplete: -1, LastAvailable: -1}
}

// availableEvents are the lifecycle events that would have triggered a fresh
// report of their own. A failure older than any of them is already superseded.
var availableEvents = map[string]struct{}{
	string(domain.EventPlaceOrder):   {},
	string(domain.EventCanceled):     {},
	string(domain.EventIssueCreated): {},
	string(domain.EventAddPromotion): {},
}

// Observe folds one event into the scan. Position i is the event's index in
// the ascending-by-timestamp stream.
func (s *EventScan) Observe(i int, event, errorCode, brandCategory, failureCode string) {
	if event == string(domain.EventComplete) {
		s.LastComplete = i
		s.LastAvailable = i
	}
	if errorCode == failureCode {
		s.LastFailure = i
	}
	if _, ok := availableEvents[event]; ok {
		s.LastAvailable = i
	}
	if domain.BrandCategory(brandCategory).IsHeadquarters() {
		s.IsHQ = true
	}
}

// Decide resolves the scan into a replay outcome. A failure is only worth
// replaying when no later lifecycle event has superseded it; headquarters
// orders additionally require the failure to postdate the last completion,
// because their reports fire on completion.
func Decide(s EventScan) domain.DecisionOutcome {
	if s.LastFailure < 0 {
		return domain.DecisionIgnore
	}

	if s.IsHQ {
		if s.LastFailure >= s.LastComplete && s.LastFailure >= s.LastAvailable {
			return domain.DecisionReplay
		}
		return domain.DecisionIgnore
	}

	if s.LastFailure >= s.LastAvailable {
		return domain.DecisionReplay
	}
	return domain.DecisionIgnore
}
