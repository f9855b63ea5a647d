package reconcile

// CompletedEvent is published once per finished reconciliation run with
// the full report attached. Dry runs publish it too.
type CompletedEvent struct {
	Result *Report
}

func NewCompletedEvent(result *Report) *CompletedEvent {
	return &CompletedEvent{Result: result}
}
