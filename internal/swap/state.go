package swap

// State is one phase of the swap lifecycle. Transitions run strictly
// forward; any failure lands in StateFailed and only Reset leaves it.
type State int

const (
	// StateIdle means no swap is in progress.
	StateIdle State = iota

	// StateQuoting means a quote request is in flight.
	StateQuoting

	// StateQuoteReady means a quote is held and the swap can proceed.
	StateQuoteReady

	// StateApproving means an allowance transaction is pending.
	StateApproving

	// StateExecuting means the swap transaction is pending.
	StateExecuting

	// StateCompleted means the swap transaction was mined successfully.
	StateCompleted

	// StateFailed means a step failed; the cause is retained.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQuoting:
		return "quoting"
	case StateQuoteReady:
		return "quote_ready"
	case StateApproving:
		return "approving"
	case StateExecuting:
		return "executing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
