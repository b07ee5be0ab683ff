package fraud

// Action is the detector's verdict on a transfer.
const (
	ActionAllow  = "allow"
	ActionFlag   = "flag"
	ActionReview = "review"
	ActionBlock  = "block"
)

// severity orders actions so rule results can be merged by taking the
// worst verdict.
var severity = map[string]int{
	ActionAllow:  0,
	ActionFlag:   1,
	ActionReview: 2,
	ActionBlock:  3,
}

// Result is the outcome of screening one transfer. Score accumulates
// across rules; a high enough aggregate escalates the action even when no
// single rule demanded review.
type Result struct {
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
	Score  int    `json:"score"`
}

func Allow() Result { return Result{Action: ActionAllow} }
func Flag(reason string, score int) Result {
	return Result{Action: ActionFlag, Reason: reason, Score: score}
}
func Review(reason string, score int) Result {
	return Result{Action: ActionReview, Reason: reason, Score: score}
}
func Block(reason string, score int) Result {
	return Result{Action: ActionBlock, Reason: reason, Score: score}
}

// Blocked reports whether the transfer must be rejected outright.
func (r Result) Blocked() bool { return r.Action == ActionBlock }

// NeedsReview reports whether the transfer must be held for manual review.
func (r Result) NeedsReview() bool { return r.Action == ActionReview }

// merge combines two rule results: worst action wins, scores add, and the
// first non-empty reason at the winning severity is kept.
func merge(a, b Result) Result {
	out := a
	if severity[b.Action] > severity[a.Action] {
		out.Action = b.Action
		out.Reason = b.Reason
	}
	if out.Reason == "" {
		out.Reason = b.Reason
	}
	out.Score = a.Score + b.Score
	return out
}
