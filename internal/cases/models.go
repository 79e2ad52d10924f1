// Package cases implements the moderation case lifecycle: transient
// drafts accumulated per chat session, and persisted report/appeal
// cases that moderators approve, reject, or delete.
package cases

// Kind discriminates the two case collections.
type Kind string

const (
	KindReport Kind = "report"
	KindAppeal Kind = "appeal"
)

// Valid reports whether k is a known case kind.
func (k Kind) Valid() bool {
	return k == KindReport || k == KindAppeal
}

// Status represents the moderation state of a case.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Decision is a moderator verdict on a pending case.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status returns the case status a decision resolves to.
func (d Decision) Status() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// Case is a persisted report or appeal. A case is immutable after
// commit except for Status; Evidence only grows while the case is
// still a draft.
type Case struct {
	ID        string   `json:"id"`
	Kind      Kind     `json:"kind"`
	SubjectID string   `json:"subject_user_id"`
	Reason    string   `json:"reason"`
	Evidence  []string `json:"evidence"`
	ActorID   int64    `json:"actor_user_id"`
	Status    Status   `json:"status"`
}

// Draft is an in-progress case. It lives only in memory, keyed by the
// filer's chat session, and becomes a Case on commit.
type Draft struct {
	Kind      Kind
	SubjectID string
	Reason    string
	Evidence  []string
	ActorID   int64
}
