package cases

import (
	"regexp"
	"strings"
	"sync"
)

var digitsRe = regexp.MustCompile(`^[0-9]+$`)

// IsDigits reports whether s is a non-empty decimal digit string, the
// accepted form for user ids in command arguments.
func IsDigits(s string) bool {
	return digitsRe.MatchString(s)
}

// DraftManager holds at most one in-progress draft per chat session.
// A session may hold a report draft or an appeal draft, never both.
type DraftManager struct {
	mu     sync.Mutex
	drafts map[int64]*Draft
}

// NewDraftManager creates an empty draft manager.
func NewDraftManager() *DraftManager {
	return &DraftManager{drafts: make(map[int64]*Draft)}
}

// Start creates a draft for the session. The subject id must be
// digits-only and the reason non-empty. If the session already holds a
// draft of either kind, Start fails with DraftInProgressError rather
// than silently discarding accumulated evidence.
func (m *DraftManager) Start(sessionID int64, kind Kind, subjectID, reason string) error {
	if !IsDigits(subjectID) {
		return &ValidationError{Field: "user_id", Message: "must be a numeric user id"}
	}
	if strings.TrimSpace(reason) == "" {
		return &ValidationError{Field: "reason", Message: "must not be empty"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.drafts[sessionID]; ok {
		return &DraftInProgressError{Kind: existing.Kind}
	}

	m.drafts[sessionID] = &Draft{
		Kind:      kind,
		SubjectID: subjectID,
		Reason:    reason,
		Evidence:  []string{},
		ActorID:   sessionID,
	}
	return nil
}

// AppendEvidence adds a stored file reference to the session's draft,
// preserving submission order.
func (m *DraftManager) AppendEvidence(sessionID int64, fileRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[sessionID]
	if !ok {
		return ErrNoActiveDraft
	}
	d.Evidence = append(d.Evidence, fileRef)
	return nil
}

// Active returns the kind of the session's draft, if any.
func (m *DraftManager) Active(sessionID int64) (Kind, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[sessionID]
	if !ok {
		return "", false
	}
	return d.Kind, true
}

// Finalize removes the session's draft and returns it as a value ready
// for commit. It never fails once a draft exists.
func (m *DraftManager) Finalize(sessionID int64) (Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[sessionID]
	if !ok {
		return Draft{}, ErrNoActiveDraft
	}
	delete(m.drafts, sessionID)

	out := *d
	out.Evidence = append([]string{}, d.Evidence...)
	return out, nil
}

// Discard removes the session's draft if one exists. Idempotent.
func (m *DraftManager) Discard(sessionID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, sessionID)
}
