package cases

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// caseIDLength matches the short opaque token format used for case
// ids: the first 8 characters of a random UUID.
const caseIDLength = 8

// Controller owns the authoritative in-memory State and its Store.
// Every mutation is serialized by a single mutex and follows the same
// cycle: clone the state, mutate the clone, save it, and only then
// adopt it. A failed save therefore leaves both the in-memory and the
// durable state untouched.
type Controller struct {
	mu    sync.Mutex
	store Store
	state State
}

// NewController loads the full state from the store. A CorruptError
// from Load must be treated as fatal by the caller.
func NewController(store Store) (*Controller, error) {
	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	state.Normalize()

	log.Info().
		Int("users", len(state.Users)).
		Int("sudo_users", len(state.SudoUsers)).
		Int("blacklist", len(state.Blacklist)).
		Int("reports", len(state.Reports)).
		Int("appeals", len(state.Appeals)).
		Msg("case state loaded")

	return &Controller{store: store, state: state}, nil
}

// Snapshot returns a copy of the current state for read-only use, such
// as access policy checks and broadcast targeting.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// collection returns the case collection for the given kind.
func collection(s *State, kind Kind) *[]Case {
	if kind == KindAppeal {
		return &s.Appeals
	}
	return &s.Reports
}

func idTaken(col []Case, id string) bool {
	for _, c := range col {
		if c.ID == id {
			return true
		}
	}
	return false
}

func newCaseID() string {
	return strings.ToLower(uuid.NewString()[:caseIDLength])
}

// Commit turns a finalized draft into a persisted case with a fresh
// unique id and Pending status, appended to the collection for kind.
func (c *Controller) Commit(kind Kind, d Draft) (Case, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state.Clone()
	col := collection(&next, kind)

	id := newCaseID()
	for idTaken(*col, id) {
		id = newCaseID()
	}

	cs := Case{
		ID:        id,
		Kind:      kind,
		SubjectID: d.SubjectID,
		Reason:    d.Reason,
		Evidence:  append([]string{}, d.Evidence...),
		ActorID:   d.ActorID,
		Status:    StatusPending,
	}
	*col = append(*col, cs)

	if err := c.store.Save(next); err != nil {
		return Case{}, err
	}
	c.state = next

	log.Info().
		Str("kind", string(kind)).
		Str("case_id", cs.ID).
		Int64("actor", cs.ActorID).
		Str("subject", cs.SubjectID).
		Int("evidence", len(cs.Evidence)).
		Msg("case committed")

	return cs, nil
}

// Decide sets a case's status per the decision and persists. Deciding
// an already decided case is permitted: the latest decision wins and
// is persisted again. This mirrors moderator re-decision being an
// explicit override, not an automatic transition.
func (c *Controller) Decide(kind Kind, caseID string, d Decision) (Case, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state.Clone()
	col := collection(&next, kind)

	idx := -1
	for i := range *col {
		if (*col)[i].ID == caseID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Case{}, fmt.Errorf("%s %s: %w", kind, caseID, ErrCaseNotFound)
	}

	(*col)[idx].Status = d.Status()

	if err := c.store.Save(next); err != nil {
		return Case{}, err
	}
	c.state = next

	log.Info().
		Str("kind", string(kind)).
		Str("case_id", caseID).
		Str("status", string(d.Status())).
		Msg("case decided")

	return (*col)[idx], nil
}

// Remove deletes a case from its collection regardless of status.
func (c *Controller) Remove(kind Kind, caseID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state.Clone()
	col := collection(&next, kind)

	idx := -1
	for i := range *col {
		if (*col)[i].ID == caseID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%s %s: %w", kind, caseID, ErrCaseNotFound)
	}

	*col = append((*col)[:idx], (*col)[idx+1:]...)

	if err := c.store.Save(next); err != nil {
		return err
	}
	c.state = next

	log.Info().
		Str("kind", string(kind)).
		Str("case_id", caseID).
		Msg("case removed")

	return nil
}

// ListByStatus returns cases of the given kind in insertion order. An
// empty status returns all of them.
func (c *Controller) ListByStatus(kind Kind, status Status) []Case {
	c.mu.Lock()
	defer c.mu.Unlock()

	col := collection(&c.state, kind)
	out := make([]Case, 0, len(*col))
	for _, cs := range *col {
		if status != "" && cs.Status != status {
			continue
		}
		cs.Evidence = append([]string{}, cs.Evidence...)
		out = append(out, cs)
	}
	return out
}

// EvidenceFor returns the evidence refs for a case. A case without
// evidence yields an empty slice, distinct from a missing case which
// yields ErrCaseNotFound.
func (c *Controller) EvidenceFor(kind Kind, caseID string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	col := collection(&c.state, kind)
	for _, cs := range *col {
		if cs.ID == caseID {
			return append([]string{}, cs.Evidence...), nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", kind, caseID, ErrCaseNotFound)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// mutateRoster runs the save-then-adopt cycle for roster changes.
// mutate reports false when the change is a no-op, in which case
// nothing is persisted.
func (c *Controller) mutateRoster(mutate func(*State) bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state.Clone()
	if !mutate(&next) {
		return false, nil
	}
	if err := c.store.Save(next); err != nil {
		return false, err
	}
	c.state = next
	return true, nil
}

// RegisterUser appends the user to the registry on first contact.
// Returns false when the user is already registered.
func (c *Controller) RegisterUser(userID int64) (bool, error) {
	return c.mutateRoster(func(s *State) bool {
		if containsID(s.Users, userID) {
			return false
		}
		s.Users = append(s.Users, userID)
		return true
	})
}

// AddSudo grants moderator privilege. Returns false when the user is
// already a sudo user.
func (c *Controller) AddSudo(userID int64) (bool, error) {
	return c.mutateRoster(func(s *State) bool {
		if containsID(s.SudoUsers, userID) {
			return false
		}
		s.SudoUsers = append(s.SudoUsers, userID)
		return true
	})
}

// RemoveSudo revokes moderator privilege. Returns false when the user
// was not a sudo user.
func (c *Controller) RemoveSudo(userID int64) (bool, error) {
	return c.mutateRoster(func(s *State) bool {
		for i, v := range s.SudoUsers {
			if v == userID {
				s.SudoUsers = append(s.SudoUsers[:i], s.SudoUsers[i+1:]...)
				return true
			}
		}
		return false
	})
}

// Blacklist bars a user from filing new cases. Returns false when the
// user is already blacklisted.
func (c *Controller) Blacklist(userID int64) (bool, error) {
	return c.mutateRoster(func(s *State) bool {
		if containsID(s.Blacklist, userID) {
			return false
		}
		s.Blacklist = append(s.Blacklist, userID)
		return true
	})
}

// Unblacklist lifts the filing bar. Returns false when the user was
// not blacklisted.
func (c *Controller) Unblacklist(userID int64) (bool, error) {
	return c.mutateRoster(func(s *State) bool {
		for i, v := range s.Blacklist {
			if v == userID {
				s.Blacklist = append(s.Blacklist[:i], s.Blacklist[i+1:]...)
				return true
			}
		}
		return false
	})
}
