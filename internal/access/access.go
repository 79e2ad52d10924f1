// Package access decides whether an actor may invoke privileged or
// restricted actions. All checks are pure functions over the actor id
// and a state snapshot; they are total and never error.
package access

import "fedcase/internal/cases"

// Policy holds the static owner id. The owner is a process-wide
// constant from configuration, never stored.
type Policy struct {
	OwnerID int64
}

// IsOwner reports whether the actor is the configured owner.
func (p Policy) IsOwner(actorID int64) bool {
	return actorID == p.OwnerID
}

// IsSudo reports whether the actor holds moderator privilege. The
// owner is implicitly sudo.
func (p Policy) IsSudo(actorID int64, s cases.State) bool {
	if p.IsOwner(actorID) {
		return true
	}
	for _, id := range s.SudoUsers {
		if id == actorID {
			return true
		}
	}
	return false
}

// IsBlacklisted reports whether the actor is barred from filing cases.
func (p Policy) IsBlacklisted(actorID int64, s cases.State) bool {
	for _, id := range s.Blacklist {
		if id == actorID {
			return true
		}
	}
	return false
}
