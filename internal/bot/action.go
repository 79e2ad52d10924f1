package bot

import (
	"strings"

	"fedcase/internal/cases"
)

// ActionVerb is a moderation action requested via an inline button.
type ActionVerb string

const (
	ActionApprove  ActionVerb = "approve"
	ActionReject   ActionVerb = "reject"
	ActionEvidence ActionVerb = "evidence"
	ActionDelete   ActionVerb = "delete"
)

// Action is a parsed moderation callback token of shape verb_kind_id.
type Action struct {
	Verb   ActionVerb
	Kind   cases.Kind
	CaseID string
}

// parseAction parses a moderation callback token. Tokens that do not
// match the closed verb and kind sets, or carry an empty id, are
// rejected at this boundary.
func parseAction(token string) (Action, bool) {
	parts := strings.SplitN(token, "_", 3)
	if len(parts) != 3 || parts[2] == "" {
		return Action{}, false
	}

	verb := ActionVerb(parts[0])
	switch verb {
	case ActionApprove, ActionReject, ActionEvidence, ActionDelete:
	default:
		return Action{}, false
	}

	kind := cases.Kind(parts[1])
	if !kind.Valid() {
		return Action{}, false
	}

	return Action{Verb: verb, Kind: kind, CaseID: parts[2]}, true
}

// parseEvidenceChoice parses the kind_evidence_yes|no tokens attached
// to the evidence prompt.
func parseEvidenceChoice(token string) (kind cases.Kind, yes, ok bool) {
	parts := strings.Split(token, "_")
	if len(parts) != 3 || parts[1] != "evidence" {
		return "", false, false
	}
	kind = cases.Kind(parts[0])
	if !kind.Valid() {
		return "", false, false
	}
	switch parts[2] {
	case "yes":
		return kind, true, true
	case "no":
		return kind, false, true
	default:
		return "", false, false
	}
}
