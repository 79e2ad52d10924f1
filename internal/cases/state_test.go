package cases

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_CloneIsDeep(t *testing.T) {
	s := EmptyState()
	s.Users = []int64{1, 2}
	s.Reports = []Case{{
		ID: "abc12345", Kind: KindReport, SubjectID: "222",
		Reason: "spam", Evidence: []string{"a.jpg"}, ActorID: 111, Status: StatusPending,
	}}

	c := s.Clone()
	c.Users[0] = 99
	c.Reports[0].Evidence[0] = "tampered"
	c.Reports[0].Status = StatusApproved

	assert.Equal(t, int64(1), s.Users[0])
	assert.Equal(t, "a.jpg", s.Reports[0].Evidence[0])
	assert.Equal(t, StatusPending, s.Reports[0].Status)
}

func TestState_NormalizeFillsNilCollections(t *testing.T) {
	var s State
	s.Reports = []Case{{ID: "abc12345", Kind: KindReport}}
	s.Normalize()

	assert.NotNil(t, s.Users)
	assert.NotNil(t, s.SudoUsers)
	assert.NotNil(t, s.Blacklist)
	assert.NotNil(t, s.Appeals)
	assert.NotNil(t, s.Reports[0].Evidence)
}

func TestState_EmptyCollectionsEncodeAsArrays(t *testing.T) {
	s := EmptyState()
	data, err := json.Marshal(s)
	require.NoError(t, err)

	// Empty sets round-trip as [], never null.
	assert.JSONEq(t, `{
		"users": [], "sudo_users": [], "blacklist": [],
		"reports": [], "appeals": []
	}`, string(data))
}

func TestDecision_Status(t *testing.T) {
	assert.Equal(t, StatusApproved, DecisionApprove.Status())
	assert.Equal(t, StatusRejected, DecisionReject.Status())
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("0123456789"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12a"))
	assert.False(t, IsDigits("-12"))
	assert.False(t, IsDigits("12 3"))
}
