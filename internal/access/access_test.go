package access

import (
	"testing"

	"fedcase/internal/cases"

	"github.com/stretchr/testify/assert"
)

const ownerID int64 = 7923505251

func testState() cases.State {
	s := cases.EmptyState()
	s.SudoUsers = []int64{555}
	s.Blacklist = []int64{666}
	return s
}

func TestPolicy_IsOwner(t *testing.T) {
	p := Policy{OwnerID: ownerID}
	assert.True(t, p.IsOwner(ownerID))
	assert.False(t, p.IsOwner(555))
	assert.False(t, p.IsOwner(0))
}

func TestPolicy_IsSudo(t *testing.T) {
	p := Policy{OwnerID: ownerID}
	s := testState()

	assert.True(t, p.IsSudo(555, s), "listed sudo user")
	assert.True(t, p.IsSudo(ownerID, s), "owner is implicitly sudo")
	assert.False(t, p.IsSudo(999, s))
	assert.False(t, p.IsSudo(666, s), "blacklisted does not imply sudo")
}

func TestPolicy_IsBlacklisted(t *testing.T) {
	p := Policy{OwnerID: ownerID}
	s := testState()

	assert.True(t, p.IsBlacklisted(666, s))
	assert.False(t, p.IsBlacklisted(555, s))
	assert.False(t, p.IsBlacklisted(ownerID, s))
}

func TestPolicy_TotalOnEmptyState(t *testing.T) {
	p := Policy{OwnerID: ownerID}
	var zero cases.State

	assert.False(t, p.IsSudo(1, zero))
	assert.False(t, p.IsBlacklisted(1, zero))
}
