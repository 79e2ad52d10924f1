package cases

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore keeps the snapshot in memory and can be told to fail saves.
type memStore struct {
	state    State
	saves    int
	failSave bool
}

func (s *memStore) Load() (State, error) { return s.state.Clone(), nil }

func (s *memStore) Save(state State) error {
	if s.failSave {
		return &PersistError{Op: "write snapshot", Err: errors.New("disk full")}
	}
	s.state = state.Clone()
	s.saves++
	return nil
}

func (s *memStore) Close() error { return nil }

func newTestController(t *testing.T) (*Controller, *memStore) {
	t.Helper()
	ms := &memStore{state: EmptyState()}
	ctrl, err := NewController(ms)
	require.NoError(t, err)
	return ctrl, ms
}

func draft(kind Kind, subject string, actor int64, evidence ...string) Draft {
	if evidence == nil {
		evidence = []string{}
	}
	return Draft{Kind: kind, SubjectID: subject, Reason: "spam", Evidence: evidence, ActorID: actor}
}

func TestController_CommitCreatesPendingCase(t *testing.T) {
	ctrl, ms := newTestController(t)

	c, err := ctrl.Commit(KindReport, draft(KindReport, "222", 111))
	require.NoError(t, err)

	assert.Len(t, c.ID, 8)
	assert.Equal(t, StatusPending, c.Status)
	assert.Equal(t, "222", c.SubjectID)
	assert.Equal(t, int64(111), c.ActorID)
	assert.Equal(t, []string{}, c.Evidence)
	assert.Equal(t, 1, ms.saves, "commit must persist")
	assert.Len(t, ms.state.Reports, 1)
	assert.Empty(t, ms.state.Appeals)
}

func TestController_CommitIDsAreUnique(t *testing.T) {
	ctrl, _ := newTestController(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		c, err := ctrl.Commit(KindReport, draft(KindReport, "222", 111))
		require.NoError(t, err)
		assert.False(t, seen[c.ID], "duplicate case id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestController_CommitFailedSaveLeavesStateUntouched(t *testing.T) {
	ctrl, ms := newTestController(t)
	ms.failSave = true

	_, err := ctrl.Commit(KindReport, draft(KindReport, "222", 111))
	var perr *PersistError
	require.Error(t, err)
	assert.True(t, errors.As(err, &perr))

	ms.failSave = false
	assert.Empty(t, ctrl.Snapshot().Reports, "in-memory state must not drift on failed save")
}

func TestController_Decide(t *testing.T) {
	ctrl, _ := newTestController(t)
	c, err := ctrl.Commit(KindAppeal, draft(KindAppeal, "222", 111))
	require.NoError(t, err)

	decided, err := ctrl.Decide(KindAppeal, c.ID, DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, decided.Status)

	listed := ctrl.ListByStatus(KindAppeal, StatusApproved)
	require.Len(t, listed, 1)
	assert.Equal(t, c.ID, listed[0].ID)
}

func TestController_DecideUnknownCaseLeavesCollectionUnchanged(t *testing.T) {
	ctrl, ms := newTestController(t)
	c, err := ctrl.Commit(KindReport, draft(KindReport, "222", 111))
	require.NoError(t, err)
	savesBefore := ms.saves

	_, err = ctrl.Decide(KindReport, "nope1234", DecisionApprove)
	assert.ErrorIs(t, err, ErrCaseNotFound)
	assert.Equal(t, savesBefore, ms.saves, "failed decide must not persist")

	listed := ctrl.ListByStatus(KindReport, "")
	require.Len(t, listed, 1)
	assert.Equal(t, StatusPending, listed[0].Status)
	_ = c
}

func TestController_ReDecideIsPermitted(t *testing.T) {
	// Re-deciding a decided case is an explicit moderator override:
	// the latest decision wins.
	ctrl, _ := newTestController(t)
	c, err := ctrl.Commit(KindReport, draft(KindReport, "222", 111))
	require.NoError(t, err)

	_, err = ctrl.Decide(KindReport, c.ID, DecisionApprove)
	require.NoError(t, err)

	decided, err := ctrl.Decide(KindReport, c.ID, DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, decided.Status)
}

func TestController_RemoveTwiceFailsTheSecondTime(t *testing.T) {
	ctrl, _ := newTestController(t)
	c, err := ctrl.Commit(KindReport, draft(KindReport, "222", 111))
	require.NoError(t, err)

	require.NoError(t, ctrl.Remove(KindReport, c.ID))
	assert.Empty(t, ctrl.ListByStatus(KindReport, ""))

	err = ctrl.Remove(KindReport, c.ID)
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestController_RemoveWorksFromAnyStatus(t *testing.T) {
	ctrl, _ := newTestController(t)
	c, err := ctrl.Commit(KindAppeal, draft(KindAppeal, "222", 111))
	require.NoError(t, err)
	_, err = ctrl.Decide(KindAppeal, c.ID, DecisionReject)
	require.NoError(t, err)

	require.NoError(t, ctrl.Remove(KindAppeal, c.ID))
	assert.Empty(t, ctrl.ListByStatus(KindAppeal, ""))
}

func TestController_ListByStatusInsertionOrder(t *testing.T) {
	ctrl, _ := newTestController(t)

	var ids []string
	for _, subject := range []string{"1", "2", "3"} {
		c, err := ctrl.Commit(KindReport, draft(KindReport, subject, 111))
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	_, err := ctrl.Decide(KindReport, ids[1], DecisionApprove)
	require.NoError(t, err)

	all := ctrl.ListByStatus(KindReport, "")
	require.Len(t, all, 3)
	for i, c := range all {
		assert.Equal(t, ids[i], c.ID)
	}

	pending := ctrl.ListByStatus(KindReport, StatusPending)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[0], pending[0].ID)
	assert.Equal(t, ids[2], pending[1].ID)
}

func TestController_EvidenceForDistinguishesMissingCase(t *testing.T) {
	ctrl, _ := newTestController(t)

	withEvidence, err := ctrl.Commit(KindReport, draft(KindReport, "222", 111, "a.jpg", "b.mp4"))
	require.NoError(t, err)
	without, err := ctrl.Commit(KindReport, draft(KindReport, "333", 111))
	require.NoError(t, err)

	refs, err := ctrl.EvidenceFor(KindReport, withEvidence.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.mp4"}, refs)

	refs, err = ctrl.EvidenceFor(KindReport, without.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, refs, "no evidence is an empty slice, not an error")

	_, err = ctrl.EvidenceFor(KindReport, "missing1")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestController_KindsAreSeparateCollections(t *testing.T) {
	ctrl, _ := newTestController(t)
	r, err := ctrl.Commit(KindReport, draft(KindReport, "222", 111))
	require.NoError(t, err)

	// The report's id does not exist in the appeal collection.
	_, err = ctrl.Decide(KindAppeal, r.ID, DecisionApprove)
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestController_RosterOps(t *testing.T) {
	ctrl, ms := newTestController(t)

	added, err := ctrl.RegisterUser(111)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = ctrl.RegisterUser(111)
	require.NoError(t, err)
	assert.False(t, added, "re-registration is a no-op")

	savesBefore := ms.saves
	_, err = ctrl.RegisterUser(111)
	require.NoError(t, err)
	assert.Equal(t, savesBefore, ms.saves, "no-op roster change must not persist")

	added, err = ctrl.AddSudo(555)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = ctrl.AddSudo(555)
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := ctrl.RemoveSudo(555)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = ctrl.RemoveSudo(555)
	require.NoError(t, err)
	assert.False(t, removed)

	added, err = ctrl.Blacklist(666)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []int64{666}, ctrl.Snapshot().Blacklist)

	removed, err = ctrl.Unblacklist(666)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = ctrl.Unblacklist(666)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestController_SnapshotIsACopy(t *testing.T) {
	ctrl, _ := newTestController(t)
	_, err := ctrl.Commit(KindReport, draft(KindReport, "222", 111, "a.jpg"))
	require.NoError(t, err)

	snap := ctrl.Snapshot()
	snap.Reports[0].Evidence[0] = "tampered"
	snap.Users = append(snap.Users, 999)

	fresh := ctrl.Snapshot()
	assert.Equal(t, "a.jpg", fresh.Reports[0].Evidence[0])
	assert.Empty(t, fresh.Users)
}
