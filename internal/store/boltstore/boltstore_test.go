package boltstore

import (
	"path/filepath"
	"testing"

	"fedcase/internal/cases"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(Options{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleState() cases.State {
	s := cases.EmptyState()
	s.Users = []int64{111, 222, 333}
	s.Blacklist = []int64{666}
	s.Reports = []cases.Case{
		{
			ID: "ab12cd34", Kind: cases.KindReport, SubjectID: "222",
			Reason: "spam", Evidence: []string{"evidence/a.jpg", "evidence/b.mp4"},
			ActorID: 111, Status: cases.StatusRejected,
		},
		{
			ID: "cd34ef56", Kind: cases.KindReport, SubjectID: "444",
			Reason: "abuse", Evidence: []string{},
			ActorID: 222, Status: cases.StatusPending,
		},
	}
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "fedcase.db"))

	want := sampleState()
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_LoadFreshDatabaseYieldsEmptyState(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "fedcase.db"))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, cases.EmptyState(), got)
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fedcase.db")

	s, err := Open(Options{Path: path})
	require.NoError(t, err)
	want := sampleState()
	require.NoError(t, s.Save(want))
	require.NoError(t, s.Close())

	s2 := openTestStore(t, path)
	got, err := s2.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_SaveReplacesPreviousSnapshot(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "fedcase.db"))

	require.NoError(t, s.Save(sampleState()))

	second := cases.EmptyState()
	second.SudoUsers = []int64{555}
	require.NoError(t, s.Save(second))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, second, got)
}
