package jsonstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fedcase/internal/cases"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() cases.State {
	s := cases.EmptyState()
	s.Users = []int64{111, 222}
	s.SudoUsers = []int64{555}
	// Blacklist deliberately left empty for the round-trip check.
	s.Reports = []cases.Case{{
		ID: "ab12cd34", Kind: cases.KindReport, SubjectID: "222",
		Reason: "spam", Evidence: []string{"evidence/a.jpg", "evidence/b.mp4"},
		ActorID: 111, Status: cases.StatusPending,
	}}
	s.Appeals = []cases.Case{{
		ID: "ef56ab78", Kind: cases.KindAppeal, SubjectID: "333",
		Reason: "unban me", Evidence: []string{},
		ActorID: 222, Status: cases.StatusApproved,
	}}
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "fedcase.json")
	s, err := Open(path)
	require.NoError(t, err)

	want := sampleState()
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_LoadMissingFileYieldsEmptyState(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "fedcase.json"))
	require.NoError(t, err)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, cases.EmptyState(), got)
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fedcase.json")
	require.NoError(t, os.WriteFile(path, []byte("not valid json"), 0644))

	s, err := Open(path)
	require.NoError(t, err)

	_, err = s.Load()
	var cerr *cases.CorruptError
	require.Error(t, err)
	assert.True(t, errors.As(err, &cerr))
}

func TestStore_SaveReplacesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fedcase.json")
	s, err := Open(path)
	require.NoError(t, err)

	first := sampleState()
	require.NoError(t, s.Save(first))

	second := sampleState()
	second.Reports = second.Reports[:0]
	second.Blacklist = []int64{666}
	require.NoError(t, s.Save(second))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Reports)
	assert.Equal(t, []int64{666}, got.Blacklist)
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "fedcase.json"))
	require.NoError(t, err)
	require.NoError(t, s.Save(sampleState()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fedcase.json", entries[0].Name())
}

func TestStore_SaveNormalizesNilCollections(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "fedcase.json"))
	require.NoError(t, err)

	var partial cases.State
	partial.Users = []int64{111}
	require.NoError(t, s.Save(partial))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []int64{}, got.Blacklist)
	assert.Equal(t, []cases.Case{}, got.Reports)
}
