package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedcal/internal/model"
)

func sample(title string) model.Event {
	return model.Event{
		Title:     title,
		Date:      "2025-07-01",
		StartTime: "09:00",
		EndTime:   "10:00",
		Repeat:    model.Repeat{Type: model.RepeatNone, Interval: 1},
	}
}

func TestStoreCRUDPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "events.json")

	s, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, s.List())

	a, err := s.Create(sample("a"))
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)

	b, err := s.Create(model.Event{ID: "client-supplied", Title: "b"})
	require.NoError(t, err)
	assert.NotEqual(t, "client-supplied", b.ID)

	a.Title = "a2"
	_, err = s.Update(a.ID, a)
	require.NoError(t, err)

	require.NoError(t, s.Delete(b.ID))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path)
	require.NoError(t, err)
	got := reopened.List()
	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].Title)
	assert.Equal(t, a.ID, got[0].ID)
}

func TestStoreNotFound(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)

	_, err = s.Get("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Update("missing", sample("x"))
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(s.Delete("missing"), ErrNotFound))
	assert.True(t, errors.Is(s.Delete(""), ErrNotFound))
}

func TestStoreBatchIsAllOrNothing(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)

	created, err := s.CreateMany([]model.Event{sample("1"), sample("2"), sample("3")})
	require.NoError(t, err)
	require.Len(t, created, 3)

	created[0].Title = "changed"
	ghost := sample("ghost")
	ghost.ID = "ghost"
	_, err = s.UpdateMany([]model.Event{created[0], ghost})
	assert.True(t, errors.Is(err, ErrNotFound))

	ev, err := s.Get(created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "1", ev.Title)

	err = s.DeleteMany([]string{created[1].ID, "ghost"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Len(t, s.List(), 3)

	require.NoError(t, s.DeleteMany([]string{created[1].ID, created[2].ID}))
	assert.Len(t, s.List(), 1)
}

func TestStoreListIsACopy(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	_, err = s.Create(sample("a"))
	require.NoError(t, err)

	list := s.List()
	list[0].Title = "mutated"
	assert.Equal(t, "a", s.List()[0].Title)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestWriteFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	s, err := Open("")
	require.NoError(t, err)
	// The parent "directory" is a regular file, so every write fails.
	s.path = filepath.Join(blocker, "events.json")

	_, err = s.Create(sample("a"))
	assert.Error(t, err)
	assert.Empty(t, s.List())
}
