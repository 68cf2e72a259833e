package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attritioninsight/config"
	"attritioninsight/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func turn(q, a string) []models.Message {
	return []models.Message{
		{Role: models.RoleUser, Content: q},
		{Role: models.RoleAssistant, Content: a},
	}
}

func TestAppendAndLoadKeepsOrder(t *testing.T) {
	d := newTestDB(t)

	for i := 0; i < 12; i++ {
		require.NoError(t, d.AppendMessages("s1", turn("q", "a")...))
	}
	require.NoError(t, d.AppendMessages("s1", turn("last question", "last answer")...))

	msgs, err := d.LoadMessages("s1")
	require.NoError(t, err)
	require.Len(t, msgs, 26)
	assert.Equal(t, "last answer", msgs[25].Content)
	assert.Equal(t, models.RoleUser, msgs[24].Role)
}

func TestSessionsAreIsolated(t *testing.T) {
	d := newTestDB(t)
	require.NoError(t, d.AppendMessages("a", turn("qa", "aa")...))
	require.NoError(t, d.AppendMessages("ab", turn("qab", "aab")...))

	msgs, err := d.LoadMessages("a")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "qa", msgs[0].Content)
}

func TestDeleteMessages(t *testing.T) {
	d := newTestDB(t)
	require.NoError(t, d.AppendMessages("s1", turn("q", "a")...))
	require.NoError(t, d.AppendMessages("s2", turn("q", "a")...))

	require.NoError(t, d.DeleteMessages("s1"))

	msgs, err := d.LoadMessages("s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	sessions, err := d.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s2", sessions[0].ID)
	assert.Equal(t, 2, sessions[0].Messages)

	require.NoError(t, d.DeleteMessages("never-existed"))
}

func TestListSessionsMostRecentFirst(t *testing.T) {
	d := newTestDB(t)
	require.NoError(t, d.AppendMessages("old", turn("q", "a")...))
	require.NoError(t, d.AppendMessages("new", turn("q", "a")...))
	require.NoError(t, d.AppendMessages("new", turn("q", "a")...))

	sessions, err := d.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, 4, sessions[0].Messages)
	assert.False(t, sessions[0].UpdatedAt.Before(sessions[1].UpdatedAt))
}

func TestOpenInMemory(t *testing.T) {
	d, err := Open(config.StorageConfig{InMemory: true})
	require.NoError(t, err)
	assert.NoError(t, d.Close())
}
