package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour, "forum")
	tok, err := m.Generate("u1", "alice", "user")
	require.NoError(t, err)

	c, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, "user", c.Role)
	assert.Equal(t, "u1", c.Subject)
}

func TestParseRejects(t *testing.T) {
	m := NewManager("secret", time.Hour, "forum")
	tok, err := m.Generate("u1", "alice", "user")
	require.NoError(t, err)

	_, err = NewManager("other", time.Hour, "forum").Parse(tok)
	assert.Error(t, err)

	_, err = NewManager("secret", time.Hour, "someone-else").Parse(tok)
	assert.Error(t, err)

	_, err = m.Parse("not-a-token")
	assert.Error(t, err)

	expired := NewManager("secret", time.Hour, "forum")
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(tok)
	assert.Error(t, err)
}
