package cart

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_IssueParse(t *testing.T) {
	s := NewSessions("test-secret", time.Hour)

	id, token, err := s.Issue()
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	got, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestSessions_Rejects(t *testing.T) {
	s := NewSessions("test-secret", time.Hour)
	_, token, err := s.Issue()
	require.NoError(t, err)

	other := NewSessions("other-secret", time.Hour)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = s.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
