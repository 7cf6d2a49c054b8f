package confirmation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlockhq/airlock/pkg/airlockerr"
)

func TestConsume_SingleUse(t *testing.T) {
	s := New()
	p := NewPending("close_window", "close window w1", nil)
	s.Add(p)

	got, err := s.Consume(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.Consume(p.ID)
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.InvalidInput, structured.Code)
}

func TestConsume_ExpiredIndistinguishableFromMissing(t *testing.T) {
	s := New()
	fixed := time.Now()
	s.now = func() time.Time { return fixed }

	p := NewPending("close_window", "close window w1", nil)
	p.ExpiresAt = fixed.Add(-time.Second)
	s.Add(p)

	_, errExpired := s.Consume(p.ID)
	_, errMissing := s.Consume("does-not-exist")
	require.Error(t, errExpired)
	require.Error(t, errMissing)
	assert.Equal(t, errMissing.Error(), errExpired.Error())
}

func TestGet_SweepsExpiredEntries(t *testing.T) {
	s := New()
	fixed := time.Now()
	s.now = func() time.Time { return fixed }

	p := NewPending("navigate", "", nil)
	p.ExpiresAt = fixed.Add(-time.Millisecond)
	s.Add(p)

	_, ok := s.Get(p.ID)
	assert.False(t, ok)
}

func TestConfirm_DoesNotExecuteOriginatingTool(t *testing.T) {
	s := New()
	p := NewPending("close_window", "close window w1", map[string]any{"windowId": "w1"})
	s.Add(p)

	confirmed, err := s.Confirm(p.ID)
	require.NoError(t, err)
	require.NotNil(t, confirmed.ConfirmedAt)

	valid, ok := s.FindValid(p.ID, "close_window")
	require.True(t, ok)
	assert.Equal(t, p.ID, valid.ID)

	_, wrongTool := s.FindValid(p.ID, "navigate")
	assert.False(t, wrongTool)
}

func TestCleanup_RemovesOnlyExpired(t *testing.T) {
	s := New()
	fixed := time.Now()
	s.now = func() time.Time { return fixed }

	fresh := NewPending("navigate", "", nil)
	fresh.ExpiresAt = fixed.Add(time.Minute)
	stale := NewPending("navigate", "", nil)
	stale.ExpiresAt = fixed.Add(-time.Minute)
	s.Add(fresh)
	s.Add(stale)

	s.Cleanup()

	_, freshOK := s.Get(fresh.ID)
	_, staleOK := s.Get(stale.ID)
	assert.True(t, freshOK)
	assert.False(t, staleOK)
}
