package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivationFileLifecycle(t *testing.T) {
	a := NewActivationFile(t.TempDir(), t.TempDir())

	_, active := a.Read()
	assert.False(t, active, "speaking starts disabled")

	enabledAt := time.Date(2026, 1, 23, 10, 0, 0, 0, time.UTC)
	require.NoError(t, a.EnableAt(enabledAt))

	key, active := a.Read()
	require.True(t, active)
	assert.Equal(t, "2026-01-23T10:00:00Z", key)

	require.NoError(t, a.Disable())
	_, active = a.Read()
	assert.False(t, active)

	require.NoError(t, a.Disable(), "disabling twice is fine")
}

func TestActivationKeyOrdersAgainstTimestamps(t *testing.T) {
	a := NewActivationFile(t.TempDir(), t.TempDir())
	require.NoError(t, a.EnableAt(time.Date(2026, 1, 23, 10, 0, 2, 0, time.UTC)))

	key, active := a.Read()
	require.True(t, active)

	// Keys compare as strings, matching transcript timestamps.
	assert.Less(t, "2026-01-23T10:00:01Z", key)
	assert.Greater(t, "2026-01-23T10:00:03Z", key)
}
