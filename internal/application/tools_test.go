package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/zerkz/dxmcp/internal/cache"
	"github.com/zerkz/dxmcp/internal/domain"
)

func TestToolRegistryAddRejectsDuplicates(t *testing.T) {
	reg := NewToolRegistry(cache.New(), nil, nil)

	_, err := reg.Add(newFakeHandle("a"), false)
	require.NoError(t, err)
	require.Len(t, reg.List(), 1)

	_, err = reg.Add(newFakeHandle("a"), false)
	require.ErrorIs(t, err, domain.ErrToolExists)
	assert.Len(t, reg.List(), 1, "a declined add must not grow the registry")

	_, err = reg.Add(newFakeHandle("b"), false)
	require.NoError(t, err)
	assert.Len(t, reg.List(), 2)
}

func TestToolRegistryEnableDisableSequence(t *testing.T) {
	reg := NewToolRegistry(cache.New(), nil, nil)
	handle := newFakeHandle("a")
	_, err := reg.Add(handle, false)
	require.NoError(t, err)

	require.NoError(t, reg.Enable("a"))
	require.ErrorIs(t, reg.Enable("a"), domain.ErrAlreadyEnabled)

	require.NoError(t, reg.Disable("a"))
	require.ErrorIs(t, reg.Disable("a"), domain.ErrAlreadyDisabled)

	require.NoError(t, reg.Enable("a"))
	assert.Equal(t, 2, handle.enableCount())
}

func TestToolRegistryEnableUnknownTool(t *testing.T) {
	reg := NewToolRegistry(cache.New(), nil, nil)

	require.ErrorIs(t, reg.Enable("missing"), domain.ErrToolNotFound)
	require.ErrorIs(t, reg.Disable("missing"), domain.ErrToolNotFound)
}

func TestToolRegistryAddPreEnabled(t *testing.T) {
	notifier := &fakeNotifier{}
	reg := NewToolRegistry(cache.New(), notifier, nil)

	_, err := reg.Add(newFakeHandle("core"), true)
	require.NoError(t, err)

	status, err := reg.Status("core")
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, 1, notifier.notifications(), "pre-enabled add changes the visible capability list")
}

func TestToolRegistryAddDisabledDoesNotNotify(t *testing.T) {
	notifier := &fakeNotifier{}
	reg := NewToolRegistry(cache.New(), notifier, nil)

	_, err := reg.Add(newFakeHandle("a"), false)
	require.NoError(t, err)
	assert.Zero(t, notifier.notifications())
}

func TestToolRegistryStatus(t *testing.T) {
	reg := NewToolRegistry(cache.New(), nil, nil)
	_, err := reg.Add(newFakeHandle("a"), false)
	require.NoError(t, err)

	status, err := reg.Status("a")
	require.NoError(t, err)
	assert.Equal(t, ToolStatus{Name: "a", Description: "fake a", Enabled: false}, status)

	_, err = reg.Status("missing")
	require.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestToolRegistryEnableMany(t *testing.T) {
	reg := NewToolRegistry(cache.New(), nil, nil)
	_, err := reg.Add(newFakeHandle("a"), false)
	require.NoError(t, err)

	results := reg.EnableMany([]string{"a", "missing", "a"})

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Message, "not found")
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Message, "already enabled")
}

func TestToolRegistryEnableFailureLeavesStateUntouched(t *testing.T) {
	reg := NewToolRegistry(cache.New(), nil, nil)
	handle := newFakeHandle("a")
	handle.enableErr = assert.AnError
	_, err := reg.Add(handle, false)
	require.NoError(t, err)

	require.ErrorIs(t, reg.Enable("a"), assert.AnError)

	status, err := reg.Status("a")
	require.NoError(t, err)
	assert.False(t, status.Enabled)
}

func TestToolRegistryConcurrentAdds(t *testing.T) {
	reg := NewToolRegistry(cache.New(), nil, nil)

	var eg errgroup.Group
	for i := range 50 {
		name := string(rune('a' + i%26))
		eg.Go(func() error {
			// Duplicate names race; only a declined add or a success is
			// acceptable, and every success must be visible afterward.
			if _, err := reg.Add(newFakeHandle(name), false); err != nil {
				return nil
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	assert.Len(t, reg.List(), 26, "one record per distinct name, no lost adds")
}
