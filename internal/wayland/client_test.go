package wayland

import (
	"context"
	"testing"

	"github.com/matjam/shmpaper/internal/wire"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverReturnsEveryGlobal(t *testing.T) {
	_, c := newFake(t,
		Global{1, InterfaceCompositor, 5},
		Global{2, InterfaceOutput, 4},
		Global{3, InterfaceOutput, 3},
	)
	globals, err := c.Discover(testContext(t))
	require.NoError(t, err)
	require.Len(t, globals, 3)
	assert.Len(t, c.GlobalsFor(InterfaceOutput), 2)
	assert.Equal(t, uint32(3), c.GlobalsFor(InterfaceOutput)[1].Name)
}

func TestGlobalRemove(t *testing.T) {
	f, c := newFake(t, Global{1, InterfaceOutput, 4}, Global{2, InterfaceSeat, 5})
	var removed []Global
	c.OnGlobalRemove = func(g Global) { removed = append(removed, g) }
	_, err := c.Discover(testContext(t))
	require.NoError(t, err)

	f.queue(wire.NewMessage(f.registry, evRegistryGlobalRemove).PutUint(1))
	f.dispatch(c)
	assert.Equal(t, []Global{{2, InterfaceSeat, 5}}, c.Globals())
	assert.Equal(t, []Global{{1, InterfaceOutput, 4}}, removed)
}

func TestLateGlobalsReachOnGlobal(t *testing.T) {
	f, c := newFake(t, Global{1, InterfaceCompositor, 4})
	_, err := c.Discover(testContext(t))
	require.NoError(t, err)

	var seen []Global
	c.OnGlobal = func(g Global) { seen = append(seen, g) }
	f.queue(f.globalEvent(Global{9, InterfaceOutput, 4}))
	f.dispatch(c)
	assert.Equal(t, []Global{{9, InterfaceOutput, 4}}, seen)
	assert.Len(t, c.Globals(), 2)
}

func TestBindVersionSelection(t *testing.T) {
	for _, tc := range []struct {
		name       string
		advertised []uint32
		r          VersionRange
		want       uint32
		err        error
	}{
		{"exact", []uint32{5}, VersionRange{1, 5}, 5, nil},
		{"clamped to max", []uint32{6}, VersionRange{1, 5}, 5, nil},
		{"below max", []uint32{3}, VersionRange{1, 5}, 3, nil},
		{"first match wins", []uint32{2, 4}, VersionRange{3, 4}, 4, nil},
		{"too old", []uint32{2}, VersionRange{3, 4}, 0, ErrVersionUnsupported},
		{"missing", nil, VersionRange{1, 1}, 0, ErrCapabilityUnavailable},
		{"inverted range", []uint32{5}, VersionRange{4, 2}, 0, ErrInvalidVersionRange},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var globals []Global
			for i, v := range tc.advertised {
				globals = append(globals, Global{uint32(i + 1), InterfaceLayerShell, v})
			}
			f, c := newFake(t, globals...)
			_, err := c.Discover(testContext(t))
			require.NoError(t, err)

			ls, err := c.BindLayerShell(tc.r)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				var ce *CapabilityError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, InterfaceLayerShell, ce.Interface)
				if tc.err != ErrInvalidVersionRange {
					assert.Equal(t, tc.advertised, ce.Advertised)
				}
				_, _, ok := f.bound(InterfaceLayerShell)
				assert.False(t, ok, "no bind request on failure")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ls.Version())
			id, version, ok := f.bound(InterfaceLayerShell)
			require.True(t, ok)
			assert.Equal(t, ls.ID(), id)
			assert.Equal(t, tc.want, version)
		})
	}
}

func TestObjectIDsAreMonotonic(t *testing.T) {
	_, c := newFake(t, Global{1, InterfaceCompositor, 5})
	_, err := c.Discover(testContext(t))
	require.NoError(t, err)
	comp, err := c.BindCompositor(VersionRange{1, 5})
	require.NoError(t, err)

	a := comp.CreateSurface()
	b := comp.CreateSurface()
	assert.Greater(t, comp.ID(), uint32(displayID))
	assert.Equal(t, a.ID()+1, b.ID())
}

func TestEventsForUnknownObjectsAreDropped(t *testing.T) {
	f, c := newFake(t)
	f.queue(wire.NewMessage(4242, 0).PutUint(1))
	f.dispatch(c)
	assert.NoError(t, c.Err())
}

func TestDeleteIDForgetsObject(t *testing.T) {
	f, c := newFake(t)
	fired := false
	cb := c.Sync()
	cb.Done = func(uint32) { fired = true }
	require.Equal(t, 1, c.ObjectCount())

	// done followed by delete_id
	f.dispatch(c)
	assert.True(t, fired)
	assert.Zero(t, c.ObjectCount())
}

func TestProtocolErrorIsFatal(t *testing.T) {
	f, c := newFake(t, Global{1, InterfaceCompositor, 5})
	_, err := c.Discover(testContext(t))
	require.NoError(t, err)
	comp, err := c.BindCompositor(VersionRange{1, 5})
	require.NoError(t, err)

	f.queue(wire.NewMessage(displayID, evDisplayError).
		PutObject(comp.ID()).PutUint(3).PutString("invalid surface"))
	err = c.Dispatch(testContext(t))
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, InterfaceCompositor, pe.Interface)
	assert.Equal(t, uint32(3), pe.Code)
	assert.Equal(t, "invalid surface", pe.Message)

	// sticky
	assert.ErrorAs(t, c.Flush(), &pe)
	n := len(f.sent)
	comp.CreateSurface()
	assert.Len(t, f.sent, n, "requests after a fatal error are not sent")
}

func TestDispatchCancelled(t *testing.T) {
	_, c := newFake(t)
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()
	err := c.Dispatch(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoError(t, c.Err(), "cancellation is not fatal")
}

func TestWakeInterruptsDispatch(t *testing.T) {
	f, c := newFake(t)
	require.NoError(t, c.Wake())
	assert.NoError(t, c.Dispatch(testContext(t)))
	assert.False(t, f.interrupted)
	assert.NoError(t, c.Err())
}
