package ipc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/matjam/shmpaper/internal/metrics"
	"github.com/matjam/shmpaper/internal/wayland"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeManager struct {
	mu   sync.Mutex
	cmds []Command
	full bool
}

func (m *fakeManager) Status() SessionStatus {
	return SessionStatus{
		State:      "presenting",
		Shell:      "layer",
		Configures: 1,
		Running:    true,
		Globals:    []wayland.Global{{Name: 1, Interface: wayland.InterfaceCompositor, Version: 5}},
	}
}

func (m *fakeManager) EnqueueCommand(cmd Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.full {
		return assert.AnError
	}
	m.cmds = append(m.cmds, cmd)
	return nil
}

func (m *fakeManager) commands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Command(nil), m.cmds...)
}

func TestStatusRoute(t *testing.T) {
	e := NewServer(&fakeManager{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var st StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, "presenting", st.State)
	assert.Equal(t, 1, st.Configures)
	assert.NotZero(t, st.PID)
	require.Len(t, st.Globals, 1)
	assert.Equal(t, wayland.InterfaceCompositor, st.Globals[0].Interface)
}

func TestStopRoute(t *testing.T) {
	m := &fakeManager{}
	e := NewServer(m)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stop", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []Command{{Type: CommandStop}}, m.commands())

	m.full = true
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stop", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	metrics.DispatchCycles.Inc()
	e := NewServer(&fakeManager{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "shmpaper_dispatch_cycles_total"))
}

func useRuntimeDir(t *testing.T, dir string) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_RUNTIME_DIR", dir)
	xdg.Reload()
}

func TestSocketPath(t *testing.T) {
	dir := t.TempDir()
	useRuntimeDir(t, dir)
	assert.Equal(t, filepath.Join(dir, "shmpaper.sock"), SocketPath())

	useRuntimeDir(t, filepath.Join(dir, "missing"))
	assert.Equal(t, filepath.Join(os.TempDir(), "shmpaper.sock"), SocketPath())
}

func TestClientOverSocket(t *testing.T) {
	useRuntimeDir(t, t.TempDir())

	_, err := SendStatus()
	require.Error(t, err, "nothing listening yet")

	m := &fakeManager{}
	done := make(chan error, 1)
	go func() { done <- Start(testContext(t), m) }()

	require.Eventually(t, func() bool {
		_, err := SendStatus()
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	st, err := SendStatus()
	require.NoError(t, err)
	assert.Equal(t, "layer", st.Shell)
	assert.Equal(t, SocketPath(), st.Socket)

	require.NoError(t, SendStop())
	assert.Equal(t, []Command{{Type: CommandStop}}, m.commands())

	assert.Error(t, Start(testContext(t), m), "second server refuses a live socket")
}

// testContext stands in for testing.T.Context (Go 1.24+): it is cancelled
// when the test finishes.
func testContext(t testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
