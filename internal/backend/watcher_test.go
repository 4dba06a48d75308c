package backend

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func TestWatcherReportsConfigWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	msgs := make(chanSender, 16)
	w, err := NewWatcher(path, msgs, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("[browser]\n"), 0o644))

	select {
	case msg := <-msgs:
		assert.Equal(t, ConfigChangedMsg{Path: path}, msg)
	case <-time.After(5 * time.Second):
		t.Fatal("no ConfigChangedMsg after writing the config file")
	}
}
