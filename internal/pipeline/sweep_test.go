package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furiview/furiview/internal/logging"
)

func writeAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
	return path
}

func TestSweepRemovesExpiredOutputs(t *testing.T) {
	dir := t.TempDir()
	expired := writeAged(t, dir, "annotated_old.png", 2*time.Hour)
	fresh := writeAged(t, dir, "annotated_new.png", time.Minute)
	other := writeAged(t, dir, "keepme.txt", 3*time.Hour)

	s := NewSweeper(dir, "annotated", time.Hour, time.Minute, logging.NewLogger("SweeperTest"))
	s.Sweep()

	_, err := os.Stat(expired)
	assert.True(t, os.IsNotExist(err), "expired output removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh output kept")
	_, err = os.Stat(other)
	assert.NoError(t, err, "files without the prefix are untouched")
}

func TestSweepToleratesMissingDirectory(t *testing.T) {
	s := NewSweeper(filepath.Join(t.TempDir(), "missing"), "annotated",
		time.Hour, time.Minute, logging.NewLogger("SweeperTest"))
	assert.NotPanics(t, func() { s.Sweep() })
}
