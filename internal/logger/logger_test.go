package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New("prod", "loud", FileSink{})
	assert.Error(t, err)
}

func TestNew_WritesFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.log")

	log, err := New("dev", "info", FileSink{Path: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Info("automation finished")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "automation finished")
}
