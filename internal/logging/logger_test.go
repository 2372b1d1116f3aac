package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigainv/siga-backend/internal/config"
	"github.com/sigainv/siga-backend/internal/logging"
)

func TestInitWithoutFilenameLogsToStdoutOnly(t *testing.T) {
	require.NoError(t, logging.Init(&config.LoggingConfig{
		Level:  "info",
		Format: "json",
	}))

	logging.Info("stdout only", "key", "value")
}

func TestInitCreatesLogDirectory(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "logs", "siga.log")

	require.NoError(t, logging.Init(&config.LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Filename: filename,
		MaxSize:  1,
	}))

	logging.Info("to file")

	_, err := os.Stat(filepath.Dir(filename))
	assert.NoError(t, err)
}
