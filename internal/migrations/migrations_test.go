package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"acsWorker/internal/config"
	"acsWorker/internal/logger"
)

func TestRun_SkippedWithoutDatabase(t *testing.T) {
	cfg := &config.Cfg{Migrations: config.Migrations{Path: "file://does-not-exist"}}
	assert.NoError(t, Run(cfg, logger.Nop()))
}
