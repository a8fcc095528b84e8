package quizgen

import (
	"os"
	"testing"

	"github.com/fariyalkhan17/Quizzmaster/internal/config"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"
)

// TestMain initializes the global logger for all tests in this package.
func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error"}); err != nil {
		panic("failed to initialize logger for tests: " + err.Error())
	}

	exitVal := m.Run()

	_ = logger.Sync()
	os.Exit(exitVal)
}
