package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/cargonode/internal/core/domain"
)

func TestLevelForVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      domain.LogLevel
	}{
		{-1, domain.LogLevelWarn},
		{0, domain.LogLevelWarn},
		{1, domain.LogLevelInfo},
		{2, domain.LogLevelDebug},
		{5, domain.LogLevelDebug},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.LevelForVerbosity(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", domain.LogLevelDebug.String())
	assert.Equal(t, "INFO", domain.LogLevelInfo.String())
	assert.Equal(t, "WARN", domain.LogLevelWarn.String())
	assert.Equal(t, "ERROR", domain.LogLevelError.String())
	assert.Equal(t, "INFO", domain.LogLevel(99).String())
}
