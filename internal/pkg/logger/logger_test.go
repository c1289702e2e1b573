package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNamedBeforeInit(t *testing.T) {
	if Log != nil {
		t.Skip("logger already initialised by another test")
	}
	assert.NotNil(t, Named("guard"))
}

func TestInit(t *testing.T) {
	require.NoError(t, Init(zapcore.DebugLevel, zap.String("service", "test")))
	require.NotNil(t, Log)

	first := Log
	require.NoError(t, Init(zapcore.ErrorLevel))
	assert.Same(t, first, Log, "second Init is a no-op")
	assert.True(t, Named("guard").Core().Enabled(zapcore.DebugLevel))
}
