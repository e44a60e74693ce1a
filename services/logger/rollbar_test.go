package logsvc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/user"
)

func TestRollbarLogger(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	logger := NewRollbarLogger(zap.New(obsCore), &core.Config{Env: "TEST"})
	logger.Enable(false)

	usr := user.User{ID: 7, Username: "student"}
	errBoom := errors.New("boom")
	logger.Info("test submitted", usr, map[string]interface{}{"score": 3})
	logger.Error("saving", errBoom, usr, user.User{ID: 8})

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "test submitted", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 7, fields["user_id"])
	assert.Equal(t, "student", fields["username"])
	assert.EqualValues(t, 3, fields["score"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	fields = entries[1].ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.EqualValues(t, 7, fields["user_id"]) // first user only
}
