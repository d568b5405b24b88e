package logging_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-kernel/framework/config"
	"github.com/km-arc/go-kernel/framework/logging"
)

func cfg(env, level, format string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test", Env: env},
		Log: config.LogConfig{Level: level, Format: format},
	}
}

func TestNew_LevelFromConfig(t *testing.T) {
	log, err := logging.New(cfg("local", "warn", ""))
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_Production(t *testing.T) {
	log, err := logging.New(cfg("production", "info", "json"))
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_RejectsBadSettings(t *testing.T) {
	_, err := logging.New(cfg("local", "loud", ""))
	assert.ErrorContains(t, err, `level "loud"`)

	_, err = logging.New(cfg("local", "info", "xml"))
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestRequests_LogsEachRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := logging.Requests(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/brew", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}
