package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/linesmerrill/motorent-api/models"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	os.Setenv("JWT_TTL", "2h")
	defer os.Unsetenv("JWT_TTL")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "test", conf.DatabaseName)
	assert.Equal(t, 2*time.Hour, conf.JWTTTL)
	assert.Equal(t, "motorcycle-images", conf.ImageBucket)
	assert.Equal(t, "console", conf.EmailProvider)
}

func TestNew_LogsParseErrorAfterLoggerIsReady(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	newLogger = func(string) (*zap.Logger, error) { return zap.New(core), nil }
	t.Cleanup(func() {
		newLogger = setLogger
		zap.ReplaceGlobals(zap.NewNop())
	})
	t.Setenv("DB_NAME", "fleet")
	t.Setenv("JWT_TTL", "a day or so")

	conf := New()

	assert.Equal(t, "fleet", conf.DatabaseName)
	logged := logs.FilterMessage("failed to parse environment, unparsed values are left empty").All()
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0].ContextMap()["error"], "JWT_TTL")
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error it borked", body.Response.Message)
	assert.Equal(t, "bad request", body.Response.Error)
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))
	assert.True(t, l.Core().Enabled(2))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}
