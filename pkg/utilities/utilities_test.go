package utilities

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("debug"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("error"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("nonsense"))
}

func TestConfigApplyEnv(t *testing.T) {
	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	var cfg Config
	cfg.ApplyEnv()
	assert.True(t, cfg.Dev)
	assert.Equal(t, "debug", cfg.Level)
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	lg, err := Init(Config{Level: "info", File: path, Service: "political-api"})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
	matches, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestNewRequestIDIsNumericAndUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewRequestID()
		_, err := strconv.ParseInt(id, 10, 64)
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestNewKSUID(t *testing.T) {
	assert.Len(t, NewKSUID(), 27)
	assert.NotEqual(t, NewKSUID(), NewKSUID())
}

func TestPathParam(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/u/123", "123"},
		{"/u/a%2Fb", "a/b"},
		{"/u/a%20b", "a b"},
		{"/u/caf%C3%A9", "café"},
	}
	for _, tt := range tests {
		var got string
		r := chi.NewRouter()
		r.Get("/u/{id}", func(w http.ResponseWriter, req *http.Request) {
			got = PathParam(req, "id")
		})
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.want, got, tt.path)
	}
}
