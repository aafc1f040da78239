package challenge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/butecodosdevs/buteco-core/internal/apperror"
	"github.com/butecodosdevs/buteco-core/internal/challenge/entity"
)

func newTestRouter(guard func(http.Handler) http.Handler) http.Handler {
	svc, _ := newTestService()
	h := NewHandler(svc, zap.NewNop().Sugar())
	r := chi.NewRouter()
	r.Route("/challenge", func(r chi.Router) { h.Routes(r, guard) })
	return r
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestChallengeHandlerFlow(t *testing.T) {
	h := newTestRouter(nil)

	rec := call(t, h, http.MethodPost, "/challenge/create",
		`{"challengerId":"a","challengedId":"b","channelId":"general","description":"best of 5"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[Response](t, rec)
	assert.Equal(t, entity.StatusPending, created.Status)
	require.NotNil(t, created.Description)
	assert.Equal(t, "best of 5", *created.Description)
	base := "/challenge/" + strconv.FormatInt(created.ID, 10)

	rec = call(t, h, http.MethodPost, base+"/accept", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.StatusActive, decode[Response](t, rec).Status)

	rec = call(t, h, http.MethodPost, base+"/increment", `{"userId":"b"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[Response](t, rec).ChallengedScore)

	rec = call(t, h, http.MethodPost, base+"/increment", `{"userId":"z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgNotParticipant, decode[apperror.Body](t, rec).Detail)

	rec = call(t, h, http.MethodGet, "/challenge/channel/general/active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]Response](t, rec), 1)

	rec = call(t, h, http.MethodPost, base+"/close", "")
	require.Equal(t, http.StatusOK, rec.Code)
	closed := decode[Response](t, rec)
	assert.Equal(t, entity.StatusCompleted, closed.Status)
	assert.NotNil(t, closed.CompletedAt)

	rec = call(t, h, http.MethodPost, base+"/close", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgCloseNotActive, decode[apperror.Body](t, rec).Detail)

	rec = call(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, "/challenge/user/a/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]Response](t, rec), 1)

	rec = call(t, h, http.MethodGet, "/challenge/user/a/active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestChallengeHandlerErrors(t *testing.T) {
	h := newTestRouter(nil)
	tests := []struct {
		name, method, path, body string
		status                   int
		detail                   string
	}{
		{"missing channel", http.MethodPost, "/challenge/create", `{"challengerId":"a","challengedId":"b"}`, 400, msgChannelRequired},
		{"self challenge", http.MethodPost, "/challenge/create", `{"challengerId":"a","challengedId":"a","channelId":"c"}`, 400, msgSelfChallenge},
		{"bad body", http.MethodPost, "/challenge/create", `[`, 400, "Invalid request body"},
		{"unknown id", http.MethodGet, "/challenge/42", "", 404, msgNotFound},
		{"non numeric id", http.MethodPost, "/challenge/abc/accept", "", 404, msgNotFound},
		{"unknown accept", http.MethodPost, "/challenge/7/accept", "", 404, msgNotFound},
		{"missing user", http.MethodPost, "/challenge/7/increment", `{}`, 400, msgUserRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.detail, decode[apperror.Body](t, rec).Detail)
		})
	}
}

func TestChallengeGuardOnlyCoversWrites(t *testing.T) {
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	h := newTestRouter(deny)

	rec := call(t, h, http.MethodPost, "/challenge/create", `{"challengerId":"a","challengedId":"b","channelId":"c"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, h, http.MethodGet, "/challenge/user/a/all", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChallengeHandlerDecodesEscapedIDs(t *testing.T) {
	h := newTestRouter(nil)
	rec := call(t, h, http.MethodPost, "/challenge/create",
		`{"challengerId":"a b","challengedId":"c","channelId":"geral/1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, h, http.MethodGet, "/challenge/user/a%20b/pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]Response](t, rec), 1)

	id := strconv.FormatInt(decode[[]Response](t, rec)[0].ID, 10)
	rec = call(t, h, http.MethodPost, "/challenge/"+id+"/accept", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, "/challenge/channel/geral%2F1/active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]Response](t, rec), 1)
}
