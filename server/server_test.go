package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"notesapp/pkg/auth"
	"notesapp/pkg/media"
	"notesapp/pkg/metrics"
	"notesapp/pkg/tokenstore"
)

type testEnv struct {
	db      *memDB
	store   *tokenstore.Store
	tokens  *auth.Tokens
	storage *media.LocalStorage
	health  *fakeHealth
	metrics *metrics.Metrics
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newMemDB()
	store := tokenstore.New()
	tokens := auth.NewTokens([]byte("test-secret"), time.Hour)
	svc, err := auth.NewService(fakeUsers{db}, tokens, store, bcrypt.MinCost)
	require.NoError(t, err)
	storage, err := media.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	health := &fakeHealth{now: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)}
	m := metrics.New(prometheus.NewRegistry(), store.Len)

	srv := New(Deps{
		Auth:           svc,
		Tokens:         tokens,
		Revocations:    store,
		Notes:          fakeNotes{db},
		Folders:        fakeFolders{db},
		Tags:           fakeTags{db},
		Media:          fakeMedia{db},
		Attacher:       media.NewAttacher(storage),
		Health:         health,
		Metrics:        m,
		MaxUploadBytes: 1 << 20,
	})
	return &testEnv{
		db:      db,
		store:   store,
		tokens:  tokens,
		storage: storage,
		health:  health,
		metrics: m,
		handler: srv.Handler(HandlerConfig{AllowedOrigins: []string{"http://localhost:4200"}}),
	}
}

// performRequest sends a request with an optional bearer token.
func performRequest(h http.Handler, method, path string, body io.Reader, token, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// doJSON marshals payload (when non-nil) and sends it.
func (e *testEnv) doJSON(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return performRequest(e.handler, method, path, body, token, "application/json")
}

// signupAndLogin registers a user and returns a fresh token for them.
func (e *testEnv) signupAndLogin(t *testing.T, username string) string {
	t.Helper()
	email := username + "@example.com"
	rec := e.doJSON(t, http.MethodPost, "/api/signup", map[string]string{"username": username, "email": email, "password": "pw-" + username}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = e.doJSON(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": "pw-" + username}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var l []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l), rec.Body.String())
	return l
}
