package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/models"
	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
)

type fakeValidator struct {
	tokens map[string]models.Identity
	err    error
}

func (f fakeValidator) Validate(_ context.Context, token string) (models.Identity, error) {
	if f.err != nil {
		return models.Identity{}, f.err
	}
	id, ok := f.tokens[token]
	if !ok {
		return models.Identity{}, types.ErrInvalidToken
	}
	return id, nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestAuth(t *testing.T) {
	alice := models.NewIdentity()

	var seen models.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = models.CallerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name      string
		header    string
		validator fakeValidator
		wantCode  int
		wantErr   string
		wantID    models.Identity
	}{
		{name: "no header is anonymous", wantCode: http.StatusNoContent, wantID: models.Anonymous},
		{
			name:      "valid token",
			header:    "Bearer good",
			validator: fakeValidator{tokens: map[string]models.Identity{"good": alice}},
			wantCode:  http.StatusNoContent,
			wantID:    alice,
		},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized, wantErr: "invalid Authorization header format"},
		{name: "empty token", header: "Bearer ", wantCode: http.StatusUnauthorized, wantErr: "invalid Authorization header format"},
		{name: "unknown token", header: "Bearer nope", wantCode: http.StatusUnauthorized, wantErr: "invalid credentials"},
		{
			name:      "expired token",
			header:    "Bearer old",
			validator: fakeValidator{err: types.ErrTokenExpired},
			wantCode:  http.StatusUnauthorized,
			wantErr:   "token expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = models.Identity{}
			m := NewMiddleware(tt.validator, logger.Nop())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			m.Auth(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, rec))
				return
			}
			assert.Equal(t, tt.wantID, seen)
		})
	}
}

func TestRequireCaller(t *testing.T) {
	m := NewMiddleware(fakeValidator{}, logger.Nop())
	h := m.RequireCaller(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(models.WithCaller(req.Context(), models.Anonymous))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, types.ErrUnauthorized.Error(), decodeError(t, rec))
	})

	t.Run("no caller in context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(models.WithCaller(req.Context(), models.NewIdentity()))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	admin := models.NewIdentity()
	m := NewMiddleware(fakeValidator{}, logger.Nop(), admin)
	h := m.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		caller   models.Identity
		wantCode int
		wantErr  string
	}{
		{name: "anonymous", caller: models.Anonymous, wantCode: http.StatusUnauthorized, wantErr: types.ErrUnauthorized.Error()},
		{name: "regular user", caller: models.NewIdentity(), wantCode: http.StatusForbidden, wantErr: types.ErrForbidden.Error()},
		{name: "admin", caller: admin, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/snapshot", nil)
			req = req.WithContext(models.WithCaller(req.Context(), tt.caller))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, rec))
			}
		})
	}
}

func TestRequireAdminWithoutAdmins(t *testing.T) {
	m := NewMiddleware(fakeValidator{}, logger.Nop())
	h := m.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/snapshot", nil)
	req = req.WithContext(models.WithCaller(req.Context(), models.NewIdentity()))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestID(t *testing.T) {
	m := NewMiddleware(fakeValidator{}, logger.Nop())

	var got string
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = wrap.GetRequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, got)
		assert.Equal(t, got, rec.Header().Get(RequestIDHeader))
	})

	t.Run("reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", got)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestRecover(t *testing.T) {
	m := NewMiddleware(fakeValidator{}, logger.Nop())
	h := m.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
	assert.NotContains(t, decodeError(t, rec), "boom")
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	m := NewMiddleware(fakeValidator{}, logger.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rides/{ride_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	m.Metrics("test", mux)(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rides/ride_123", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
