package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_SignVerify(t *testing.T) {
	j := NewJWT("secret")

	tok, err := j.Sign(42)
	require.NoError(t, err)

	id, err := j.Verify(tok)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestJWT_RejectsWrongSecretAndExpired(t *testing.T) {
	tok, err := NewJWT("secret").Sign(1)
	require.NoError(t, err)

	_, err = NewJWT("other").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewJWT("secret")
	later.now = func() time.Time { return time.Now().Add(tokenTTL + time.Hour) }
	_, err = later.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewJWT("secret").Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, ComparePassword(hash, "correct horse"))
	assert.False(t, ComparePassword(hash, "wrong horse"))
}

func TestRequireAuth(t *testing.T) {
	j := NewJWT("secret")
	tok, err := j.Sign(7)
	require.NoError(t, err)

	var gotID uint64
	h := RequireAuth(j)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong_scheme", "Basic " + tok, http.StatusUnauthorized},
		{"bad_token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer " + tok, http.StatusNoContent},
		{"ok_lowercase_scheme", "bearer " + tok, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
	assert.EqualValues(t, 7, gotID)
}

func TestRequireAuth_NilDisables(t *testing.T) {
	h := RequireAuth(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
