package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	identity *Identity
	err      error
}

func (s *stubResolver) Identity(context.Context, int64) (*Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func identityCapture(got **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := UserFromContext(r.Context()); ok {
			*got = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func doProtected(t *testing.T, handler http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireUserInjectsIdentity(t *testing.T) {
	store, _ := newTestStore(t)
	token, err := store.Issue(context.Background(), 42)
	require.NoError(t, err)

	var got *Identity
	handler := RequireUser(store, &stubResolver{identity: &Identity{ID: 42, Role: "USER"}})(identityCapture(&got))

	rec := doProtected(t, handler, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.ID)
}

func TestRequireUserMissingToken(t *testing.T) {
	store, _ := newTestStore(t)
	var got *Identity
	handler := RequireUser(store, &stubResolver{identity: &Identity{ID: 42}})(identityCapture(&got))

	rec := doProtected(t, handler, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, got)
}

func TestRequireUserExpiredToken(t *testing.T) {
	store, mr := newTestStore(t)
	token, err := store.Issue(context.Background(), 42)
	require.NoError(t, err)
	mr.FastForward(2 * time.Hour)

	handler := RequireUser(store, &stubResolver{identity: &Identity{ID: 42}})(identityCapture(new(*Identity)))

	rec := doProtected(t, handler, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserResolverFailure(t *testing.T) {
	store, _ := newTestStore(t)
	token, err := store.Issue(context.Background(), 42)
	require.NoError(t, err)

	handler := RequireUser(store, &stubResolver{err: errors.New("user gone")})(identityCapture(new(*Identity)))

	rec := doProtected(t, handler, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserBlockedAccount(t *testing.T) {
	store, _ := newTestStore(t)
	token, err := store.Issue(context.Background(), 42)
	require.NoError(t, err)

	var got *Identity
	handler := RequireUser(store, &stubResolver{identity: &Identity{ID: 42, Blocked: true}})(identityCapture(&got))

	rec := doProtected(t, handler, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, got)
}

func TestRequireAdmin(t *testing.T) {
	store, _ := newTestStore(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name string
		role string
		want int
	}{
		{name: "admin passes", role: "ADMIN", want: http.StatusOK},
		{name: "customer refused", role: "USER", want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := store.Issue(context.Background(), 1)
			require.NoError(t, err)

			chain := RequireUser(store, &stubResolver{identity: &Identity{ID: 1, Role: tc.role}})(RequireAdmin(next))
			rec := doProtected(t, chain, token)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer deadbeef")
	assert.Equal(t, "deadbeef", BearerToken(req))
}
