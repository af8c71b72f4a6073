package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/auth"
	"github.com/mmynk/clubhouse/internal/metrics"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/pkg/api"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

const (
	publicProcedure = "/test.v1.Test/Public"
	memberProcedure = "/test.v1.Test/Member"
	adminProcedure  = "/test.v1.Test/Admin"
)

type revokedSet map[string]bool

func (r revokedSet) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	r[jti] = true
	return nil
}

func (r revokedSet) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r[jti], nil
}

// whoAmI echoes the principal back as a user.
func whoAmI(ctx context.Context, _ *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	p := PrincipalFrom(ctx)
	if p == nil {
		return connect.NewResponse(&api.GetCurrentUserResponse{}), nil
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{
		User: &api.User{ID: p.UserID, Nickname: p.Nickname, IsAdmin: p.Admin},
	}), nil
}

type testServer struct {
	url     string
	jwt     *auth.JWTManager
	revoked revokedSet
	metrics *metrics.Registry
	logs    *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		jwt:     auth.NewJWTManager("secret", time.Hour),
		revoked: revokedSet{},
		metrics: metrics.NewRegistry(),
		logs:    &bytes.Buffer{},
	}
	logger := slog.New(slog.NewJSONHandler(ts.logs, nil))
	authn := NewAuthenticator(ts.jwt, ts.revoked)

	opts := []connect.HandlerOption{
		connect.WithCodec(apiconnect.JSONCodec{}),
		connect.WithInterceptors(
			MetricsInterceptor(ts.metrics),
			authn.RequireAuth(publicProcedure),
			LoggingInterceptor(logger),
			RequireAdmin(adminProcedure),
		),
	}

	mux := http.NewServeMux()
	for _, p := range []string{publicProcedure, memberProcedure, adminProcedure} {
		mux.Handle(p, connect.NewUnaryHandler(p, whoAmI, opts...))
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	ts.url = server.URL
	return ts
}

func (ts *testServer) call(t *testing.T, procedure, token string) (*api.User, error) {
	t.Helper()
	client := connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](
		http.DefaultClient, ts.url+procedure, connect.WithCodec(apiconnect.JSONCodec{}))
	req := connect.NewRequest(&api.GetCurrentUserRequest{})
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg.User, nil
}

func (ts *testServer) token(t *testing.T, admin bool) (string, *auth.Claims) {
	t.Helper()
	token, claims, err := ts.jwt.Generate(&models.User{ID: "u1", Email: "ze@example.com", Nickname: "Ze", IsAdmin: admin})
	require.NoError(t, err)
	return token, claims
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t)
	memberToken, memberClaims := ts.token(t, false)

	t.Run("public procedure is open", func(t *testing.T) {
		user, err := ts.call(t, publicProcedure, "")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("public procedure still sees the session", func(t *testing.T) {
		user, err := ts.call(t, publicProcedure, memberToken)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := ts.call(t, memberProcedure, "")
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
		assert.Equal(t, apperr.KindUnauthenticated, apiconnect.ErrorKind(err))
	})

	t.Run("bad token", func(t *testing.T) {
		_, err := ts.call(t, memberProcedure, "garbage")
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("valid token", func(t *testing.T) {
		user, err := ts.call(t, memberProcedure, memberToken)
		require.NoError(t, err)
		assert.Equal(t, "Ze", user.Nickname)
		assert.False(t, user.IsAdmin)
	})

	t.Run("revoked token", func(t *testing.T) {
		ts.revoked[memberClaims.ID] = true
		_, err := ts.call(t, memberProcedure, memberToken)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})
}

func TestRequireAdmin(t *testing.T) {
	ts := newTestServer(t)
	memberToken, _ := ts.token(t, false)
	adminToken, _ := ts.token(t, true)

	_, err := ts.call(t, adminProcedure, memberToken)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	assert.Equal(t, apperr.KindPermissionDenied, apiconnect.ErrorKind(err))

	user, err := ts.call(t, adminProcedure, adminToken)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	// Admin gating leaves other procedures alone
	_, err = ts.call(t, memberProcedure, memberToken)
	assert.NoError(t, err)
}

func TestInterceptorsRecord(t *testing.T) {
	ts := newTestServer(t)
	memberToken, _ := ts.token(t, false)

	_, _ = ts.call(t, memberProcedure, memberToken)
	_, _ = ts.call(t, memberProcedure, "")
	_, _ = ts.call(t, adminProcedure, memberToken)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RPCRequests.WithLabelValues(memberProcedure, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RPCRequests.WithLabelValues(memberProcedure, "unauthenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RPCRequests.WithLabelValues(adminProcedure, "permission_denied")))

	logs := ts.logs.String()
	assert.Contains(t, logs, `"msg":"RPC ok"`)
	assert.Contains(t, logs, `"user_id":"u1"`)
	assert.Contains(t, logs, `"code":"permission_denied"`)
}

func TestRateLimiter(t *testing.T) {
	m := metrics.NewRegistry()
	limiter := NewRateLimiter(1, 2, m)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	r := chi.NewRouter()
	r.With(limiter.Handler).Get("/rsvp", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/rsvp", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2:1000"), "other clients have their own bucket")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1003"), "bucket refills")

	now = now.Add(time.Hour)
	limiter.Sweep()
	assert.Empty(t, limiter.limiters)
}

func TestHTTPMiddleware(t *testing.T) {
	m := metrics.NewRegistry()
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := chi.NewRouter()
	r.Use(NewStructuredLogger(logger), HTTPMetrics(m))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for _, path := range []string{"/healthz", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/healthz", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/boom", "500")))
	assert.Contains(t, logs.String(), `"msg":"server error"`)
	assert.Contains(t, logs.String(), `"msg":"request completed"`)
}
