package middleware

import (
	"context"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/auth"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PrincipalKey is the context key for the authenticated Principal.
const PrincipalKey contextKey = "principal"

// Principal is the session a request runs under. It is built once from the
// signed token; handlers read the admin flag from here and nowhere else.
type Principal struct {
	UserID    string
	Email     string
	Nickname  string
	Admin     bool
	TokenID   string
	ExpiresAt time.Time
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFrom extracts the principal from the context.
// Returns nil if the request is anonymous.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(PrincipalKey).(*Principal)
	return p
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	if p := PrincipalFrom(ctx); p != nil {
		return p.UserID
	}
	return ""
}

// Authenticator validates bearer tokens against the signing key and the
// revocation list.
type Authenticator struct {
	jwt     *auth.JWTManager
	revoker auth.Revoker
}

// NewAuthenticator creates an Authenticator. A nil revoker disables revocation checks.
func NewAuthenticator(jwt *auth.JWTManager, revoker auth.Revoker) *Authenticator {
	if revoker == nil {
		revoker = auth.NopRevoker{}
	}
	return &Authenticator{jwt: jwt, revoker: revoker}
}

// principal resolves the Authorization header. It returns (nil, nil) when the
// header is absent.
func (a *Authenticator) principal(ctx context.Context, header string) (*Principal, *apperr.Error) {
	if header == "" {
		return nil, nil
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, auth.ErrInvalidToken.Error(), auth.ErrInvalidToken)
	}

	claims, err := a.jwt.Validate(parts[1])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, auth.ErrInvalidToken.Error(), err)
	}

	revoked, err := a.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Transient("try again", err)
	}
	if revoked {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, auth.ErrRevokedToken.Error(), auth.ErrRevokedToken)
	}

	p := &Principal{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Nickname: claims.Nickname,
		Admin:    claims.Admin,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// RequireAuth returns an interceptor that requires a valid session for every
// procedure except the listed public ones. Public procedures still receive
// the principal when a valid token is sent.
func (a *Authenticator) RequireAuth(public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			isPublic := open[req.Spec().Procedure]

			p, aerr := a.principal(ctx, req.Header().Get("Authorization"))
			if aerr != nil && !isPublic {
				return nil, apiconnect.NewError(aerr, nil)
			}
			if p == nil && !isPublic {
				return nil, apiconnect.NewError(
					apperr.Wrap(apperr.KindUnauthenticated, auth.ErrMissingToken.Error(), auth.ErrMissingToken), nil)
			}
			if p != nil {
				ctx = WithPrincipal(ctx, p)
			}

			return next(ctx, req)
		}
	}
}

// RequireAdmin returns an interceptor that rejects the listed procedures
// unless the session carries the admin flag. It must run after RequireAuth.
func RequireAdmin(procedures ...string) connect.UnaryInterceptorFunc {
	admin := make(map[string]bool, len(procedures))
	for _, p := range procedures {
		admin[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if admin[req.Spec().Procedure] {
				p := PrincipalFrom(ctx)
				if p == nil {
					return nil, apiconnect.NewError(apperr.New(apperr.KindUnauthenticated, auth.ErrMissingToken.Error()), nil)
				}
				if !p.Admin {
					return nil, apiconnect.NewError(apperr.New(apperr.KindPermissionDenied, "admin only"), nil)
				}
			}
			return next(ctx, req)
		}
	}
}
