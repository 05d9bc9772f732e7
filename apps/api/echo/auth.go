package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core/auth"
)

const (
	contextIdentityKey = "identity"
	bearerScheme       = "bearer "
)

func bearerToken(ctx echo.Context) (string, bool) {
	hdr := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(hdr) <= len(bearerScheme) || !strings.EqualFold(hdr[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	return strings.TrimSpace(hdr[len(bearerScheme):]), true
}

// authMiddleware verifies the bearer token and stores its Identity in the context.
// When optional, anonymous requests pass through; a bad token is still rejected.
func authMiddleware(tokens *auth.TokenService, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token, ok := bearerToken(ctx)
			if !ok {
				if optional && ctx.Request().Header.Get(echo.HeaderAuthorization) == "" {
					return next(ctx)
				}
				return errMissingToken
			}
			id, err := tokens.Verify(token)
			if err != nil {
				return errors.Wrap(err, "verifying token")
			}
			ctx.Set(contextIdentityKey, id)
			return next(ctx)
		}
	}
}

// getContextIdentity returns the authenticated caller. Anonymous callers get a zero Identity.
func getContextIdentity(ctx echo.Context) (auth.Identity, bool) {
	id, ok := ctx.Get(contextIdentityKey).(auth.Identity)
	return id, ok
}

func mustContextIdentity(ctx echo.Context) (auth.Identity, error) {
	if id, ok := getContextIdentity(ctx); ok {
		return id, nil
	}
	return auth.Identity{}, errMissingToken
}
