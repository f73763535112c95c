package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/present/rest/presenter"
	"github.com/totegamma/concrnt-aspects/internal/service"
)

var tracer = otel.Tracer("auth")

// RequesterKey holds the authenticated domain.User in the echo context.
const RequesterKey = "requester"

type Authenticator interface {
	AuthJwt(ctx context.Context, token string) (*service.AuthResult, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// IdentifyIdentity resolves a Bearer token into the requesting user. Requests
// without a valid token pass through anonymously.
func (s *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skipCheckAuthorization
			}

			authType, token := split[0], split[1]
			if authType != "Bearer" {
				span.RecordError(fmt.Errorf("only Bearer is acceptable"))
				goto skipCheckAuthorization
			}

			result, err := s.auth.AuthJwt(ctx, token)
			if err != nil {
				span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyIdentity: s.auth.AuthJwt failed"))
				goto skipCheckAuthorization
			}

			ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, result.User.ID)
			ctx = context.WithValue(ctx, domain.RequesterTypeCtxKey, domain.LocalUser)
			c.Set(RequesterKey, result.User)
			span.SetAttributes(attribute.Int64("RequesterId", result.User.ID))
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireUser rejects requests that IdentifyIdentity did not resolve to a
// local user.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		requesterType, _ := ctx.Value(domain.RequesterTypeCtxKey).(int)
		requesterID, _ := ctx.Value(domain.RequesterIdCtxKey).(int64)

		user, ok := Requester(c)
		if !ok || requesterType != domain.LocalUser || requesterID != user.ID {
			return presenter.Unauthorized(c)
		}
		return next(c)
	}
}

func Requester(c echo.Context) (domain.User, bool) {
	user, ok := c.Get(RequesterKey).(domain.User)
	return user, ok
}
