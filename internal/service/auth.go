package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

var tracer = otel.Tracer("service")

// AuthService issues and verifies HS256 session tokens. The subject carries
// the local user id and the audience is the node FQDN.
type AuthService struct {
	config domain.Config
	secret []byte
	users  UserLookup
}

// UserLookup resolves the user named by a token.
type UserLookup interface {
	Get(ctx context.Context, id int64) (domain.User, error)
}

func NewAuthService(
	config domain.Config,
	secret string,
	users UserLookup,
) *AuthService {
	return &AuthService{
		config: config,
		secret: []byte(secret),
		users:  users,
	}
}

type AuthResult struct {
	User domain.User
}

func (s *AuthService) Issue(user domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.config.FQDN,
		Subject:   strconv.FormatInt(user.ID, 10),
		Audience:  jwt.ClaimStrings{s.config.FQDN},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "jwt signing failed")
	}
	return token, nil
}

func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(s.config.FQDN),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		err = errors.Wrap(err, "jwt validation failed")
		span.RecordError(err)
		return nil, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		err := fmt.Errorf("invalid subject %q", claims.Subject)
		span.RecordError(err)
		return nil, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &AuthResult{User: user}, nil
}
