package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hirebridge/recruit-backend/config"
	"github.com/hirebridge/recruit-backend/pkg/resource"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

const (
	// ContextKeyCandidate is the echo context key under which the resolved
	// candidate identity is stored.
	ContextKeyCandidate = "candidate_identity"

	sessionKeyPrefix = "session:"
)

// candidateSession is the JSON payload stored in Redis per active session.
type candidateSession struct {
	CandidateUID string `json:"candidate_uid"`
	Email        string `json:"email"`
}

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	}
}

// CandidateAuth validates the Bearer token, resolves the session in Redis
// and injects the candidate identity into the echo context. Requests without
// a valid session fail with ErrUnauthenticated so the handler can tell the
// client to redirect to login.
func CandidateAuth(redisClient *redis.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return errdomain.ErrUnauthenticated
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return errdomain.ErrUnauthenticated
			}

			sessionKey, err := ParseSessionToken(parts[1], config.Config.Auth.JWTSecret)
			if err != nil {
				return errdomain.ErrUnauthenticated
			}

			identity, err := lookupSession(c.Request().Context(), redisClient, sessionKey)
			if err != nil {
				return errdomain.ErrUnauthenticated
			}

			c.Set(ContextKeyCandidate, identity)
			return next(c)
		}
	}
}

// GetCandidateIdentity extracts the authenticated candidate from the echo
// context. The zero identity is returned when auth did not run.
func GetCandidateIdentity(c echo.Context) resource.CandidateIdentity {
	identity, _ := c.Get(ContextKeyCandidate).(resource.CandidateIdentity)
	return identity
}

// ParseSessionToken validates an HS256 JWT and returns its subject, the
// Redis session key.
func ParseSessionToken(token, secret string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", errors.Wrap(err, "parsing session token")
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.Wrap(errdomain.ErrUnauthenticated, "token has no subject")
	}
	return subject, nil
}

func lookupSession(ctx context.Context, redisClient *redis.Client, sessionKey string) (resource.CandidateIdentity, error) {
	payload, err := redisClient.Get(ctx, sessionKeyPrefix+sessionKey).Result()
	if err != nil {
		return resource.CandidateIdentity{}, errors.Wrap(err, "looking up session")
	}

	var session candidateSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return resource.CandidateIdentity{}, errors.Wrap(err, "decoding session payload")
	}

	candidateUID, err := uuid.FromString(session.CandidateUID)
	if err != nil {
		return resource.CandidateIdentity{}, errors.Wrap(err, "decoding candidate UID")
	}

	return resource.CandidateIdentity{
		UID:   candidateUID,
		Email: session.Email,
	}, nil
}
