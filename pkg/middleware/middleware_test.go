package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	qt "github.com/frankban/quicktest"
)

func signToken(c *qt.C, secret string, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	c.Assert(err, qt.IsNil)
	return token
}

func TestParseSessionToken(t *testing.T) {
	c := qt.New(t)
	secret := "test-secret"

	c.Run("returns the subject of a valid token", func(c *qt.C) {
		token := signToken(c, secret, jwt.MapClaims{
			"sub": "abc123",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		subject, err := ParseSessionToken(token, secret)
		c.Assert(err, qt.IsNil)
		c.Check(subject, qt.Equals, "abc123")
	})

	c.Run("rejects a token signed with another secret", func(c *qt.C) {
		token := signToken(c, "wrong-secret", jwt.MapClaims{"sub": "abc123"})
		_, err := ParseSessionToken(token, secret)
		c.Check(err, qt.IsNotNil)
	})

	c.Run("rejects an expired token", func(c *qt.C) {
		token := signToken(c, secret, jwt.MapClaims{
			"sub": "abc123",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		_, err := ParseSessionToken(token, secret)
		c.Check(err, qt.IsNotNil)
	})

	c.Run("rejects a token without a subject", func(c *qt.C) {
		token := signToken(c, secret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		_, err := ParseSessionToken(token, secret)
		c.Check(err, qt.IsNotNil)
	})

	c.Run("rejects an unsigned token", func(c *qt.C) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "abc123"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		c.Assert(err, qt.IsNil)
		_, err = ParseSessionToken(token, secret)
		c.Check(err, qt.IsNotNil)
	})

	c.Run("rejects garbage", func(c *qt.C) {
		_, err := ParseSessionToken("not-a-token", secret)
		c.Check(err, qt.IsNotNil)
	})
}
