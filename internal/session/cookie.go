package session

import (
	"fmt"
	"net/http"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// The cookie only carries the session ID. Everything else (token, user,
// expiry) lives server-side in the Store, so a stolen cookie expires with
// the session and can be revoked by deleting the session.
type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec writes and reads the signed cookie that ties a browser to a
// stored session.
type CookieCodec struct {
	Secret []byte
	Name   string
	Domain string
	Secure bool
}

func (cc *CookieCodec) Write(c echo.Context, sess *Session) error {
	expiry := time.Unix(sess.ExpiresAt, 0)

	claims := &cookieClaims{
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)

	signed, err := token.SignedString(cc.Secret)
	if err != nil {
		return fmt.Errorf("couldn't sign session cookie: %v", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     cc.Name,
		Value:    signed,
		Domain:   cc.Domain,
		Path:     "/",
		Secure:   cc.Secure,
		HttpOnly: true,
		Expires:  expiry,
	})

	return nil
}

func (cc *CookieCodec) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:    cc.Name,
		Value:   "",
		Domain:  cc.Domain,
		Path:    "/",
		Expires: time.Unix(0, 0),
	})
}

// Read returns the session ID from the request's cookie, or
// ErrInvalidSession when the cookie is missing, tampered with, or expired.
func (cc *CookieCodec) Read(c echo.Context) (string, error) {
	authCookie, err := c.Cookie(cc.Name)
	if err != nil || authCookie.Value == "" {
		return "", ErrInvalidSession
	}

	decoder := jwt.NewParser(jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}))

	claims := new(cookieClaims)

	token, err := decoder.ParseWithClaims(authCookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return cc.Secret, nil
	})

	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidSession
	}

	return claims.SessionID, nil
}
