package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sociogram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, expires time.Time) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID:   7,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func invoke(t *testing.T, authHeader string) (*models.JwtCustomClaims, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *models.JwtCustomClaims
	next := func(c echo.Context) error {
		seen, _ = c.Get("user").(*models.JwtCustomClaims)
		return nil
	}
	err := JWTAuthMiddleware(testSecret)(next)(c)
	return seen, err
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token := signToken(t, testSecret, time.Now().Add(time.Hour))
	claims, err := invoke(t, "Bearer "+token)
	require.NoError(t, err)
	require.NotNil(t, claims)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestJWTAuthRejectsBadRequests(t *testing.T) {
	expired := signToken(t, testSecret, time.Now().Add(-time.Hour))
	wrongKey := signToken(t, "other-secret", time.Now().Add(time.Hour))

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage token":  "Bearer not.a.token",
		"expired":        "Bearer " + expired,
		"wrong key":      "Bearer " + wrongKey,
	}
	for name, header := range cases {
		claims, err := invoke(t, header)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, name)
		assert.Equal(t, http.StatusUnauthorized, he.Code, name)
		assert.Nil(t, claims, name)
	}
}
