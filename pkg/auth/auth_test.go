package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func owner() *models.User {
	id := int64(30)
	return &models.User{UserID: 3, FirstName: "Ada", Email: "ada@lab.fr", Role: "owner", OwnerID: &id}
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("s3cret", time.Hour)
	token, err := issuer.Issue(owner())
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	user, err := claims.User()
	require.NoError(t, err)
	assert.Equal(t, owner(), user)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	token, err := NewIssuer("other", time.Hour).Issue(owner())
	require.NoError(t, err)
	_, err = NewIssuer("s3cret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = NewIssuer("s3cret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewIssuer("s3cret", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaimsWithBadSubject(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "ada"}}
	_, err := c.User()
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDefaultTTL(t *testing.T) {
	assert.Equal(t, 8*time.Hour, NewIssuer("x", 0).TTL())
}

func newEngine(issuer *Issuer, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		s := SessionFrom(c)
		id, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"authenticated": s.Authenticated(), "user_id": id})
	})
	r.GET("/t", handlers...)
	return r
}

func TestRequireAuthTokenSources(t *testing.T) {
	issuer := NewIssuer("s3cret", time.Hour)
	token, err := issuer.Issue(owner())
	require.NoError(t, err)
	r := newEngine(issuer, RequireAuth(issuer, testLogger()))

	tests := []struct {
		name   string
		build  func(req *http.Request)
		status int
	}{
		{"bearer header", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: CookieName, Value: token}) }, http.StatusOK},
		{"query", func(req *http.Request) { req.URL.RawQuery = "token=" + token }, http.StatusOK},
		{"missing", func(req *http.Request) {}, http.StatusUnauthorized},
		{"garbage", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/t", nil)
			tt.build(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"authenticated":true,"user_id":3}`, w.Body.String())
			}
		})
	}
}

func TestOptionalAuthFallsBackToAnonymous(t *testing.T) {
	issuer := NewIssuer("s3cret", time.Hour)
	r := newEngine(issuer, OptionalAuth(issuer, testLogger()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false,"user_id":null}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	issuer := NewIssuer("s3cret", time.Hour)
	tests := []struct {
		name   string
		user   models.User
		status int
	}{
		{"matching role", models.User{UserID: 1, Role: "owner"}, http.StatusOK},
		{"admin overrides", models.User{UserID: 2, Role: models.RoleAdmin}, http.StatusOK},
		{"staff overrides", models.User{UserID: 3, Role: "user", IsStaff: true}, http.StatusOK},
		{"plain user", models.User{UserID: 4, Role: "user"}, http.StatusForbidden},
	}
	r := newEngine(issuer, RequireAuth(issuer, testLogger()), RequireRole("owner"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := issuer.Issue(&tt.user)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodGet, "/t", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

type fakeUsers struct {
	patch map[string]any
	reply *models.User
	err   error
}

func (f *fakeUsers) UpdateUser(ctx context.Context, userID int64, patch map[string]any) (*models.User, error) {
	f.patch = patch
	return f.reply, f.err
}

func (f *fakeUsers) UploadProfilePicture(ctx context.Context, userID int64, filename string, r io.Reader) (*models.User, error) {
	return f.reply, f.err
}

func TestSessionUpdateReturnsNewSession(t *testing.T) {
	issuer := NewIssuer("s3cret", time.Hour)
	token, err := issuer.Issue(owner())
	require.NoError(t, err)
	s := NewSession(*owner(), token, issuer)

	api := &fakeUsers{reply: &models.User{Role: models.RoleAdmin}}
	next, err := s.UpdateUser(context.Background(), api, map[string]any{"role": models.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, "owner", s.CurrentUser().Role, "original session untouched")
	assert.Equal(t, models.RoleAdmin, next.CurrentUser().Role)
	assert.Equal(t, "Ada", next.CurrentUser().FirstName)
	assert.NotEqual(t, s.Token(), next.Token())

	claims, err := issuer.Parse(next.Token())
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestSessionUpdateFailure(t *testing.T) {
	issuer := NewIssuer("s3cret", time.Hour)
	s := NewSession(*owner(), "tok", issuer)
	_, err := s.UpdatePicture(context.Background(), &fakeUsers{err: errors.New("too large")}, "me.png", nil)
	assert.EqualError(t, err, "too large")
}

func TestSignOut(t *testing.T) {
	s := NewSession(*owner(), "tok", NewIssuer("s3cret", time.Hour))
	out := s.SignOut()
	assert.True(t, s.Authenticated())
	assert.False(t, out.Authenticated())
	assert.Zero(t, out.CurrentUser().UserID)
}
