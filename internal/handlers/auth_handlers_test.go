package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/events"
	"github.com/smarttransit/backend/internal/hash"
	mwauth "github.com/smarttransit/backend/internal/middleware/auth"
	"github.com/smarttransit/backend/internal/models"
	"github.com/smarttransit/backend/internal/repository"
	authsvc "github.com/smarttransit/backend/internal/service/auth"
	usersvc "github.com/smarttransit/backend/internal/service/user"
	"github.com/smarttransit/backend/internal/tokens"
)

var (
	testAccessSecret  = []byte("test-access-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

type testEnv struct {
	e     *echo.Echo
	db    *gorm.DB
	auth  *AuthHandler
	users *UserHandler
	svc   *authsvc.Service
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	userRepo := &repository.UserRepo{DB: db}
	refreshRepo := &repository.RefreshTokenRepo{DB: db}
	producer := &events.Producer{}

	svc := &authsvc.Service{
		Users:         userRepo,
		Refresh:       refreshRepo,
		AccessSecret:  testAccessSecret,
		AccessExpiry:  15 * time.Minute,
		RefreshSecret: testRefreshSecret,
		RefreshExpiry: time.Hour,
	}
	userService := &usersvc.Service{
		Users:    userRepo,
		Refresh:  refreshRepo,
		Producer: producer,
	}

	return &testEnv{
		e:  echo.New(),
		db: db,
		auth: &AuthHandler{
			Auth:          svc,
			Producer:      producer,
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: time.Hour,
		},
		users: &UserHandler{Users: userService, AccessSecret: testAccessSecret},
		svc:   svc,
	}
}

func (env *testEnv) createUser(t *testing.T, email string, role models.Role) *models.User {
	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	user := &models.User{
		FirstName:    "Test",
		LastName:     "User",
		PhoneNumber:  "+1555" + email,
		Email:        email,
		PasswordHash: pwHash,
		Age:          25,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func jsonRequest(method, target string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (env *testEnv) login(t *testing.T, email string) []*http.Cookie {
	req := jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": "password",
	})
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	require.NoError(t, env.auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Result().Cookies()
}

func TestLoginSetsCookies(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "rider@example.com", models.RoleCommuter)

	cookies := env.login(t, "rider@example.com")

	access := cookieByName(cookies, "accessToken")
	refresh := cookieByName(cookies, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	require.NotEmpty(t, access.Value)
	require.NotEmpty(t, refresh.Value)
	require.True(t, access.HttpOnly)
	require.True(t, refresh.HttpOnly)
	require.Equal(t, http.SameSiteNoneMode, refresh.SameSite)
	require.Equal(t, int(time.Hour.Seconds()), refresh.MaxAge)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "rider@example.com", models.RoleCommuter)

	for _, body := range []map[string]string{
		{"email": "rider@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "password"},
	} {
		req := jsonRequest(http.MethodPost, "/api/v1/auth/login", body)
		rec := httptest.NewRecorder()
		c := env.e.NewContext(req, rec)

		err := env.auth.Login(c)
		require.Error(t, err)
		require.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
		require.Equal(t, "invalid email or password", err.Error())
	}
}

func TestRefreshKeepsRefreshCookie(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "rider@example.com", models.RoleCommuter)
	cookies := env.login(t, "rider@example.com")
	refresh := cookieByName(cookies, "refreshToken")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/refresh", nil)
	req.AddCookie(refresh)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	handler := mwauth.RefreshGuard(testRefreshSecret)(env.auth.Refresh)
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusOK, rec.Code)

	newCookies := rec.Result().Cookies()
	newAccess := cookieByName(newCookies, "accessToken")
	newRefresh := cookieByName(newCookies, "refreshToken")
	require.NotNil(t, newAccess)
	require.NotEmpty(t, newAccess.Value)
	// reuse-while-valid: refresh token survives rotation inside its window
	require.Equal(t, refresh.Value, newRefresh.Value)
}

func TestRefreshWithMismatchedToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "rider@example.com", models.RoleCommuter)
	env.login(t, "rider@example.com")

	p := tokens.Payload{ID: user.ID, Email: user.Email, Role: user.Role}
	forged, err := tokens.SignRefresh(p, testRefreshSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: forged})
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	handler := mwauth.RefreshGuard(testRefreshSecret)(env.auth.Refresh)
	err = handler(c)
	require.Error(t, err)
	require.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestLogoutFlow(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "rider@example.com", models.RoleCommuter)
	cookies := env.login(t, "rider@example.com")
	access := cookieByName(cookies, "accessToken")
	refresh := cookieByName(cookies, "refreshToken")

	logout := func() (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil)
		req.AddCookie(access)
		req.AddCookie(refresh)
		rec := httptest.NewRecorder()
		c := env.e.NewContext(req, rec)

		handler := mwauth.AccessGuard(testAccessSecret)(
			mwauth.RefreshGuard(testRefreshSecret)(env.auth.Logout))
		return rec, handler(c)
	}

	rec, err := logout()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := rec.Result().Cookies()
	require.Less(t, cookieByName(cleared, "accessToken").MaxAge, 0)
	require.Less(t, cookieByName(cleared, "refreshToken").MaxAge, 0)

	// second logout is a no-op
	rec, err = logout()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	// refresh with the old cookie now fails closed
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/refresh", nil)
	req.AddCookie(refresh)
	c := env.e.NewContext(req, httptest.NewRecorder())
	handler := mwauth.RefreshGuard(testRefreshSecret)(env.auth.Refresh)
	err = handler(c)
	require.Error(t, err)
	require.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}
