package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"shipits/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := newTestApp(s)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name: "success",
			body: map[string]string{
				"username": "mbuilder",
				"email":    "mbuilder@andrew.cmu.edu",
				"password": testPassword,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: map[string]string{
				"username": "othername",
				"email":    "mbuilder@andrew.cmu.edu",
				"password": testPassword,
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "duplicate username",
			body: map[string]string{
				"username": "mbuilder",
				"email":    "fresh@andrew.cmu.edu",
				"password": testPassword,
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "weak password",
			body: map[string]string{
				"username": "weakling",
				"email":    "weakling@andrew.cmu.edu",
				"password": "short",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid email",
			body: map[string]string{
				"username": "bademail",
				"email":    "not-an-email",
				"password": testPassword,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing fields",
			body: map[string]string{
				"username": "nopassword",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/api/auth/register", tt.body, nil)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestRegister_SetsHTTPOnlySessionCookie(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := newTestApp(s)

	cookie := registerUser(t, app, "cookiecheck")
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := newTestApp(s)
	registerUser(t, app, "returning")

	t.Run("valid credentials", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "returning@andrew.cmu.edu",
			"password": testPassword,
		}, nil)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var hasSession bool
		for _, cookie := range resp.Cookies() {
			if cookie.Name == SessionCookie && cookie.Value != "" {
				hasSession = true
			}
		}
		assert.True(t, hasSession)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "returning@andrew.cmu.edu",
			"password": "Wrong-Passw0rd!!",
		}, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "ghost@andrew.cmu.edu",
			"password": testPassword,
		}, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogout_RevokesSession(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := newTestApp(s)

	cookie := registerUser(t, app, "leaver")

	// The session works before logout.
	resp := doJSON(t, app, http.MethodGet, "/api/users/me", nil, cookie)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/logout", nil, cookie)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Replaying the old cookie must fail: the JTI is on the revocation list.
	resp = doJSON(t, app, http.MethodGet, "/api/users/me", nil, cookie)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := newTestApp(s)

	t.Run("no credentials", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/users/me", nil, nil)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage cookie", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/users/me", nil, &http.Cookie{
			Name:  SessionCookie,
			Value: "not.a.jwt",
		})
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := newTestServer(t)
		other.config.SessionSecret = "a-completely-different-secret-value"
		token, _, err := other.generateToken(1, "intruder")
		require.NoError(t, err)

		resp := doJSON(t, app, http.MethodGet, "/api/users/me", nil, &http.Cookie{
			Name:  SessionCookie,
			Value: token,
		})
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bearer header works for non-browser clients", func(t *testing.T) {
		cookie := registerUser(t, app, "apiclient")

		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+cookie.Value)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestAdminRequired(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := newTestApp(s)

	userCookie := registerUser(t, app, "regular")
	adminCookie := registerUser(t, app, "overseer")

	var admin models.User
	require.NoError(t, s.db.Where("username = ?", "overseer").First(&admin).Error)
	require.NoError(t, s.db.Model(&admin).Update("role", models.RoleAdmin).Error)

	var target models.User
	require.NoError(t, s.db.Where("username = ?", "regular").First(&target).Error)

	t.Run("non-admin forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost,
			"/api/admin/categories", map[string]string{"name": "Robotics"}, userCookie)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin allowed", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost,
			"/api/admin/categories", map[string]string{"name": "Robotics"}, adminCookie)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("admin can promote", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost,
			"/api/users/"+itoa(target.ID)+"/promote-admin", nil, adminCookie)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var updated models.User
		require.NoError(t, s.db.First(&updated, target.ID).Error)
		assert.Equal(t, models.RoleAdmin, updated.Role)
	})
}
