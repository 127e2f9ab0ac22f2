package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignupAndLogin(t *testing.T) {
	_, app := newTestServer(t)

	user := signupUser(t, app, "harbor")
	assert.NotZero(t, user.ID)

	// Email match is case-insensitive.
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "Harbor@Example.com",
		"password": "TestPass123!@#",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeData(t, resp, &data)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, user.ID, data.User.ID)
	assert.Equal(t, "harbor", data.User.Username)
}

func TestSignup_Validation(t *testing.T) {
	_, app := newTestServer(t)

	tests := []struct {
		name           string
		payload        map[string]any
		expectedStatus int
	}{
		{
			name: "Weak Password",
			payload: map[string]any{
				"username": "kelp", "email": "kelp@example.com", "password": "short",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Bad Email",
			payload: map[string]any{
				"username": "kelp", "email": "not-an-email", "password": "TestPass123!@#",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Bad Username",
			payload: map[string]any{
				"username": "x", "email": "kelp@example.com", "password": "TestPass123!@#",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", "", tt.payload)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	_, app := newTestServer(t)
	signupUser(t, app, "anchor")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"username": "anchor2",
		"email":    "anchor@example.com",
		"password": "TestPass123!@#",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	_, app := newTestServer(t)
	signupUser(t, app, "brine")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "brine@example.com",
		"password": "WrongPass123!@#",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_RevokesToken(t *testing.T) {
	_, app := newTestServer(t)
	user := signupUser(t, app, "drift")

	// Token works before logout.
	me := doJSON(t, app, http.MethodGet, "/api/v1/users/me", user.Token, nil)
	_ = me.Body.Close()
	assert.Equal(t, http.StatusOK, me.StatusCode)

	out := doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", user.Token, nil)
	_ = out.Body.Close()
	assert.Equal(t, http.StatusOK, out.StatusCode)

	// The JTI is blacklisted afterwards.
	again := doJSON(t, app, http.MethodGet, "/api/v1/users/me", user.Token, nil)
	_ = again.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, again.StatusCode)
}

func TestRefresh_IssuesNewToken(t *testing.T) {
	_, app := newTestServer(t)
	user := signupUser(t, app, "gull")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", user.Token, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &data)
	assert.NotEmpty(t, data.Token)

	// The fresh token is accepted on protected routes.
	me := doJSON(t, app, http.MethodGet, "/api/v1/users/me", data.Token, nil)
	_ = me.Body.Close()
	assert.Equal(t, http.StatusOK, me.StatusCode)
}
