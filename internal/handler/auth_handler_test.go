package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"github.com/bitfantasy/nimo-mdm/internal/testutil"
)

func TestLogin(t *testing.T) {
	env := testutil.Setup(t, nil)

	w := env.DoRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"username": "tester",
		"password": "password123",
	})
	testutil.RequireStatus(t, w, http.StatusOK)

	var result struct {
		Token string       `json:"token"`
		User  *entity.User `json:"user"`
	}
	testutil.ParseResponse(t, w, &result)
	if result.Token == "" {
		t.Fatal("login returned no token")
	}
	if result.User == nil || result.User.Username != "tester" {
		t.Fatalf("login user = %+v", result.User)
	}

	// 错误密码
	w = env.DoRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"username": "tester",
		"password": "wrong",
	})
	testutil.RequireStatus(t, w, http.StatusUnauthorized)

	// 不存在的用户
	w = env.DoRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"username": "ghost",
		"password": "password123",
	})
	testutil.RequireStatus(t, w, http.StatusUnauthorized)
}

func TestMe(t *testing.T) {
	env := testutil.Setup(t, nil)

	w := env.DoRequest(t, http.MethodGet, "/api/v1/auth/me", nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	var user entity.User
	testutil.ParseResponse(t, w, &user)
	if user.ID != env.UserID {
		t.Fatalf("me returned user %s, want %s", user.ID, env.UserID)
	}
}

func TestInvalidToken(t *testing.T) {
	env := testutil.Setup(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status with bad token = %d, want 401", w.Code)
	}
}
