package userinfo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/coursehub/internal/app/features/userinfo"
	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func serve(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	r := chi.NewRouter()
	userinfo.MountRoutes(r, userinfo.NewHandler())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestServeUserInfo_Unauthenticated(t *testing.T) {
	body := serve(t, httptest.NewRequest("GET", "/api/user", nil))

	if body["isAuthenticated"] != false {
		t.Errorf("expected isAuthenticated=false, got %v", body["isAuthenticated"])
	}
	if body["name"] != "" {
		t.Errorf("expected empty name, got %v", body["name"])
	}
}

func TestServeUserInfo_Authenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/user", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:    "u-1",
		Name:  "Test User",
		Email: "test@example.com",
		Role:  models.RoleLeader,
	})
	body := serve(t, req)

	if body["isAuthenticated"] != true {
		t.Errorf("expected isAuthenticated=true, got %v", body["isAuthenticated"])
	}
	if body["email"] != "test@example.com" {
		t.Errorf("email: got %v, want test@example.com", body["email"])
	}
	if body["role"] != "LEADER" {
		t.Errorf("role: got %v, want LEADER", body["role"])
	}
}
