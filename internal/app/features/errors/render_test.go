package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/coursehub/internal/app/system/inputval"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"go.uber.org/zap"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.E("op", errs.ErrNotFound, ""), http.StatusNotFound},
		{errs.E("op", errs.ErrForbidden, ""), http.StatusForbidden},
		{errs.E("op", errs.ErrConflict, ""), http.StatusConflict},
		{errs.E("op", errs.ErrInvalid, ""), http.StatusBadRequest},
		{errs.Wrap("op", errs.ErrUnavailable, fmt.Errorf("socket")), http.StatusServiceUnavailable},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v): got %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWrite_InvalidCarriesFields(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}
	err := inputval.Struct("test", payload{Email: "nope"})

	rec := httptest.NewRecorder()
	NewErrorLogger(zap.NewNop()).Write(rec, httptest.NewRequest("POST", "/", nil), "create", err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body.Fields["email"]; !ok {
		t.Errorf("fields: got %v, want an email entry", body.Fields)
	}
}

func TestWrite_UnavailableHidesCause(t *testing.T) {
	err := errs.Wrap("users.List", errs.ErrUnavailable, fmt.Errorf("connection refused to 10.0.0.5"))
	rec := httptest.NewRecorder()
	NewErrorLogger(zap.NewNop()).Write(rec, httptest.NewRequest("GET", "/", nil), "list users", err)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Errorf("body leaks the cause: %s", rec.Body.String())
	}
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	rec := httptest.NewRecorder()

	err := Decode(rec, httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x"}`)), &v)
	if err != nil || v.Name != "x" {
		t.Errorf("valid body: got %v / %q", err, v.Name)
	}
	err = Decode(rec, httptest.NewRequest("POST", "/", strings.NewReader(`{"other":1}`)), &v)
	if !errs.IsInvalid(err) {
		t.Errorf("unknown field: got %v, want invalid", err)
	}
	err = Decode(rec, httptest.NewRequest("POST", "/", strings.NewReader(``)), &v)
	if !errs.IsInvalid(err) {
		t.Errorf("empty body: got %v, want invalid", err)
	}
}
