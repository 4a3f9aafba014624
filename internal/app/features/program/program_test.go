package program

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRedirect(t *testing.T) {
	router := Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/3", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/courses/basics/3" {
		t.Errorf("location: got %q, want /courses/basics/3", loc)
	}

	for _, bad := range []string{"/0", "/x"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", bad, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: got %d, want 404", bad, rec.Code)
		}
	}
}
