// internal/app/features/program/program.go
//
// Package program keeps the old /program/{week} links working by sending
// them to the matching session of the basics course.
package program

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the redirect under /program.
func Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{week}", Redirect)
	return r
}

// Redirect handles GET /program/{week}.
func Redirect(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || week < 1 {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/courses/"+service.BasicsSlug+"/"+strconv.Itoa(week), http.StatusSeeOther)
}
