// Package memstore is an in-memory implementation of the repo contracts for
// engine, service and handler tests. It enforces the same unique keys as the
// real backends. Setting Fail makes every call return a store-unavailable
// error.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/google/uuid"
)

// ErrDown is wrapped into errs.ErrUnavailable when Fail is set.
var ErrDown = errors.New("memstore: down")

// DB holds every table behind one lock.
type DB struct {
	mu sync.Mutex

	// Fail, when non-nil, is returned (as unavailable) from every call.
	Fail error

	users       map[string]models.User
	courses     map[string]models.Course
	sessions    map[string]models.Session
	enrollments map[string]models.Enrollment // key user|course
	completions map[string]models.Completion // key user|session
	requests    map[string]models.AccessRequest
	events      []audit.Event

	// clock advances one millisecond per insert so "newest first" is stable.
	clock time.Time
}

func New() *DB {
	return &DB{
		users:       map[string]models.User{},
		courses:     map[string]models.Course{},
		sessions:    map[string]models.Session{},
		enrollments: map[string]models.Enrollment{},
		completions: map[string]models.Completion{},
		requests:    map[string]models.AccessRequest{},
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Repos returns the bundle backed by db.
func (db *DB) Repos() repo.Repos {
	return repo.Repos{
		Users:       (*users)(db),
		Courses:     (*courses)(db),
		Sessions:    (*sessions)(db),
		Enrollments: (*enrollments)(db),
		Completions: (*completions)(db),
		Progress:    (*progress)(db),
		Requests:    (*requests)(db),
		Audit:       (*auditLog)(db),
		Tx:          repo.NoTx{},
		Pinger:      (*pinger)(db),
	}
}

// Events returns a copy of the recorded audit events.
func (db *DB) Events() []audit.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]audit.Event(nil), db.events...)
}

func (db *DB) lock(op string) (func(), error) {
	db.mu.Lock()
	if db.Fail != nil {
		err := db.Fail
		db.mu.Unlock()
		return func() {}, errs.Wrap(op, errs.ErrUnavailable, err)
	}
	return db.mu.Unlock, nil
}

func (db *DB) tick() time.Time {
	db.clock = db.clock.Add(time.Millisecond)
	return db.clock
}

func key(a, b string) string { return a + "|" + b }

func notFound(op, msg string) error { return errs.E(op, errs.ErrNotFound, msg) }

func contains(s, q string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(q)))
}

func window[T any](rows []T, p repo.Page, def int64) []T {
	limit := p.Limit
	if limit <= 0 {
		limit = def
	}
	if p.Offset >= int64(len(rows)) {
		return []T{}
	}
	end := p.Offset + limit
	if end > int64(len(rows)) {
		end = int64(len(rows))
	}
	return rows[p.Offset:end]
}

/* ------------------------------- users ------------------------------- */

type users DB

func (u *users) db() *DB { return (*DB)(u) }

func (u *users) Create(_ context.Context, in models.User) (models.User, error) {
	unlock, err := u.db().lock("users.Create")
	defer unlock()
	if err != nil {
		return models.User{}, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if !in.Role.Valid() {
		return models.User{}, errs.E("users.Create", errs.ErrInvalid, "role must be USER, LEADER or ADMIN")
	}
	for _, x := range u.users {
		if x.Email == in.Email {
			return models.User{}, errs.E("users.Create", errs.ErrConflict, "a user with this email already exists")
		}
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	in.CreatedAt = u.db().tick()
	in.UpdatedAt = in.CreatedAt
	u.users[in.ID] = in
	return in, nil
}

func (u *users) GetByID(_ context.Context, id string) (*models.User, error) {
	unlock, err := u.db().lock("users.GetByID")
	defer unlock()
	if err != nil {
		return nil, err
	}
	x, ok := u.users[id]
	if !ok {
		return nil, notFound("users.GetByID", "user not found")
	}
	return &x, nil
}

func (u *users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	unlock, err := u.db().lock("users.GetByEmail")
	defer unlock()
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, x := range u.users {
		if x.Email == email {
			return &x, nil
		}
	}
	return nil, notFound("users.GetByEmail", "user not found")
}

func (u *users) GetByEmails(_ context.Context, emails []string) ([]models.User, error) {
	unlock, err := u.db().lock("users.GetByEmails")
	defer unlock()
	if err != nil {
		return nil, err
	}
	want := map[string]bool{}
	for _, e := range emails {
		want[e] = true
	}
	out := []models.User{}
	for _, x := range u.users {
		if want[x.Email] {
			out = append(out, x)
		}
	}
	return out, nil
}

func (u *users) SetRole(_ context.Context, id string, role models.Role) error {
	unlock, err := u.db().lock("users.SetRole")
	defer unlock()
	if err != nil {
		return err
	}
	x, ok := u.users[id]
	if !ok {
		return notFound("users.SetRole", "user not found")
	}
	x.Role = role
	u.users[id] = x
	return nil
}

func (u *users) SetPassword(_ context.Context, id, hash string) error {
	unlock, err := u.db().lock("users.SetPassword")
	defer unlock()
	if err != nil {
		return err
	}
	x, ok := u.users[id]
	if !ok {
		return notFound("users.SetPassword", "user not found")
	}
	x.PasswordHash = hash
	u.users[id] = x
	return nil
}

func (u *users) Delete(_ context.Context, id string) error {
	unlock, err := u.db().lock("users.Delete")
	defer unlock()
	if err != nil {
		return err
	}
	if _, ok := u.users[id]; !ok {
		return notFound("users.Delete", "user not found")
	}
	delete(u.users, id)
	return nil
}

func (u *users) CountByRole(_ context.Context, role models.Role) (int64, error) {
	unlock, err := u.db().lock("users.CountByRole")
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, x := range u.users {
		if x.Role == role {
			n++
		}
	}
	return n, nil
}

func (u *users) List(_ context.Context, f repo.UserFilter) ([]models.User, int64, error) {
	unlock, err := u.db().lock("users.List")
	defer unlock()
	if err != nil {
		return nil, 0, err
	}
	var rows []models.User
	for _, x := range u.users {
		if f.Q == "" || contains(x.Email, f.Q) || contains(x.Name, f.Q) || contains(string(x.Role), f.Q) {
			x.PasswordHash = ""
			rows = append(rows, x)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return window(rows, f.Page, 10), int64(len(rows)), nil
}

/* ------------------------------ courses ------------------------------ */

type courses DB

func (c *courses) db() *DB { return (*DB)(c) }

func (c *courses) Create(_ context.Context, in models.Course) (models.Course, error) {
	unlock, err := c.db().lock("courses.Create")
	defer unlock()
	if err != nil {
		return models.Course{}, err
	}
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	if !models.ValidSlug(in.Slug) || strings.TrimSpace(in.Title) == "" {
		return models.Course{}, errs.E("courses.Create", errs.ErrInvalid, "slug and title are required")
	}
	for _, x := range c.courses {
		if x.Slug == in.Slug {
			return models.Course{}, errs.E("courses.Create", errs.ErrConflict, "a course with this slug already exists")
		}
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	in.CreatedAt = c.db().tick()
	in.UpdatedAt = in.CreatedAt
	c.courses[in.ID] = in
	return in, nil
}

func (c *courses) UpsertBySlug(_ context.Context, in models.Course) (models.Course, error) {
	unlock, err := c.db().lock("courses.UpsertBySlug")
	defer unlock()
	if err != nil {
		return models.Course{}, err
	}
	for id, x := range c.courses {
		if x.Slug == in.Slug {
			x.Title, x.Summary, x.Thumbnail, x.Published = in.Title, in.Summary, in.Thumbnail, in.Published
			x.UpdatedAt = c.db().tick()
			c.courses[id] = x
			return x, nil
		}
	}
	in.ID = uuid.NewString()
	in.CreatedAt = c.db().tick()
	in.UpdatedAt = in.CreatedAt
	c.courses[in.ID] = in
	return in, nil
}

func (c *courses) GetByID(_ context.Context, id string) (*models.Course, error) {
	unlock, err := c.db().lock("courses.GetByID")
	defer unlock()
	if err != nil {
		return nil, err
	}
	x, ok := c.courses[id]
	if !ok {
		return nil, notFound("courses.GetByID", "course not found")
	}
	return &x, nil
}

func (c *courses) GetBySlug(_ context.Context, slug string) (*models.Course, error) {
	unlock, err := c.db().lock("courses.GetBySlug")
	defer unlock()
	if err != nil {
		return nil, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, x := range c.courses {
		if x.Slug == slug {
			return &x, nil
		}
	}
	return nil, notFound("courses.GetBySlug", "course not found")
}

func (c *courses) filter(op string, keep func(models.Course) bool, less func(a, b models.Course) bool) ([]models.Course, error) {
	unlock, err := c.db().lock(op)
	defer unlock()
	if err != nil {
		return nil, err
	}
	out := []models.Course{}
	for _, x := range c.courses {
		if keep(x) {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func byTitle(a, b models.Course) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }

func (c *courses) ListPublished(context.Context) ([]models.Course, error) {
	return c.filter("courses.ListPublished", func(x models.Course) bool { return x.Published }, byTitle)
}

func (c *courses) ListAll(context.Context) ([]models.Course, error) {
	return c.filter("courses.ListAll", func(models.Course) bool { return true },
		func(a, b models.Course) bool { return a.CreatedAt.After(b.CreatedAt) })
}

func (c *courses) ListByIDs(_ context.Context, ids []string) ([]models.Course, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return c.filter("courses.ListByIDs", func(x models.Course) bool { return want[x.ID] }, byTitle)
}

func (c *courses) SearchIDs(_ context.Context, q string) ([]string, error) {
	if strings.TrimSpace(q) == "" {
		return nil, nil
	}
	rows, err := c.filter("courses.SearchIDs", func(x models.Course) bool { return contains(x.Title, q) }, byTitle)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, x := range rows {
		ids = append(ids, x.ID)
	}
	return ids, nil
}

func (c *courses) SetPublished(_ context.Context, id string, published bool) error {
	unlock, err := c.db().lock("courses.SetPublished")
	defer unlock()
	if err != nil {
		return err
	}
	x, ok := c.courses[id]
	if !ok {
		return notFound("courses.SetPublished", "course not found")
	}
	x.Published = published
	c.courses[id] = x
	return nil
}

func (c *courses) Delete(_ context.Context, id string) error {
	unlock, err := c.db().lock("courses.Delete")
	defer unlock()
	if err != nil {
		return err
	}
	if _, ok := c.courses[id]; !ok {
		return notFound("courses.Delete", "course not found")
	}
	delete(c.courses, id)
	return nil
}

/* ------------------------------ sessions ------------------------------ */

type sessions DB

func (s *sessions) db() *DB { return (*DB)(s) }

func (s *sessions) Create(_ context.Context, in models.Session) (models.Session, error) {
	unlock, err := s.db().lock("sessions.Create")
	defer unlock()
	if err != nil {
		return models.Session{}, err
	}
	if in.CourseID == "" || in.Index < 1 {
		return models.Session{}, errs.E("sessions.Create", errs.ErrInvalid, "index must be 1 or greater")
	}
	for _, x := range s.sessions {
		if x.CourseID == in.CourseID && x.Index == in.Index {
			return models.Session{}, errs.E("sessions.Create", errs.ErrConflict, "a session with this index already exists in the course")
		}
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	in.CreatedAt = s.db().tick()
	s.sessions[in.ID] = in
	return in, nil
}

func (s *sessions) GetByID(_ context.Context, id string) (*models.Session, error) {
	unlock, err := s.db().lock("sessions.GetByID")
	defer unlock()
	if err != nil {
		return nil, err
	}
	x, ok := s.sessions[id]
	if !ok {
		return nil, notFound("sessions.GetByID", "session not found")
	}
	return &x, nil
}

func (s *sessions) GetByIndex(_ context.Context, courseID string, index int) (*models.Session, error) {
	unlock, err := s.db().lock("sessions.GetByIndex")
	defer unlock()
	if err != nil {
		return nil, err
	}
	for _, x := range s.sessions {
		if x.CourseID == courseID && x.Index == index {
			return &x, nil
		}
	}
	return nil, notFound("sessions.GetByIndex", "session not found")
}

func (db *DB) courseSessions(courseID string) []models.Session {
	out := []models.Session{}
	for _, x := range db.sessions {
		if x.CourseID == courseID {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (s *sessions) ListSessions(_ context.Context, courseID string) ([]models.Session, error) {
	unlock, err := s.db().lock("sessions.ListSessions")
	defer unlock()
	if err != nil {
		return nil, err
	}
	return s.db().courseSessions(courseID), nil
}

func (s *sessions) CountSessions(_ context.Context, courseID string) (int64, error) {
	unlock, err := s.db().lock("sessions.CountSessions")
	defer unlock()
	if err != nil {
		return 0, err
	}
	return int64(len(s.db().courseSessions(courseID))), nil
}

func (s *sessions) CountByCourses(_ context.Context, courseIDs []string) (map[string]int64, error) {
	unlock, err := s.db().lock("sessions.CountByCourses")
	defer unlock()
	if err != nil {
		return nil, err
	}
	out := map[string]int64{}
	for _, id := range courseIDs {
		if n := len(s.db().courseSessions(id)); n > 0 {
			out[id] = int64(n)
		}
	}
	return out, nil
}

func (s *sessions) Delete(_ context.Context, id string) error {
	unlock, err := s.db().lock("sessions.Delete")
	defer unlock()
	if err != nil {
		return err
	}
	if _, ok := s.sessions[id]; !ok {
		return notFound("sessions.Delete", "session not found")
	}
	delete(s.sessions, id)
	return nil
}

func (s *sessions) DeleteForCourse(_ context.Context, courseID string) (int64, error) {
	unlock, err := s.db().lock("sessions.DeleteForCourse")
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for id, x := range s.sessions {
		if x.CourseID == courseID {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

/* ----------------------------- enrollments ----------------------------- */

type enrollments DB

func (e *enrollments) db() *DB { return (*DB)(e) }

func (e *enrollments) Find(_ context.Context, userID, courseID string) (*models.Enrollment, error) {
	unlock, err := e.db().lock("enrollments.Find")
	defer unlock()
	if err != nil {
		return nil, err
	}
	x, ok := e.enrollments[key(userID, courseID)]
	if !ok {
		return nil, notFound("enrollments.Find", "enrollment not found")
	}
	return &x, nil
}

func (e *enrollments) Upsert(_ context.Context, userID, courseID string, status models.EnrollmentStatus) error {
	unlock, err := e.db().lock("enrollments.Upsert")
	defer unlock()
	if err != nil {
		return err
	}
	k := key(userID, courseID)
	now := e.db().tick()
	x, ok := e.enrollments[k]
	if !ok {
		x = models.Enrollment{ID: uuid.NewString(), UserID: userID, CourseID: courseID, CreatedAt: now}
	}
	x.Status = status
	x.UpdatedAt = now
	e.enrollments[k] = x
	return nil
}

func (e *enrollments) Delete(_ context.Context, userID, courseID string) (bool, error) {
	unlock, err := e.db().lock("enrollments.Delete")
	defer unlock()
	if err != nil {
		return false, err
	}
	k := key(userID, courseID)
	_, ok := e.enrollments[k]
	delete(e.enrollments, k)
	return ok, nil
}

func (db *DB) activeIn(courseID string) map[string]bool {
	out := map[string]bool{}
	for _, x := range db.enrollments {
		if x.CourseID == courseID && x.Status == models.EnrollmentActive {
			out[x.UserID] = true
		}
	}
	return out
}

func (e *enrollments) CountActive(_ context.Context, courseID string) (int64, error) {
	unlock, err := e.db().lock("enrollments.CountActive")
	defer unlock()
	if err != nil {
		return 0, err
	}
	return int64(len(e.db().activeIn(courseID))), nil
}

func (e *enrollments) CountActiveByCourses(_ context.Context, courseIDs []string) (map[string]int64, error) {
	unlock, err := e.db().lock("enrollments.CountActiveByCourses")
	defer unlock()
	if err != nil {
		return nil, err
	}
	out := map[string]int64{}
	for _, id := range courseIDs {
		if n := len(e.db().activeIn(id)); n > 0 {
			out[id] = int64(n)
		}
	}
	return out, nil
}

func (e *enrollments) Counts(_ context.Context, courseID string) (repo.EnrollmentCounts, error) {
	unlock, err := e.db().lock("enrollments.Counts")
	defer unlock()
	if err != nil {
		return repo.EnrollmentCounts{}, err
	}
	var out repo.EnrollmentCounts
	for _, x := range e.enrollments {
		if x.CourseID != courseID {
			continue
		}
		if x.Active() {
			out.Active++
		} else {
			out.Inactive++
		}
	}
	return out, nil
}

func (e *enrollments) ActiveCourseIDs(_ context.Context, userID string) ([]string, error) {
	unlock, err := e.db().lock("enrollments.ActiveCourseIDs")
	defer unlock()
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, x := range e.enrollments {
		if x.UserID == userID && x.Active() {
			ids = append(ids, x.CourseID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (e *enrollments) StatusesFor(_ context.Context, courseID string, userIDs []string) (map[string]models.EnrollmentStatus, error) {
	unlock, err := e.db().lock("enrollments.StatusesFor")
	defer unlock()
	if err != nil {
		return nil, err
	}
	out := map[string]models.EnrollmentStatus{}
	for _, id := range userIDs {
		if x, ok := e.enrollments[key(id, courseID)]; ok {
			out[id] = x.Status
		}
	}
	return out, nil
}

func (e *enrollments) deleteWhere(op string, match func(models.Enrollment) bool) (int64, error) {
	unlock, err := e.db().lock(op)
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for k, x := range e.enrollments {
		if match(x) {
			delete(e.enrollments, k)
			n++
		}
	}
	return n, nil
}

func (e *enrollments) DeleteForUser(_ context.Context, userID string) (int64, error) {
	return e.deleteWhere("enrollments.DeleteForUser", func(x models.Enrollment) bool { return x.UserID == userID })
}

func (e *enrollments) DeleteForCourse(_ context.Context, courseID string) (int64, error) {
	return e.deleteWhere("enrollments.DeleteForCourse", func(x models.Enrollment) bool { return x.CourseID == courseID })
}

/* ----------------------------- completions ----------------------------- */

type completions DB

func (c *completions) db() *DB { return (*DB)(c) }

func (c *completions) Exists(_ context.Context, userID, sessionID string) (bool, error) {
	unlock, err := c.db().lock("completions.Exists")
	defer unlock()
	if err != nil {
		return false, err
	}
	_, ok := c.completions[key(userID, sessionID)]
	return ok, nil
}

func (c *completions) Upsert(_ context.Context, userID, sessionID string) error {
	unlock, err := c.db().lock("completions.Upsert")
	defer unlock()
	if err != nil {
		return err
	}
	k := key(userID, sessionID)
	if _, ok := c.completions[k]; ok {
		return nil
	}
	c.completions[k] = models.Completion{ID: uuid.NewString(), UserID: userID, SessionID: sessionID, CompletedAt: c.db().tick()}
	return nil
}

func (c *completions) CountForCourse(_ context.Context, userID, courseID string) (int64, error) {
	unlock, err := c.db().lock("completions.CountForCourse")
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, s := range c.db().courseSessions(courseID) {
		if _, ok := c.completions[key(userID, s.ID)]; ok {
			n++
		}
	}
	return n, nil
}

func (c *completions) CountByUsers(_ context.Context, userIDs []string) (map[string]int64, error) {
	unlock, err := c.db().lock("completions.CountByUsers")
	defer unlock()
	if err != nil {
		return nil, err
	}
	want := map[string]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	out := map[string]int64{}
	for _, x := range c.completions {
		if want[x.UserID] {
			out[x.UserID]++
		}
	}
	return out, nil
}

func (c *completions) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	unlock, err := c.db().lock("completions.DeleteAllForUser")
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for k, x := range c.completions {
		if x.UserID == userID {
			delete(c.completions, k)
			n++
		}
	}
	return n, nil
}

func (c *completions) DeleteForSessions(_ context.Context, sessionIDs []string) (int64, error) {
	unlock, err := c.db().lock("completions.DeleteForSessions")
	defer unlock()
	if err != nil {
		return 0, err
	}
	want := map[string]bool{}
	for _, id := range sessionIDs {
		want[id] = true
	}
	var n int64
	for k, x := range c.completions {
		if want[x.SessionID] {
			delete(c.completions, k)
			n++
		}
	}
	return n, nil
}

/* ------------------------------ progress ------------------------------ */

type progress DB

func (p *progress) db() *DB { return (*DB)(p) }

func (p *progress) CompletedCells(_ context.Context, courseID string) (int64, error) {
	unlock, err := p.db().lock("progress.CompletedCells")
	defer unlock()
	if err != nil {
		return 0, err
	}
	active := p.db().activeIn(courseID)
	var n int64
	for _, s := range p.db().courseSessions(courseID) {
		for uid := range active {
			if _, ok := p.completions[key(uid, s.ID)]; ok {
				n++
			}
		}
	}
	return n, nil
}

func (p *progress) CompletedByCourse(_ context.Context, userID string, courseIDs []string) (map[string]int64, error) {
	unlock, err := p.db().lock("progress.CompletedByCourse")
	defer unlock()
	if err != nil {
		return nil, err
	}
	out := map[string]int64{}
	for _, cid := range courseIDs {
		for _, s := range p.db().courseSessions(cid) {
			if _, ok := p.completions[key(userID, s.ID)]; ok {
				out[cid]++
			}
		}
	}
	return out, nil
}

/* ------------------------------ requests ------------------------------ */

type requests DB

func (r *requests) db() *DB { return (*DB)(r) }

func (r *requests) Create(_ context.Context, in models.AccessRequest) (models.AccessRequest, error) {
	unlock, err := r.db().lock("accessrequests.Create")
	defer unlock()
	if err != nil {
		return models.AccessRequest{}, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.CourseID == "" {
		return models.AccessRequest{}, errs.E("accessrequests.Create", errs.ErrInvalid, "email and course are required")
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	in.Status = models.RequestPending
	in.CreatedAt = r.db().tick()
	r.requests[in.ID] = in
	return in, nil
}

func (r *requests) GetByID(_ context.Context, id string) (*models.AccessRequest, error) {
	unlock, err := r.db().lock("accessrequests.GetByID")
	defer unlock()
	if err != nil {
		return nil, err
	}
	x, ok := r.requests[id]
	if !ok {
		return nil, notFound("accessrequests.GetByID", "access request not found")
	}
	return &x, nil
}

func (r *requests) Decide(_ context.Context, id string, status models.AccessRequestStatus, decidedBy string, at time.Time) error {
	unlock, err := r.db().lock("accessrequests.Decide")
	defer unlock()
	if err != nil {
		return err
	}
	if status != models.RequestApproved && status != models.RequestRejected {
		return errs.E("accessrequests.Decide", errs.ErrInvalid, "decision must be APPROVED or REJECTED")
	}
	x, ok := r.requests[id]
	if !ok {
		return notFound("accessrequests.Decide", "access request not found")
	}
	if x.Status != models.RequestPending {
		return errs.E("accessrequests.Decide", errs.ErrConflict, "access request was already decided")
	}
	x.Status, x.DecidedBy, x.DecidedAt = status, decidedBy, &at
	r.requests[id] = x
	return nil
}

func (r *requests) List(_ context.Context, f repo.RequestFilter) ([]models.AccessRequest, int64, error) {
	unlock, err := r.db().lock("accessrequests.List")
	defer unlock()
	if err != nil {
		return nil, 0, err
	}
	inQCourses := map[string]bool{}
	for _, id := range f.QCourseIDs {
		inQCourses[id] = true
	}
	var rows []models.AccessRequest
	for _, x := range r.requests {
		if f.CourseID != "" && x.CourseID != f.CourseID {
			continue
		}
		if f.Status != "" && x.Status != f.Status {
			continue
		}
		if f.Q != "" && !contains(x.Email, f.Q) && !contains(x.Name, f.Q) && !inQCourses[x.CourseID] {
			continue
		}
		rows = append(rows, x)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return window(rows, f.Page, 20), int64(len(rows)), nil
}

func (r *requests) DeleteForCourse(_ context.Context, courseID string) (int64, error) {
	unlock, err := r.db().lock("accessrequests.DeleteForCourse")
	defer unlock()
	if err != nil {
		return 0, err
	}
	var n int64
	for id, x := range r.requests {
		if x.CourseID == courseID {
			delete(r.requests, id)
			n++
		}
	}
	return n, nil
}

/* -------------------------------- audit -------------------------------- */

type auditLog DB

func (a *auditLog) db() *DB { return (*DB)(a) }

func (a *auditLog) Log(_ context.Context, e audit.Event) error {
	unlock, err := a.db().lock("audit.Log")
	defer unlock()
	if err != nil {
		return err
	}
	e.Prepare()
	a.events = append(a.events, e)
	return nil
}

func (a *auditLog) match(f audit.QueryFilter) []audit.Event {
	var out []audit.Event
	for i := len(a.events) - 1; i >= 0; i-- {
		e := a.events[i]
		if (f.Category == "" || e.Category == f.Category) &&
			(f.EventType == "" || e.EventType == f.EventType) &&
			(f.UserID == "" || e.UserID == f.UserID) &&
			(f.ActorID == "" || e.ActorID == f.ActorID) &&
			(f.CourseID == "" || e.CourseID == f.CourseID) &&
			(f.StartTime == nil || !e.Timestamp.Before(*f.StartTime)) &&
			(f.EndTime == nil || !e.Timestamp.After(*f.EndTime)) {
			out = append(out, e)
		}
	}
	return out
}

func (a *auditLog) Query(_ context.Context, f audit.QueryFilter) ([]audit.Event, error) {
	unlock, err := a.db().lock("audit.Query")
	defer unlock()
	if err != nil {
		return nil, err
	}
	return window(a.match(f), repo.Page{Offset: f.Offset, Limit: f.Limit}, 100), nil
}

func (a *auditLog) CountByFilter(_ context.Context, f audit.QueryFilter) (int64, error) {
	unlock, err := a.db().lock("audit.CountByFilter")
	defer unlock()
	if err != nil {
		return 0, err
	}
	return int64(len(a.match(f))), nil
}

func (a *auditLog) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	unlock, err := a.db().lock("audit.DeleteBefore")
	defer unlock()
	if err != nil {
		return 0, err
	}
	kept := a.events[:0]
	var n int64
	for _, e := range a.events {
		if e.Timestamp.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	a.events = kept
	return n, nil
}

type pinger DB

func (p *pinger) Ping(context.Context) error {
	unlock, err := (*DB)(p).lock("ping")
	defer unlock()
	return err
}
