// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/ratelimit"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"go.uber.org/zap"
)

// Config selects where each category goes.
// Values: "all" (store + zap), "db" (store only), "log" (zap only), "off".
type Config struct {
	Admin    string
	Learner  string
	Security string
}

// Logger records audit events to the audit store and to zap.
// A nil *Logger is a no-op so tests can leave it out.
type Logger struct {
	store  repo.AuditStore
	zapLog *zap.Logger
	config Config
}

func New(store repo.AuditStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

type reqKey struct{}

type reqInfo struct {
	ip, ua string
}

// Middleware stores the caller's IP and user agent on the request context so
// events logged further down carry them.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := reqInfo{ip: ratelimit.ClientIP(r), ua: r.UserAgent()}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), reqKey{}, info)))
	})
}

func (l *Logger) setting(category string) string {
	var s string
	switch category {
	case audit.CategoryAdmin:
		s = l.config.Admin
	case audit.CategoryLearner:
		s = l.config.Learner
	case audit.CategorySecurity:
		s = l.config.Security
	}
	if s == "" {
		return "all"
	}
	return s
}

func (l *Logger) logToZap(e audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
	}
	if e.IP != "" {
		fields = append(fields, zap.String("ip", e.IP))
	}
	if e.UserID != "" {
		fields = append(fields, zap.String("user_id", e.UserID))
	}
	if e.ActorID != "" {
		fields = append(fields, zap.String("actor_id", e.ActorID))
	}
	if e.CourseID != "" {
		fields = append(fields, zap.String("course_id", e.CourseID))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	if e.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records e according to the category's setting. A store failure is
// logged and otherwise ignored; auditing never fails the audited action.
func (l *Logger) Log(ctx context.Context, e audit.Event) {
	if l == nil {
		return
	}
	if info, ok := ctx.Value(reqKey{}).(reqInfo); ok {
		if e.IP == "" {
			e.IP = info.ip
		}
		if e.UserAgent == "" {
			e.UserAgent = info.ua
		}
	}

	setting := l.setting(e.Category)
	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(e)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, e); err != nil {
			l.zapLog.Error("failed to store audit event", zap.Error(err), zap.String("event_type", e.EventType))
		}
	}
}

func (l *Logger) admin(ctx context.Context, actor models.Actor, eventType, userID, courseID string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   actor.ID,
		UserID:    userID,
		CourseID:  courseID,
		Success:   true,
		Details:   withActorRole(actor, details),
	})
}

func withActorRole(actor models.Actor, d map[string]string) map[string]string {
	if d == nil {
		d = map[string]string{}
	}
	if actor.Role != "" {
		d["actor_role"] = string(actor.Role)
	}
	return d
}

// --- User administration ---

func (l *Logger) UserCreated(ctx context.Context, actor models.Actor, u models.User) {
	l.admin(ctx, actor, audit.EventUserCreated, u.ID, "", map[string]string{"email": u.Email, "role": string(u.Role)})
}

func (l *Logger) RoleChanged(ctx context.Context, actor models.Actor, userID string, from, to models.Role) {
	l.admin(ctx, actor, audit.EventUserRoleChanged, userID, "", map[string]string{"from": string(from), "to": string(to)})
}

func (l *Logger) UserDeleted(ctx context.Context, actor models.Actor, u models.User) {
	l.admin(ctx, actor, audit.EventUserDeleted, u.ID, "", map[string]string{"email": u.Email, "role": string(u.Role)})
}

func (l *Logger) ProgressReset(ctx context.Context, actor models.Actor, userID string, removed int64) {
	l.admin(ctx, actor, audit.EventProgressReset, userID, "", map[string]string{"removed": strconv.FormatInt(removed, 10)})
}

// LastAdminProtected records a rejected role change or delete.
func (l *Logger) LastAdminProtected(ctx context.Context, actor models.Actor, userID, action, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategorySecurity,
		EventType:     audit.EventLastAdminProtected,
		ActorID:       actor.ID,
		UserID:        userID,
		Success:       false,
		FailureReason: reason,
		Details:       withActorRole(actor, map[string]string{"action": action}),
	})
}

// --- Enrollment ---

func (l *Logger) Enrolled(ctx context.Context, actor models.Actor, userID, courseID string) {
	l.admin(ctx, actor, audit.EventUserEnrolled, userID, courseID, nil)
}

func (l *Logger) Unenrolled(ctx context.Context, actor models.Actor, userID, courseID string) {
	l.admin(ctx, actor, audit.EventUserUnenrolled, userID, courseID, nil)
}

func (l *Logger) EnrollmentStatusChanged(ctx context.Context, actor models.Actor, userID, courseID string, status models.EnrollmentStatus) {
	l.admin(ctx, actor, audit.EventEnrollmentStatus, userID, courseID, map[string]string{"status": string(status)})
}

func (l *Logger) BulkEnrolled(ctx context.Context, actor models.Actor, courseID string, requested, enrolled, unknown int) {
	l.admin(ctx, actor, audit.EventBulkEnrolled, "", courseID, map[string]string{
		"requested": strconv.Itoa(requested),
		"enrolled":  strconv.Itoa(enrolled),
		"unknown":   strconv.Itoa(unknown),
	})
}

// --- Access requests ---

func (l *Logger) RequestDecided(ctx context.Context, actor models.Actor, req models.AccessRequest, status models.AccessRequestStatus, enrolledUserID string) {
	eventType := audit.EventRequestRejected
	if status == models.RequestApproved {
		eventType = audit.EventRequestApproved
	}
	d := map[string]string{"request_id": req.ID, "email": req.Email}
	if enrolledUserID != "" {
		d["enrolled"] = "true"
	}
	l.admin(ctx, actor, eventType, enrolledUserID, req.CourseID, d)
}

func (l *Logger) AccessRequested(ctx context.Context, req models.AccessRequest) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryLearner,
		EventType: audit.EventAccessRequested,
		CourseID:  req.CourseID,
		Success:   true,
		Details:   map[string]string{"request_id": req.ID, "email": req.Email},
	})
}

func (l *Logger) RequestThrottled(ctx context.Context, ip string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategorySecurity,
		EventType:     audit.EventRequestThrottled,
		IP:            ip,
		Success:       false,
		FailureReason: "rate limit exceeded",
	})
}

// --- Content ---

func (l *Logger) CourseCreated(ctx context.Context, actor models.Actor, c models.Course) {
	l.admin(ctx, actor, audit.EventCourseCreated, "", c.ID, map[string]string{"slug": c.Slug})
}

func (l *Logger) CoursePublished(ctx context.Context, actor models.Actor, courseID string, published bool) {
	eventType := audit.EventCourseUnpublished
	if published {
		eventType = audit.EventCoursePublished
	}
	l.admin(ctx, actor, eventType, "", courseID, nil)
}

func (l *Logger) CourseDeleted(ctx context.Context, actor models.Actor, c models.Course) {
	l.admin(ctx, actor, audit.EventCourseDeleted, "", c.ID, map[string]string{"slug": c.Slug})
}

func (l *Logger) SessionAdded(ctx context.Context, actor models.Actor, s models.Session) {
	l.admin(ctx, actor, audit.EventSessionAdded, "", s.CourseID, map[string]string{
		"session_id": s.ID,
		"index":      strconv.Itoa(s.Index),
	})
}

func (l *Logger) SessionDeleted(ctx context.Context, actor models.Actor, s models.Session, completionsRemoved int64) {
	l.admin(ctx, actor, audit.EventSessionDeleted, "", s.CourseID, map[string]string{
		"session_id":          s.ID,
		"index":               strconv.Itoa(s.Index),
		"completions_removed": strconv.FormatInt(completionsRemoved, 10),
	})
}

func (l *Logger) CourseSeeded(ctx context.Context, actor models.Actor, c models.Course, sessions int) {
	l.admin(ctx, actor, audit.EventCourseSeeded, "", c.ID, map[string]string{
		"slug":     c.Slug,
		"sessions": strconv.Itoa(sessions),
	})
}

// --- Learner ---

func (l *Logger) SessionCompleted(ctx context.Context, userID string, s models.Session) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryLearner,
		EventType: audit.EventSessionCompleted,
		UserID:    userID,
		ActorID:   userID,
		CourseID:  s.CourseID,
		Success:   true,
		Details:   map[string]string{"session_id": s.ID, "index": strconv.Itoa(s.Index)},
	})
}
