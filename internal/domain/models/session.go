// internal/domain/models/session.go
package models

import "time"

// Session is one lesson ("week") of a course. Index starts at 1 and is unique
// within the course.
type Session struct {
	ID          string    `bson:"_id" json:"id"`
	CourseID    string    `bson:"course_id" json:"course_id"`
	Index       int       `bson:"index" json:"index"`
	Title       string    `bson:"title" json:"title"`
	Summary     string    `bson:"summary,omitempty" json:"summary,omitempty"`
	VideoURL    string    `bson:"video_url,omitempty" json:"video_url,omitempty"`
	CaptionsURL string    `bson:"captions_url,omitempty" json:"captions_url,omitempty"`
	Transcript  string    `bson:"transcript,omitempty" json:"transcript,omitempty"`
	GuideURL    string    `bson:"guide_url,omitempty" json:"guide_url,omitempty"`
	GuidePDFURL string    `bson:"guide_pdf_url,omitempty" json:"guide_pdf_url,omitempty"`
	Thumbnail   string    `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
