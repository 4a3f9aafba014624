// internal/domain/models/progress.go
package models

import "math"

// Percent returns round(100*done/total), or 0 when total is 0.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// Progress is one user's standing in one course.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func (p Progress) Percent() int { return Percent(p.Completed, p.Total) }

// Grid is the (session x active learner) completion matrix of a course.
type Grid struct {
	CompletedCells int `json:"completed_cells"`
	TotalCells     int `json:"total_cells"`
}

func (g Grid) Percent() int { return Percent(g.CompletedCells, g.TotalCells) }
