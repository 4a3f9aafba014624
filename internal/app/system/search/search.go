// internal/app/system/search/search.go
package search

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contains builds a case-insensitive substring match for Mongo filters.
// The query is matched literally.
func Contains(q string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(q)), Options: "i"}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern builds a %q% pattern for SQL ILIKE with wildcards escaped.
func LikePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(q)) + "%"
}

// SplitEmails parses a free-form list of addresses separated by commas,
// semicolons, whitespace or newlines. Entries are trimmed, lower-cased and
// de-duplicated in first-seen order.
func SplitEmails(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case ',', ';', '\n', '\r', '\t', ' ':
			return true
		}
		return false
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		e := strings.ToLower(strings.TrimSpace(f))
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
