package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/coursehub/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p onclick="steal()">Hi</p>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("expected handler removed, got %q", got)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Ada Lovelace", "Ada Lovelace"},
		{"<b>Ada</b>", "Ada"},
		{"I'd like <script>x()</script>access", "I'd like access"},
		{"  Tom & Jerry  ", "Tom & Jerry"},
	}
	for _, tc := range tests {
		if got := htmlsanitize.PlainText(tc.in); got != tc.want {
			t.Errorf("PlainText(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
