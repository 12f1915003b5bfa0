package textutil

import (
	"regexp"
	"strings"
	"testing"
)

var safeOutput = regexp.MustCompile(`^[A-Za-z0-9 _\-]+$`)

func TestSafeName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Episode One", "Episode One"},
		{"slashes become dashes", "AC/DC Special", "AC-DC Special"},
		{"punctuation stripped", "What's New? (Part 2)!", "Whats New Part 2"},
		{"whitespace collapsed", "  too   many\tspaces  ", "too many spaces"},
		{"separators trimmed", "-_ trimmed _-", "trimmed"},
		{"empty becomes untitled", "!!!", "untitled"},
		{"blank becomes untitled", "   ", "untitled"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SafeName(tc.input)
			if got != tc.want {
				t.Fatalf("SafeName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSafeNameOutputAlphabet(t *testing.T) {
	inputs := []string{
		"Interview: AI & the Future of Work / Part 1",
		"第42回 日本語のタイトル",
		"quotes \"and\" 'apostrophes'",
	}
	for _, input := range inputs {
		got := SafeName(input)
		if !safeOutput.MatchString(got) {
			t.Fatalf("SafeName(%q) = %q contains unsafe characters", input, got)
		}
		if got != SafeName(input) {
			t.Fatalf("SafeName(%q) is not stable", input)
		}
	}
}

func TestSafeNameTruncation(t *testing.T) {
	long := strings.Repeat("episode title ", 20)
	got := SafeName(long)
	if len(got) > MaxNameLength {
		t.Fatalf("truncated name length %d exceeds limit", len(got))
	}
	if !strings.Contains(got, "-") {
		t.Fatalf("expected hash suffix in %q", got)
	}

	other := long + "x"
	if SafeName(other) == got {
		t.Fatal("distinct long inputs must not collide after truncation")
	}
	if SafeName(long) != got {
		t.Fatal("truncated names must be stable")
	}
}

func TestShortHash(t *testing.T) {
	if len(ShortHash("anything")) != 6 {
		t.Fatal("expected six hex characters")
	}
	if ShortHash("a") == ShortHash("b") {
		t.Fatal("expected distinct hashes for distinct inputs")
	}
}
