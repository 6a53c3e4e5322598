package publish

import (
	"strings"
	"testing"

	"jobrelay/internal/domain"
)

func TestFormatMessage(t *testing.T) {
	p := domain.Posting{
		Identity:   "https://site/jobs/4711",
		JobID:      "#4711",
		Title:      "Senior Accountant",
		Employment: "Full time",
		Location:   "Addis Ababa",
		Deadline:   "Dec 31, 2026",
		Sections: []domain.Section{
			{Heading: "Responsibilities", Text: "Do the books..."},
			{Heading: "Requirements", Text: "Degree & experience"},
		},
	}

	msg := FormatMessage(p)

	if !strings.Contains(msg, "SENIOR ACCOUNTANT") {
		t.Fatalf("title banner missing: %q", msg)
	}
	if !strings.Contains(msg, `href="https://site/jobs/4711"`) {
		t.Fatal("apply link missing")
	}
	if !strings.Contains(msg, "⏰ Dec 31, 2026") {
		t.Fatal("deadline missing")
	}
	if !strings.Contains(msg, "<b>Responsibilities</b>") || !strings.Contains(msg, "<b>Requirements</b>") {
		t.Fatal("section headings missing")
	}
	if !strings.Contains(msg, "Degree &amp; experience") {
		t.Fatal("section text not HTML-escaped")
	}
	if !strings.Contains(msg, "#4711") {
		t.Fatal("job id footer missing")
	}
}

func TestFormatMessageDeadlinePlaceholder(t *testing.T) {
	p := domain.Posting{Identity: "https://site/jobs/1", Title: "Guard", Deadline: "N/A"}
	msg := FormatMessage(p)
	if !strings.Contains(msg, "⚡ Apply now") {
		t.Fatalf("expected apply-now marker for N/A deadline: %q", msg)
	}
}
