package publish

import (
	"fmt"
	"html"
	"strings"

	"jobrelay/internal/domain"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━"

// FormatMessage renders a posting into the HTML message body sent to the
// channel. Layout only; content decisions (truncation, sentinels) happened in
// the extractor.
func FormatMessage(p domain.Posting) string {
	var b strings.Builder

	b.WriteString("<b>💼 New Job Posting 💼</b>\n\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(strings.ToUpper(p.Title)))
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "🏢 <b>Employment:</b> %s\n\n", html.EscapeString(p.Employment))
	fmt.Fprintf(&b, "🗺 <b>Location:</b> %s\n\n", html.EscapeString(p.Location))
	fmt.Fprintf(&b, "⏳ <b>Deadline:</b> %s\n\n", formatDeadline(p.Deadline))
	fmt.Fprintf(&b, "📎 <a href=\"%s\"><b>🔗 Click here to apply</b></a>\n", p.Identity)
	b.WriteString(rule + "\n\n")

	parts := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		parts = append(parts, fmt.Sprintf("<b>%s</b>\n%s",
			html.EscapeString(s.Heading), html.EscapeString(s.Text)))
	}
	b.WriteString(strings.Join(parts, "\n\n"+rule+"\n\n"))

	if p.JobID != "" {
		b.WriteString("\n\n" + p.JobID)
	}
	return b.String()
}

func formatDeadline(d string) string {
	if d == "" || d == "N/A" || d == "Apply Now" {
		return "⚡ Apply now"
	}
	return "⏰ " + html.EscapeString(d)
}
