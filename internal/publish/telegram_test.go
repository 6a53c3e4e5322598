package publish

import "testing"

func TestChannelLink(t *testing.T) {
	if got := channelLink("@jobs"); got != "https://t.me/jobs" {
		t.Fatalf("channelLink(@jobs) = %q", got)
	}
	if got := channelLink("-1001234567890"); got != "" {
		t.Fatalf("numeric chat id should have no link, got %q", got)
	}
	if got := channelLink("@"); got != "" {
		t.Fatalf("bare @ should have no link, got %q", got)
	}
}

func TestInlineButtonsIncludeChannelLink(t *testing.T) {
	m := inlineButtons("https://site/jobs/1", "https://t.me/jobs")
	if len(m.InlineKeyboard) != 1 || len(m.InlineKeyboard[0]) != 2 {
		t.Fatalf("expected one row with apply + channel buttons, got %+v", m.InlineKeyboard)
	}
	if m.InlineKeyboard[0][0].URL != "https://site/jobs/1" {
		t.Fatalf("apply button url = %q", m.InlineKeyboard[0][0].URL)
	}
	if m.InlineKeyboard[0][1].URL != "https://t.me/jobs" {
		t.Fatalf("channel button url = %q", m.InlineKeyboard[0][1].URL)
	}
}

func TestInlineButtonsApplyOnlyWithoutChannelURL(t *testing.T) {
	m := inlineButtons("https://site/jobs/1", "")
	if len(m.InlineKeyboard) != 1 || len(m.InlineKeyboard[0]) != 1 {
		t.Fatalf("expected a lone apply button, got %+v", m.InlineKeyboard)
	}
}
