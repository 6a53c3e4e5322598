package scrape

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"jobrelay/internal/domain"
	"jobrelay/internal/scrape/util"
)

const fallbackHeading = "Job Description"

// Sections walks the content region in document order and groups consecutive
// paragraph/list text under the nearest preceding heading. Pure function over
// the parsed tree so it can be exercised against fixture documents.
func Sections(content *goquery.Selection, maxWords, maxChars int) []domain.Section {
	if content == nil || content.Length() == 0 {
		return nil
	}

	var out []domain.Section
	heading := ""
	var body []string

	flush := func() {
		if heading == "" || len(body) == 0 {
			return
		}
		text := util.TruncateWords(strings.Join(body, "\n"), maxWords, maxChars)
		out = append(out, domain.Section{Heading: heading, Text: text})
	}

	content.Find("h2, h3, h4, h5, p, li").Each(func(_ int, el *goquery.Selection) {
		switch goquery.NodeName(el) {
		case "h2", "h3", "h4", "h5":
			flush()
			heading = util.CleanText(el.Text())
			body = nil
		case "p", "li":
			// ignore paragraphs before the first heading; they are usually
			// site chrome, not posting content
			if heading == "" {
				return
			}
			text := util.CleanText(el.Text())
			if utf8.RuneCountInString(text) > 5 {
				body = append(body, text)
			}
		}
	})
	flush()

	if len(out) > 0 {
		return out
	}
	return fallbackSections(content, maxWords, maxChars)
}

// fallbackSections collects the first few sufficiently long paragraphs into
// one synthetic section when the page has no heading structure at all.
func fallbackSections(content *goquery.Selection, maxWords, maxChars int) []domain.Section {
	var paras []string
	content.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := util.CleanText(p.Text())
		if utf8.RuneCountInString(text) > 20 && !strings.Contains(strings.ToLower(text), "how to apply") {
			paras = append(paras, util.CapRunes(text, 200))
		}
		return len(paras) < 5
	})
	if len(paras) == 0 {
		return nil
	}
	text := util.TruncateWords(strings.Join(paras, "\n"), maxWords, maxChars)
	return []domain.Section{{Heading: fallbackHeading, Text: text}}
}
