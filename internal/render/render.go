// Package render turns job descriptions into terminal and API friendly text.
package render

import (
	"regexp"
	"strings"

	"jobboard/internal/models"

	"github.com/PuerkitoBio/goquery"
)

var (
	spacePattern     = regexp.MustCompile(`[ \t]+`)
	blankLinePattern = regexp.MustCompile(`\n{3,}`)
	techStackPattern = regexp.MustCompile(`(?i)(tech stack|technologies|skills):\s*([^|\n]+)`)
)

var blockTags = "p, div, br, li, h1, h2, h3, h4, h5, h6, tr"

// PlainText strips HTML from a description. Block elements become line
// breaks and list items get a bullet. Text without markup is only normalised.
func PlainText(description string) string {
	if !strings.Contains(description, "<") {
		return normalize(description)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return normalize(description)
	}

	doc.Find("script, style").Remove()
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("• ")
	})
	doc.Find(blockTags).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return normalize(doc.Text())
}

// Excerpt returns at most n runes of the plain-text description on a single
// line, ending in "..." when cut.
func Excerpt(description string, n int) string {
	text := strings.Join(strings.Fields(PlainText(description)), " ")
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	cut := strings.TrimSpace(string(runes[:n]))
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = spacePattern.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.Join(lines, "\n")
	text = blankLinePattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

var vocabulary = map[string][]string{
	"languages":    {"python", "javascript", "typescript", "java", "golang", "ruby", "php", "kotlin", "swift", "rust", "c++"},
	"frameworks":   {"react", "angular", "vue", "node", "django", "flask", "spring", "express", "next.js"},
	"databases":    {"sql", "mongodb", "postgresql", "mysql", "redis"},
	"technologies": {"aws", "azure", "gcp", "kubernetes", "docker", "kafka", "graphql"},
	"tools":        {"terraform", "git", "jenkins", "jira"},
}

// SuggestSkills scans a description for well-known skill names and an
// explicit "Tech stack:" line. Anything found on that line but not in the
// vocabulary is filed under others.
func SuggestSkills(description string) models.Skills {
	text := strings.ToLower(PlainText(description))
	var skills models.Skills

	for _, category := range models.SkillCategories {
		for _, term := range vocabulary[category] {
			if containsWord(text, term) {
				skills.Add(category, term)
			}
		}
	}

	if matches := techStackPattern.FindStringSubmatch(text); len(matches) > 2 {
		for _, item := range strings.Split(matches[2], ",") {
			item = strings.TrimSpace(item)
			if item != "" && !known(item) {
				skills.Add("others", item)
			}
		}
	}
	return skills
}

func known(term string) bool {
	for _, terms := range vocabulary {
		for _, t := range terms {
			if t == term {
				return true
			}
		}
	}
	return false
}

func containsWord(text, term string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if boundary(text, i-1) && boundary(text, end) {
			return true
		}
		start = i + 1
	}
}

func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	c := text[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}
