package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainTextStripsMarkup(t *testing.T) {
	html := `<p>We are <b>hiring</b>.</p><ul><li>Go</li><li>SQL</li></ul><script>alert(1)</script>`
	assert.Equal(t, "We are hiring.\n• Go\n• SQL", PlainText(html))
}

func TestPlainTextKeepsPlainDescriptions(t *testing.T) {
	assert.Equal(t, "line one\n\nline two", PlainText("  line   one \r\n\r\n\r\n\r\nline two  "))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("<p>short</p>", 20))
	assert.Equal(t, "build distributed...", Excerpt("build distributed systems in Go", 20))
}

func TestSuggestSkills(t *testing.T) {
	s := SuggestSkills("<p>Tech stack: Golang, PostgreSQL, Temporal</p><p>Deployed on AWS with Docker. Java is a plus.</p>")

	assert.Equal(t, []string{"java", "golang"}, s.Languages)
	assert.Equal(t, []string{"postgresql"}, s.Databases)
	assert.Equal(t, []string{"aws", "docker"}, s.Technologies)
	assert.Equal(t, []string{"temporal"}, s.Others)
	assert.Empty(t, s.Frameworks)
}

func TestSuggestSkillsMatchesWholeWords(t *testing.T) {
	s := SuggestSkills("JavaScript developer wanted")
	assert.Equal(t, []string{"javascript"}, s.Languages)
}
