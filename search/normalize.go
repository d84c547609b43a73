package search

import (
	"regexp"
	"strings"
	"time"

	"github.com/stashlabs/stash/core"
)

// Query is the normalized form of a raw search string: the cleaned text with
// recognized patterns stripped, plus the filters those patterns produced.
// Ephemeral, never persisted.
type Query struct {
	// Text is the query text after pattern stripping and whitespace collapse.
	Text string

	// ContentType is the extracted content type filter, zero when unset.
	ContentType core.ContentType

	// From and To bound creation time as From <= CreatedAt < To.
	// Zero values leave that side unbounded.
	From time.Time
	To   time.Time

	// Tags holds hashtag tokens extracted from the text, lowercased,
	// without the leading '#'.
	Tags []string
}

// HasFilters reports whether any filter was extracted.
func (q Query) HasFilters() bool {
	return q.ContentType != 0 || !q.From.IsZero() || !q.To.IsZero() || len(q.Tags) > 0
}

// IsEmpty reports whether the query carries neither text nor filters.
func (q Query) IsEmpty() bool {
	return q.Text == "" && !q.HasFilters()
}

// typePattern maps a synonym group to a content type. Groups are tried in
// order; the first match wins and only one type filter is ever applied.
type typePattern struct {
	re          *regexp.Regexp
	contentType core.ContentType
}

var typePatterns = []typePattern{
	{regexp.MustCompile(`(?i)\b(articles|article|posts|post|blogs|blog)\b`), core.ContentTypeArticle},
	{regexp.MustCompile(`(?i)\b(videos|video|clips|clip|recordings|recording)\b`), core.ContentTypeVideo},
	{regexp.MustCompile(`(?i)\b(products|product|purchases|purchase)\b`), core.ContentTypeProduct},
	{regexp.MustCompile(`(?i)\b(notes|note|memos|memo)\b`), core.ContentTypeNote},
	{regexp.MustCompile(`(?i)\b(todos|todo|tasks|task)\b`), core.ContentTypeTodo},
}

// datePattern maps a relative-date phrase to a concrete range computed
// against "now". Patterns are tried in order; the first match wins.
// An optional leading "from" is stripped along with the phrase.
type datePattern struct {
	re        *regexp.Regexp
	dateRange func(now time.Time) (from, to time.Time)
}

var datePatterns = []datePattern{
	{
		regexp.MustCompile(`(?i)\b(?:from\s+)?today\b`),
		func(now time.Time) (time.Time, time.Time) {
			return startOfDay(now), time.Time{}
		},
	},
	{
		regexp.MustCompile(`(?i)\b(?:from\s+)?yesterday\b`),
		func(now time.Time) (time.Time, time.Time) {
			return startOfDay(now.AddDate(0, 0, -1)), startOfDay(now)
		},
	},
	{
		regexp.MustCompile(`(?i)\b(?:from\s+)?(?:this\s+week|last\s+7\s+days)\b`),
		func(now time.Time) (time.Time, time.Time) {
			return now.AddDate(0, 0, -7), time.Time{}
		},
	},
	{
		regexp.MustCompile(`(?i)\b(?:from\s+)?(?:this\s+month|last\s+30\s+days)\b`),
		func(now time.Time) (time.Time, time.Time) {
			return now.AddDate(0, 0, -30), time.Time{}
		},
	},
	{
		regexp.MustCompile(`(?i)\b(?:from\s+)?this\s+year\b`),
		func(now time.Time) (time.Time, time.Time) {
			return startOfYear(now), time.Time{}
		},
	},
	{
		regexp.MustCompile(`(?i)\b(?:from\s+)?last\s+year\b`),
		func(now time.Time) (time.Time, time.Time) {
			return startOfYear(now.AddDate(-1, 0, 0)), startOfYear(now)
		},
	},
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// Normalize extracts structured filters from a raw query string.
//
// Hashtag tokens, one content type synonym, and one relative date phrase are
// recognized, stripped from the text, and returned as filters. Matching is
// case-insensitive; at most one content type and one date pattern apply
// (first match wins). Whitespace is collapsed after stripping. There are no
// error conditions; an absent pattern simply leaves that filter unset.
func Normalize(raw string, now time.Time) Query {
	q := Query{}
	text := raw

	// Hashtags: independent and repeatable
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		q.Tags = append(q.Tags, strings.ToLower(m[1]))
	}
	text = hashtagPattern.ReplaceAllString(text, " ")

	// Content type: first synonym group that matches wins
	for _, p := range typePatterns {
		if loc := p.re.FindStringIndex(text); loc != nil {
			q.ContentType = p.contentType
			text = text[:loc[0]] + " " + text[loc[1]:]
			break
		}
	}

	// Date range: first phrase that matches wins
	for _, p := range datePatterns {
		if loc := p.re.FindStringIndex(text); loc != nil {
			q.From, q.To = p.dateRange(now)
			text = text[:loc[0]] + " " + text[loc[1]:]
			break
		}
	}

	q.Text = strings.Join(strings.Fields(text), " ")
	return q
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}
