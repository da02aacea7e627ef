package dashboard

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/khoahotran/cvnova/internal/domain/cv"
)

// Filter keeps documents whose name or personal-info name contains query, ignoring case.
func Filter(docs []cv.Document, query string) []cv.Document {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return docs
	}
	out := make([]cv.Document, 0, len(docs))
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.PersonalInfo.Name), q) {
			out = append(out, d)
		}
	}
	return out
}

// Initials takes the first letter of each word of name, else the first two
// letters of email, else "U".
func Initials(name, email string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		var b strings.Builder
		for _, f := range fields {
			r, _ := utf8.DecodeRuneInString(f)
			b.WriteRune(unicode.ToUpper(r))
		}
		return b.String()
	}
	if email != "" {
		runes := []rune(email)
		if len(runes) > 2 {
			runes = runes[:2]
		}
		return strings.ToUpper(string(runes))
	}
	return "U"
}

// FormatRelative renders t in whole days relative to now, falling back to a date
// after a week.
func FormatRelative(t, now time.Time) string {
	days := int(math.Ceil(math.Abs(now.Sub(t).Hours()) / 24))
	switch {
	case days <= 1:
		return "Today"
	case days == 2:
		return "Yesterday"
	case days < 7:
		return strconv.Itoa(days) + " days ago"
	default:
		return t.Local().Format("2006-01-02")
	}
}

type Stats struct {
	Total     int
	Published int
	Drafts    int
	Archived  int
	Shared    int
}

func Summarize(docs []cv.Document) Stats {
	s := Stats{Total: len(docs)}
	for _, d := range docs {
		switch d.Status {
		case cv.StatusPublished:
			s.Published++
		case cv.StatusArchived:
			s.Archived++
		default:
			s.Drafts++
		}
		if d.IsPublic && d.ShareID != "" {
			s.Shared++
		}
	}
	return s
}
