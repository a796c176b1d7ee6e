package divemeets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Sentinels for profile fields whose markup pattern did not match.
// Extraction never fails outright, a page with mangled fields still
// produces a usable profile.
const (
	NameNotFound   = "Name not found"
	GenderNotFound = "Gender not found"
	AgeNotFound    = "Age not found"
)

type Profile struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Age    string `json:"age"`
}

type DiveHeight struct {
	Dive   string `json:"dive"`
	Height string `json:"height"`
}

type Performance struct {
	// "YYYY-MM-DD", empty when the row carried no parsable date
	Date  string  `json:"date"`
	Score float64 `json:"score"`
	Meet  string  `json:"meet"`
}

var (
	nameRegex   = regexp.MustCompile(`<strong>Name: </strong>([^<]+)<br><strong>`)
	genderRegex = regexp.MustCompile(`Gender: </strong>([MF])<br><strong>`)
	ageRegex    = regexp.MustCompile(`Age: </strong>(\d+)<br><strong>`)
)

// ExtractProfile pulls name/gender/age out of a profile page.
// The profile markup is not well-formed enough for a DOM walk, the
// fields live in one run of <strong> tags, so this matches the raw
// markup directly.
func ExtractProfile(html string) Profile {
	profile := Profile{
		Name:   NameNotFound,
		Gender: GenderNotFound,
		Age:    AgeNotFound,
	}
	if m := nameRegex.FindStringSubmatch(html); m != nil {
		profile.Name = m[1]
	}
	if m := genderRegex.FindStringSubmatch(html); m != nil {
		profile.Gender = m[1]
	}
	if m := ageRegex.FindStringSubmatch(html); m != nil {
		profile.Age = m[1]
	}
	return profile
}

// ExtractDiveHeights returns every recorded (dive, height) pair on a
// profile page, in document order. The rows carrying a bgcolor
// attribute are exactly the dive statistics rows, that quirk of the
// markup is the discovery predicate.
func ExtractDiveHeights(html string) ([]DiveHeight, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse profile page: %w", err)
	}

	var pairs []DiveHeight
	doc.Find("tr[bgcolor]").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		dive := strings.TrimSpace(cells.Eq(0).Text())
		height := strings.TrimSpace(strings.ReplaceAll(cells.Eq(1).Text(), "M", ""))
		if dive == "" || height == "" {
			return
		}
		pairs = append(pairs, DiveHeight{Dive: dive, Height: height})
	})

	return pairs, nil
}

var dateRegex = regexp.MustCompile(
	`\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\b\s+(\d{1,2}),\s+(\d{4})`,
)

var monthNumbers = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// extractFirstDate finds the first "Mon D, YYYY" date in free text and
// renders it as "YYYY-MM-DD". Returns "" when there is none.
func extractFirstDate(text string) string {
	m := dateRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	month, day, year := m[1], m[2], m[3]
	if len(day) == 1 {
		day = "0" + day
	}
	return fmt.Sprintf("%s-%s-%s", year, monthNumbers[month], day)
}

// extractMeetName takes the substring preceding the " -" delimiter
// that separates the meet name from the event description.
func extractMeetName(text string) string {
	if idx := strings.Index(text, " -"); idx >= 0 {
		return text[:idx]
	}
	return text
}

// ExtractPerformances reads every scored row of the history table on a
// diversdives page. The first 3 rows of the table are header/legend
// markup. Rows with fewer than 2 cells or an unparsable score cell are
// dropped. A missing page or table yields no entries and no error.
func ExtractPerformances(html string) ([]Performance, error) {
	if html == "" {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse dive history page: %w", err)
	}

	table := doc.Find(`table[width="100%"]`).First()
	if table.Length() == 0 {
		return nil, nil
	}

	var entries []Performance
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i < 3 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		eventInfo := strings.TrimSpace(cells.Eq(0).Text())
		score, err := strconv.ParseFloat(strings.TrimSpace(cells.Eq(1).Text()), 64)
		if err != nil {
			return
		}
		entries = append(entries, Performance{
			Date:  extractFirstDate(eventInfo),
			Score: score,
			Meet:  extractMeetName(eventInfo),
		})
	})

	return entries, nil
}

// HasDiveStatistics reports whether a profile page carries a dive
// statistics table at all. Used by the bulk discovery crawler to
// decide whether an id is worth a full fetch.
func HasDiveStatistics(html string) bool {
	return strings.Contains(html, "Dive Statistics")
}
