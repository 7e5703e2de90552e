// Package extract pulls title identifiers out of rendered chart markup.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// titlePattern matches hrefs of the form /title/<id>...
var titlePattern = regexp.MustCompile(`^/title/(\w+)`)

// IDs returns identifiers from every a[href] whose href starts with
// /title/<word chars>, in document order.
//
// Only immediately adjacent repeats are collapsed. The chart links every
// entry twice in a row (poster and title), which this handles; an id that
// shows up again later in the page is kept as a separate entry.
func IDs(markup string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	ids := []string{}
	last := ""
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		id, ok := MatchID(href)
		if !ok {
			return
		}
		if id != last {
			ids = append(ids, id)
		}
		last = id
	})
	return ids, nil
}

// MatchID extracts the identifier from a single href.
func MatchID(href string) (string, bool) {
	m := titlePattern.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return m[1], true
}
