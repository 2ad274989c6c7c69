package injurysources

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
	"golang.org/x/net/html"
)

// page wraps a parsed document with a document-order index so parsers can
// look up the nearest element before a given node.
type page struct {
	doc   *goquery.Document
	order map[*html.Node]int
}

func parsePage(body []byte) (*page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, crerr.Wrap(err, "parse html")
	}

	order := make(map[*html.Node]int)
	next := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		order[n] = next
		next++
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return &page{doc: doc, order: order}, nil
}

// lastBefore returns the candidate closest before target in document order.
func (p *page) lastBefore(candidates *goquery.Selection, target *goquery.Selection) *goquery.Selection {
	if target.Length() == 0 {
		return nil
	}
	limit, ok := p.order[target.Get(0)]
	if !ok {
		return nil
	}

	var best *html.Node
	bestPos := -1
	for _, n := range candidates.Nodes {
		pos, ok := p.order[n]
		if !ok || pos >= limit || pos <= bestPos {
			continue
		}
		best, bestPos = n, pos
	}
	if best == nil {
		return nil
	}
	return candidates.FilterNodes(best)
}

// precedingText tries each candidate set in turn and returns the text of the
// first one that has an element before target.
func (p *page) precedingText(target *goquery.Selection, candidateSets ...*goquery.Selection) (string, bool) {
	for _, candidates := range candidateSets {
		if found := p.lastBefore(candidates, target); found != nil {
			return cleanText(found.Text()), true
		}
	}
	return "", false
}

// findDivs returns div elements whose class attribute satisfies match.
func (p *page) findDivs(match func(class string) bool) *goquery.Selection {
	return withClass(p.doc.Find("div"), match)
}

func withClass(sel *goquery.Selection, match func(class string) bool) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		return ok && class != "" && match(class)
	})
}

func classContains(fragment string) func(string) bool {
	return func(class string) bool {
		return strings.Contains(class, fragment)
	}
}

func classContainsFold(fragments ...string) func(string) bool {
	return func(class string) bool {
		lower := strings.ToLower(class)
		for _, fragment := range fragments {
			if strings.Contains(lower, fragment) {
				return true
			}
		}
		return false
	}
}

// firstNonEmpty returns the first selection with at least one match, or an empty one.
func firstNonEmpty(sets ...*goquery.Selection) *goquery.Selection {
	for _, set := range sets {
		if set.Length() > 0 {
			return set
		}
	}
	if len(sets) == 0 {
		return &goquery.Selection{}
	}
	return sets[len(sets)-1]
}

func cellTexts(cells *goquery.Selection) []string {
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		out = append(out, cleanText(cell.Text()))
	})
	return out
}

func cellAt(cells []string, index int) string {
	if index < len(cells) {
		return cells[index]
	}
	return ""
}

// rowCollector accumulates records from one page, dropping rows that fail validation.
type rowCollector struct {
	source    string
	sport     injury.Sport
	fetchedAt time.Time
	logger    *logging.Logger
	records   []injury.Record
	skipped   int
}

func newRowCollector(source string, sport injury.Sport, fetchedAt time.Time, logger *logging.Logger) *rowCollector {
	return &rowCollector{
		source:    source,
		sport:     sport,
		fetchedAt: fetchedAt,
		logger:    logger,
		records:   make([]injury.Record, 0),
	}
}

func (c *rowCollector) add(in rowInput) {
	in.Source = c.source
	in.Sport = string(c.sport)
	record, err := newRecord(in, c.fetchedAt)
	if err != nil {
		if !crerr.Is(err, errSkipRow) {
			c.skipped++
		}
		return
	}
	c.records = append(c.records, record)
}

func (c *rowCollector) done(name string) []injury.Record {
	if c.skipped > 0 && c.logger != nil {
		c.logger.Debug("skipped invalid injury rows", "source", name, "skipped", c.skipped)
	}
	return c.records
}
