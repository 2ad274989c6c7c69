package injurysources

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

const espnBaseURL = "https://www.espn.com"

// ESPNSource reads the ESPN injuries page for one sport.
type ESPNSource struct {
	pageSource
}

func NewESPNSource(sport injury.Sport, fetcher PageGetter, logger *logging.Logger) *ESPNSource {
	url := fmt.Sprintf("%s/%s/injuries", espnBaseURL, sport)
	return &ESPNSource{pageSource: newPageSource(sourceESPN+"_"+string(sport), sport, url, fetcher, logger)}
}

func (s *ESPNSource) Fetch(ctx context.Context) ([]injury.Record, error) {
	p, err := s.loadPage(ctx)
	if err != nil {
		return nil, err
	}
	return s.parsed(ctx, parseESPN(p, s.sport, s.now(), s.logger)), nil
}

// parseESPN reads team sections first and falls back to flat tables
// when the sections yield nothing.
func parseESPN(p *page, sport injury.Sport, fetchedAt time.Time, logger *logging.Logger) []injury.Record {
	rows := newRowCollector(sourceESPN, sport, fetchedAt, logger)
	team := unknownTeam

	sections := firstNonEmpty(
		p.findDivs(classContainsFold("injuries")),
		p.doc.Find("section"),
		p.doc.Find("div.ResponsiveTable"),
	)
	sections.Each(func(_ int, section *goquery.Selection) {
		header := firstNonEmpty(
			section.Find("h2"),
			section.Find("h3"),
			withClass(section.Find("span"), classContainsFold("team")),
		)
		if header.Length() > 0 {
			team = cleanText(header.First().Text())
		}

		section.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := cellTexts(row.Find("td"))
			if len(cells) < 3 {
				return
			}
			rows.add(rowInput{
				Player:    cells[0],
				Team:      team,
				RawStatus: cells[1],
				Injury:    cells[2],
				Updated:   cellAt(cells, 3),
			})
		})
	})

	if len(rows.records) == 0 {
		parseHeadedTables(p, rows, team)
	}
	return rows.done(sourceESPN + "_" + string(sport))
}

// parseHeadedTables reads every table, taking the team from the nearest
// preceding h2, h3 or h4.
func parseHeadedTables(p *page, rows *rowCollector, team string) {
	headings := p.doc.Find("h2, h3, h4")
	p.doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if text, ok := p.precedingText(table, headings); ok {
			team = text
		}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := cellTexts(row.Find("td"))
			if len(cells) < 2 {
				return
			}
			rows.add(rowInput{
				Player:    cells[0],
				Team:      team,
				RawStatus: cells[1],
				Injury:    cellAt(cells, 2),
			})
		})
	})
}
