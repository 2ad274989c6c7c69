package injurysources

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

const nbaOfficialURL = "https://www.nba.com/players/injuries"

type NBAOfficialSource struct {
	pageSource
}

func NewNBAOfficialSource(fetcher PageGetter, logger *logging.Logger) *NBAOfficialSource {
	return &NBAOfficialSource{pageSource: newPageSource(sourceNBAOfficial, injury.SportNBA, nbaOfficialURL, fetcher, logger)}
}

func (s *NBAOfficialSource) Fetch(ctx context.Context) ([]injury.Record, error) {
	p, err := s.loadPage(ctx)
	if err != nil {
		return nil, err
	}
	return s.parsed(ctx, parseNBAOfficial(p, s.now(), s.logger)), nil
}

// parseNBAOfficial walks team or injury containers holding either table rows
// or player cards, then falls back to plain tables.
func parseNBAOfficial(p *page, fetchedAt time.Time, logger *logging.Logger) []injury.Record {
	rows := newRowCollector(sourceNBAOfficial, injury.SportNBA, fetchedAt, logger)
	team := unknownTeam

	p.findDivs(classContainsFold("team", "injury")).Each(func(_ int, container *goquery.Selection) {
		if header := container.Find("h2, h3, h4").First(); header.Length() > 0 {
			team = cleanText(header.Text())
		}

		entries := firstNonEmpty(
			container.Find("tr"),
			withClass(container.Find("div"), classContainsFold("player")),
		)
		entries.Each(func(_ int, entry *goquery.Selection) {
			cells := cellTexts(firstNonEmpty(entry.Find("td"), entry.Find("span")))
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

	if len(rows.records) == 0 {
		parseHeadedTables(p, rows, team)
	}
	return rows.done(sourceNBAOfficial)
}
