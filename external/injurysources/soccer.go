package injurysources

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

const soccerFallbackURL = espnBaseURL + "/soccer/injuries"

// soccerLeagueCodes maps league slugs to ESPN league codes.
var soccerLeagueCodes = map[string]string{
	"premier-league":   "eng.1",
	"la-liga":          "esp.1",
	"champions-league": "uefa.champions",
	"mls":              "usa.1",
}

// SoccerLeagueURL returns the ESPN injuries page for a league, or the generic
// soccer page when the league is unknown.
func SoccerLeagueURL(league string) string {
	code, ok := soccerLeagueCodes[league]
	if !ok {
		return soccerFallbackURL
	}
	return espnBaseURL + "/soccer/injuries/_/league/" + code
}

type SoccerSource struct {
	pageSource
	league string
}

func NewSoccerSource(league string, fetcher PageGetter, logger *logging.Logger) *SoccerSource {
	name := sourceESPN + "_soccer_" + league
	return &SoccerSource{
		pageSource: newPageSource(name, injury.SportSoccer, SoccerLeagueURL(league), fetcher, logger),
		league:     league,
	}
}

func (s *SoccerSource) League() string {
	return s.league
}

func (s *SoccerSource) Fetch(ctx context.Context) ([]injury.Record, error) {
	p, err := s.loadPage(ctx)
	if err != nil {
		return nil, err
	}
	return s.parsed(ctx, parseSoccer(p, s.league, s.now(), s.logger)), nil
}

func parseSoccer(p *page, league string, fetchedAt time.Time, logger *logging.Logger) []injury.Record {
	rows := newRowCollector(sourceESPN, injury.SportSoccer, fetchedAt, logger)
	team := unknownTeam

	h2 := p.doc.Find("h2")
	h3 := p.doc.Find("h3")
	captions := p.doc.Find("caption")

	sections := firstNonEmpty(
		p.findDivs(classContains("Table")),
		p.doc.Find("table"),
	)
	sections.Each(func(_ int, section *goquery.Selection) {
		if text, ok := p.precedingText(section, h2, h3, captions); ok {
			team = text
		}

		section.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := cellTexts(row.Find("td"))
			if len(cells) < 2 {
				return
			}
			rows.add(rowInput{
				Player:         cells[0],
				Team:           team,
				RawStatus:      cells[1],
				Injury:         cellAt(cells, 2),
				ExpectedReturn: cellAt(cells, 3),
				League:         league,
			})
		})
	})
	return rows.done(sourceESPN + "_soccer_" + league)
}
