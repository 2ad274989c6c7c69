package injurysources

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

const cbsBaseURL = "https://www.cbssports.com"

// CBSSource reads the CBS Sports injuries page. CBS publishes NBA and MLB only.
type CBSSource struct {
	pageSource
}

func NewCBSSource(sport injury.Sport, fetcher PageGetter, logger *logging.Logger) (*CBSSource, error) {
	if sport != injury.SportNBA && sport != injury.SportMLB {
		return nil, fmt.Errorf("cbs source does not cover %q", sport)
	}
	url := fmt.Sprintf("%s/%s/injuries/", cbsBaseURL, sport)
	return &CBSSource{pageSource: newPageSource(sourceCBS+"_"+string(sport), sport, url, fetcher, logger)}, nil
}

func (s *CBSSource) Fetch(ctx context.Context) ([]injury.Record, error) {
	p, err := s.loadPage(ctx)
	if err != nil {
		return nil, err
	}
	return s.parsed(ctx, parseCBS(p, s.sport, s.now(), s.logger)), nil
}

// parseCBS understands the wide layout player|pos|updated|injury|status and
// the narrow layout player|status|injury.
func parseCBS(p *page, sport injury.Sport, fetchedAt time.Time, logger *logging.Logger) []injury.Record {
	rows := newRowCollector(sourceCBS, sport, fetchedAt, logger)
	team := unknownTeam

	h4 := p.doc.Find("h4")
	h3 := p.doc.Find("h3")
	teamLinks := withClass(p.doc.Find("a"), classContainsFold("team"))

	sections := firstNonEmpty(
		p.findDivs(classContains("TableBase")),
		p.doc.Find("table"),
	)
	sections.Each(func(_ int, section *goquery.Selection) {
		if text, ok := p.precedingText(section, h4, h3, teamLinks); ok {
			team = text
		}

		section.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := cellTexts(row.Find("td"))
			if len(cells) < 3 {
				return
			}
			in := rowInput{Player: cells[0], Team: team}
			if len(cells) >= 5 {
				in.Updated = cells[2]
				in.Injury = cells[3]
				in.RawStatus = cells[4]
			} else {
				in.RawStatus = cells[1]
				in.Injury = cells[2]
			}
			rows.add(in)
		})
	})
	return rows.done(sourceCBS + "_" + string(sport))
}
