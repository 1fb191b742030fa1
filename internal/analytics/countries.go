package analytics

import (
	"sort"

	"github.com/maxviazov/tennis-players-service/internal/model"
)

// CountWins counts the 1s in a match history.
func CountWins(last []int) int {
	wins := 0
	for _, v := range last {
		if v == 1 {
			wins++
		}
	}
	return wins
}

type tally struct {
	wins  int
	total int
}

// ComputeCountryWinRatios pools the recent match histories of players per country code
// and returns every country tied at the highest and at the lowest ratio.
// Players without a country code are ignored; a country whose players have no history
// at all scores 0.
func ComputeCountryWinRatios(players []model.Player) model.CountryReport {
	byCode := make(map[string]*tally)
	for _, p := range players {
		code := p.Country.Code
		if code == "" {
			continue
		}
		t, ok := byCode[code]
		if !ok {
			t = &tally{}
			byCode[code] = t
		}
		t.wins += CountWins(p.Data.Last)
		t.total += len(p.Data.Last)
	}
	if len(byCode) == 0 {
		return model.CountryReport{}
	}

	ratios := make([]model.CountryRatio, 0, len(byCode))
	for code, t := range byCode {
		var r float64
		if t.total > 0 {
			r = Round2(float64(t.wins) / float64(t.total))
		}
		ratios = append(ratios, model.CountryRatio{Code: code, WinRatio: r})
	}
	sort.Slice(ratios, func(i, j int) bool {
		if ratios[i].WinRatio != ratios[j].WinRatio {
			return ratios[i].WinRatio > ratios[j].WinRatio
		}
		return ratios[i].Code < ratios[j].Code
	})

	hi := ratios[0].WinRatio
	lo := ratios[len(ratios)-1].WinRatio
	var report model.CountryReport
	for _, r := range ratios {
		if r.WinRatio == hi {
			report.Best = append(report.Best, r)
		}
		if r.WinRatio == lo {
			report.Worst = append(report.Worst, r)
		}
	}
	return report
}
