package features

import "github.com/yourusername/nba-oracle/internal/models"

// possessionFTWeight scales free throw attempts in the possession estimate
const possessionFTWeight = 0.44

// RowRates holds the per-game efficiency rates of one team. A nil rate means its
// denominator was zero and the rate is undefined for that game.
type RowRates struct {
	EFG      *float64
	TOVRate  *float64
	FTRate   *float64
	OREBRate *float64
	Points   float64
}

// ComputeRates derives the efficiency rates for a single game row
func ComputeRates(row *models.GameRow) RowRates {
	fga := float64(row.FGA)
	possessions := fga + possessionFTWeight*float64(row.FTA) + float64(row.TOV)

	return RowRates{
		EFG:      ratio(float64(row.FGM)+0.5*float64(row.FG3M), fga),
		TOVRate:  ratio(float64(row.TOV), possessions),
		FTRate:   ratio(float64(row.FTM), fga),
		OREBRate: ratio(float64(row.OREB), float64(row.OREB+row.DREB)),
		Points:   float64(row.PTS),
	}
}

func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}
