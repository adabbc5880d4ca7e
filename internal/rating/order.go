package rating

import (
	"sort"
	"strconv"

	"github.com/yourusername/nba-oracle/internal/models"
)

// Report summarizes the input a Rate call processed
type Report struct {
	Rows          int
	Games         int
	Teams         int
	UnpairedGames []string
}

// OrderRows returns a copy of rows sorted by (game_date, game_id, team_id) after checking
// that no (game_id, team_id) pair repeats and that a game's two rows are one home and one away.
// Games with a single row are tolerated and listed in the report.
func OrderRows(rows []models.GameRow) ([]models.GameRow, Report, error) {
	sorted := make([]models.GameRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessRow(&sorted[i], &sorted[j])
	})

	report := Report{Rows: len(sorted)}
	seen := make(map[models.RowKey]struct{}, len(sorted))
	teams := make(map[string]struct{})
	byGame := make(map[string][]*models.GameRow)
	var gameOrder []string

	for i := range sorted {
		row := &sorted[i]
		key := row.Key()
		if _, dup := seen[key]; dup {
			return nil, report, models.NewDataIntegrityError(models.ErrDuplicateRow, row.GameID, row.TeamID, "", "")
		}
		seen[key] = struct{}{}
		teams[row.TeamID] = struct{}{}

		if _, ok := byGame[row.GameID]; !ok {
			gameOrder = append(gameOrder, row.GameID)
		}
		byGame[row.GameID] = append(byGame[row.GameID], row)
	}

	for _, gameID := range gameOrder {
		group := byGame[gameID]
		switch {
		case len(group) == 1:
			report.UnpairedGames = append(report.UnpairedGames, gameID)
		case len(group) > 2:
			return nil, report, models.NewDataIntegrityError(models.ErrInconsistentGame, gameID, group[2].TeamID, "rows", "more than two")
		case group[0].IsHome == group[1].IsHome:
			return nil, report, models.NewDataIntegrityError(models.ErrInconsistentGame, gameID, group[1].TeamID, "is_home", strconv.FormatBool(group[1].IsHome))
		case !group[0].GameDate.Equal(group[1].GameDate):
			return nil, report, models.NewDataIntegrityError(models.ErrInconsistentGame, gameID, group[1].TeamID, "game_date", group[1].GameDate.Format("2006-01-02"))
		}
	}

	report.Games = len(gameOrder)
	report.Teams = len(teams)
	return sorted, report, nil
}

func lessRow(a, b *models.GameRow) bool {
	if !a.GameDate.Equal(b.GameDate) {
		return a.GameDate.Before(b.GameDate)
	}
	if a.GameID != b.GameID {
		return a.GameID < b.GameID
	}
	return a.TeamID < b.TeamID
}
