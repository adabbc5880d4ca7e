package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/yourusername/nba-oracle/internal/models"
)

var exportPrefix = []string{"TEAM_ID", "TEAM_NAME", "GAME_ID", "GAME_DATE", "WIN"}

// ExportHeader returns the column layout of the training table
func ExportHeader() []string {
	return append(append([]string{}, exportPrefix...), models.FeatureNames()...)
}

// WriteCSV writes the training table with features in schema order
func WriteCSV(w io.Writer, examples []models.TrainingExample) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, ex := range examples {
		record := []string{
			ex.TeamID,
			ex.TeamName,
			ex.GameID,
			ex.GameDate.Format("2006-01-02"),
			strconv.Itoa(int(ex.Label())),
		}
		for _, v := range ex.Features.Values() {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write example %s/%s: %w", ex.GameID, ex.TeamID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
