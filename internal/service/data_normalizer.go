package service

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/models"
)

// DataNormalizer brings game rows and fixtures from any source into canonical form
type DataNormalizer struct {
	abbreviationMap map[string]string // Maps historical franchise codes to current ones
	logger          *logrus.Logger
}

// NewDataNormalizer creates a new data normalizer
func NewDataNormalizer(logger *logrus.Logger) *DataNormalizer {
	return &DataNormalizer{
		abbreviationMap: buildAbbreviationMap(),
		logger:          logger,
	}
}

// NormalizeGameRow trims identifiers, canonicalizes the team code and matchup, strips the time
// component from the game date and derives home/away from the matchup when one is present
func (n *DataNormalizer) NormalizeGameRow(row models.GameRow) models.GameRow {
	row.SeasonID = strings.TrimSpace(row.SeasonID)
	row.GameID = strings.TrimSpace(row.GameID)
	row.TeamID = strings.TrimSpace(row.TeamID)
	row.TeamName = sanitizeName(row.TeamName)
	row.TeamAbbreviation = n.NormalizeAbbreviation(row.TeamAbbreviation)
	row.Matchup = normalizeMatchup(row.Matchup)
	row.GameDate = models.DateOnly(row.GameDate)
	row.Result = models.Result(strings.ToUpper(strings.TrimSpace(string(row.Result))))

	if row.Matchup != "" {
		row.IsHome = models.IsHomeFromMatchup(row.Matchup)
	}
	return row
}

// NormalizeFixture trims team identifiers and strips the time component from the date
func (n *DataNormalizer) NormalizeFixture(f models.Fixture) models.Fixture {
	f.GameID = strings.TrimSpace(f.GameID)
	f.HomeTeamID = strings.TrimSpace(f.HomeTeamID)
	f.AwayTeamID = strings.TrimSpace(f.AwayTeamID)
	f.GameDate = models.DateOnly(f.GameDate)
	return f
}

// NormalizeAbbreviation maps a team code to its current canonical form
func (n *DataNormalizer) NormalizeAbbreviation(abbr string) string {
	code := strings.ToUpper(strings.TrimSpace(abbr))
	if canonical, ok := n.abbreviationMap[code]; ok {
		if n.logger != nil {
			n.logger.WithFields(logrus.Fields{"from": code, "to": canonical}).Debug("Normalized team abbreviation")
		}
		return canonical
	}
	return code
}

// normalizeMatchup collapses whitespace and canonicalizes the separator, so "lal  VS bos"
// becomes "LAL vs. BOS"
func normalizeMatchup(matchup string) string {
	fields := strings.Fields(matchup)
	if len(fields) == 0 {
		return ""
	}
	for i, f := range fields {
		switch strings.ToLower(f) {
		case "vs", "vs.":
			fields[i] = "vs."
		case "@", "at":
			fields[i] = "@"
		default:
			fields[i] = strings.ToUpper(f)
		}
	}
	return strings.Join(fields, " ")
}

// sanitizeName trims whitespace and collapses internal runs of spaces
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// buildAbbreviationMap creates the franchise relocation and rename map
func buildAbbreviationMap() map[string]string {
	return map[string]string{
		"NJN": "BKN",
		"BRK": "BKN",
		"NOH": "NOP",
		"NOK": "NOP",
		"SEA": "OKC",
		"VAN": "MEM",
		"CHH": "CHA",
		"CHO": "CHA",
		"PHO": "PHX",
		"GOS": "GSW",
		"UTH": "UTA",
		"SAN": "SAS",
	}
}
