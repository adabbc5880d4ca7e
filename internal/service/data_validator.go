package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/models"
)

// DataValidator validates game rows and fixtures before they are stored or scored
type DataValidator struct {
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	v := validator.New()
	_ = v.RegisterValidation("result", func(fl validator.FieldLevel) bool {
		_, ok := models.Result(fl.Field().String()).Score()
		return ok
	})
	v.RegisterStructValidation(gameRowStructLevel, models.GameRow{})
	return &DataValidator{validate: v, logger: logger}
}

// ValidateGameRow checks required fields and box score constraints. It returns one message per
// violated rule.
func (v *DataValidator) ValidateGameRow(row *models.GameRow) []string {
	var errors []string

	if err := v.validate.Struct(row); err != nil {
		errors = append(errors, describe(err)...)
	}
	if err := v.validate.Var(string(row.Result), "result"); err != nil {
		errors = append(errors, fmt.Sprintf("result must be W or L, got %q", row.Result))
	}

	return errors
}

// ValidateFixture checks that a fixture names two distinct teams and a date
func (v *DataValidator) ValidateFixture(fixture *models.Fixture) []string {
	if err := v.validate.Struct(fixture); err != nil {
		return describe(err)
	}
	return nil
}

// FindDuplicates returns the keys that occur more than once in rows
func (v *DataValidator) FindDuplicates(rows []models.GameRow) []models.RowKey {
	seen := make(map[models.RowKey]int, len(rows))
	var dups []models.RowKey
	for i := range rows {
		key := rows[i].Key()
		seen[key]++
		if seen[key] == 2 {
			dups = append(dups, key)
		}
	}
	return dups
}

func gameRowStructLevel(sl validator.StructLevel) {
	row := sl.Current().Interface().(models.GameRow)

	if row.GameID != "" && strings.TrimSpace(row.GameID) == "" {
		sl.ReportError(row.GameID, "GameID", "GameID", "notblank", "")
	}
	if row.TeamID != "" && strings.TrimSpace(row.TeamID) == "" {
		sl.ReportError(row.TeamID, "TeamID", "TeamID", "notblank", "")
	}
	if row.FGM > row.FGA {
		sl.ReportError(row.FGM, "FGM", "FGM", "ltefield", "FGA")
	}
	if row.FG3M > row.FGM {
		sl.ReportError(row.FG3M, "FG3M", "FG3M", "ltefield", "FGM")
	}
	if row.FTM > row.FTA {
		sl.ReportError(row.FTM, "FTM", "FTM", "ltefield", "FTA")
	}
}

func describe(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	var messages []string
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required", "notblank":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value()))
		case "ltefield":
			messages = append(messages, fmt.Sprintf("%s must not exceed %s, got %v", field, strings.ToLower(fe.Param()), fe.Value()))
		case "nefield":
			messages = append(messages, fmt.Sprintf("%s must differ from %s", field, strings.ToLower(fe.Param())))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return messages
}
