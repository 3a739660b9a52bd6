package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomas-vilte/debtguard/internal/models"
)

func finding(typ string) models.DebtFinding {
	return models.DebtFinding{Type: typ, Symptom: "s", AffectedArea: "a", SuggestedRepair: "r"}
}

func TestSummarize(t *testing.T) {
	reports := map[string]models.CommitReport{
		"c1": {
			Location:       "src/a.go",
			SecurityDebts:  []models.DebtFinding{finding("Hardcoded Secrets")},
			TechnicalDebts: []models.DebtFinding{finding("Long Methods"), finding("Complex Code")},
		},
		"c2": {
			Location:       "src/a.go",
			TechnicalDebts: []models.DebtFinding{finding("Long Methods")},
		},
		"c3": {
			Location:      "main.go",
			SecurityDebts: []models.DebtFinding{finding("Lack of Input Validation")},
		},
		"c4": {Location: "clean.go"},
	}

	summary := Summarize(reports)

	assert.Equal(t, 4, summary.Commits)
	assert.Equal(t, 1, summary.CleanCommits)
	assert.Equal(t, 2, summary.SecurityTotal)
	assert.Equal(t, 3, summary.TechnicalTotal)

	assert.Equal(t, []TypeCount{
		{Kind: models.SecurityDebt, Type: "Hardcoded Secrets", Count: 1},
		{Kind: models.SecurityDebt, Type: "Lack of Input Validation", Count: 1},
		{Kind: models.TechnicalDebt, Type: "Long Methods", Count: 2},
		{Kind: models.TechnicalDebt, Type: "Complex Code", Count: 1},
	}, summary.Types)

	assert.Equal(t, []FileCount{
		{Path: "main.go", Security: 1},
		{Path: "src/a.go", Security: 1, Debt: 3},
	}, summary.Files)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Zero(t, summary.Commits)
	assert.Empty(t, summary.Types)
	assert.Empty(t, summary.Files)
}
