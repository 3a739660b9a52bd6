package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/i18n"
	"github.com/thomas-vilte/debtguard/internal/models"
)

func init() {
	color.NoColor = true
}

func TestHandleAppError(t *testing.T) {
	t.Run("prints type, details and suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		err := appErrors.ErrRepositoryAccess.
			WithError(errors.New("exit status 128")).
			WithSuggestion("Check the address\nand your network")

		HandleAppError(&buf, err, nil)

		out := buf.String()
		assert.Contains(t, out, "REPOSITORY: "+appErrors.ErrRepositoryAccess.Message)
		assert.Contains(t, out, "Details: exit status 128")
		assert.Contains(t, out, "💡 Try: Check the address")
		assert.Contains(t, out, "       and your network")
	})

	t.Run("plain errors are printed as is", func(t *testing.T) {
		var buf bytes.Buffer
		HandleAppError(&buf, errors.New("boom"), nil)
		assert.Contains(t, buf.String(), "boom")
	})

	t.Run("nil is a no-op", func(t *testing.T) {
		var buf bytes.Buffer
		HandleAppError(&buf, nil, nil)
		assert.Empty(t, buf.String())
	})
}

func TestPrintTokenUsage(t *testing.T) {
	trans, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintTokenUsage(&buf, &models.TokenUsage{
		InputTokens:  100,
		OutputTokens: 50,
		TotalTokens:  150,
		CostUSD:      0.0012,
	}, trans)

	out := buf.String()
	assert.Contains(t, out, "150")
	assert.Contains(t, out, "$0.0012 USD")

	buf.Reset()
	PrintTokenUsage(&buf, &models.TokenUsage{}, trans)
	assert.Empty(t, buf.String())
}

func TestPrintFindingsTree(t *testing.T) {
	var buf bytes.Buffer
	PrintFindingsTree(&buf, "Findings by file", []LocationCount{
		{Path: "src/app/x.py", Security: 1, Debt: 2},
		{Path: "y.py", Debt: 1},
		{Path: "src/main.go"},
	})

	expected := "\n" + StatsEmoji + " Findings by file\n" +
		"├── src/\n" +
		"│   ├── app/\n" +
		"│   │   └── x.py (sec 1, tech 2)\n" +
		"│   └── main.go (sec 0, tech 0)\n" +
		"└── y.py (sec 0, tech 1)\n"
	assert.Equal(t, expected, buf.String())
}
