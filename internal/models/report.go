package models

type DebtKind string

const (
	SecurityDebt  DebtKind = "security"
	TechnicalDebt DebtKind = "technical"
)

type (
	// DebtFinding is one security or technical issue reported by the model.
	DebtFinding struct {
		Type            string `json:"type"`
		Symptom         string `json:"symptom"`
		AffectedArea    string `json:"affected_area"`
		SuggestedRepair string `json:"suggested_repair"`
	}

	// Assessment is the structured answer the model gives for one snippet.
	Assessment struct {
		SnippetFunctionality string        `json:"snippet_functionality"`
		NumberOfLines        int           `json:"number_of_lines"`
		SecurityDebts        []DebtFinding `json:"securityDebts"`
		TechnicalDebts       []DebtFinding `json:"technicalDebts"`
	}

	// CommitReport is the persisted record for a single commit.
	CommitReport struct {
		SnippetFunctionality string        `json:"snippet_functionality"`
		NumberOfLines        int           `json:"number_of_lines"`
		SecurityDebts        []DebtFinding `json:"securityDebts"`
		TechnicalDebts       []DebtFinding `json:"technicalDebts"`
		Location             string        `json:"location"`
		Repository           string        `json:"repository"`
	}
)

// Normalize replaces nil finding lists with empty ones so they encode as [].
func (r *CommitReport) Normalize() {
	if r.SecurityDebts == nil {
		r.SecurityDebts = []DebtFinding{}
	}
	if r.TechnicalDebts == nil {
		r.TechnicalDebts = []DebtFinding{}
	}
}

// FindingsCount returns the number of findings of both kinds.
func (r CommitReport) FindingsCount() int {
	return len(r.SecurityDebts) + len(r.TechnicalDebts)
}
