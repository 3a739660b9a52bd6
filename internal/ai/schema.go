package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomas-vilte/debtguard/internal/models"
)

const (
	fieldFunctionality  = "snippet_functionality"
	fieldNumberOfLines  = "number_of_lines"
	fieldSecurityDebts  = "securityDebts"
	fieldTechnicalDebts = "technicalDebts"
)

var findingFields = []string{"type", "symptom", "affected_area", "suggested_repair"}

var (
	securityTypeIndex  = indexTypes(SecurityDebtTypes)
	technicalTypeIndex = indexTypes(TechnicalDebtTypes)
)

func indexTypes(types []string) map[string]string {
	idx := make(map[string]string, len(types))
	for _, t := range types {
		idx[normalizeType(t)] = t
	}
	return idx
}

func normalizeType(t string) string {
	return strings.ToLower(strings.Join(strings.Fields(t), " "))
}

// ParseAssessment extracts the JSON answer from a raw completion and
// validates it.
func ParseAssessment(completion string) (models.Assessment, []string) {
	if strings.TrimSpace(completion) == "" {
		return models.Assessment{}, []string{"the response is empty"}
	}
	return ValidateAssessment([]byte(ExtractJSON(completion)))
}

// ValidateAssessment checks raw against the assessment schema. It returns
// the decoded assessment when there are no violations. Finding types are
// matched case-insensitively and rewritten to their canonical spelling;
// unknown extra fields are ignored.
func ValidateAssessment(raw []byte) (models.Assessment, []string) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil || doc == nil {
		return models.Assessment{}, []string{"the response is not a JSON object"}
	}

	var (
		violations []string
		assessment models.Assessment
	)

	switch v := doc[fieldFunctionality].(type) {
	case string:
		assessment.SnippetFunctionality = v
	case nil:
		violations = append(violations, fmt.Sprintf("field %q is missing", fieldFunctionality))
	default:
		violations = append(violations, fmt.Sprintf("field %q must be a string", fieldFunctionality))
	}

	switch v := doc[fieldNumberOfLines].(type) {
	case json.Number:
		n, err := v.Int64()
		switch {
		case err != nil:
			violations = append(violations, fmt.Sprintf("field %q must be an integer, got %s", fieldNumberOfLines, v))
		case n < 0:
			violations = append(violations, fmt.Sprintf("field %q must not be negative", fieldNumberOfLines))
		default:
			assessment.NumberOfLines = int(n)
		}
	case nil:
		violations = append(violations, fmt.Sprintf("field %q is missing", fieldNumberOfLines))
	default:
		violations = append(violations, fmt.Sprintf("field %q must be an integer", fieldNumberOfLines))
	}

	var v []string
	assessment.SecurityDebts, v = validateFindings(doc, fieldSecurityDebts, securityTypeIndex)
	violations = append(violations, v...)
	assessment.TechnicalDebts, v = validateFindings(doc, fieldTechnicalDebts, technicalTypeIndex)
	violations = append(violations, v...)

	if len(violations) > 0 {
		return models.Assessment{}, violations
	}
	return assessment, nil
}

func validateFindings(doc map[string]interface{}, field string, allowed map[string]string) ([]models.DebtFinding, []string) {
	raw, present := doc[field]
	if !present {
		return nil, []string{fmt.Sprintf("field %q is missing", field)}
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, []string{fmt.Sprintf("field %q must be an array", field)}
	}

	var violations []string
	findings := make([]models.DebtFinding, 0, len(items))

	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			violations = append(violations, fmt.Sprintf("%s[%d] must be an object", field, i))
			continue
		}

		values := make(map[string]string, len(findingFields))
		valid := true
		for _, name := range findingFields {
			s, ok := obj[name].(string)
			if !ok {
				violations = append(violations, fmt.Sprintf("%s[%d].%s must be a string", field, i, name))
				valid = false
				continue
			}
			values[name] = s
		}
		if !valid {
			continue
		}

		canonical, ok := allowed[normalizeType(values["type"])]
		if !ok {
			violations = append(violations, fmt.Sprintf("%s[%d].type %q is not one of the allowed types", field, i, values["type"]))
			continue
		}

		findings = append(findings, models.DebtFinding{
			Type:            canonical,
			Symptom:         values["symptom"],
			AffectedArea:    values["affected_area"],
			SuggestedRepair: values["suggested_repair"],
		})
	}

	return findings, violations
}
