package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/thomas-vilte/debtguard/internal/models"
)

// SecurityDebtTypes are the categories a security finding may use.
var SecurityDebtTypes = []string{
	"Hardcoded Secrets",
	"Insecure Dependencies",
	"Lack of Input Validation",
	"Insufficient Error Handling",
	"Inadequate Encryption",
	"Improper Session Management",
	"Insecure Default Settings",
	"Lack of Principle of Least Privilege",
	"Insecure Direct Object References",
	"Cross-Site Request Forgery (CSRF)",
	"Ignoring Security Warnings",
	"Not Adhering to Secure Coding Standards",
}

// TechnicalDebtTypes are the categories a technical finding may use.
var TechnicalDebtTypes = []string{
	"Code Duplication",
	"Complex Code",
	"Long Methods",
	"Poorly Named Classes/Methods",
	"Lack of Modularity",
	"Insufficient Testing",
	"Outdated Documentation",
	"Lack of Coding Standards",
	"Hard-coded Values",
	"Deprecated Dependencies",
	"Ignoring Refactoring",
	"Error/Exception Handling",
	"Inefficient Resource Management",
	"Lack of Concurrency Control",
}

const maxEchoedResponse = 4000

// PromptData holds the parameters for template rendering
type PromptData struct {
	Path           string
	Language       string
	SpanStart      int
	SpanEnd        int
	LineCount      int
	Truncated      bool
	NumberedSource string
	SecurityTypes  []string
	TechnicalTypes []string
}

type repairPromptData struct {
	Original    string
	BadResponse string
	Violations  []string
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

const assessmentPromptTemplate = `# Task
You are a senior software engineer auditing a single code change for security debt and technical debt.

# Change
File: {{.Path}}
{{- if .Language}}
Language: {{.Language}}
{{- end}}
Changed lines: {{.SpanStart}}-{{.SpanEnd}}
{{- if .Truncated}}
Note: the snippet was truncated to its first {{.LineCount}} lines.
{{- end}}

~~~
{{.NumberedSource}}
~~~

# Instructions
1. Summarize in one or two sentences what the snippet does.
2. Report the number of lines of the snippet as an integer.
3. Extract the security vulnerabilities present in the snippet. Validate that each one actually exists in this code; do not report hypothetical issues.
4. Extract the technical debts present in the snippet, validated the same way.
5. For every finding give its type, the symptom, the affected area (a line range such as "lines 12-15") and a suggested repair.
6. Use an empty list when there is nothing to report.

Allowed security debt types:
{{- range .SecurityTypes}}
- {{.}}
{{- end}}

Allowed technical debt types:
{{- range .TechnicalTypes}}
- {{.}}
{{- end}}

# Output format
Respond with a single JSON object and nothing else, with exactly these fields:
{
  "snippet_functionality": "string",
  "number_of_lines": 0,
  "securityDebts": [
    {"type": "one of the allowed security debt types", "symptom": "string", "affected_area": "string", "suggested_repair": "string"}
  ],
  "technicalDebts": [
    {"type": "one of the allowed technical debt types", "symptom": "string", "affected_area": "string", "suggested_repair": "string"}
  ]
}
`

const repairPromptTemplate = `# Task
Your previous answer could not be used because it does not follow the required JSON format.

# Problems found
{{- range .Violations}}
- {{.}}
{{- end}}

# Previous answer
~~~
{{.BadResponse}}
~~~

# Original request
{{.Original}}
Answer again with a single JSON object that fixes every problem listed above. Do not add any text outside the JSON object.
`

// BuildAssessmentPrompt renders the fixed assessment prompt for snippet.
// The same snippet always yields the same prompt.
func BuildAssessmentPrompt(snippet models.Snippet) (string, error) {
	lineCount := strings.Count(snippet.Text, "\n") + 1

	data := PromptData{
		Path:           snippet.Path,
		Language:       snippet.Language,
		SpanStart:      snippet.Span.Start,
		SpanEnd:        snippet.Span.End,
		LineCount:      lineCount,
		Truncated:      snippet.Truncated,
		NumberedSource: numberLines(snippet.Text, snippet.TextStart),
		SecurityTypes:  SecurityDebtTypes,
		TechnicalTypes: TechnicalDebtTypes,
	}

	return RenderPrompt("assessmentPrompt", assessmentPromptTemplate, data)
}

// BuildRepairPrompt re-asks the model to conform, listing what was wrong
// with its previous answer.
func BuildRepairPrompt(original, badResponse string, violations []string) (string, error) {
	badResponse = strings.TrimSpace(badResponse)
	badResponse = Truncate(badResponse, maxEchoedResponse)
	if badResponse == "" {
		badResponse = "(empty)"
	}

	data := repairPromptData{
		Original:    original,
		BadResponse: badResponse,
		Violations:  violations,
	}

	return RenderPrompt("repairPrompt", repairPromptTemplate, data)
}

func numberLines(text string, start int) string {
	if start < 1 {
		start = 1
	}
	lines := strings.Split(text, "\n")
	width := len(fmt.Sprint(start + len(lines) - 1))

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%*d | %s", width, start+i, line)
	}
	return b.String()
}

// Truncate cuts s to at most limit bytes without splitting a UTF-8
// sequence and marks the cut with "...".
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
