package regex

import "regexp"

var (
	// Unified diff hunk header: @@ -old[,count] +new[,count] @@
	HunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

	// GitHub repository addresses
	GitHubSSHRepo   = regexp.MustCompile(`^git@github\.com:([^/]+)/(.+?)(?:\.git)?/?$`)
	GitHubHTTPSRepo = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)

	// Model answer cleanup
	FencedBlock = regexp.MustCompile("(?s)(?:```|~~~)(?:json)?\\s*\\n?(.*?)(?:```|~~~)")
	JSONString  = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
)
