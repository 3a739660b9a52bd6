package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeRepository    ErrorType = "REPOSITORY"
	TypeModel         ErrorType = "MODEL"
	TypeSchema        ErrorType = "SCHEMA"
	TypeStore         ErrorType = "STORE"
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if stderr, ok := e.Context["stderr"].(string); ok && stderr != "" {
			msg += fmt.Sprintf(" - %s", stderr)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches errors derived from the same sentinel, so that
// errors.Is(ErrModelUnavailable.WithError(x), ErrModelUnavailable) holds.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// TypeOf returns the type of the outermost AppError in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsFatal reports whether err must abort the whole scan. Repository and
// store failures are fatal; model and schema failures only cost one commit.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch TypeOf(err) {
	case TypeModel, TypeSchema:
		return false
	default:
		return true
	}
}

// Repository errors
var (
	ErrRepositoryAccess = NewAppError(TypeRepository, "repository cannot be opened or cloned", nil).
				WithSuggestion("Check the address and your access rights: git ls-remote <address>")

	ErrNotInGitRepo = NewAppError(TypeRepository, "path is not a git repository", nil).
			WithSuggestion("Point the scan at a git work tree or a clone URL")

	ErrListCommits = NewAppError(TypeRepository, "failed to list commits", nil).
			WithSuggestion("Make sure the revision exists: git log <rev>")

	ErrReadCommit = NewAppError(TypeRepository, "failed to read commit", nil)

	ErrReadFile = NewAppError(TypeRepository, "failed to read file at commit", nil)

	ErrCloneFailed = NewAppError(TypeRepository, "failed to clone repository", nil).
			WithSuggestion("Verify the URL and your network connection: git clone <url>")

	ErrRemoteNotFound = NewAppError(TypeRepository, "remote repository not found", nil).
				WithSuggestion("Check the repository URL, or export GITHUB_TOKEN for private repositories")
)

// Model errors
var (
	ErrModelUnavailable = NewAppError(TypeModel, "model endpoint unavailable", nil).
				WithSuggestion("Try again later; resume the scan with --resume")

	ErrModelAuth = NewAppError(TypeModel, "model endpoint rejected the credentials", nil).
			WithSuggestion("Check the API key exported in your environment")

	ErrModelQuotaExceeded = NewAppError(TypeModel, "model quota exceeded or rate limited", nil).
				WithSuggestion("Wait a few minutes and resume the scan with --resume")

	ErrEmptyCompletion = NewAppError(TypeModel, "model returned an empty completion", nil)
)

// Schema errors
var (
	ErrSchemaValidation = NewAppError(TypeSchema, "model response does not match the expected schema", nil).
				WithSuggestion("This is usually transient; resume the scan with --resume to retry the commit")
)

// Store errors
var (
	ErrReportStoreIO = NewAppError(TypeStore, "failed to read or write the report file", nil).
				WithSuggestion("Check that the output directory exists and is writable")

	ErrReportCorrupt = NewAppError(TypeStore, "report file is not valid JSON", nil).
				WithSuggestion("Restore the file or run the scan without --resume to start over")
)

// Configuration errors
var (
	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "AI API key is missing", nil).
				WithSuggestion("Export GEMINI_API_KEY (gemini) or OPENAI_API_KEY (azure), or add it to a .env file")

	ErrProviderNotSupported = NewAppError(TypeConfiguration, "AI provider not supported", nil).
				WithSuggestion("Use one of: gemini, azure")

	ErrInvalidConfig = NewAppError(TypeConfiguration, "configuration is not valid", nil).
				WithSuggestion("Inspect it with: debtguard config show")

	ErrMissingArgument = NewAppError(TypeConfiguration, "repository address is required", nil).
				WithSuggestion("Usage: debtguard run <repository-address> [--resume]")
)
