package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type (
	Config struct {
		Language  string      `json:"language"`
		OutputDir string      `json:"output_dir"`
		PathFile  string      `json:"path_file"`
		AIConfig  AIConfig    `json:"ai_config"`
		Scan      ScanConfig  `json:"scan"`
		Cache     CacheConfig `json:"cache"`
	}

	AIConfig struct {
		ActiveAI            AI           `json:"active_ai"`
		Models              map[AI]Model `json:"models"`
		Temperature         float32      `json:"temperature"`
		MaxOutputTokens     int          `json:"max_output_tokens"`
		MaxRepairAttempts   int          `json:"max_repair_attempts"`
		MaxTransportRetries int          `json:"max_transport_retries"`
		Azure               AzureConfig  `json:"azure"`
	}

	// AzureConfig identifies the chat-completions deployment used by the azure provider.
	AzureConfig struct {
		Endpoint   string `json:"endpoint,omitempty"`
		Deployment string `json:"deployment,omitempty"`
		APIVersion string `json:"api_version,omitempty"`
	}

	ScanConfig struct {
		ContextLines     int      `json:"context_lines"`
		MaxSnippetLines  int      `json:"max_snippet_lines"`
		SourceExtensions []string `json:"source_extensions"`
		CommitRetries    int      `json:"commit_retries"`
		FlushEvery       int      `json:"flush_every"`
	}

	// CacheConfig controls the opt-in local cache of model assessments.
	CacheConfig struct {
		Enabled  bool `json:"enabled"`
		TTLHours int  `json:"ttl_hours"`
	}
)

const (
	defaultLang                = "en"
	defaultOutputDir           = "."
	defaultTemperature         = 0.3
	defaultMaxOutputTokens     = 1024
	defaultMaxRepairAttempts   = 3
	defaultMaxTransportRetries = 3
	defaultContextLines        = 3
	defaultMaxSnippetLines     = 400
	defaultCommitRetries       = 1
	defaultFlushEvery          = 1
	defaultAzureAPIVersion     = "2023-07-01-preview"
	defaultCacheTTLHours       = 24 * 7

	configDirName  = ".debtguard"
	configFileName = "config.json"
	cacheDirName   = "cache"
)

// DefaultSourceExtensions lists the file extensions treated as source code.
var DefaultSourceExtensions = []string{
	".c", ".cpp", ".h", ".java", ".py", ".js", ".php",
	".cs", ".rb", ".go", ".rs", ".ts", ".m", ".swift",
	".f", ".f90", ".perl", ".sh", ".bash",
}

// LoadConfig reads the configuration from path. When path is a directory it is
// taken as the home directory and the file lives under .debtguard/config.json.
// A missing file is created with defaults.
func LoadConfig(path string) (*Config, error) {
	var configPath string

	if filepath.Ext(path) == ".json" {
		configPath = path
	} else {
		configDir := filepath.Join(path, configDirName)
		configPath = filepath.Join(configDir, configFileName)

		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			if err := os.MkdirAll(configDir, 0755); err != nil {
				return nil, fmt.Errorf("error creating configuration directory: %w", err)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	} else if err != nil {
		return nil, fmt.Errorf("error checking configuration file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading configuration file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error decoding configuration JSON: %w", err)
	}
	config.PathFile = configPath
	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("loaded configuration is not valid: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a configuration populated with defaults and no backing file.
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

func createDefaultConfig(path string) (*Config, error) {
	config := DefaultConfig()
	config.PathFile = path

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating configuration directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding default configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("error saving default configuration: %w", err)
	}

	return config, nil
}

func SaveConfig(config *Config) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration to save is not valid: %w", err)
	}

	if config.PathFile == "" {
		return errors.New("configuration file path is not defined")
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding configuration: %w", err)
	}

	if err := os.WriteFile(config.PathFile, data, 0644); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	return nil
}

// APIKey returns the key for the active provider from the environment.
func (c *Config) APIKey() (string, error) {
	envName, ok := APIKeyEnv[c.AIConfig.ActiveAI]
	if !ok {
		return "", fmt.Errorf("AI provider '%s' not supported", c.AIConfig.ActiveAI)
	}
	key := strings.TrimSpace(os.Getenv(envName))
	if key == "" {
		return "", fmt.Errorf("%s is not set", envName)
	}
	return key, nil
}

// ActiveModel returns the model configured for the active provider.
func (c *Config) ActiveModel() Model {
	if m, ok := c.AIConfig.Models[c.AIConfig.ActiveAI]; ok && m != "" {
		return m
	}
	return DefaultModelForAI(c.AIConfig.ActiveAI)
}

func applyDefaults(config *Config) {
	if config.Language == "" {
		config.Language = defaultLang
	}
	if config.OutputDir == "" {
		config.OutputDir = defaultOutputDir
	}

	ai := &config.AIConfig
	if ai.ActiveAI == "" {
		ai.ActiveAI = AIGemini
	}
	if ai.Models == nil {
		ai.Models = make(map[AI]Model)
	}
	for _, a := range SupportedAIs() {
		if _, ok := ai.Models[a]; !ok {
			ai.Models[a] = DefaultModelForAI(a)
		}
	}
	if ai.Temperature == 0 {
		ai.Temperature = defaultTemperature
	}
	if ai.MaxOutputTokens == 0 {
		ai.MaxOutputTokens = defaultMaxOutputTokens
	}
	if ai.MaxRepairAttempts == 0 {
		ai.MaxRepairAttempts = defaultMaxRepairAttempts
	}
	if ai.MaxTransportRetries == 0 {
		ai.MaxTransportRetries = defaultMaxTransportRetries
	}
	if ai.Azure.APIVersion == "" {
		ai.Azure.APIVersion = defaultAzureAPIVersion
	}

	scan := &config.Scan
	if scan.ContextLines == 0 {
		scan.ContextLines = defaultContextLines
	}
	if scan.MaxSnippetLines == 0 {
		scan.MaxSnippetLines = defaultMaxSnippetLines
	}
	if len(scan.SourceExtensions) == 0 {
		scan.SourceExtensions = append([]string(nil), DefaultSourceExtensions...)
	}
	if scan.CommitRetries == 0 {
		scan.CommitRetries = defaultCommitRetries
	}
	if scan.FlushEvery == 0 {
		scan.FlushEvery = defaultFlushEvery
	}

	if config.Cache.TTLHours == 0 {
		config.Cache.TTLHours = defaultCacheTTLHours
	}
}

func validateConfig(config *Config) error {
	if config.Language == "" {
		return errors.New("language cannot be empty")
	}
	if !IsSupportedAI(config.AIConfig.ActiveAI) {
		return fmt.Errorf("AI provider not supported: %s", config.AIConfig.ActiveAI)
	}
	if config.AIConfig.Temperature < 0 || config.AIConfig.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2")
	}
	if config.AIConfig.MaxOutputTokens < 0 {
		return errors.New("max_output_tokens cannot be negative")
	}
	if config.AIConfig.MaxRepairAttempts < 0 || config.AIConfig.MaxRepairAttempts > 10 {
		return errors.New("max_repair_attempts must be between 0 and 10")
	}
	if config.AIConfig.MaxTransportRetries < 0 {
		return errors.New("max_transport_retries cannot be negative")
	}
	if config.Scan.ContextLines < 0 {
		return errors.New("context_lines cannot be negative")
	}
	if config.Scan.MaxSnippetLines < 0 {
		return errors.New("max_snippet_lines cannot be negative")
	}
	if config.Scan.CommitRetries < 0 {
		return errors.New("commit_retries cannot be negative")
	}
	if config.Scan.FlushEvery < 0 {
		return errors.New("flush_every cannot be negative")
	}
	if config.Cache.TTLHours < 0 {
		return errors.New("cache ttl_hours cannot be negative")
	}
	for _, ext := range config.Scan.SourceExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("source extension must start with a dot: %q", ext)
		}
	}
	if config.AIConfig.ActiveAI == AIAzure {
		if config.AIConfig.Azure.Endpoint == "" {
			return errors.New("azure endpoint is not configured")
		}
		if config.AIConfig.Azure.Deployment == "" {
			return errors.New("azure deployment is not configured")
		}
	}
	return nil
}

// CacheDir returns the assessment cache directory, next to the config file.
// It is empty when the configuration has no backing file.
func (c *Config) CacheDir() string {
	if c.PathFile == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(c.PathFile), cacheDirName)
}

// CacheTTL returns the lifetime of cached assessments.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// Validate checks the configuration after command-line overrides are applied.
func (c *Config) Validate() error {
	return validateConfig(c)
}
