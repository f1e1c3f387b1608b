package internal

import (
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/translator"
)

// languageCode matches two- or three-letter codes with an optional region,
// like "es", "pt-BR", or "fil".
var languageCode = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2})?$`)

// Config represents the application configuration.
type Config struct {
	LogLevel    slog.Level        `yaml:"log_level"`
	BaseURLs    map[string]string `yaml:"base_urls"`
	Content     ContentConfig     `yaml:"content"`
	Translation TranslationConfig `yaml:"translation"`
	Concat      ConcatConfig      `yaml:"concat"`
	Convert     ConvertConfig     `yaml:"convert"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Translation.Validate(); err != nil {
		return err
	}
	if err := c.Concat.Validate(); err != nil {
		return err
	}
	return c.Convert.Validate()
}

// ContentConfig locates the linkable corpus and its index documents.
type ContentConfig struct {
	LocalPath string `yaml:"local_path"`
	IndexPath string `yaml:"index_path"`
	// IndexAliases are path segments dropped during link canonicalization,
	// so "[[Index/Drugs/X]]" and "[[Drugs/X]]" name the same index entry.
	IndexAliases []string `yaml:"index_aliases"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LocalPath, validation.Required),
		validation.Field(&c.IndexPath, validation.Required),
	)
}

// TranslationConfig drives the scan and translate commands.
type TranslationConfig struct {
	SourcePath string `yaml:"source_path"`
	OutputPath string `yaml:"output_path"`
	// SourceDirectories scopes the scan to subdirectories of SourcePath.
	// Empty means the whole source tree.
	SourceDirectories []string `yaml:"source_directories"`
	TargetLanguages   []string `yaml:"target_languages"`
	// BatchSize caps how many entries one translate run works through.
	// Zero means no cap.
	BatchSize      int    `yaml:"batch_size"`
	LedgerPath     string `yaml:"ledger_path"`
	Model          string `yaml:"model"`
	MaxTokens      int    `yaml:"max_tokens"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// PromptPath points at a file overriding the built-in translation
	// instructions.
	PromptPath string `yaml:"prompt_path"`
}

// Validate validates the translation configuration.
func (c *TranslationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SourcePath, validation.Required),
		validation.Field(&c.OutputPath, validation.Required),
		validation.Field(&c.LedgerPath, validation.Required),
		validation.Field(&c.TargetLanguages, validation.Each(validation.Match(languageCode))),
		validation.Field(&c.BatchSize, validation.Min(0)),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxTokens, validation.Required, validation.Min(1)),
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.TimeoutSeconds, validation.Required, validation.Min(1)),
	)
}

// ConcatConfig drives the concat command.
type ConcatConfig struct {
	InputPath    string            `yaml:"input_path"`
	OutputFolder string            `yaml:"output_folder"`
	OutputType   string            `yaml:"output_type"`
	References   map[string]string `yaml:"references"`
}

// Validate validates the concat configuration.
func (c *ConcatConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.InputPath, validation.Required),
		validation.Field(&c.OutputFolder, validation.Required),
		validation.Field(&c.OutputType, validation.Required),
	)
}

// ConvertConfig drives the convert command.
type ConvertConfig struct {
	BibliographyPath    string `yaml:"bibliography_path"`
	CSLPath             string `yaml:"csl_path"`
	DefaultOutputFormat string `yaml:"default_output_format"`
	FiltersDir          string `yaml:"filters_dir"`
}

// Validate validates the convert configuration.
func (c *ConvertConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultOutputFormat, validation.Required),
		validation.Field(&c.FiltersDir, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: slog.LevelInfo,
		BaseURLs: map[string]string{},
		Content: ContentConfig{
			LocalPath:    "./content",
			IndexPath:    "./content/Index",
			IndexAliases: []string{"Index", "Brain Guides"},
		},
		Translation: TranslationConfig{
			SourcePath:     "./content",
			OutputPath:     "./translations",
			LedgerPath:     "./translation_status.csv",
			Model:          "claude-3-5-sonnet-20241022",
			MaxTokens:      4096,
			BaseURL:        translator.DefaultBaseURL,
			TimeoutSeconds: 120,
		},
		Concat: ConcatConfig{
			InputPath:    "./content",
			OutputFolder: "concatenated",
			OutputType:   "guide",
			References:   map[string]string{"en": "References"},
		},
		Convert: ConvertConfig{
			DefaultOutputFormat: "html",
			FiltersDir:          "./filters",
		},
	}
}
