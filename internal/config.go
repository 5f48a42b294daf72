package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Store    StoreConfig       `yaml:"store"`
	Uploads  UploadsConfig     `yaml:"uploads"`
	Search   SearchConfig      `yaml:"search"`
	Vision   VisionConfig      `yaml:"vision"`
	Detector DetectorConfig    `yaml:"detector"`
	OCR      OCRConfig         `yaml:"ocr"`
	Demo     DemoConfig        `yaml:"demo"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Vision.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig holds the path to the persisted JSON document.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// UploadsConfig holds the spool directory for uploaded images.
type UploadsConfig struct {
	Dir string `yaml:"dir"`
}

// SearchConfig holds the SQLite search-index configuration. The index is
// derived from the document and can be deleted at any time.
type SearchConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// VisionConfig holds the cloud vision model configuration. The credential
// itself comes from the GEMINI_API_KEY environment variable; when that is
// unset all cloud features are disabled gracefully.
type VisionConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Validate validates the vision configuration.
func (c *VisionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.Required),
	)
}

// DetectorConfig holds the local object-detection model configuration.
// An empty ModelPath leaves the detector permanently not-ready; analysis
// then always reports the not-loaded fragment.
type DetectorConfig struct {
	ModelPath   string  `yaml:"model_path"`
	LibraryPath string  `yaml:"library_path"`
	Confidence  float64 `yaml:"confidence"`
}

// OCRConfig holds Tesseract language configuration.
type OCRConfig struct {
	Languages []string `yaml:"languages"`
}

// DemoConfig holds demo-mode behavior. Whether demo mode is active is a
// per-user setting in the persisted document; this only tunes the canned
// response delay.
type DemoConfig struct {
	DelayMS int `yaml:"delay_ms"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Path: "./data/ansuz.json",
		},
		Uploads: UploadsConfig{
			Dir: "./data/uploads",
		},
		Search: SearchConfig{
			Path: "./data/ansuz-index.db",
		},
		Vision: VisionConfig{
			Model: "gemini-2.0-flash",
		},
		Detector: DetectorConfig{
			Confidence: 0.5,
		},
		OCR: OCRConfig{
			Languages: []string{"eng"},
		},
		Demo: DemoConfig{
			DelayMS: 1500,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
