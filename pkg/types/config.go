package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings for the platform client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "nacc-qc/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries for throttled or unavailable
	// responses. Zero uses the client default.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0,lte=10"`
}

// PlatformConfig holds settings for talking to the data platform.
type PlatformConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is the platform API key in host[:port]:secret form.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the API base URL derived from the API key, for
	// sites reached through a proxy.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`

	// MetadataPath is the lookup path of the record holding center
	// information (default "nacc/metadata").
	MetadataPath string `json:"metadata_path" yaml:"metadata_path" mapstructure:"metadata_path" validate:"required,contains=/"`
}

// ReportFormat selects the output format for QC reports.
type ReportFormat string

const (
	FormatCSV   ReportFormat = "csv"
	FormatJSON  ReportFormat = "json"
	FormatYAML  ReportFormat = "yaml"
	FormatXLSX  ReportFormat = "xlsx"
	FormatTable ReportFormat = "table"
)

// ReportFormats lists every supported report format.
var ReportFormats = []ReportFormat{FormatCSV, FormatJSON, FormatYAML, FormatXLSX, FormatTable}

// ReportConfig holds settings for rendering reports.
type ReportConfig struct {
	// Format selects the output format.
	Format ReportFormat `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=csv json yaml xlsx table"`

	// IncludePassed keeps error entries recorded by gears whose status is
	// pass. Off by default.
	IncludePassed bool `json:"include_passed" yaml:"include_passed" mapstructure:"include_passed"`
}

// StoreConfig holds settings for the report history database.
type StoreConfig struct {
	// Dir is the directory containing the history database.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir" validate:"required"`

	// MaxResults is the default maximum number of runs listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"gte=0"`
}

// Config groups all configuration for nacc-qc.
type Config struct {
	Platform PlatformConfig `json:"platform" yaml:"platform" mapstructure:"platform"`
	Report   ReportConfig   `json:"report" yaml:"report" mapstructure:"report"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Platform: PlatformConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    60 * time.Second,
				UserAgent:  "nacc-qc/dev",
				MaxRetries: 5,
			},
			MetadataPath: "nacc/metadata",
		},
		Report: ReportConfig{Format: FormatCSV},
		Store:  StoreConfig{Dir: "reports", MaxResults: 20},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and reports every invalid field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validating config")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return errors.WithHint(
		errors.Newf("invalid config: %s", strings.Join(msgs, "; ")),
		"check nacc-qc.yaml or the NACC_QC_* environment variables",
	)
}
