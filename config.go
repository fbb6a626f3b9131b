package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed default-dataset.yaml
var defaultDatasetYAML []byte

//go:embed dataset-schema.json
var datasetSchemaJSON string

// LogSettings controls the zap logger
type LogSettings struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // "json" or "console"
}

// ServerSettings controls the web server
type ServerSettings struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// ExportSettings controls report generation
type ExportSettings struct {
	Title      string        `mapstructure:"title" yaml:"title"`
	Brand      string        `mapstructure:"brand" yaml:"brand"`
	FilePrefix string        `mapstructure:"file_prefix" yaml:"file_prefix"`
	OutputDir  string        `mapstructure:"output_dir" yaml:"output_dir"`
	Delay      time.Duration `mapstructure:"delay" yaml:"delay"` // perceived-latency pause before rendering
}

// SimulationSettings are the Monte Carlo and forecast defaults
type SimulationSettings struct {
	Iterations     int     `mapstructure:"iterations" yaml:"iterations"`
	Seed           int64   `mapstructure:"seed" yaml:"seed"` // 0 = seed from the clock
	ConversionRate float64 `mapstructure:"conversion_rate" yaml:"conversion_rate"`
	ForecastPeriod int     `mapstructure:"forecast_periods" yaml:"forecast_periods"`
	SmoothingAlpha float64 `mapstructure:"smoothing_alpha" yaml:"smoothing_alpha"`
}

// OrganisationSettings describes the organisation the dashboard is built for
type OrganisationSettings struct {
	SupportedLanguages []string `mapstructure:"supported_languages" yaml:"supported_languages"`
	LanguageSupport    float64  `mapstructure:"language_support" yaml:"language_support"`
	CulturalCompetency float64  `mapstructure:"cultural_competency" yaml:"cultural_competency"`
	TechnologyAdoption float64  `mapstructure:"technology_adoption" yaml:"technology_adoption"`
	MarketPresence     float64  `mapstructure:"market_presence" yaml:"market_presence"`
	TargetAreaKm2      float64  `mapstructure:"target_area_km2" yaml:"target_area_km2"`
	CurrentPatients    float64  `mapstructure:"current_patients" yaml:"current_patients"`
	BaseAcquisitionCAC float64  `mapstructure:"base_acquisition_cost" yaml:"base_acquisition_cost"`
}

// Settings is the application configuration (file + OUTREACH_* environment)
type Settings struct {
	Dataset      string               `mapstructure:"dataset" yaml:"dataset"` // empty = embedded dataset
	Log          LogSettings          `mapstructure:"log" yaml:"log"`
	Server       ServerSettings       `mapstructure:"server" yaml:"server"`
	Export       ExportSettings       `mapstructure:"export" yaml:"export"`
	Simulation   SimulationSettings   `mapstructure:"simulation" yaml:"simulation"`
	Organisation OrganisationSettings `mapstructure:"organisation" yaml:"organisation"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.addr", "localhost:0")
	v.SetDefault("export.title", "Noran Neurology Globalization Analytics")
	v.SetDefault("export.brand", "Noran Neurology")
	v.SetDefault("export.file_prefix", "noran-neurology-analytics")
	v.SetDefault("export.output_dir", "exports")
	v.SetDefault("export.delay", "0s")
	v.SetDefault("simulation.iterations", DefaultIterations)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.conversion_rate", 0.1)
	v.SetDefault("simulation.forecast_periods", 5)
	v.SetDefault("simulation.smoothing_alpha", DefaultSmoothingAlpha)
	v.SetDefault("organisation.supported_languages", []string{"English", "Spanish"})
	v.SetDefault("organisation.language_support", 45)
	v.SetDefault("organisation.cultural_competency", 60)
	v.SetDefault("organisation.technology_adoption", 70)
	v.SetDefault("organisation.market_presence", 35)
	v.SetDefault("organisation.target_area_km2", 7700)
	v.SetDefault("organisation.current_patients", 9500)
	v.SetDefault("organisation.base_acquisition_cost", 500)
}

// DefaultSettings returns the settings used when no file or environment is present
func DefaultSettings() *Settings {
	v := viper.New()
	setDefaults(v)
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		panic(fmt.Sprintf("default settings do not decode: %v", err))
	}
	return &s
}

// LoadSettings reads settings from filename (or outreach.yaml in the working
// directory when empty), then applies OUTREACH_* environment overrides.
// A .env file, when present, is loaded into the environment first.
func LoadSettings(filename string) (*Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if filename != "" {
		v.SetConfigFile(filename)
	} else {
		v.SetConfigName("outreach")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if filename != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &s, nil
}

// SaveSettings writes settings to a YAML file with a short header
func SaveSettings(s *Settings, filename string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	header := []byte(`# Outreach Analytics settings
#
# Every key can be overridden from the environment with the OUTREACH_ prefix,
# e.g. OUTREACH_EXPORT_OUTPUT_DIR=/tmp/reports or OUTREACH_LOG_LEVEL=debug.
# Leave "dataset" empty to use the embedded Twin Cities dataset.

`)
	return os.WriteFile(filename, append(header, data...), 0644)
}

// Dataset is the static data the dashboard is built from. It is loaded once
// and treated as read-only afterwards.
type Dataset struct {
	Title          string              `yaml:"title"`
	Region         string              `yaml:"region"`
	Current        DemographicRecord   `yaml:"current"`
	Historical     []DemographicRecord `yaml:"historical"`
	Locations      []Location          `yaml:"locations"`
	LanguageAccess LanguageAccessStats `yaml:"language_access"`
	Segments       []MarketSegment     `yaml:"segments"`
	Predictions    PredictionScenarios `yaml:"predictions"`
	Competitors    []Competitor        `yaml:"competitors"`
	ROIScenarios   []ROIScenario       `yaml:"roi_scenarios"`
	Summary        ExportSummary       `yaml:"summary"`
	DataSources    []DataSource        `yaml:"data_sources"`
}

// LoadDataset loads the dataset from path, or the embedded dataset when path
// is empty. The document is validated against the dataset schema before it
// is decoded.
func LoadDataset(path string) (*Dataset, error) {
	data := defaultDatasetYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, NewAnalyticsError(ErrCodeInvalidDataset, "cannot read dataset", err)
		}
	}
	return ParseDataset(data)
}

// ParseDataset validates and decodes a YAML dataset document
func ParseDataset(data []byte) (*Dataset, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewAnalyticsError(ErrCodeInvalidDataset, "dataset is not valid YAML", err)
	}
	if err := validateDatasetDocument(doc); err != nil {
		return nil, err
	}

	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, NewAnalyticsError(ErrCodeInvalidDataset, "dataset does not match the expected shape", err)
	}
	return &ds, nil
}

func validateDatasetDocument(doc map[string]interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(datasetSchemaJSON)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return NewAnalyticsError(ErrCodeInvalidDataset, "dataset validation error", err)
	}
	if !result.Valid() {
		ae := NewAnalyticsError(ErrCodeInvalidDataset, "dataset failed validation", nil)
		for _, desc := range result.Errors() {
			ae.Details = append(ae.Details, desc.String())
		}
		return ae
	}
	return nil
}

// FindSegment returns the segment with the given id, or nil
func (ds *Dataset) FindSegment(id string) *MarketSegment {
	for i := range ds.Segments {
		if ds.Segments[i].ID == id {
			return &ds.Segments[i]
		}
	}
	return nil
}

// FindROIScenario returns the ROI scenario with the given label, or nil
func (ds *Dataset) FindROIScenario(label string) *ROIScenario {
	for i := range ds.ROIScenarios {
		if strings.EqualFold(ds.ROIScenarios[i].Label, label) {
			return &ds.ROIScenarios[i]
		}
	}
	return nil
}

// Scenario returns the predictions for a named growth scenario
func (p PredictionScenarios) Scenario(name string) ([]Prediction, bool) {
	switch strings.ToLower(name) {
	case "conservative":
		return p.Conservative, true
	case "moderate":
		return p.Moderate, true
	case "aggressive":
		return p.Aggressive, true
	}
	return nil, false
}
