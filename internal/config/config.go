package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// ShiftTimes defines the clock times for one shift code
type ShiftTimes struct {
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

// RequirementOverride replaces the default per-code staffing requirements on
// dates matching its recurrence rule
type RequirementOverride struct {
	RRule        string         `yaml:"rrule" validate:"required"`
	Requirements map[string]int `yaml:"requirements" validate:"required,dive,min=0"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// Pattern is the repeating shift-code cycle driving the rotation
	Pattern []string `yaml:"pattern" validate:"required,min=1,dive,oneof=E L N D R"`

	// Requirements maps shift codes to daily required headcount
	Requirements map[string]int `yaml:"requirements" validate:"required,dive,min=0"`

	// RestPeriodHours is the minimum rest between shifts; zero uses the
	// statutory default of 11 hours
	RestPeriodHours float64 `yaml:"restPeriodHours,omitempty" validate:"omitempty,min=0"`

	// ShiftTimes overrides the standard clock times per shift code
	ShiftTimes map[string]ShiftTimes `yaml:"shiftTimes,omitempty" validate:"omitempty,dive"`

	// InitialOffsets overrides each staff member's starting position in the
	// pattern cycle, keyed by staff ID
	InitialOffsets map[string]int `yaml:"initialOffsets,omitempty"`

	// RequirementOverrides adjust requirements on dates matching an RRULE
	RequirementOverrides []RequirementOverride `yaml:"requirementOverrides,omitempty" validate:"dive"`

	// BankHolidayRules are RRULE strings for recurring bank holidays
	BankHolidayRules []string `yaml:"bankHolidayRules,omitempty"`

	// BankHolidays are explicit bank holiday dates ("2006-01-02")
	BankHolidays []string `yaml:"bankHolidays,omitempty" validate:"omitempty,dive,datetime=2006-01-02"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from rota_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for a named environment
// (rota_config.<env>.yaml), falling back to rota_config.yaml when env is empty
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, override := range cfg.RequirementOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in requirementOverrides[%d]: %w", i, err)
		}
	}

	for i, rule := range cfg.BankHolidayRules {
		if _, err := rrule.StrToRRule(rule); err != nil {
			return fmt.Errorf("invalid rrule in bankHolidayRules[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for the config file in the current directory and home directory
func findConfigFile(env string) (string, error) {
	configFileName := "rota_config.yaml"
	if env != "" {
		configFileName = fmt.Sprintf("rota_config.%s.yaml", env)
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
