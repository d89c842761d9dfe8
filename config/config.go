package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyPort               = "port"
	KeyHarvestAccessToken = "harvest.access_token"
	KeyHarvestAccountID   = "harvest.account_id"
	KeyHarvestBaseURL     = "harvest.base_url"
	KeyTogglAPIToken      = "toggl.api_token"
	KeyTogglBaseURL       = "toggl.base_url"
)

type Config struct {
	Port    int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	Harvest HarvestConfig `mapstructure:"harvest"`
	Toggl   TogglConfig   `mapstructure:"toggl"`
}

type HarvestConfig struct {
	AccessToken string `mapstructure:"access_token" validate:"required"`
	AccountID   string `mapstructure:"account_id" validate:"required"`
	BaseURL     string `mapstructure:"base_url" validate:"required,url"`
}

type TogglConfig struct {
	APIToken string `mapstructure:"api_token" validate:"required"`
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
}

// Status reports which upstream credentials are present. Used by the status
// probe; presence only, tokens are never echoed.
type Status struct {
	HarvestConfigured bool `json:"harvestConfigured"`
	TogglConfigured   bool `json:"togglConfigured"`
}

func (c Config) Status() Status {
	return Status{
		HarvestConfigured: strings.TrimSpace(c.Harvest.AccessToken) != "" && strings.TrimSpace(c.Harvest.AccountID) != "",
		TogglConfigured:   strings.TrimSpace(c.Toggl.APIToken) != "",
	}
}

// SetDefaults sets default values and binds the credential environment
// variables. PORT, HARVEST_ACCESS_TOKEN, HARVEST_ACCOUNT_ID and
// TOGGL_API_TOKEN match what the hosted deployments expect.
func SetDefaults() {
	viper.SetDefault(KeyPort, 3000)
	viper.SetDefault(KeyHarvestBaseURL, "https://api.harvestapp.com/v2")
	viper.SetDefault(KeyTogglBaseURL, "https://api.track.toggl.com/api/v9")

	_ = viper.BindEnv(KeyPort, "PORT")
	_ = viper.BindEnv(KeyHarvestAccessToken, "HARVEST_ACCESS_TOKEN")
	_ = viper.BindEnv(KeyHarvestAccountID, "HARVEST_ACCOUNT_ID")
	_ = viper.BindEnv(KeyHarvestBaseURL, "HARVEST_BASE_URL")
	_ = viper.BindEnv(KeyTogglAPIToken, "TOGGL_API_TOKEN")
	_ = viper.BindEnv(KeyTogglBaseURL, "TOGGL_BASE_URL")
}

// Load reads the config from Viper without validating credentials. The status
// command uses this so it can report missing tokens instead of failing.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadAndValidate loads config from Viper and validates it. Missing
// credentials are a startup failure, not a per-request one.
func LoadAndValidate() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}
