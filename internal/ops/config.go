package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"main/internal/fetch"
	"main/internal/schema"
	"main/pkg/conn"
)

const defaultIntervalMinutes = 60

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Source   SourceConfig   `json:"source"`
	Database DatabaseConfig `json:"database"`
	Policy   PolicyConfig   `json:"policy"`
	Schedule ScheduleConfig `json:"schedule"`
}

// SourceConfig describes the snapshot source.
type SourceConfig struct {
	BaseURL        string `json:"baseUrl"`
	VsCurrency     string `json:"vsCurrency"`
	PerPage        int    `json:"perPage"`
	Page           int    `json:"page"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// DatabaseConfig describes the sink connection.
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

// PolicyConfig captures optional threshold overrides. Unset values fall
// back to the default policy.
type PolicyConfig struct {
	MaxAbsChangePct             *float64 `json:"maxAbsChangePct"`
	PriceMin                    *float64 `json:"priceMin"`
	PriceMax                    *float64 `json:"priceMax"`
	MaxSupplyFill               *float64 `json:"maxSupplyFill"`
	RecheckEssentialAfterCoerce *bool    `json:"recheckEssentialAfterCoerce"`
}

// ScheduleConfig describes the run cadence.
type ScheduleConfig struct {
	IntervalMinutes int `json:"intervalMinutes"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Source   fetch.Option
	Conn     conn.Option
	Policy   schema.Policy
	Interval time.Duration
}

// Load reads a JSON config file and resolves it against the defaults.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return Resolve(cfg)
}

// Resolve validates a file config and fills defaults.
func Resolve(cfg FileConfig) (Loaded, error) {
	policy, err := resolvePolicy(cfg.Policy)
	if err != nil {
		return Loaded{}, err
	}

	interval := cfg.Schedule.IntervalMinutes
	if interval == 0 {
		interval = defaultIntervalMinutes
	}
	if interval < 0 {
		return Loaded{}, fmt.Errorf("schedule interval must be > 0, got %d", interval)
	}

	return Loaded{
		Source: fetch.Option{
			BaseURL:    cfg.Source.BaseURL,
			VsCurrency: cfg.Source.VsCurrency,
			PerPage:    cfg.Source.PerPage,
			Page:       cfg.Source.Page,
			Timeout:    time.Duration(cfg.Source.TimeoutSeconds) * time.Second,
		},
		Conn: conn.Option{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
			SSLMode:  cfg.Database.SSLMode,
		},
		Policy:   policy,
		Interval: time.Duration(interval) * time.Minute,
	}, nil
}

func resolvePolicy(cfg PolicyConfig) (schema.Policy, error) {
	policy := schema.DefaultPolicy()
	if cfg.MaxAbsChangePct != nil {
		policy.MaxAbsChangePct = *cfg.MaxAbsChangePct
	}
	if cfg.PriceMin != nil {
		policy.PriceMin = *cfg.PriceMin
	}
	if cfg.PriceMax != nil {
		policy.PriceMax = *cfg.PriceMax
	}
	if cfg.MaxSupplyFill != nil {
		policy.MaxSupplyFill = *cfg.MaxSupplyFill
	}
	if cfg.RecheckEssentialAfterCoerce != nil {
		policy.RecheckEssentialAfterCoerce = *cfg.RecheckEssentialAfterCoerce
	}

	if policy.MaxAbsChangePct <= 0 {
		return schema.Policy{}, fmt.Errorf("maxAbsChangePct must be > 0, got %v", policy.MaxAbsChangePct)
	}
	if policy.PriceMin < 0 {
		return schema.Policy{}, fmt.Errorf("priceMin must be >= 0, got %v", policy.PriceMin)
	}
	if policy.PriceMin >= policy.PriceMax {
		return schema.Policy{}, fmt.Errorf("price band is empty: [%v, %v]", policy.PriceMin, policy.PriceMax)
	}
	return policy, nil
}
