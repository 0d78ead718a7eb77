package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"lpreport/internal/dex"
	"lpreport/internal/quote"
	"lpreport/internal/report"
	"lpreport/internal/token"
)

// legacyEnv maps config keys to the bare environment names also accepted.
var legacyEnv = map[string]string{
	"address":       "ADDRESS",
	"cmc-api-key":   "CMC_API_KEY",
	"compare-token": "COMPARE_TOKEN",
	"out":           "FILE",
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Address          string
	CMCAPIKey        string
	CompareToken     string
	Out              string
	RPCURL           string
	PositionManager  string
	Factory          string
	CMCBaseURL       string
	QuoteTTL         time.Duration
	QuoteTimeout     time.Duration
	Interval         time.Duration
	ScaleCorrections map[string]string
	RPCRateLimit     float64
	AtomicWrite      bool
	LogLevel         string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LPREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := "LPREPORT_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetDefault("position-manager", dex.DefaultPositionManagerAddress.Hex())
	v.SetDefault("factory", dex.DefaultFactoryAddress.Hex())
	v.SetDefault("cmc-base-url", quote.DefaultCoinMarketCapURL)
	v.SetDefault("quote-ttl", quote.DefaultTTL)
	v.SetDefault("quote-timeout", quote.DefaultTimeout)
	v.SetDefault("interval", report.DefaultInterval)
	v.SetDefault("scale-corrections", token.DefaultScaleCorrections)
	v.SetDefault("rpc-rate-limit", 0.0)
	v.SetDefault("atomic-write", false)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Address:          strings.TrimSpace(v.GetString("address")),
		CMCAPIKey:        strings.TrimSpace(v.GetString("cmc-api-key")),
		CompareToken:     strings.TrimSpace(v.GetString("compare-token")),
		Out:              strings.TrimSpace(v.GetString("out")),
		RPCURL:           strings.TrimSpace(v.GetString("rpc")),
		PositionManager:  strings.TrimSpace(v.GetString("position-manager")),
		Factory:          strings.TrimSpace(v.GetString("factory")),
		CMCBaseURL:       strings.TrimSpace(v.GetString("cmc-base-url")),
		QuoteTTL:         v.GetDuration("quote-ttl"),
		QuoteTimeout:     v.GetDuration("quote-timeout"),
		Interval:         v.GetDuration("interval"),
		ScaleCorrections: getStringMap(v, "scale-corrections"),
		RPCRateLimit:     v.GetFloat64("rpc-rate-limit"),
		AtomicWrite:      v.GetBool("atomic-write"),
		LogLevel:         v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate reports the first missing or malformed setting.
func (c Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"address", c.Address},
		{"cmc-api-key", c.CMCAPIKey},
		{"compare-token", c.CompareToken},
		{"out", c.Out},
		{"rpc", c.RPCURL},
	}
	for _, item := range required {
		if item.value == "" {
			return fmt.Errorf("%s is required", item.key)
		}
	}
	if c.QuoteTTL < 0 {
		return fmt.Errorf("quote-ttl must not be negative")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be greater than zero")
	}
	return nil
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return upperKeys(typed)
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return upperKeys(out)
	case string:
		return upperKeys(parseStringMap(typed))
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// upperKeys undoes viper's lowercasing of nested keys; token symbols are upper case.
func upperKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToUpper(k)] = v
	}
	return out
}
