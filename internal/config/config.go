// Package config loads and merges configuration from a TOML file and
// environment variable overrides.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so that BurntSushi/toml can decode "60s"-style
// strings via the encoding.TextUnmarshaler interface.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// VueConfig holds Emporia Vue API and polling settings.
type VueConfig struct {
	Username         string   `toml:"username"`
	Password         string   `toml:"password"`
	APIBase          string   `toml:"api_base"`
	PollInterval     Duration `toml:"poll_interval"`
	RetryBackoff     Duration `toml:"retry_backoff"`
	UsageLag         Duration `toml:"usage_lag"`
	ExcludedChannels []string `toml:"excluded_channels"`
}

// WebConfig holds the metrics exposition listener settings.
type WebConfig struct {
	ListenAddr  string `toml:"listen_addr"`
	MetricsPath string `toml:"metrics_path"`
}

// MQTTConfig holds the optional MQTT republisher settings.
type MQTTConfig struct {
	Enabled     bool   `toml:"enabled"`
	Broker      string `toml:"broker"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	ClientID    string `toml:"client_id"`
	TopicPrefix string `toml:"topic_prefix"`
	Retained    bool   `toml:"retained"`
	QOS         byte   `toml:"qos"`
	TLSCACert   string `toml:"tls_ca_cert"`
}

// Config is the top-level configuration struct.
type Config struct {
	Vue  VueConfig  `toml:"vue"`
	Web  WebConfig  `toml:"web"`
	MQTT MQTTConfig `toml:"mqtt"`
}

// Load reads config from the first existing path in paths, then applies
// environment variable overrides.  Missing files are skipped silently;
// a malformed file returns an error.  Calling Load() with no arguments
// returns pure defaults plus any env overrides.
func Load(paths ...string) (*Config, error) {
	cfg := defaults()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %q: %w", path, err)
			}
			break // first found file wins
		} else if !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("checking config path %q: %w", path, statErr)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Vue: VueConfig{
			PollInterval:     Duration{60 * time.Second},
			RetryBackoff:     Duration{5 * time.Second},
			UsageLag:         Duration{15 * time.Second},
			ExcludedChannels: []string{"Balance", "TotalUsage"},
		},
		Web: WebConfig{
			ListenAddr:  ":8000",
			MetricsPath: "/metrics",
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "vue-exporter",
			TopicPrefix: "vue",
			Retained:    true,
			QOS:         1,
		},
	}
}

// applyEnvOverrides copies any set VUE_USERNAME/VUE_PASSWORD and
// VUE_EXPORTER_* environment variables into cfg.  The credential variables
// keep the names the existing Vue tooling uses.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VUE_USERNAME"); v != "" {
		cfg.Vue.Username = v
	}
	if v := os.Getenv("VUE_PASSWORD"); v != "" {
		cfg.Vue.Password = v
	}
	if v := os.Getenv("VUE_EXPORTER_API_BASE"); v != "" {
		cfg.Vue.APIBase = v
	}
	if v := os.Getenv("VUE_EXPORTER_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Vue.PollInterval = Duration{d}
		} else {
			log.Printf("config: ignoring invalid VUE_EXPORTER_POLL_INTERVAL=%q: %v", v, err)
		}
	}
	if v := os.Getenv("VUE_EXPORTER_RETRY_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Vue.RetryBackoff = Duration{d}
		} else {
			log.Printf("config: ignoring invalid VUE_EXPORTER_RETRY_BACKOFF=%q: %v", v, err)
		}
	}
	if v := os.Getenv("VUE_EXPORTER_USAGE_LAG"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Vue.UsageLag = Duration{d}
		} else {
			log.Printf("config: ignoring invalid VUE_EXPORTER_USAGE_LAG=%q: %v", v, err)
		}
	}
	if v, set := os.LookupEnv("VUE_EXPORTER_EXCLUDED_CHANNELS"); set {
		cfg.Vue.ExcludedChannels = splitCommaList(v)
	}
	if v := os.Getenv("VUE_EXPORTER_LISTEN_ADDR"); v != "" {
		cfg.Web.ListenAddr = v
	}
	if v := os.Getenv("VUE_EXPORTER_METRICS_PATH"); v != "" {
		cfg.Web.MetricsPath = v
	}
	if v := os.Getenv("VUE_EXPORTER_MQTT_ENABLED"); v != "" {
		cfg.MQTT.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("VUE_EXPORTER_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("VUE_EXPORTER_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("VUE_EXPORTER_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("VUE_EXPORTER_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.ClientID = v
	}
	if v := os.Getenv("VUE_EXPORTER_MQTT_TOPIC_PREFIX"); v != "" {
		cfg.MQTT.TopicPrefix = v
	}
	if v := os.Getenv("VUE_EXPORTER_MQTT_RETAINED"); v != "" {
		cfg.MQTT.Retained = v == "true" || v == "1"
	}
	if v := os.Getenv("VUE_EXPORTER_MQTT_QOS"); v != "" {
		if q, err := strconv.ParseUint(v, 10, 8); err == nil {
			cfg.MQTT.QOS = byte(q)
		} else {
			log.Printf("config: ignoring invalid VUE_EXPORTER_MQTT_QOS=%q: %v", v, err)
		}
	}
	if v := os.Getenv("VUE_EXPORTER_MQTT_TLS_CA_CERT"); v != "" {
		cfg.MQTT.TLSCACert = v
	}
}

// splitCommaList parses "a,b,c" into trimmed non-empty elements.  An empty
// string yields nil, which disables channel exclusion entirely.
func splitCommaList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
