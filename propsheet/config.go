package propsheet

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type Config struct {
	Log         LogConfig        `cfg:"log"`
	Debug       bool             `cfg:"debug"`
	DevMode     bool             `cfg:"dev_mode"`
	ListenAddr  string           `cfg:"listen_addr"`
	HTTPTimeout time.Duration    `cfg:"http_timeout"`
	Smartsheet  SmartsheetConfig `cfg:"smartsheet"`
	Template    TemplateConfig   `cfg:"template"`
	Webhook     WebhookConfig    `cfg:"webhook"`
	RateLimit   *RateLimitConfig `cfg:"rate_limit"`
	Otel        *OtelConfig      `cfg:"otel"`
}

func (c Config) Validate() error {
	if c.Smartsheet.Token == "" {
		return errors.New("smartsheet.token is required")
	}
	if c.Smartsheet.SheetID == 0 {
		return errors.New("smartsheet.sheet_id is required")
	}
	if c.Template.Path == "" {
		return errors.New("template.path is required")
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("\n Log: %s\n Debug: %t\n DevMode: %t\n ListenAddr: %s\n HTTPTimeout: %s\n Smartsheet: %s\n Template: %s\n Webhook: %s\n RateLimit: %s\n Otel: %s\n",
		c.Log,
		c.Debug,
		c.DevMode,
		c.ListenAddr,
		c.HTTPTimeout,
		c.Smartsheet,
		c.Template,
		c.Webhook,
		c.RateLimit,
		c.Otel,
	)
}

type LogConfig struct {
	Level     slog.Level `cfg:"level"`
	Format    string     `cfg:"format"`
	AddSource bool       `cfg:"add_source"`
	NoColor   bool       `cfg:"no_color"`
}

func (c LogConfig) String() string {
	return fmt.Sprintf("\n  Level: %s\n  Format: %s\n  AddSource: %t\n  NoColor: %t",
		c.Level,
		c.Format,
		c.AddSource,
		c.NoColor,
	)
}

type SmartsheetConfig struct {
	Token          string `cfg:"token"`
	SheetID        int64  `cfg:"sheet_id"`
	BaseURL        string `cfg:"base_url"`
	CheckboxColumn string `cfg:"checkbox_column"`
	AddressColumn  string `cfg:"address_column"`
}

func (c SmartsheetConfig) String() string {
	return fmt.Sprintf("\n  Token: %s\n  SheetID: %d\n  BaseURL: %s\n  CheckboxColumn: %s\n  AddressColumn: %s",
		strings.Repeat("*", len(c.Token)),
		c.SheetID,
		c.BaseURL,
		c.CheckboxColumn,
		c.AddressColumn,
	)
}

type TemplateConfig struct {
	Path      string            `cfg:"path"`
	OutputDir string            `cfg:"output_dir"`
	Cells     map[string]string `cfg:"cells"`
}

func (c TemplateConfig) String() string {
	return fmt.Sprintf("\n  Path: %s\n  OutputDir: %s\n  Cells: %v",
		c.Path,
		c.OutputDir,
		c.Cells,
	)
}

type WebhookConfig struct {
	Name        string `cfg:"name"`
	CallbackURL string `cfg:"callback_url"`
}

func (c WebhookConfig) String() string {
	return fmt.Sprintf("\n  Name: %s\n  CallbackURL: %s",
		c.Name,
		c.CallbackURL,
	)
}

type RateLimitConfig struct {
	Requests  int           `cfg:"requests"`
	Duration  time.Duration `cfg:"duration"`
	Whitelist []string      `cfg:"whitelist"`
	Blacklist []string      `cfg:"blacklist"`
}

func (c RateLimitConfig) String() string {
	return fmt.Sprintf("\n  Requests: %d\n  Duration: %s\n  Whitelist: %v\n  Blacklist: %v",
		c.Requests,
		c.Duration,
		c.Whitelist,
		c.Blacklist,
	)
}

type OtelConfig struct {
	InstanceID string         `cfg:"instance_id"`
	Trace      *TraceConfig   `cfg:"trace"`
	Metrics    *MetricsConfig `cfg:"metrics"`
}

func (c OtelConfig) String() string {
	return fmt.Sprintf("\n  InstanceID: %s\n  Trace: %s\n  Metrics: %s",
		c.InstanceID,
		c.Trace,
		c.Metrics,
	)
}

type TraceConfig struct {
	Endpoint string `cfg:"endpoint"`
	Insecure bool   `cfg:"insecure"`
}

func (c TraceConfig) String() string {
	return fmt.Sprintf("\n   Endpoint: %s\n   Insecure: %t",
		c.Endpoint,
		c.Insecure,
	)
}

type MetricsConfig struct {
	ListenAddr string `cfg:"listen_addr"`
}

func (c MetricsConfig) String() string {
	return fmt.Sprintf("\n   ListenAddr: %s",
		c.ListenAddr,
	)
}
