package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/topi314/tint"

	"github.com/tillfield/propsheet/internal/ver"
	"github.com/tillfield/propsheet/propsheet"
	"github.com/tillfield/propsheet/propsheet/smartsheet"
)

func main() {
	cfgPath := flag.String("config", "", "path to propsheet.json")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", tint.Err(err))
		os.Exit(1)
	}

	setupLogger(cfg.Log)
	version := ver.Load()
	slog.Info("starting propsheet...", slog.String("version", version.Version), slog.String("commit", version.Revision))
	slog.Info("config loaded", slog.String("config", cfg.String()))

	if err = cfg.Validate(); err != nil {
		slog.Error("invalid config", tint.Err(err))
		os.Exit(1)
	}

	if cfg.Otel != nil {
		if err = setupOtel(cfg.Otel, version); err != nil {
			slog.Error("failed to set up otel", tint.Err(err))
			os.Exit(1)
		}
	}

	client := smartsheet.NewClient(cfg.Smartsheet.Token, cfg.Smartsheet.BaseURL, nil)
	fetcher := propsheet.NewFetcher(client, cfg.Smartsheet.SheetID, cfg.Smartsheet.CheckboxColumn, cfg.Smartsheet.AddressColumn)
	generator := propsheet.NewGenerator(cfg.Template.Path, cfg.Template.OutputDir, cfg.Smartsheet.AddressColumn, propsheet.CellMappings(cfg.Template.Cells))
	publisher := propsheet.NewPublisher(client, cfg.Smartsheet.SheetID, cfg.Template.OutputDir)
	registrar := propsheet.NewRegistrar(client, cfg.Smartsheet.SheetID)

	s := propsheet.NewServer(version, cfg, client, fetcher, generator, publisher)
	go s.Start()
	defer s.Close()

	if cfg.Webhook.CallbackURL == "" {
		slog.Warn("webhook.callback_url not configured, skipping webhook registration")
	} else {
		// A failed registration is not fatal: the endpoint still serves, it
		// just receives no events until a later registration succeeds.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err = registrar.EnsureWebhook(ctx, cfg.Webhook.Name, cfg.Webhook.CallbackURL); err != nil {
			slog.Error("failed to register webhook", tint.Err(err))
		}
		cancel()
	}

	slog.Info("propsheet listening", slog.String("addr", cfg.ListenAddr))
	si := make(chan os.Signal, 1)
	signal.Notify(si, syscall.SIGINT, syscall.SIGTERM)
	<-si
}

func loadConfig(path string) (propsheet.Config, error) {
	viper.SetDefault("listen_addr", ":80")
	viper.SetDefault("debug", false)
	viper.SetDefault("dev_mode", false)
	viper.SetDefault("http_timeout", "2m")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.add_source", false)
	viper.SetDefault("log.no_color", false)
	viper.SetDefault("smartsheet.base_url", smartsheet.DefaultBaseURL)
	viper.SetDefault("smartsheet.checkbox_column", propsheet.DefaultCheckboxColumn)
	viper.SetDefault("smartsheet.address_column", propsheet.DefaultAddressColumn)
	viper.SetDefault("template.path", "Updated Schedule.xlsx")
	viper.SetDefault("template.output_dir", "property_folders")
	viper.SetDefault("webhook.name", "propsheet")

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("propsheet")
		viper.SetConfigType("json")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/propsheet/")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Config can come entirely from the environment.
		if !errors.As(err, &notFound) {
			return propsheet.Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}
	viper.SetEnvPrefix("propsheet")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// AutomaticEnv only resolves keys viper already knows about; keys without
	// defaults need an explicit bind to be readable from the environment.
	viper.MustBindEnv("smartsheet.token")
	viper.MustBindEnv("smartsheet.sheet_id")
	viper.MustBindEnv("webhook.callback_url")
	viper.AutomaticEnv()

	var cfg propsheet.Config
	if err := viper.Unmarshal(&cfg, func(config *mapstructure.DecoderConfig) {
		config.TagName = "cfg"
		// Environment values arrive as strings, including sheet_id.
		config.WeaklyTypedInput = true
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		)
	}); err != nil {
		return propsheet.Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func setupLogger(cfg propsheet.LogConfig) {
	opts := &slog.HandlerOptions{
		AddSource: cfg.AddSource,
		Level:     cfg.Level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			AddSource: cfg.AddSource,
			Level:     cfg.Level,
			NoColor:   cfg.NoColor,
		})
	}
	slog.SetDefault(slog.New(handler))
}
