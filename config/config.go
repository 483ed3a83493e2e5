// Package config loads the settings of the documentation server.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sangyongchoi/armeria/docs"
	"github.com/sangyongchoi/armeria/middleware"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ARMERIA_SERVER_ADDR.
const EnvPrefix = "ARMERIA"

// Config is the root configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
	Log    LogConfig    `mapstructure:"log" yaml:"log" json:"log"`
	Docs   DocsConfig   `mapstructure:"docs" yaml:"docs" json:"docs"`
}

// ServerConfig configures the listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr" json:"addr" validate:"required"`
	H2C             bool          `mapstructure:"h2c" yaml:"h2c" json:"h2c"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout" yaml:"shutdownTimeout" json:"shutdownTimeout" validate:"gte=0s"`

	// APIPath is the mount prefix of the sample services.
	APIPath string `mapstructure:"apiPath" yaml:"apiPath" json:"apiPath" validate:"required,startswith=/"`

	// DocsPath is the mount prefix of the specification endpoint.
	DocsPath string `mapstructure:"docsPath" yaml:"docsPath" json:"docsPath" validate:"required,startswith=/"`

	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string `mapstructure:"corsOrigins" yaml:"corsOrigins" json:"corsOrigins" validate:"dive,required"`

	// MaxBodyBytes limits request bodies. Zero means no limit.
	MaxBodyBytes int64 `mapstructure:"maxBodyBytes" yaml:"maxBodyBytes" json:"maxBodyBytes" validate:"gte=0"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"oneof=text json"`
}

// DocsConfig holds the overlays and filters of the specification.
type DocsConfig struct {
	// ExampleHeaders are shown for every method.
	ExampleHeaders map[string]string `mapstructure:"exampleHeaders" yaml:"exampleHeaders" json:"exampleHeaders"`

	// Include and Exclude are glob patterns over "service/method".
	Include []string `mapstructure:"include" yaml:"include" json:"include" validate:"dive,required"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude" json:"exclude" validate:"dive,required"`

	// AggregateExcludedMethods replaces the verbs dropped when a method
	// bound to every verb is expanded. Unset keeps the default.
	AggregateExcludedMethods []string `mapstructure:"aggregateExcludedMethods" yaml:"aggregateExcludedMethods" json:"aggregateExcludedMethods" validate:"dive,oneof=OPTIONS GET HEAD POST PUT PATCH DELETE TRACE CONNECT UNKNOWN"`

	Services []ServiceDocs `mapstructure:"services" yaml:"services" json:"services" validate:"dive"`
	Methods  []MethodDocs  `mapstructure:"methods" yaml:"methods" json:"methods" validate:"dive"`
}

// ServiceDocs holds the overlays of one service.
type ServiceDocs struct {
	Service        string            `mapstructure:"service" yaml:"service" json:"service" validate:"required"`
	ExampleHeaders map[string]string `mapstructure:"exampleHeaders" yaml:"exampleHeaders" json:"exampleHeaders"`
}

// MethodDocs holds the overlays of one method.
type MethodDocs struct {
	Service         string            `mapstructure:"service" yaml:"service" json:"service" validate:"required"`
	Method          string            `mapstructure:"method" yaml:"method" json:"method" validate:"required"`
	Exclude         bool              `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	ExampleHeaders  map[string]string `mapstructure:"exampleHeaders" yaml:"exampleHeaders" json:"exampleHeaders"`
	ExamplePaths    []string          `mapstructure:"examplePaths" yaml:"examplePaths" json:"examplePaths" validate:"dive,startswith=/"`
	ExampleQueries  []string          `mapstructure:"exampleQueries" yaml:"exampleQueries" json:"exampleQueries"`
	ExampleRequests []string          `mapstructure:"exampleRequests" yaml:"exampleRequests" json:"exampleRequests" validate:"dive,json"`
}

// configFileNames are searched in order when no path is given.
var configFileNames = []string{
	"armeria.yaml",
	"armeria.yml",
	"armeria.json",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			APIPath:         "/service",
			DocsPath:        "/docs",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.h2c", d.Server.H2C)
	v.SetDefault("server.shutdownTimeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.apiPath", d.Server.APIPath)
	v.SetDefault("server.docsPath", d.Server.DocsPath)
	v.SetDefault("server.maxBodyBytes", d.Server.MaxBodyBytes)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads the configuration from path, or from the first of
// armeria.yaml, armeria.yml, armeria.json found in the working directory
// when path is empty. Environment variables prefixed with EnvPrefix
// override scalar settings. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		for _, name := range configFileNames {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Middlewares returns the optional middleware enabled by the server
// settings, in application order.
func (c ServerConfig) Middlewares() ([]middleware.MiddlewareFunc, error) {
	var out []middleware.MiddlewareFunc
	if len(c.CORSOrigins) > 0 {
		mw, err := middleware.CORSMiddleware(middleware.CORSConfig{
			AllowedOrigins: c.CORSOrigins,
			ExposeHeaders:  []string{middleware.DefaultRequestIDHeader},
		})
		if err != nil {
			return nil, fmt.Errorf("config: cors: %w", err)
		}
		out = append(out, mw)
	}
	if c.MaxBodyBytes > 0 {
		mw, err := middleware.RequestSizeLimitMiddleware(middleware.RequestSizeLimitConfig{MaxBytes: c.MaxBodyBytes})
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		out = append(out, mw)
	}
	return out, nil
}

// NewLogger returns a logger writing to w as configured.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Apply adds the overlays and filters to b.
func (c DocsConfig) Apply(b *docs.DocServiceBuilder) error {
	if len(c.ExampleHeaders) > 0 {
		h, err := headersFrom(c.ExampleHeaders)
		if err != nil {
			return err
		}
		b.ExampleHeaders(h)
	}

	for _, g := range c.Include {
		b.Include(docs.OfGlob(g))
	}
	for _, g := range c.Exclude {
		b.Exclude(docs.OfGlob(g))
	}

	if c.AggregateExcludedMethods != nil {
		verbs := make([]docs.HTTPMethod, len(c.AggregateExcludedMethods))
		for i, m := range c.AggregateExcludedMethods {
			verbs[i] = docs.ParseHTTPMethod(m)
		}
		b.AggregateExcludedMethods(verbs...)
	}

	for _, s := range c.Services {
		if len(s.ExampleHeaders) == 0 {
			continue
		}
		h, err := headersFrom(s.ExampleHeaders)
		if err != nil {
			return err
		}
		b.ServiceExampleHeaders(s.Service, h)
	}

	for _, m := range c.Methods {
		if m.Exclude {
			b.Exclude(docs.OfMethodName(m.Service, m.Method))
		}
		if len(m.ExampleHeaders) > 0 {
			h, err := headersFrom(m.ExampleHeaders)
			if err != nil {
				return err
			}
			b.MethodExampleHeaders(m.Service, m.Method, h)
		}
		if len(m.ExamplePaths) > 0 {
			b.ExamplePaths(m.Service, m.Method, m.ExamplePaths...)
		}
		if len(m.ExampleQueries) > 0 {
			b.ExampleQueries(m.Service, m.Method, m.ExampleQueries...)
		}
		for _, req := range m.ExampleRequests {
			b.ExampleRequests(m.Service, m.Method, req)
		}
	}
	return nil
}

func headersFrom(m map[string]string) (docs.Headers, error) {
	pairs := make([]string, 0, 2*len(m))
	for k, v := range m {
		pairs = append(pairs, k, v)
	}
	h, err := docs.NewHeaders(pairs...)
	if err != nil {
		return nil, fmt.Errorf("config: example headers: %w", err)
	}
	return h, nil
}
