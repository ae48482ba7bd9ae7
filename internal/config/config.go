package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	HARFile string `validate:"required"`
	HARPage string

	PlotOutput   string  `validate:"required"`
	PlotRenderer string  `validate:"oneof=gonum gochart"`
	PlotWidth    float64 `validate:"gt=0,lte=100"` // inches
	PlotHeight   float64 `validate:"gt=0,lte=100"` // inches

	Geometry domain.WireGeometry

	LogLevel        string `validate:"oneof=debug info warn warning error"`
	LogFormat       string `validate:"oneof=json text"`
	Serve           bool
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Optional Kafka sink for derived samples; disabled when no brokers are set.
	KafkaBrokers   []string
	KafkaSinkTopic string `validate:"required_with=KafkaBrokers"`
	KafkaTimeout   time.Duration
}

// envNames maps struct fields to the environment variable that sets them.
var envNames = map[string]string{
	"HARFile":              "HAR_FILE",
	"PlotOutput":           "PLOT_OUTPUT",
	"PlotRenderer":         "PLOT_RENDERER",
	"PlotWidth":            "PLOT_WIDTH",
	"PlotHeight":           "PLOT_HEIGHT",
	"Length":               "WIRE_LENGTH_M",
	"Diameter":             "WIRE_DIAMETER_M",
	"BaseTemperatureC":     "BASE_TEMP_C",
	"ReferenceResistivity": "REFERENCE_RESISTIVITY",
	"LogLevel":             "LOG_LEVEL",
	"LogFormat":            "LOG_FORMAT",
	"KafkaSinkTopic":       "KAFKA_SINK_TOPIC",
}

var validate = validator.New()

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	kafkaTimeout, err := parseDuration("KAFKA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	serve, err := parseBool("SERVE", false)
	if err != nil {
		return nil, err
	}

	plotWidth, err := parseFloat("PLOT_WIDTH", 10)
	if err != nil {
		return nil, err
	}
	plotHeight, err := parseFloat("PLOT_HEIGHT", 7)
	if err != nil {
		return nil, err
	}

	geometry, err := parseGeometry()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		HARFile:         sharedcfg.EnvOrDefault("HAR_FILE", "exp_data.har"),
		HARPage:         os.Getenv("HAR_PAGE"),
		PlotOutput:      sharedcfg.EnvOrDefault("PLOT_OUTPUT", "resistivity.png"),
		PlotRenderer:    strings.ToLower(sharedcfg.EnvOrDefault("PLOT_RENDERER", "gonum")),
		PlotWidth:       plotWidth,
		PlotHeight:      plotHeight,
		Geometry:        geometry,
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "text")),
		Serve:           serve,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		KafkaBrokers:    brokers,
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "resistivity-samples"),
		KafkaTimeout:    kafkaTimeout,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, describeValidation(err)
	}
	if format := cfg.PlotFormat(); format == "" {
		return nil, fmt.Errorf("PLOT_OUTPUT must end in .png or .svg, got %q", cfg.PlotOutput)
	}

	return cfg, nil
}

// KafkaEnabled reports whether derived samples should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// PlotFormat returns the image format implied by PlotOutput's extension,
// or "" when unsupported.
func (c *Config) PlotFormat() string {
	switch strings.ToLower(filepath.Ext(c.PlotOutput)) {
	case ".png":
		return "png"
	case ".svg":
		return "svg"
	default:
		return ""
	}
}

func parseGeometry() (domain.WireGeometry, error) {
	length, err := parseFloat("WIRE_LENGTH_M", domain.DefaultWireLength)
	if err != nil {
		return domain.WireGeometry{}, err
	}
	diameter, err := parseFloat("WIRE_DIAMETER_M", domain.DefaultWireDiameter)
	if err != nil {
		return domain.WireGeometry{}, err
	}
	baseTemp, err := parseFloat("BASE_TEMP_C", domain.DefaultBaseTemperatureC)
	if err != nil {
		return domain.WireGeometry{}, err
	}
	p0, err := parseFloat("REFERENCE_RESISTIVITY", domain.DefaultReferenceResistivity)
	if err != nil {
		return domain.WireGeometry{}, err
	}
	return domain.WireGeometry{
		Length:               length,
		Diameter:             diameter,
		BaseTemperatureC:     baseTemp,
		ReferenceResistivity: p0,
	}, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// describeValidation rewrites the first validator failure in terms of the
// environment variable that caused it.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	name, ok := envNames[fe.StructField()]
	if !ok {
		name = fe.StructNamespace()
	}
	if fe.Param() != "" {
		return fmt.Errorf("invalid %s: must satisfy %s=%s, got %v", name, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Errorf("invalid %s: %s", name, fe.Tag())
}
