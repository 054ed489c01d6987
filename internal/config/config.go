package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"quote-service/internal/quote/model"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	MaxUploadMB  int

	CatalogFile      string
	CatalogHeaderRow int
	SessionTTL       time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	FuzzyThreshold  float64
	SearchLimit     int
	DescriptionTopN int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "127.0.0.1")
	v.SetDefault("PORT", 8082)
	v.SetDefault("ALLOW_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "logs/quote-service.log")
	v.SetDefault("MAX_UPLOAD_MB", 32)
	v.SetDefault("CATALOG_FILE", "catalog.xlsx")
	v.SetDefault("CATALOG_HEADER_ROW", 1)
	v.SetDefault("SESSION_TTL", 2*time.Hour)
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	def := model.DefaultOptions()
	v.SetDefault("FUZZY_THRESHOLD", def.FuzzyThreshold)
	v.SetDefault("SEARCH_LIMIT", def.SearchLimit)
	v.SetDefault("DESCRIPTION_TOP_N", def.DescriptionTopN)
}

// Load: дефолты → необязательный YAML-файл → переменные окружения.
// Ключи файла: те же имена, что и у переменных (регистр не важен).
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{
		Host:             v.GetString("HOST"),
		Port:             v.GetInt("PORT"),
		AllowOrigins:     splitList(v.GetString("ALLOW_ORIGINS")),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFile:          v.GetString("LOG_FILE"),
		MaxUploadMB:      v.GetInt("MAX_UPLOAD_MB"),
		CatalogFile:      v.GetString("CATALOG_FILE"),
		CatalogHeaderRow: v.GetInt("CATALOG_HEADER_ROW"),
		SessionTTL:       v.GetDuration("SESSION_TTL"),
		RateLimitRPS:     v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:   v.GetInt("RATE_LIMIT_BURST"),
		FuzzyThreshold:   v.GetFloat64("FUZZY_THRESHOLD"),
		SearchLimit:      v.GetInt("SEARCH_LIMIT"),
		DescriptionTopN:  v.GetInt("DESCRIPTION_TOP_N"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_MB must be positive: %d", c.MaxUploadMB))
	}
	if c.CatalogHeaderRow <= 0 {
		errs = append(errs, fmt.Errorf("CATALOG_HEADER_ROW must be 1-based: %d", c.CatalogHeaderRow))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive: %s", c.SessionTTL))
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		errs = append(errs, fmt.Errorf("FUZZY_THRESHOLD must be in (0,1]: %v", c.FuzzyThreshold))
	}
	if c.SearchLimit <= 0 || c.DescriptionTopN <= 0 {
		errs = append(errs, errors.New("SEARCH_LIMIT and DESCRIPTION_TOP_N must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// MatchOptions: параметры сопоставления для service.NewEngine.
func (c Config) MatchOptions() model.Options {
	return model.Options{
		FuzzyThreshold:  c.FuzzyThreshold,
		SearchLimit:     c.SearchLimit,
		DescriptionTopN: c.DescriptionTopN,
	}
}

// CatalogMapping: колонки прайс-листа по умолчанию с заданной строкой заголовков.
func (c Config) CatalogMapping() model.Mapping {
	m := model.DefaultMapping()
	m.HeaderRow = c.CatalogHeaderRow
	return m
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = []string{"*"}
	}
	return out
}
