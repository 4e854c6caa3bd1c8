package segments

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

const configEnv = "SEGMENTS_CONFIG_YAML"

//go:embed segments.yaml
var configFS embed.FS

type Config struct {
	Pagination struct {
		DefaultPageSize int `yaml:"default_page_size"`
		MaxPageSize     int `yaml:"max_page_size"`
	} `yaml:"pagination"`
	Sort struct {
		Default struct {
			Field     string `yaml:"field"`
			Direction string `yaml:"direction"`
		} `yaml:"default"`
		Allowed []string `yaml:"allowed"`
	} `yaml:"sort"`
	Limits      Limits `yaml:"limits"`
	Materialize struct {
		MaxInList    int `yaml:"max_in_list"`
		SortKeyBatch int `yaml:"sort_key_batch"`
	} `yaml:"materialize"`
}

// DefaultConfig is used when no YAML can be read.
func DefaultConfig() Config {
	var cfg Config
	cfg.Pagination.DefaultPageSize = 50
	cfg.Pagination.MaxPageSize = 200
	cfg.Sort.Default.Field = string(SortCreatedAt)
	cfg.Sort.Default.Direction = "desc"
	cfg.Sort.Allowed = []string{string(SortName), string(SortCreatedAt), string(SortUpdatedAt)}
	cfg.Limits = Limits{MaxDepth: 16, MaxNodes: 256}
	cfg.Materialize.MaxInList = 10000
	cfg.Materialize.SortKeyBatch = 5000
	return cfg
}

// LoadConfig reads SEGMENTS_CONFIG_YAML when set, else the embedded file.
// Any failure falls back to DefaultConfig with a warning.
func LoadConfig(log *logger.Logger) Config {
	var (
		raw    []byte
		err    error
		source = "embedded"
	)
	if path := strings.TrimSpace(os.Getenv(configEnv)); path != "" {
		source = path
		raw, err = os.ReadFile(path)
	} else {
		raw, err = configFS.ReadFile("segments.yaml")
	}
	if err == nil {
		var cfg Config
		cfg, err = ParseConfig(raw)
		if err == nil {
			if log != nil {
				log.Debug("segment config loaded", "source", source)
			}
			return cfg
		}
	}
	if log != nil {
		log.Warn("segment config unavailable, using defaults", "source", source, "error", err)
	}
	return DefaultConfig()
}

// ParseConfig decodes YAML over DefaultConfig so omitted keys keep defaults.
func ParseConfig(raw []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse segment config: %w", err)
	}
	if cfg.Pagination.DefaultPageSize <= 0 || cfg.Pagination.MaxPageSize <= 0 {
		return Config{}, fmt.Errorf("page sizes must be positive")
	}
	if cfg.Pagination.DefaultPageSize > cfg.Pagination.MaxPageSize {
		return Config{}, fmt.Errorf("default_page_size %d exceeds max_page_size %d", cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)
	}
	for _, f := range cfg.Sort.Allowed {
		if _, ok := sortColumns[SortField(f)]; !ok {
			return Config{}, fmt.Errorf("unknown sort field %q", f)
		}
	}
	if _, ok := sortColumns[SortField(cfg.Sort.Default.Field)]; !ok {
		return Config{}, fmt.Errorf("unknown default sort field %q", cfg.Sort.Default.Field)
	}
	if cfg.Materialize.MaxInList <= 0 {
		cfg.Materialize.MaxInList = 10000
	}
	if cfg.Materialize.SortKeyBatch <= 0 {
		cfg.Materialize.SortKeyBatch = 5000
	}
	return cfg, nil
}

func (c Config) defaultSort() SortSpec {
	return SortSpec{
		Field: SortField(c.Sort.Default.Field),
		Desc:  !strings.EqualFold(c.Sort.Default.Direction, "asc"),
	}
}

func (c Config) sortAllowed(f SortField) bool {
	for _, allowed := range c.Sort.Allowed {
		if SortField(allowed) == f {
			return true
		}
	}
	return false
}
