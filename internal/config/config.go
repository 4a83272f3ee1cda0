package config

import (
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "APAGON_SCANNER_CONFIG"
	apiKeyEnv     = "FIREWORKS_API_KEY"
	modelEnv      = "FIREWORKS_MODEL"
	dataDirEnv    = "APAGON_SCANNER_DATA_DIR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Data      DataConfig      `yaml:"data"`
	LLM       LLMConfig       `yaml:"llm"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Partition PartitionConfig `yaml:"partition"`
	Sites     []SiteConfig    `yaml:"sites"`
}

// LoggingConfig controls level and optional log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DataConfig locates every on-disk artifact relative to Dir.
type DataConfig struct {
	Dir            string `yaml:"dir"`
	CorpusFile     string `yaml:"corpusFile"`
	StoreFile      string `yaml:"storeFile"`
	HistoryDB      string `yaml:"historyDb"`
	SaveIndividual bool   `yaml:"saveIndividual"`
}

// LLMConfig defines how to contact the language-model API.
type LLMConfig struct {
	Endpoint     string  `yaml:"endpoint"`
	Model        string  `yaml:"model"`
	APIKey       string  `yaml:"apiKey"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"maxTokens"`
	DelaySeconds int     `yaml:"delaySeconds"`
}

// ScraperConfig tunes the listing crawl shared by all scanners.
type ScraperConfig struct {
	MaxPages  int      `yaml:"maxPages"`
	UserAgent string   `yaml:"userAgent"`
	Keywords  []string `yaml:"keywords"`
}

// PartitionConfig bounds the years the store accepts.
type PartitionConfig struct {
	MinYear int `yaml:"minYear"`
	MaxYear int `yaml:"maxYear"`
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	URL     string            `yaml:"url"`
	Options map[string]string `yaml:"options"`
}

// StorePath returns the location of the persistent store document.
func (c Config) StorePath() string {
	return filepath.Join(c.Data.Dir, c.Data.StoreFile)
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(modelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(dataDirEnv); v != "" {
		c.Data.Dir = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.File != "" {
		base.Logging.File = override.Logging.File
	}

	if override.Data.Dir != "" {
		base.Data.Dir = override.Data.Dir
	}
	if override.Data.CorpusFile != "" {
		base.Data.CorpusFile = override.Data.CorpusFile
	}
	if override.Data.StoreFile != "" {
		base.Data.StoreFile = override.Data.StoreFile
	}
	if override.Data.HistoryDB != "" {
		base.Data.HistoryDB = override.Data.HistoryDB
	}
	if override.Data.SaveIndividual {
		base.Data.SaveIndividual = true
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Temperature > 0 {
		base.LLM.Temperature = override.LLM.Temperature
	}
	if override.LLM.MaxTokens > 0 {
		base.LLM.MaxTokens = override.LLM.MaxTokens
	}
	if override.LLM.DelaySeconds > 0 {
		base.LLM.DelaySeconds = override.LLM.DelaySeconds
	}

	if override.Scraper.MaxPages > 0 {
		base.Scraper.MaxPages = override.Scraper.MaxPages
	}
	if override.Scraper.UserAgent != "" {
		base.Scraper.UserAgent = override.Scraper.UserAgent
	}
	if len(override.Scraper.Keywords) > 0 {
		base.Scraper.Keywords = override.Scraper.Keywords
	}

	if override.Partition.MinYear > 0 {
		base.Partition.MinYear = override.Partition.MinYear
	}
	if override.Partition.MaxYear > 0 {
		base.Partition.MaxYear = override.Partition.MaxYear
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", File: "logs/pipeline.log"},
		Data: DataConfig{
			Dir:        "data",
			CorpusFile: "raw/afectaciones_electricas_cubadebate_filter_2025.csv",
			StoreFile:  "processed/datos_electricos_organizados.json",
			HistoryDB:  "processed/historial.db",
		},
		LLM: LLMConfig{
			Endpoint:     "https://api.fireworks.ai/inference/v1/chat/completions",
			Model:        "accounts/fireworks/models/llama-v3p3-70b-instruct",
			Temperature:  0.1,
			MaxTokens:    2500,
			DelaySeconds: 2,
		},
		Scraper: ScraperConfig{
			MaxPages:  5,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Keywords: []string{
				"eléctrica",
				"Unión Eléctrica",
				"apagón",
				"UNE",
				"corte de luz",
				"generación eléctrica",
				"MW",
				"Felton",
				"termoeléctrica",
			},
		},
		Partition: PartitionConfig{MinYear: 2022, MaxYear: 2025},
		Sites: []SiteConfig{
			{
				Name:    "cubadebate-economia",
				Scanner: "cubadebate",
				URL:     "http://www.cubadebate.cu/categoria/temas/economia-temas/",
			},
		},
	}
}
