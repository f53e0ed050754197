package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gamma-omg/docqa/embed"
	"github.com/gamma-omg/docqa/prompt"
)

type ProviderConfig struct {
	ApiKey     string `yaml:"api_key"`
	EmbedModel string `yaml:"embed_model"`
	ChatModel  string `yaml:"chat_model"`
}

type Config struct {
	LogFile       string  `yaml:"log"`
	DocRoot       string  `yaml:"doc_root"`
	LedgerPath    string  `yaml:"ledger"`
	MergeEventsMs int     `yaml:"write_debounce_ms"`
	SyncWorkers   int     `yaml:"sync_workers"`
	ChunkSize     int     `yaml:"chunk_size"`
	ChunkOverlap  int     `yaml:"chunk_overlap"`
	EmbedMaxChars int     `yaml:"embed_max_chars"`
	Results       int     `yaml:"results"`
	ContextChars  int     `yaml:"context_chars"`
	ChromaAddr    string  `yaml:"chroma_addr"`
	Collection    string  `yaml:"collection"`
	ServerAddr    string  `yaml:"server_addr"`
	Temperature   float32 `yaml:"temperature"`
	DisableAI     bool    `yaml:"disable_ai"`

	OpenAI *ProviderConfig `yaml:"open_ai"`
	Gemini *ProviderConfig `yaml:"gemini"`
}

func readConfig(cfgPath string) (*Config, error) {
	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(cfgFile)
	err = dec.Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.MergeEventsMs == 0 {
		cfg.MergeEventsMs = 500
	}
	if cfg.SyncWorkers == 0 {
		cfg.SyncWorkers = 4
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 1200
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.EmbedMaxChars == 0 {
		cfg.EmbedMaxChars = embed.DefaultMaxChars
	}
	if cfg.Results == 0 {
		cfg.Results = 5
	}
	if cfg.ContextChars == 0 {
		cfg.ContextChars = prompt.DefaultContextChars
	}
	if cfg.ChromaAddr == "" {
		cfg.ChromaAddr = "http://localhost:8000"
	}
	if cfg.Collection == "" {
		cfg.Collection = "docqa"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2
	}
	if cfg.OpenAI != nil && cfg.OpenAI.ApiKey == "" {
		cfg.OpenAI.ApiKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Gemini != nil && cfg.Gemini.ApiKey == "" {
		cfg.Gemini.ApiKey = os.Getenv("GOOGLE_API_KEY")
	}
}
