package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	gemini "github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	openai "github.com/amikos-tech/chroma-go/pkg/embeddings/openai"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gamma-omg/docqa/docstore"
	"github.com/gamma-omg/docqa/embed"
	"github.com/gamma-omg/docqa/llm"
	"github.com/gamma-omg/docqa/qa"
	"github.com/gamma-omg/docqa/readers"
)

func createEmbeddingFunction(cfg *Config) (embeddings.EmbeddingFunction, error) {
	if cfg.OpenAI != nil {
		ef, err := openai.NewOpenAIEmbeddingFunction(
			cfg.OpenAI.ApiKey,
			openai.WithModel(openai.EmbeddingModel(cfg.OpenAI.EmbedModel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedding function: %w", err)
		}

		return ef, nil
	}

	if cfg.Gemini != nil {
		ef, err := gemini.NewGeminiEmbeddingFunction(
			gemini.WithAPIKey(cfg.Gemini.ApiKey),
			gemini.WithDefaultModel(embeddings.EmbeddingModel(cfg.Gemini.EmbedModel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
		}

		return ef, nil
	}

	return nil, errors.New("invalid embeddings provider configuration")
}

func createCompleter(ctx context.Context, cfg *Config) (qa.Completer, error) {
	if cfg.DisableAI {
		return &llm.Mock{Reason: "AI disabled"}, nil
	}

	if cfg.Gemini != nil && cfg.Gemini.ChatModel != "" {
		c, err := llm.NewGemini(ctx, cfg.Gemini.ApiKey, cfg.Gemini.ChatModel, cfg.Temperature)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini completer: %w", err)
		}

		return c, nil
	}

	if cfg.OpenAI != nil && cfg.OpenAI.ChatModel != "" {
		return llm.NewOpenAI(cfg.OpenAI.ApiKey, cfg.OpenAI.ChatModel, cfg.Temperature), nil
	}

	return &llm.Mock{Reason: "no model provider configured"}, nil
}

func initIndex(cfg *Config, ef embeddings.EmbeddingFunction) (*docstore.ChromaIndex, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	index, err := docstore.NewChromaIndex(ctx, docstore.ChromaIndexConfig{
		BaseURL:       cfg.ChromaAddr,
		Collection:    cfg.Collection,
		EmbeddingFunc: ef,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	return index, nil
}

func main() {
	cfgPath := flag.String("config", "cfg/config.yaml", "Configuration file for the Q&A server")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := readConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %s", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, nil))

	ef, err := createEmbeddingFunction(cfg)
	if err != nil {
		log.Fatal(err)
	}

	index, err := initIndex(cfg, ef)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	completer, err := createCompleter(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	svc := qa.NewService(logger,
		embed.NewFunctionEmbedder(ef, cfg.EmbedMaxChars, logger),
		index, completer,
		qa.Config{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
			TopK:         cfg.Results,
			ContextChars: cfg.ContextChars,
		})

	ledger, err := OpenLedger(cfg.LedgerPath)
	if err != nil {
		log.Fatal(err)
	}
	defer ledger.Close()

	reg := &DocRegistry{
		log:              logger,
		root:             cfg.DocRoot,
		pipeline:         svc,
		ledger:           ledger,
		readers:          []FileReader{&readers.TxtFileReader{}, &readers.UniversalFileReader{}},
		mergeEventsDelay: time.Duration(cfg.MergeEventsMs) * time.Millisecond,
		syncWorkers:      cfg.SyncWorkers,
	}

	go func() {
		if err := reg.Sync(ctx); err != nil {
			log.Fatal(err)
		}

		if err := reg.Watch(ctx); err != nil {
			log.Fatal(err)
		}
	}()

	srv := NewQAServer(svc, ledger)
	sse := server.NewSSEServer(srv, server.WithBaseURL(fmt.Sprintf("http://%s", cfg.ServerAddr)))
	log.Println(sse.Start(cfg.ServerAddr))
}
