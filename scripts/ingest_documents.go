package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/config"
	"alfredoptarigan/resume-roast/internal/logger"
	"alfredoptarigan/resume-roast/internal/services"
)

// Ingests ATS guidance PDFs into the Qdrant collection used by the fix task.
func main() {
	dir := flag.String("dir", "./reference_docs", "directory holding ATS guidance PDFs")
	flag.Parse()

	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := ingest(context.Background(), cfg, *dir, zlog); err != nil {
		zlog.Error("❌ Ingestion failed", zap.Error(err))
		os.Exit(1)
	}
}

func ingest(ctx context.Context, cfg *config.Config, dir string, zlog *zap.Logger) error {
	if cfg.AI.MockMode() {
		return fmt.Errorf("embeddings need a live provider, set GEMINI_API_KEY")
	}

	gemini, err := services.NewGeminiProvider(ctx, cfg.AI, zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini: %w", err)
	}

	store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize Qdrant: %w", err)
	}
	if err := store.InitCollection(ctx); err != nil {
		return fmt.Errorf("failed to initialize collection: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found in %s", dir)
	}

	pdfParser := services.NewPDFParserService(0)
	chunker := services.NewTextChunker()

	var failed int
	for _, path := range paths {
		docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		docLog := zlog.With(zap.String("doc_id", docID))

		content, err := pdfParser.ExtractText(path)
		if err != nil {
			docLog.Warn("⚠️  Failed to extract text, skipping", zap.Error(err))
			failed++
			continue
		}

		chunks := chunker.ChunkText(content.Text, services.DefaultChunkSize, services.DefaultChunkOverlap)
		docLog.Info("📄 Processing document", zap.Int("pages", content.PageCount), zap.Int("chunks", len(chunks)))

		if err := store.DeleteDocument(ctx, docID); err != nil {
			docLog.Warn("⚠️  Failed to remove previous chunks", zap.Error(err))
		}

		stored := 0
		for i, chunk := range chunks {
			embedding, err := gemini.Embed(ctx, chunk)
			if err != nil {
				docLog.Warn("failed to embed chunk", zap.Int("chunk", i), zap.Error(err))
				continue
			}
			if err := store.UpsertChunk(ctx, docID, services.DocTypeATSGuidance, chunk, embedding); err != nil {
				docLog.Warn("failed to store chunk", zap.Int("chunk", i), zap.Error(err))
				continue
			}
			stored++
		}

		if stored == 0 {
			failed++
			continue
		}
		docLog.Info("✅ Document ingested", zap.Int("stored", stored))
	}

	zlog.Info("📊 Ingestion summary", zap.Int("documents", len(paths)), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}
