package qa

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/futig/docqa-backend/internal/answer"
	"github.com/futig/docqa-backend/internal/config"
	"github.com/futig/docqa-backend/internal/entity"
	"github.com/futig/docqa-backend/internal/metrics"
	"github.com/futig/docqa-backend/internal/pkg/logger"
	"github.com/futig/docqa-backend/internal/pkg/validator"
	"github.com/futig/docqa-backend/internal/retriever"
	"github.com/futig/docqa-backend/internal/vectorstore"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	BatchSize int
	TopK      int
	Workers   int
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		BatchSize: cfg.EmbeddingCfg.BatchSize,
		TopK:      cfg.RetrievalCfg.TopK,
		Workers:   cfg.AnswerCfg.Workers,
	}
}

// QAUsecase runs the download, index and answer pipeline for one document
type QAUsecase struct {
	cfg         Config
	downloader  DocumentDownloader
	extractor   TextExtractor
	chunker     Chunker
	encoder     Encoder
	synthesizer AnswerSynthesizer
	validator   *validator.Validator
	metrics     Metrics
	reclaim     func()
	logger      *zap.Logger
}

// NewUsecase creates a new question-answering use case
func NewUsecase(
	cfg Config,
	downloader DocumentDownloader,
	extractor TextExtractor,
	chunker Chunker,
	encoder Encoder,
	synthesizer AnswerSynthesizer,
	validator *validator.Validator,
	metrics Metrics,
	logger *zap.Logger,
) *QAUsecase {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.TopK < 1 {
		cfg.TopK = retriever.DefaultTopK
	}
	return &QAUsecase{
		cfg:         cfg,
		downloader:  downloader,
		extractor:   extractor,
		chunker:     chunker,
		encoder:     encoder,
		synthesizer: synthesizer,
		validator:   validator,
		metrics:     metrics,
		reclaim:     debug.FreeOSMemory,
		logger:      logger,
	}
}

// Run answers every question of req against its document.
// Answers come back in question order. A failure before answering aborts the
// whole run; per-question failures degrade to a placeholder answer.
func (uc *QAUsecase) Run(ctx context.Context, req *entity.RunRequest) (resp *entity.RunResponse, err error) {
	if err := uc.validator.ValidateRunRequest(req); err != nil {
		return nil, err
	}

	ctx = logger.WithAction(ctx, "qa_run")
	ctx = logger.AddFields(ctx,
		zap.String("document", req.Documents),
		zap.Int("questions", len(req.Questions)),
	)

	runStart := time.Now()
	ctxzap.Info(ctx, "starting question answering run")
	defer func() {
		uc.metrics.RunFinished(err)
		if err != nil {
			ctxzap.Error(ctx, "question answering run failed", zap.Error(err), zap.Duration("took", time.Since(runStart)))
		}
	}()

	text, err := uc.fetchText(ctx, req.Documents)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	chunks := uc.chunker.Chunk(text, entity.ChunkMetadata{Source: req.Documents})
	uc.observe(ctx, metrics.StageChunk, start, zap.Int("chunks", len(chunks)))

	// the index lives only as long as this run
	store := vectorstore.NewStore(uc.encoder, uc.cfg.BatchSize)

	start = time.Now()
	if err := store.ResetAndIndex(ctx, chunks); err != nil {
		return nil, err
	}
	stats := store.Stats()
	uc.metrics.ObserveIndexed(stats.Count)
	uc.observe(ctx, metrics.StageIndex, start,
		zap.String("generation", stats.Generation),
		zap.Int("indexed", stats.Count),
		zap.Int("dimension", stats.Dimension),
	)

	uc.reclaim()
	ctxzap.Debug(ctx, "memory reclaimed after indexing")

	start = time.Now()
	answers := uc.answerAll(ctx, retriever.New(uc.encoder, store), req.Questions)
	uc.observe(ctx, metrics.StageAnswer, start)

	ctxzap.Info(ctx, "question answering run completed", zap.Duration("took", time.Since(runStart)))

	return &entity.RunResponse{Answers: answers}, nil
}

func (uc *QAUsecase) fetchText(ctx context.Context, url string) (string, error) {
	start := time.Now()
	doc, err := uc.downloader.Download(ctx, url)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	uc.observe(ctx, metrics.StageDownload, start, zap.Int("size_bytes", len(doc.Content)))

	start = time.Now()
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	uc.observe(ctx, metrics.StageExtract, start, zap.Int("text_length", len(text)))

	return text, nil
}

// answerAll fills one slot per question. With a single worker questions are
// answered strictly in order.
func (uc *QAUsecase) answerAll(ctx context.Context, r *retriever.Retriever, questions []string) []string {
	answers := make([]string, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Workers)

	for i, q := range questions {
		g.Go(func() error {
			qctx := logger.AddFields(gctx, zap.Int("question_index", i))
			answers[i] = uc.answerOne(qctx, r, q)
			return nil
		})
	}

	// answerOne never fails
	_ = g.Wait()

	return answers
}

func (uc *QAUsecase) answerOne(ctx context.Context, r *retriever.Retriever, question string) string {
	matches, err := r.Search(ctx, question, uc.cfg.TopK)
	if err != nil {
		ctxzap.Error(ctx, "retrieval failed", zap.Error(err))
		return answer.FailureAnswer
	}

	return uc.synthesizer.Answer(ctx, question, matches)
}

func (uc *QAUsecase) observe(ctx context.Context, stage string, start time.Time, fields ...zap.Field) {
	took := time.Since(start)
	uc.metrics.ObserveStage(stage, took)
	ctxzap.Info(ctx, "stage finished", append([]zap.Field{zap.String("stage", stage), zap.Duration("took", took)}, fields...)...)
}
