package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
	"github.com/kirillkom/pdf-rag-engine/internal/core/ports"
)

const (
	DefaultQuerySize = 5
	MaxQuerySize     = 50
	DefaultTimeout   = 60 * time.Second

	hybridMinPerAdapter = 5
	hybridMaxPerAdapter = 10
)

// hybridOrder fixes the list order handed to fusion, which decides ties.
var hybridOrder = []domain.RetrievalMode{domain.ModeELSER, domain.ModeBM25, domain.ModeDense}

type QueryConfig struct {
	RRFK           int
	GenerationTopK int
	SnippetChars   int
	DefaultSize    int
	MaxSize        int
	Timeout        time.Duration
}

func (c QueryConfig) withDefaults() QueryConfig {
	if c.RRFK <= 0 {
		c.RRFK = DefaultRRFK
	}
	if c.GenerationTopK <= 0 {
		c.GenerationTopK = DefaultGenerationTopK
	}
	if c.SnippetChars <= 0 {
		c.SnippetChars = DefaultSnippetChars
	}
	if c.DefaultSize <= 0 {
		c.DefaultSize = DefaultQuerySize
	}
	if c.MaxSize <= 0 {
		c.MaxSize = MaxQuerySize
	}
	if c.DefaultSize > c.MaxSize {
		c.DefaultSize = c.MaxSize
	}
	return c
}

type QueryUseCase struct {
	retrievers map[domain.RetrievalMode]ports.Retriever
	generator  ports.Generator
	guardrail  *Guardrail
	observer   ports.RetrievalObserver
	cfg        QueryConfig
}

func NewQueryUseCase(
	retrievers map[domain.RetrievalMode]ports.Retriever,
	generator ports.Generator,
	guardrail *Guardrail,
	cfg QueryConfig,
) *QueryUseCase {
	if guardrail == nil {
		guardrail = NewGuardrail(DefaultDenylist, DefaultRefusalPhrases)
	}
	return &QueryUseCase{
		retrievers: retrievers,
		generator:  generator,
		guardrail:  guardrail,
		cfg:        cfg.withDefaults(),
	}
}

// SetRetrievalObserver attaches an optional per-adapter outcome observer.
func (uc *QueryUseCase) SetRetrievalObserver(observer ports.RetrievalObserver) {
	uc.observer = observer
}

func (uc *QueryUseCase) Query(ctx context.Context, req domain.QueryRequest) (*domain.AnswerResult, error) {
	question := strings.TrimSpace(req.Text)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "query", errors.New("question is empty"))
	}
	mode, err := domain.ParseRetrievalMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	size := uc.clampSize(req.Size)

	if uc.guardrail.Vetoes(question) {
		slog.Info("query_vetoed", "mode", mode)
		return refusedResult(question, mode), nil
	}

	if uc.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()
	}

	fused, err := uc.retrieve(ctx, mode, question, size)
	if err != nil {
		return nil, err
	}

	evidence, results := PackContext(fused, uc.cfg.GenerationTopK, size, uc.cfg.SnippetChars)

	answer, err := uc.generator.Generate(ctx, systemPrompt, buildUserPrompt(question, evidence, req.History))
	if err != nil {
		return nil, deadlineOr(ctx, domain.ErrGeneration, "generate answer", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = UnknownAnswer
	}

	if uc.guardrail.IsRefusal(answer) {
		slog.Info("answer_ungrounded", "mode", mode, "evidence", len(evidence))
		return &domain.AnswerResult{
			Query:     question,
			Mode:      mode,
			Answer:    answer,
			Outcome:   domain.OutcomeUngrounded,
			Evidence:  []domain.ContextBlock{},
			Results:   []domain.PresentationBlock{},
			Citations: []domain.Citation{},
		}, nil
	}

	return &domain.AnswerResult{
		Query:     question,
		Mode:      mode,
		Answer:    answer,
		Outcome:   domain.OutcomeAnswered,
		Evidence:  evidence,
		Results:   results,
		Citations: ExtractCitations(evidence),
	}, nil
}

func (uc *QueryUseCase) clampSize(size int) int {
	if size <= 0 {
		return uc.cfg.DefaultSize
	}
	return min(size, uc.cfg.MaxSize)
}

func (uc *QueryUseCase) retrieve(ctx context.Context, mode domain.RetrievalMode, question string, size int) (domain.FusedRanking, error) {
	if mode != domain.ModeHybrid {
		retriever, ok := uc.retrievers[mode]
		if !ok {
			return nil, domain.WrapError(domain.ErrConfiguration, "retrieve", fmt.Errorf("no retriever for mode %q", mode))
		}
		hits, err := retriever.Search(ctx, question, size)
		uc.observe(mode, len(hits), err)
		if err != nil {
			return nil, deadlineOr(ctx, domain.ErrRetrieval, "retrieve "+string(mode), err)
		}
		return trimFused(asFused(hits), size), nil
	}

	rankings, err := uc.retrieveHybrid(ctx, question, max(hybridMinPerAdapter, min(hybridMaxPerAdapter, size)))
	if err != nil {
		return nil, err
	}
	return trimFused(FuseRRF(rankings, uc.cfg.RRFK), size), nil
}

type adapterResult struct {
	idx  int
	hits domain.RankList
	err  error
}

func (uc *QueryUseCase) retrieveHybrid(ctx context.Context, question string, perAdapter int) ([]domain.RankList, error) {
	modes := make([]domain.RetrievalMode, 0, len(hybridOrder))
	for _, mode := range hybridOrder {
		if _, ok := uc.retrievers[mode]; ok {
			modes = append(modes, mode)
		}
	}
	if len(modes) == 0 {
		return nil, domain.WrapError(domain.ErrConfiguration, "retrieve hybrid", errors.New("no retrievers configured"))
	}

	results := make(chan adapterResult, len(modes))
	for i, mode := range modes {
		go func() {
			hits, err := uc.retrievers[mode].Search(ctx, question, perAdapter)
			results <- adapterResult{idx: i, hits: hits, err: err}
		}()
	}

	collected := make([]adapterResult, len(modes))
	for range modes {
		select {
		case <-ctx.Done():
			return nil, deadlineOr(ctx, domain.ErrRetrieval, "retrieve hybrid", ctx.Err())
		case res := <-results:
			collected[res.idx] = res
		}
	}

	rankings := make([]domain.RankList, 0, len(modes))
	var errs []error
	for i, res := range collected {
		uc.observe(modes[i], len(res.hits), res.err)
		if res.err != nil {
			slog.Warn("retrieval_adapter_failed", "adapter", modes[i], "error", res.err)
			errs = append(errs, fmt.Errorf("%s: %w", modes[i], res.err))
			continue
		}
		rankings = append(rankings, res.hits)
	}
	if len(rankings) == 0 {
		return nil, deadlineOr(ctx, domain.ErrRetrieval, "retrieve hybrid", errors.Join(errs...))
	}
	return rankings, nil
}

func (uc *QueryUseCase) observe(mode domain.RetrievalMode, hits int, err error) {
	if uc.observer != nil {
		uc.observer.ObserveRetrieval(string(mode), hits, err)
	}
}

// deadlineOr reports ErrTimeout once the query deadline has passed and kind
// otherwise.
func deadlineOr(ctx context.Context, kind error, operation string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrTimeout, operation, err)
	}
	return domain.WrapError(kind, operation, err)
}

func refusedResult(question string, mode domain.RetrievalMode) *domain.AnswerResult {
	return &domain.AnswerResult{
		Query:     question,
		Mode:      mode,
		Answer:    RefusalAnswer,
		Outcome:   domain.OutcomeRefused,
		Evidence:  []domain.ContextBlock{},
		Results:   []domain.PresentationBlock{},
		Citations: []domain.Citation{},
	}
}
