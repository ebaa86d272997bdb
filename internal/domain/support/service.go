// Package support turns customer questions into cached, generated or
// escalated answers.
package support

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/support-expert/pkg/errors"
)

// Service exposes the support answer pipeline.
type Service interface {
	Answer(ctx context.Context, req Request) (Response, error)
	Teach(ctx context.Context, req TeachRequest) (TeachResponse, error)
}

// Dependencies groups the collaborators of the pipeline.
type Dependencies struct {
	Stopwords StopwordChecker
	Cache     AnswerCache
	Products  ProductSearcher
	Rules     RuleLookup
	Completer Completer
	Ledger    Ledger
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger *slog.Logger
}

// NewService wires up the answer pipeline.
func NewService(cfg Config, deps Dependencies, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg.withDefaults(),
		deps:   deps,
		logger: logger.With("component", "support.service"),
	}
}

func (s *service) Answer(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	question := req.Question
	if err := s.validateQuestion(question); err != nil {
		return Response{}, err
	}

	if s.deps.Stopwords.Contains(question, nil) {
		s.logger.Info("question escalated", "reason", ReasonStopword)
		return Response{
			Question:         question,
			Answer:           s.cfg.EscalationText,
			Outcome:          OutcomeEscalated,
			Escalated:        true,
			EscalationReason: ReasonStopword,
			DurationMs:       time.Since(start).Milliseconds(),
		}, nil
	}

	match, hit, err := s.deps.Cache.Lookup(ctx, question)
	if err != nil {
		return Response{}, err
	}
	if hit {
		s.logger.Debug("answered from cache", "matchedId", match.Record.ID, "distance", match.Distance)
		return Response{
			Question:        question,
			Answer:          match.Record.Answer,
			Outcome:         OutcomeCached,
			MatchedQuestion: match.Record.Question,
			DurationMs:      time.Since(start).Milliseconds(),
		}, nil
	}

	productContext, storeContext, err := s.retrieve(ctx, question)
	if err != nil {
		return Response{}, err
	}
	prompt := BuildPrompt(s.cfg.Prompt, question, productContext, storeContext)

	completion, err := s.generate(ctx, prompt)
	if err != nil {
		return Response{}, err
	}
	resp := Response{
		Question:   question,
		Answer:     completion.Text,
		Outcome:    OutcomeGenerated,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if !completion.Usage.IsZero() {
		usage := completion.Usage
		resp.TokenUsage = &usage
	}
	if strings.Contains(completion.Text, EscalationMarker) {
		resp.Escalated = true
		resp.EscalationReason = ReasonManagerRequest
	}
	s.logger.Info("answer generated",
		"productContextRunes", utf8.RuneCountInString(productContext),
		"storeContextRunes", utf8.RuneCountInString(storeContext),
		"escalated", resp.Escalated,
		"durationMs", resp.DurationMs,
	)
	return resp, nil
}

func (s *service) Teach(ctx context.Context, req TeachRequest) (TeachResponse, error) {
	if err := s.validateQuestion(req.Question); err != nil {
		return TeachResponse{}, err
	}
	if strings.TrimSpace(req.Answer) == "" {
		return TeachResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "answer cannot be empty", nil)
	}
	record, err := s.deps.Cache.Insert(ctx, req.Question, req.Answer)
	if err != nil {
		return TeachResponse{}, err
	}
	if s.deps.Ledger != nil {
		if err := s.deps.Ledger.AppendQA(ctx, req.Question, req.Answer); err != nil {
			s.logger.Warn("ledger append failed", "id", record.ID, "error", err)
		}
	}
	s.logger.Info("question taught", "id", record.ID)
	return TeachResponse{ID: record.ID, Question: record.Question, Answer: record.Answer}, nil
}

func (s *service) validateQuestion(question string) error {
	if question == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	if n := utf8.RuneCountInString(question); n > s.cfg.MaxQuestionRunes {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "question is too long", nil)
	}
	return nil
}

// retrieve runs product search and rule lookup concurrently.
func (s *service) retrieve(ctx context.Context, question string) (string, string, error) {
	var productContext, storeContext string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		productContext, err = s.deps.Products.Search(gctx, question, s.cfg.ProductLimit)
		return err
	})
	g.Go(func() error {
		var err error
		storeContext, err = s.deps.Rules.LookupContext(gctx, question)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return productContext, storeContext, nil
}

func (s *service) generate(ctx context.Context, prompt string) (Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()
	completion, err := s.deps.Completer.Complete(ctx, CompletionRequest{
		Prompt:      prompt,
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return Completion{}, apperrors.Wrap(apperrors.CodeLLM, "completion failed", err)
	}
	return completion, nil
}
