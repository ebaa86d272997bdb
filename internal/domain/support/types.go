package support

import (
	"context"

	"github.com/yanqian/support-expert/internal/domain/qacache"
	"github.com/yanqian/support-expert/pkg/metrics"
)

// Outcome names the terminal state of an answer request.
type Outcome string

const (
	// OutcomeCached is served from the QA cache.
	OutcomeCached Outcome = "cached"
	// OutcomeGenerated comes from the completion model.
	OutcomeGenerated Outcome = "generated"
	// OutcomeEscalated is returned without an answer attempt.
	OutcomeEscalated Outcome = "escalated"
)

// EscalationMarker is what the model writes when it cannot answer.
const EscalationMarker = "ВЫЗВАТЬ МЕНЕДЖЕРА"

// Escalation reasons.
const (
	ReasonStopword       = "stopword"
	ReasonManagerRequest = "manager_requested"
)

// Request is a customer question.
type Request struct {
	Question string `json:"question"`
}

// Response is returned to the HTTP transport.
type Response struct {
	Question         string              `json:"question"`
	Answer           string              `json:"answer"`
	Outcome          Outcome             `json:"outcome"`
	Escalated        bool                `json:"escalated"`
	EscalationReason string              `json:"escalationReason,omitempty"`
	MatchedQuestion  string              `json:"matchedQuestion,omitempty"`
	DurationMs       int64               `json:"durationMs,omitempty"`
	TokenUsage       *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// TeachRequest adds a curated answer.
type TeachRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// TeachResponse echoes the stored record.
type TeachResponse struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CompletionRequest is a single-prompt completion call.
type CompletionRequest struct {
	Prompt      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Completion is the raw model output.
type Completion struct {
	Text  string
	Usage metrics.TokenUsage
}

// Completer generates text for a prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// StopwordChecker reports blocked substrings.
type StopwordChecker interface {
	Contains(text string, overrides []string) bool
}

// AnswerCache is the semantic QA cache.
type AnswerCache interface {
	Lookup(ctx context.Context, question string) (qacache.Match, bool, error)
	Insert(ctx context.Context, question, answer string) (qacache.Record, error)
}

// ProductSearcher returns product context for a question.
type ProductSearcher interface {
	Search(ctx context.Context, question string, limit int) (string, error)
}

// RuleLookup returns store context for a question.
type RuleLookup interface {
	LookupContext(ctx context.Context, question string) (string, error)
}

// Ledger records taught pairs outside the process.
type Ledger interface {
	AppendQA(ctx context.Context, question, answer string) error
}
