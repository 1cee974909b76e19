package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/behzad94/showcase-1/internal/audit"
	"github.com/google/uuid"
)

// AnswerState is the terminal state of a query.
type AnswerState string

const (
	StateAnswered AnswerState = "answered"
	StateClarify  AnswerState = "clarify"
	StateFailed   AnswerState = "failed"
)

// Verdict classifies how well an answer's sentences are supported by its
// cited chunks.
type Verdict string

const (
	VerdictSupported          Verdict = "supported"
	VerdictPartiallySupported Verdict = "partially-supported"
	VerdictUnsupported        Verdict = "unsupported"
)

const (
	noMatchClarification   = "No matching documents were found. Try different keywords or add more documents to the corpus."
	weakMatchClarification = "The documents only weakly match this question. Please rephrase or narrow the scope."
	ambiguousMatchHint     = "Multiple passages match this question about equally well. Consider adding more specific keywords."

	cannotFindInstruction = "If the answer is not in the text, say exactly: 'I cannot find it in the documents.'"
)

// Citation points an answer back at a supporting chunk.
type Citation struct {
	ChunkID  string  `json:"chunk_id"`
	DocID    string  `json:"doc_id"`
	Filename string  `json:"filename"`
	Row      int     `json:"row"`
	Score    float64 `json:"score"`
	Snippet  string  `json:"snippet"`
}

// Answer is the result of one query. In the Clarify state ClarifyHint
// supersedes Text; in the Answered state a non-empty ClarifyHint is a
// low-confidence warning that does not block the answer.
type Answer struct {
	State       AnswerState `json:"state"`
	Text        string      `json:"text"`
	ClarifyHint string      `json:"clarify_hint,omitempty"`
	Citations   []Citation  `json:"citations"`
	Verdict     Verdict     `json:"verdict,omitempty"`
	Extractive  bool        `json:"extractive,omitempty"`
}

// CompletionClient is the external summarization capability: a single
// synchronous text-completion call.
type CompletionClient interface {
	Complete(ctx context.Context, prompt, model string) (string, error)
}

// AuditSink receives one record per completed query.
type AuditSink interface {
	Append(rec audit.Record) error
}

// Retriever is the candidate-ranking stage feeding the assembler.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, requireNonempty bool) ([]RetrievalResult, error)
}

// AssemblerConfig holds the answer policy thresholds.
type AssemblerConfig struct {
	TopK                 int
	ConfidenceThreshold  float64
	ConfidenceGap        float64
	SupportThreshold     float64
	Summarize            bool
	CompletionModel      string
	CompletionTimeout    time.Duration
	ContextCharsPerChunk int
	SnippetMaxChars      int
}

// DefaultAssemblerConfig provides sane defaults for answer assembly.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		TopK:                 3,
		ConfidenceThreshold:  0.18,
		ConfidenceGap:        0.04,
		SupportThreshold:     0.15,
		Summarize:            true,
		CompletionTimeout:    30 * time.Second,
		ContextCharsPerChunk: 400,
		SnippetMaxChars:      320,
	}
}

// AnswerAssembler turns retrieved chunks and a query into a final answer
// with citations, a support audit, and a clarification decision.
type AnswerAssembler struct {
	retriever  Retriever
	completion CompletionClient
	auditLog   AuditSink
	cfg        AssemblerConfig
}

// NewAnswerAssembler creates a new AnswerAssembler. completion may be nil,
// in which case answers are always extractive.
func NewAnswerAssembler(retriever Retriever, completion CompletionClient, auditLog AuditSink, cfg AssemblerConfig) *AnswerAssembler {
	if cfg.TopK <= 0 {
		cfg = DefaultAssemblerConfig()
	}
	return &AnswerAssembler{
		retriever:  retriever,
		completion: completion,
		auditLog:   auditLog,
		cfg:        cfg,
	}
}

// Assemble runs the query to a terminal state. A hard failure (embedding or
// retrieval) returns an error; a summarization failure degrades to an
// extractive answer instead. Exactly one audit record is emitted per call.
func (a *AnswerAssembler) Assemble(ctx context.Context, query string) (*Answer, error) {
	start := time.Now()
	queryID := uuid.NewString()

	results, err := a.retriever.Retrieve(ctx, query, a.cfg.TopK, false)
	if err != nil {
		a.logOutcome(queryID, query, StateFailed, "", nil, start, err.Error())
		return nil, err
	}

	if len(results) == 0 {
		answer := &Answer{
			State:       StateClarify,
			ClarifyHint: noMatchClarification,
			Citations:   []Citation{},
		}
		a.logOutcome(queryID, query, StateClarify, "", nil, start, "no matching documents")
		return answer, nil
	}

	citations := make([]Citation, len(results))
	chunkIDs := make([]string, len(results))
	for i, r := range results {
		citations[i] = Citation{
			ChunkID:  r.Chunk.ID,
			DocID:    r.Chunk.DocID,
			Filename: r.Chunk.Filename,
			Row:      r.Row,
			Score:    r.FusedScore,
			Snippet:  makeSnippet(r.Chunk.Text, a.cfg.SnippetMaxChars),
		}
		chunkIDs[i] = r.Chunk.ID
	}

	best := results[0].FusedScore
	if best < a.cfg.ConfidenceThreshold {
		// Weak retrievals are still reported as suggestions.
		answer := &Answer{
			State:       StateClarify,
			ClarifyHint: weakMatchClarification,
			Citations:   citations,
		}
		a.logOutcome(queryID, query, StateClarify, "", chunkIDs, start, "top score below confidence threshold")
		return answer, nil
	}

	text, extractive := a.compose(ctx, query, results)

	answer := &Answer{
		State:      StateAnswered,
		Text:       text,
		Citations:  citations,
		Verdict:    a.auditSupport(text, results),
		Extractive: extractive,
	}

	if len(results) > 1 && best-results[1].FusedScore < a.cfg.ConfidenceGap {
		answer.ClarifyHint = ambiguousMatchHint
	}

	a.logOutcome(queryID, query, StateAnswered, string(answer.Verdict), chunkIDs, start, "")
	return answer, nil
}

// compose produces the answer text: a summarization call when a completion
// client is configured, degrading to an extractive answer built from the
// top chunk when the call fails or times out.
func (a *AnswerAssembler) compose(ctx context.Context, query string, results []RetrievalResult) (string, bool) {
	if a.completion == nil || !a.cfg.Summarize {
		return a.extractive(results), true
	}

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CompletionTimeout)
	defer cancel()

	text, err := a.completion.Complete(callCtx, a.buildPrompt(query, results), a.cfg.CompletionModel)
	if err != nil {
		log.Printf("completion unavailable, falling back to extractive answer: %v", err)
		return a.extractive(results), true
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return a.extractive(results), true
	}
	return text, false
}

func (a *AnswerAssembler) extractive(results []RetrievalResult) string {
	top := results[0].Chunk
	return fmt.Sprintf("Based on %q: %s", top.Filename, makeSnippet(top.Text, a.cfg.SnippetMaxChars))
}

// buildPrompt tags each context block with a citation marker. Blocks are
// capped so the prompt stays small.
func (a *AnswerAssembler) buildPrompt(query string, results []RetrievalResult) string {
	var b strings.Builder
	b.WriteString("Text:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, truncateRunes(r.Chunk.Text, a.cfg.ContextCharsPerChunk))
	}
	fmt.Fprintf(&b, "Question: %s\n", query)
	b.WriteString(cannotFindInstruction)
	return b.String()
}

// auditSupport checks each sentence of the answer against the cited chunk
// texts using the same keyword overlap measure as retrieval. Sentences with
// no keywords are skipped; if none remain the whole answer is scored once.
func (a *AnswerAssembler) auditSupport(text string, results []RetrievalResult) Verdict {
	segments := splitSentences(text)
	if len(segments) == 0 {
		segments = []string{text}
	}

	total, passed := 0, 0
	for _, seg := range segments {
		keywords := keywordSet(seg)
		if len(keywords) == 0 {
			continue
		}
		total++
		if maxSupport(keywords, results) >= a.cfg.SupportThreshold {
			passed++
		}
	}
	if total == 0 {
		keywords := keywordSet(text)
		if len(keywords) > 0 && maxSupport(keywords, results) >= a.cfg.SupportThreshold {
			return VerdictSupported
		}
		return VerdictUnsupported
	}

	switch {
	case passed == total:
		return VerdictSupported
	case passed > 0:
		return VerdictPartiallySupported
	default:
		return VerdictUnsupported
	}
}

func maxSupport(keywords map[string]struct{}, results []RetrievalResult) float64 {
	best := 0.0
	for _, r := range results {
		if s := keywordOverlap(keywords, r.Chunk.Text); s > best {
			best = s
		}
	}
	return best
}

func (a *AnswerAssembler) logOutcome(queryID, query string, state AnswerState, verdict string, chunkIDs []string, start time.Time, reason string) {
	if a.auditLog == nil {
		return
	}
	if chunkIDs == nil {
		chunkIDs = []string{}
	}
	rec := audit.Record{
		QueryID:    queryID,
		Timestamp:  start.UTC().Format(time.RFC3339Nano),
		Query:      query,
		State:      string(state),
		Verdict:    verdict,
		ChunkIDs:   chunkIDs,
		DurationMS: time.Since(start).Milliseconds(),
		Reason:     reason,
	}
	if err := a.auditLog.Append(rec); err != nil {
		log.Printf("audit_log_append_error: %v", err)
	}
}

func splitSentences(text string) []string {
	var out []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				out = append(out, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// makeSnippet collapses whitespace and caps length for display.
func makeSnippet(content string, maxChars int) string {
	clean := strings.Join(strings.Fields(content), " ")
	return truncateRunes(clean, maxChars)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max > 3 {
		return string(runes[:max-3]) + "..."
	}
	return string(runes[:max])
}
