package usecase_test

import (
	"context"
	"strings"
	"sync"

	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/domain/types"
	"github.com/deckmuse/deckmuse/pkg/repository/memory"
)

type genCall struct {
	tier   types.ModelTier
	system string
	user   string
}

// mockGenerator records calls and delegates to a routing function
type mockGenerator struct {
	mu      sync.Mutex
	calls   []genCall
	handler func(tier types.ModelTier, system, user string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, tier types.ModelTier, system, user string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, genCall{tier: tier, system: system, user: user})
	m.mu.Unlock()
	return m.handler(tier, system, user)
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// pipelineGenerator routes prompts by stage markers in the system prompt.
// It mimics a well-behaved model for end-to-end pipeline tests.
type pipelineResponses struct {
	names    []string
	strategy string
	queries  []string
	score    string
	advice   string
}

func newPipelineGenerator(resp pipelineResponses) *mockGenerator {
	return &mockGenerator{
		handler: func(tier types.ModelTier, system, user string) (string, error) {
			switch {
			case strings.Contains(system, "extracts card names"):
				return strings.Join(resp.names, "\n"), nil
			case strings.Contains(system, "generate Scryfall search queries"):
				var sb strings.Builder
				sb.WriteString("<strategy>\n" + resp.strategy + "\n</strategy>\n<queries>\n")
				for _, q := range resp.queries {
					sb.WriteString("<query>" + q + "</query>\n")
				}
				sb.WriteString("</queries>")
				return sb.String(), nil
			case strings.Contains(system, "rate the card's potential usefulness"):
				return resp.score, nil
			default:
				return resp.advice, nil
			}
		},
	}
}

// mockSearcher is a configurable in-memory card search service
type mockSearcher struct {
	mu          sync.Mutex
	lookupFn    func(name string) (string, error)
	searchFn    func(query string) ([]model.Card, error)
	lookupCalls []string
	searchCalls []string
	formats     []string
	syntax      string
}

func (m *mockSearcher) Lookup(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	m.lookupCalls = append(m.lookupCalls, name)
	m.mu.Unlock()
	if m.lookupFn != nil {
		return m.lookupFn(name)
	}
	return name + " description", nil
}

func (m *mockSearcher) Search(ctx context.Context, query string) ([]model.Card, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, query)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(query)
	}
	return nil, nil
}

func (m *mockSearcher) Formats(ctx context.Context) []string {
	return m.formats
}

func (m *mockSearcher) SyntaxReference(ctx context.Context) string {
	return m.syntax
}

func (m *mockSearcher) lookupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lookupCalls)
}

// countingRepo wraps the in-memory repository to observe store traffic and
// inject bulk-read failures
type countingRepo struct {
	inner interfaces.Repository
	desc  *countingDescriptionRepo
}

func newCountingRepo() *countingRepo {
	inner := memory.New()
	return &countingRepo{
		inner: inner,
		desc:  &countingDescriptionRepo{inner: inner.Description()},
	}
}

func (r *countingRepo) Description() interfaces.DescriptionRepository { return r.desc }
func (r *countingRepo) Job() interfaces.JobRepository                 { return r.inner.Job() }
func (r *countingRepo) Close() error                                  { return r.inner.Close() }

type countingDescriptionRepo struct {
	mu       sync.Mutex
	inner    interfaces.DescriptionRepository
	getCalls int
	putCalls int
	getErr   error
}

func (r *countingDescriptionRepo) BulkGet(ctx context.Context, names []string) (map[string]string, error) {
	r.mu.Lock()
	r.getCalls++
	err := r.getErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.inner.BulkGet(ctx, names)
}

func (r *countingDescriptionRepo) BulkPut(ctx context.Context, records []*model.DescriptionRecord) error {
	r.mu.Lock()
	r.putCalls++
	r.mu.Unlock()
	return r.inner.BulkPut(ctx, records)
}

// recordingSink collects progress notifications
type recordingSink struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordingSink) Notify(msg string, replace bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if replace && len(s.messages) > 0 {
		s.messages[len(s.messages)-1] = msg
		return
	}
	s.messages = append(s.messages, msg)
}
