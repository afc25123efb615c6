package usecase

import (
	"github.com/deckmuse/deckmuse/pkg/domain/interfaces"
	"github.com/deckmuse/deckmuse/pkg/domain/model"
	"github.com/deckmuse/deckmuse/pkg/service/archive"
)

const (
	// Candidate ranking policy
	maxCandidates     = 150
	minRelevanceScore = 50

	// Fan-out bounds for external calls
	lookupConcurrency = 8
	searchConcurrency = 4
	scoreConcurrency  = 8

	defaultMaxCardsPerQuery = 100
)

// UseCases bundles the advice pipeline stages with their collaborators
type UseCases struct {
	repo             interfaces.Repository
	searcher         interfaces.CardSearcher
	generator        interfaces.Generator
	archive          archive.Service
	formatRules      model.FormatRules
	maxCardsPerQuery int

	Job *JobUseCase
}

// Option is a functional option for UseCases configuration
type Option func(*UseCases)

// WithArchive enables archiving of finished advice documents
func WithArchive(svc archive.Service) Option {
	return func(uc *UseCases) {
		uc.archive = svc
	}
}

// WithFormatRules overrides the built-in per-format rule notes
func WithFormatRules(rules model.FormatRules) Option {
	return func(uc *UseCases) {
		uc.formatRules = rules
	}
}

// WithMaxCardsPerQuery sets the per-query result cap communicated to the
// query planner. It should match the search client's own cap.
func WithMaxCardsPerQuery(limit int) Option {
	return func(uc *UseCases) {
		if limit > 0 {
			uc.maxCardsPerQuery = limit
		}
	}
}

// New creates the advice pipeline use cases
func New(repo interfaces.Repository, searcher interfaces.CardSearcher, generator interfaces.Generator, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:             repo,
		searcher:         searcher,
		generator:        generator,
		formatRules:      model.DefaultFormatRules(),
		maxCardsPerQuery: defaultMaxCardsPerQuery,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Job = NewJobUseCase(repo, uc)

	return uc
}

// notify sends a progress message to the sink if one is attached
func notify(sink interfaces.ProgressSink, msg string, replace bool) {
	if sink == nil {
		return
	}
	sink.Notify(msg, replace)
}
