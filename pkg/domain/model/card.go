package model

import "time"

// Card is a card returned by the search service. Name is the normalized
// display name and serves as the dedup and cache key throughout the pipeline.
type Card struct {
	Name     string
	TypeLine string
	ManaCost string
	Text     string
	SetCode  string
	URI      string
}

// DescriptionRecord maps a card name to its rendered description text.
// Records are written once and never updated; a duplicate insert for the same
// name is redundant but harmless.
type DescriptionRecord struct {
	Name        string
	Description string
	CreatedAt   time.Time
}

// Candidate is a potential deck addition under evaluation. It only lives for
// the duration of one candidate search.
type Candidate struct {
	Name        string
	Card        Card
	Description string
	Score       int
}

// CandidatePlan is the strong-model output that drives the candidate search:
// a prose summary of the deck's strategy and the search queries derived
// from it.
type CandidatePlan struct {
	Strategy string
	Queries  []string
}
