package usecase

// Export internal helpers for testing
var (
	ParseCandidatePlan = parseCandidatePlan
	RankAndTruncate    = rankAndTruncate
	PlaceholderFor     = placeholderDescription
)
