package model

// FormatRules maps a format label to extra rule notes appended to the format
// context of a pipeline run. Formats without an entry still get the generic
// format sentence; the entry adds format-specific reminders the model tends
// to get wrong.
type FormatRules map[string]string

// DefaultFormatRules returns the built-in rule notes
func DefaultFormatRules() FormatRules {
	return FormatRules{
		"brawl": "Remember the rules of Brawl (formerly known as Historic Brawl): " +
			"2 players, 100-card singleton decks with commanders, restricted to " +
			"commander's color identity, 25 starting life, using cards from " +
			"Magic: The Gathering Arena.",
	}
}
