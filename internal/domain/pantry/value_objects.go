package pantry

import "strings"

// Difficulty represents how hard a recipe is to prepare
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a stored difficulty to a known level. Unknown values
// yield nil so that callers can treat them as unset.
func ParseDifficulty(s string) *Difficulty {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return &d
	default:
		return nil
	}
}

// String returns the wire form of the difficulty
func (d Difficulty) String() string {
	return string(d)
}

// Scoring weights. Required coverage dominates optional coverage.
const (
	RequiredWeight = 0.7
	OptionalWeight = 0.3
)

// Defaults applied when callers leave limits unset.
const (
	DefaultMaxResults     = 5
	DefaultCandidateLimit = 200
)
