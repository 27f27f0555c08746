package domain

import (
	"time"

	"github.com/google/uuid"
)

// Score weights and size-bonus tiers. These are part of the externally
// observable contract (they decide the displayed rank), so they live here
// rather than in configuration.
const (
	ScorePerStar  = 10
	ScorePerLike  = 3
	ScorePerTerm  = 5
	ScorePerEntry = 5

	sizeBonusLowerCount  = 100
	sizeBonusLowerPoints = 100
	sizeBonusUpperCount  = 200
	sizeBonusUpperPoints = 200
)

// ContributionCounts are the raw inputs to the reputation score, read fresh
// from the store on every recomputation.
type ContributionCounts struct {
	StarsReceived   int
	LikesReceived   int
	TermsAuthored   int
	EntriesAuthored int

	// OwnedDatasetSizes holds the entry count of every dataset the user owns,
	// feeding the tiered size bonus.
	OwnedDatasetSizes []int

	// Display-only counts; they do not affect the score.
	Articles    int
	Discussions int
	Datasets    int
}

// Score computes the reputation score:
//
//	10×stars + 3×likes + 5×terms + 5×entries + size bonus.
func (c ContributionCounts) Score() int {
	score := c.StarsReceived*ScorePerStar +
		c.LikesReceived*ScorePerLike +
		c.TermsAuthored*ScorePerTerm +
		c.EntriesAuthored*ScorePerEntry

	for _, size := range c.OwnedDatasetSizes {
		score += SizeBonus(size)
	}

	return score
}

// SizeBonus returns the per-dataset bonus for a dataset with entryCount
// entries. Tiers are mutually exclusive: reaching 200 awards 200 total,
// not 100+200.
func SizeBonus(entryCount int) int {
	switch {
	case entryCount >= sizeBonusUpperCount:
		return sizeBonusUpperPoints
	case entryCount >= sizeBonusLowerCount:
		return sizeBonusLowerPoints
	default:
		return 0
	}
}

// LeaderboardRow is one line of the global reputation leaderboard,
// ordered by cached score with registration time as the tie-break.
type LeaderboardRow struct {
	UserID       uuid.UUID
	Email        string
	FullName     *string
	RegisteredAt time.Time
	Score        int
}

// ReputationProfile is the derived reputation view of a user:
// the recomputed score, the global rank (1 = highest), and the raw counts
// the score was derived from.
type ReputationProfile struct {
	UserID uuid.UUID
	Score  int
	Rank   int
	Counts ContributionCounts
}
