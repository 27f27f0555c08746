package domain

import "testing"

func TestSizeBonus_TierBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		entryCount int
		want       int
	}{
		{0, 0},
		{1, 0},
		{99, 0},
		{100, 100},
		{150, 100},
		{199, 100},
		{200, 200}, // tiers replace, not stack
		{5000, 200},
	}

	for _, tc := range cases {
		if got := SizeBonus(tc.entryCount); got != tc.want {
			t.Errorf("SizeBonus(%d) = %d, want %d", tc.entryCount, got, tc.want)
		}
	}
}

func TestContributionCounts_Score_Weights(t *testing.T) {
	t.Parallel()

	c := ContributionCounts{
		StarsReceived:   2,
		LikesReceived:   3,
		TermsAuthored:   4,
		EntriesAuthored: 5,
	}

	// 2*10 + 3*3 + 4*5 + 5*5 = 74
	if got := c.Score(); got != 74 {
		t.Fatalf("Score() = %d, want 74", got)
	}
}

func TestContributionCounts_Score_WithSizeBonus(t *testing.T) {
	t.Parallel()

	c := ContributionCounts{
		StarsReceived:     1,
		OwnedDatasetSizes: []int{99, 100, 200, 250},
	}

	// 10 + 0 + 100 + 200 + 200 = 510
	if got := c.Score(); got != 510 {
		t.Fatalf("Score() = %d, want 510", got)
	}
}

func TestContributionCounts_Score_ZeroIsZero(t *testing.T) {
	t.Parallel()

	if got := (ContributionCounts{}).Score(); got != 0 {
		t.Fatalf("Score() = %d, want 0", got)
	}
}

func TestContributionCounts_DisplayCountsDoNotScore(t *testing.T) {
	t.Parallel()

	c := ContributionCounts{Articles: 7, Discussions: 9, Datasets: 11}
	if got := c.Score(); got != 0 {
		t.Fatalf("display-only counts must not affect score, got %d", got)
	}
}
