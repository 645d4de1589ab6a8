package dwb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// TrajectoryFailure identifies why a trajectory was rejected.
type TrajectoryFailure struct {
	Critic string
	Reason string
}

// IllegalTrajectoryTracker tallies the outcome of every candidate of a cycle.
type IllegalTrajectoryTracker struct {
	counts       map[TrajectoryFailure]int
	legalCount   int
	illegalCount int
}

// NewIllegalTrajectoryTracker returns an empty tracker.
func NewIllegalTrajectoryTracker() *IllegalTrajectoryTracker {
	return &IllegalTrajectoryTracker{counts: map[TrajectoryFailure]int{}}
}

// AddIllegalTrajectory records a rejected candidate.
func (t *IllegalTrajectoryTracker) AddIllegalTrajectory(err *IllegalTrajectoryError) {
	t.counts[TrajectoryFailure{Critic: err.Critic, Reason: err.Reason}]++
	t.illegalCount++
}

// AddLegalTrajectory records an admissible candidate.
func (t *IllegalTrajectoryTracker) AddLegalTrajectory() {
	t.legalCount++
}

// LegalCount is the number of admissible candidates.
func (t *IllegalTrajectoryTracker) LegalCount() int {
	return t.legalCount
}

// IllegalCount is the number of rejected candidates.
func (t *IllegalTrajectoryTracker) IllegalCount() int {
	return t.illegalCount
}

// Count returns how many candidates were rejected for f.
func (t *IllegalTrajectoryTracker) Count(f TrajectoryFailure) int {
	return t.counts[f]
}

// Failures returns every recorded failure, most frequent first.
func (t *IllegalTrajectoryTracker) Failures() []TrajectoryFailure {
	failures := lo.Keys(t.counts)
	sort.Slice(failures, func(i, j int) bool {
		ci, cj := t.counts[failures[i]], t.counts[failures[j]]
		if ci != cj {
			return ci > cj
		}
		if failures[i].Critic != failures[j].Critic {
			return failures[i].Critic < failures[j].Critic
		}
		return failures[i].Reason < failures[j].Reason
	})
	return failures
}

// Percentages returns, per failure, its share of all rejected candidates in [0, 1].
func (t *IllegalTrajectoryTracker) Percentages() map[TrajectoryFailure]float64 {
	percents := make(map[TrajectoryFailure]float64, len(t.counts))
	if t.illegalCount == 0 {
		return percents
	}
	for f, n := range t.counts {
		percents[f] = float64(n) / float64(t.illegalCount)
	}
	return percents
}

// Message summarizes the legal candidates of the cycle.
func (t *IllegalTrajectoryTracker) Message() string {
	total := t.legalCount + t.illegalCount
	if t.legalCount == 0 {
		return fmt.Sprintf("No valid trajectories out of %d! ", total)
	}
	return fmt.Sprintf("%d valid trajectories found (%.2f%% of %d). ",
		t.legalCount, 100*float64(t.legalCount)/float64(total), total)
}

func (t *IllegalTrajectoryTracker) failureSummary() string {
	if len(t.counts) == 0 {
		return ""
	}
	percents := t.Percentages()
	var b strings.Builder
	b.WriteString("Failures: ")
	for _, f := range t.Failures() {
		fmt.Fprintf(&b, "{ %s/%s: %.2f%% }, ", f.Critic, f.Reason, 100*percents[f])
	}
	return b.String()
}
