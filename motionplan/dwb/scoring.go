package dwb

import (
	"go.viam.com/dwb/spatialmath"
)

// coreScoringAlgorithm enumerates every candidate of the generator and returns the admissible
// trajectory with the lowest total. eval is filled in when non-nil.
func (lp *LocalPlanner) coreScoringAlgorithm(
	start spatialmath.Pose2D,
	vel spatialmath.Twist2D,
	eval *LocalPlanEvaluation,
) (TrajectoryScore, error) {
	best := TrajectoryScore{Total: RejectedScore}
	worst := TrajectoryScore{Total: RejectedScore}
	tracker := NewIllegalTrajectoryTracker()
	genName := generatorName(lp.generator)

	lp.generator.StartNewIteration(vel)
	for lp.generator.HasMoreTwists() {
		twist := lp.generator.NextTwist()
		traj, err := lp.generator.GenerateTrajectory(start, vel, twist)
		if err != nil {
			lp.reject(tracker, eval, Trajectory{Velocity: twist}, asIllegal(genName, err))
			continue
		}

		score, err := lp.scoreTrajectory(traj, best.Total)
		if err != nil {
			lp.reject(tracker, eval, traj, asIllegal("TrajectoryCritic", err))
			continue
		}

		tracker.AddLegalTrajectory()
		if eval != nil {
			eval.Twists = append(eval.Twists, score)
		}
		if best.Total < 0 || score.Total < best.Total {
			best = score
			if eval != nil {
				eval.BestIndex = len(eval.Twists) - 1
			}
		}
		if worst.Total < 0 || score.Total > worst.Total {
			worst = score
			if eval != nil {
				eval.WorstIndex = len(eval.Twists) - 1
			}
		}
	}

	if best.Total < 0 {
		if lp.opts.DebugTrajectoryDetails {
			lp.logger.Error(tracker.Message())
			percents := tracker.Percentages()
			for _, f := range tracker.Failures() {
				lp.logger.Errorf("%.2f: %10s/%s", percents[f], f.Critic, f.Reason)
			}
		}
		return best, &NoLegalTrajectoriesError{Tracker: tracker}
	}
	return best, nil
}

func (lp *LocalPlanner) reject(
	tracker *IllegalTrajectoryTracker,
	eval *LocalPlanEvaluation,
	traj Trajectory,
	illegal *IllegalTrajectoryError,
) {
	if eval != nil {
		eval.Twists = append(eval.Twists, rejectedTrajectoryScore(traj, illegal.Critic))
	}
	tracker.AddIllegalTrajectory(illegal)
}

// scoreTrajectory folds the critics over traj in order. Once the running total exceeds
// bestTotal the remaining critics are skipped; this relies on raw scores being non-negative.
// Any returned error is an *IllegalTrajectoryError.
func (lp *LocalPlanner) scoreTrajectory(traj Trajectory, bestTotal float64) (TrajectoryScore, error) {
	score := TrajectoryScore{Trajectory: traj, Scores: make([]CriticScore, 0, len(lp.critics))}
	for _, critic := range lp.critics {
		cs := CriticScore{Name: critic.Name(), Weight: critic.Weight()}
		if cs.Weight == 0 {
			score.Scores = append(score.Scores, cs)
			continue
		}

		raw, err := critic.ScoreTrajectory(traj)
		if err != nil {
			return score, asIllegal(cs.Name, err)
		}
		if lp.opts.ShortCircuitTrajectoryEvaluation && raw < 0 {
			return score, &IllegalTrajectoryError{Critic: cs.Name, Reason: msgNegativeScore}
		}
		cs.RawScore = raw
		score.Scores = append(score.Scores, cs)
		score.Total += raw * cs.Weight
		if lp.opts.ShortCircuitTrajectoryEvaluation && bestTotal >= 0 && score.Total > bestTotal {
			break
		}
	}
	return score, nil
}
