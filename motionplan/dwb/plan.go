package dwb

import (
	"math"

	"go.viam.com/dwb/referenceframe"
	"go.viam.com/dwb/spatialmath"
)

// windowBounds returns the half open range of poses kept around robot. Leading poses farther
// than the threshold are skipped; once a pose is inside, poses are kept up to and including
// the first one that falls outside again.
func windowBounds(robot spatialmath.Pose2D, poses []spatialmath.Pose2D, sqThreshold float64) (int, int) {
	start := -1
	for i, p := range poses {
		outside := robot.SquaredDistance(p) > sqThreshold
		if start < 0 {
			if outside {
				continue
			}
			start = i
			continue
		}
		if outside {
			return start, i + 1
		}
	}
	if start < 0 {
		return 0, 0
	}
	return start, len(poses)
}

// pruneCount returns how many leading poses are at least the prune distance from robot.
func pruneCount(robot spatialmath.Pose2D, poses []spatialmath.Pose2D, sqPruneDistance float64) int {
	for i, p := range poses {
		if robot.SquaredDistance(p) < sqPruneDistance {
			return i
		}
	}
	return len(poses)
}

// planWindow is the outcome of transforming the active segment around the robot.
type planWindow struct {
	local  Path
	pruned PlanSegment
	// didPrune is set when pruned differs from the active segment.
	didPrune bool
}

// transformGlobalPlan windows the active segment around the robot, expresses it in the
// costmap frame and, if enabled, prunes the poses the robot has already passed. The pruned
// segment is returned rather than stored.
func (lp *LocalPlanner) transformGlobalPlan(pose *referenceframe.PoseInFrame) (planWindow, error) {
	active := lp.state.Active
	if len(active.Poses) == 0 {
		return planWindow{}, NewEmptyPlanError(msgZeroLengthPlan)
	}

	robot, err := lp.transformer.TransformPose(active.Frame, pose)
	if err != nil {
		return planWindow{}, NewTransformError(msgPlanFrame, active.Frame, err)
	}

	costmapFrame := lp.costmap.FrameID()
	threshold := float64(max(lp.costmap.Width(), lp.costmap.Height())) * lp.costmap.Resolution() / 2
	start, end := windowBounds(robot.Pose(), active.Poses, threshold*threshold)

	window := planWindow{
		local:  Path{Frame: costmapFrame, Stamp: pose.Stamp(), Poses: make([]spatialmath.Pose2D, 0, end-start)},
		pruned: active,
	}
	for _, p := range active.Poses[start:end] {
		local, err := lp.toLocal(referenceframe.NewStampedPoseInFrame(active.Frame, p, pose.Stamp()))
		if err != nil {
			return planWindow{}, err
		}
		window.local.Poses = append(window.local.Poses, local)
	}

	// This assumes the segment starts near the robot. Otherwise it takes a few cycles to converge.
	if lp.opts.PrunePlan {
		costmapPose, err := lp.transformer.TransformPose(costmapFrame, pose)
		if err != nil {
			return planWindow{}, NewTransformError(msgCostmapFrame, costmapFrame, err)
		}
		n := pruneCount(costmapPose.Pose(), window.local.Poses, math.Pow(lp.opts.PruneDistance, 2))
		if n > 0 {
			window.local.Poses = window.local.Poses[n:]
			window.pruned.Path = active.Path.Clone()
			window.pruned.Poses = window.pruned.Poses[n:]
			window.didPrune = true
		}
		if len(window.local.Poses) > 0 {
			lp.logger.Debugw("nearest waypoint", "robot", costmapPose.Pose().String(), "waypoint", window.local.Poses[0].String())
		}
	}

	if len(window.local.Poses) == 0 {
		return planWindow{}, NewEmptyPlanError(msgEmptyWindow)
	}
	return window, nil
}

// toLocal expresses pose in the costmap frame.
func (lp *LocalPlanner) toLocal(pose *referenceframe.PoseInFrame) (spatialmath.Pose2D, error) {
	frame := lp.costmap.FrameID()
	local, err := lp.transformer.TransformPose(frame, pose)
	if err != nil {
		return spatialmath.Pose2D{}, NewTransformError(msgLocalFrame, frame, err)
	}
	return local.Pose(), nil
}
