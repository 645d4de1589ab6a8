package dwb

import (
	"go.viam.com/dwb/spatialmath"
)

// rotationEpsilon bounds the squared projection of a step onto the heading below which the
// step is treated as a rotation in place.
const rotationEpsilon = 1e-10

// classifyStep returns the direction of travel from a to b as seen from a's heading.
func classifyStep(a, b spatialmath.Pose2D) Direction {
	d := b.Point().Sub(a.Point()).Dot(a.Heading())
	switch {
	case d*d < rotationEpsilon:
		return DirectionRotateInPlace
	case d < 0:
		return DirectionBackward
	default:
		return DirectionForward
	}
}

// SplitPath cuts path into segments of homogeneous Direction. Consecutive segments share
// their boundary pose. With split disabled the whole path is returned as one segment.
func SplitPath(path Path, split bool) ([]PlanSegment, error) {
	if len(path.Poses) == 0 {
		return nil, NewEmptyPlanError(msgZeroLengthPlan)
	}
	if !split || len(path.Poses) == 1 {
		return []PlanSegment{{Path: path.Clone(), Direction: DirectionUnspecified}}, nil
	}

	var segments []PlanSegment
	remaining := path.Poses
	for len(remaining) > 1 {
		dir := classifyStep(remaining[0], remaining[1])
		end := 2
		for end < len(remaining) && classifyStep(remaining[end-1], remaining[end]) == dir {
			end++
		}
		segments = append(segments, PlanSegment{
			Path: Path{
				Frame: path.Frame,
				Stamp: path.Stamp,
				Poses: append([]spatialmath.Pose2D(nil), remaining[:end]...),
			},
			Direction: dir,
		})
		if end == len(remaining) {
			break
		}
		// the closing pose of this segment opens the next one
		remaining = remaining[end-1:]
	}
	return segments, nil
}
