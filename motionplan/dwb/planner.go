package dwb

import (
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/referenceframe"
	"go.viam.com/dwb/spatialmath"
)

// default values for planner options.
const (
	defaultPrunePlan                        = true
	defaultPruneDistance                    = 1.0
	defaultShortCircuitTrajectoryEvaluation = true
	defaultUpdateCostmapBeforePlanning      = true
	defaultDebugTrajectoryDetails           = false
	defaultSplitPath                        = false
)

// Options are the scalar settings of a LocalPlanner.
type Options struct {
	// SplitPath cuts incoming plans into forward, backward and rotate-in-place segments that
	// are followed one after the other.
	SplitPath bool
	// PrunePlan drops the poses the robot has already passed.
	PrunePlan bool
	// PruneDistance is the distance in meters beyond which leading poses are pruned.
	PruneDistance float64
	// ShortCircuitTrajectoryEvaluation stops scoring a trajectory once it is worse than the best.
	ShortCircuitTrajectoryEvaluation bool
	// UpdateCostmapBeforePlanning refreshes the costmap at the start of every cycle.
	UpdateCostmapBeforePlanning bool
	// DebugTrajectoryDetails logs the rejection tally when no trajectory is admissible.
	DebugTrajectoryDetails bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SplitPath:                        defaultSplitPath,
		PrunePlan:                        defaultPrunePlan,
		PruneDistance:                    defaultPruneDistance,
		ShortCircuitTrajectoryEvaluation: defaultShortCircuitTrajectoryEvaluation,
		UpdateCostmapBeforePlanning:      defaultUpdateCostmapBeforePlanning,
		DebugTrajectoryDetails:           defaultDebugTrajectoryDetails,
	}
}

// Dependencies are the collaborators of a LocalPlanner. Publisher and Clock are optional.
type Dependencies struct {
	Generator   TrajectoryGenerator
	GoalChecker GoalChecker
	// Critics are evaluated in this order.
	Critics     []TrajectoryCritic
	Costmap     Costmap
	Transformer referenceframe.Transformer
	Publisher   Publisher
	Clock       clock.Clock
}

func (deps Dependencies) validate() error {
	var err error
	if deps.Generator == nil {
		err = multierr.Append(err, NewConfigurationError("trajectory_generator", errors.New("missing")))
	}
	if deps.GoalChecker == nil {
		err = multierr.Append(err, NewConfigurationError("goal_checker", errors.New("missing")))
	}
	for i, c := range deps.Critics {
		if c == nil {
			err = multierr.Append(err, NewConfigurationError("critics", errors.Errorf("critic %d is nil", i)))
		}
	}
	if deps.Costmap == nil {
		err = multierr.Append(err, NewConfigurationError("costmap", errors.New("missing")))
	}
	if deps.Transformer == nil {
		err = multierr.Append(err, NewConfigurationError("transformer", errors.New("missing")))
	}
	return err
}

// GoalState is the plan following state owned by a LocalPlanner.
type GoalState struct {
	// Goal is the final goal set with SetGoalPose.
	Goal *referenceframe.PoseInFrame
	// IntermediateGoal is the last pose of Active, or Goal when no plan is set.
	IntermediateGoal *referenceframe.PoseInFrame
	Active           PlanSegment
	Queue            []PlanSegment
}

// GoalSet reports whether a final goal has been installed.
func (gs GoalState) GoalSet() bool {
	return gs.Goal != nil
}

// LocalPlanner selects a velocity command every control cycle. It is not safe for concurrent
// use; callers serialize all calls.
type LocalPlanner struct {
	opts        Options
	generator   TrajectoryGenerator
	goalChecker GoalChecker
	critics     []TrajectoryCritic
	costmap     Costmap
	transformer referenceframe.Transformer
	publisher   Publisher
	clock       clock.Clock
	logger      logging.Logger

	state GoalState
}

// NewLocalPlanner returns a planner with no plan or goal.
func NewLocalPlanner(deps Dependencies, opts Options, logger logging.Logger) (*LocalPlanner, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if opts.PrunePlan && opts.PruneDistance <= 0 {
		return nil, NewConfigurationError("prune_distance", errors.Errorf("must be positive, got %v", opts.PruneDistance))
	}
	if deps.Publisher == nil {
		deps.Publisher = NoopPublisher{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	return &LocalPlanner{
		opts:        opts,
		generator:   deps.Generator,
		goalChecker: deps.GoalChecker,
		critics:     append([]TrajectoryCritic(nil), deps.Critics...),
		costmap:     deps.Costmap,
		transformer: deps.Transformer,
		publisher:   deps.Publisher,
		clock:       deps.Clock,
		logger:      logger,
	}, nil
}

// Options returns the options the planner was built with.
func (lp *LocalPlanner) Options() Options {
	return lp.opts
}

// Critics returns the critics in evaluation order.
func (lp *LocalPlanner) Critics() []TrajectoryCritic {
	return append([]TrajectoryCritic(nil), lp.critics...)
}

// GoalState returns a snapshot of the plan following state.
func (lp *LocalPlanner) GoalState() GoalState {
	gs := lp.state
	gs.Queue = append([]PlanSegment(nil), lp.state.Queue...)
	return gs
}

// SetGoalPose installs the final goal. It only becomes the intermediate goal when no plan
// segment is active; an active segment keeps its own end pose.
func (lp *LocalPlanner) SetGoalPose(goal *referenceframe.PoseInFrame) {
	lp.logger.Infow("new goal received", "goal", goal.String())
	lp.state.Goal = goal
	if len(lp.state.Active.Poses) == 0 {
		lp.state.IntermediateGoal = goal
	}
}

// SetPlan installs a new reference path, splitting it into segments if configured. The first
// segment becomes active and every plugin is reset.
func (lp *LocalPlanner) SetPlan(path Path) error {
	segments, err := SplitPath(path, lp.opts.SplitPath)
	if err != nil {
		return err
	}
	if lp.opts.SplitPath {
		lp.logger.Infow("split path", "segments", len(segments), "poses", len(path.Poses))
	}

	lp.activate(segments[0])
	lp.state.Queue = segments[1:]
	lp.resetPlugins()
	return nil
}

// activate makes seg the active segment and its last pose the intermediate goal.
func (lp *LocalPlanner) activate(seg PlanSegment) {
	lp.state.Active = seg
	last, _ := seg.Last()
	lp.state.IntermediateGoal = referenceframe.NewStampedPoseInFrame(seg.Frame, last, seg.Stamp)
	lp.publisher.PublishGlobalPlan(seg.Path)
}

// IsGoalReached checks the intermediate goal. When it is reached and more segments are queued,
// the next segment is activated, every plugin is reset and false is returned.
func (lp *LocalPlanner) IsGoalReached(pose *referenceframe.PoseInFrame, vel spatialmath.Twist2D) (bool, error) {
	if !lp.state.GoalSet() {
		lp.logger.Warn("cannot check if the goal is reached without the goal being set")
		return false, ErrGoalNotSet
	}

	localPose, err := lp.toLocal(pose)
	if err != nil {
		return false, err
	}
	localGoal, err := lp.toLocal(lp.state.IntermediateGoal.WithStamp(pose.Stamp()))
	if err != nil {
		return false, err
	}

	if !lp.goalChecker.IsGoalReached(localPose, localGoal, vel) {
		return false, nil
	}
	if len(lp.state.Queue) == 0 {
		lp.logger.Info("goal reached")
		return true, nil
	}

	lp.logger.Infow("intermediate goal reached", "remaining_segments", len(lp.state.Queue))
	next := lp.state.Queue[0]
	lp.state.Queue = lp.state.Queue[1:]
	lp.activate(next)
	lp.resetPlugins()
	return false, nil
}

// Reset clears the cross-cycle memory of the generator, goal checker and critics.
func (lp *LocalPlanner) Reset() {
	lp.resetPlugins()
}

func (lp *LocalPlanner) resetPlugins() {
	lp.generator.Reset()
	lp.goalChecker.Reset()
	for _, critic := range lp.critics {
		critic.Reset()
	}
}

// ComputeVelocityCommands runs one control cycle and returns the chosen command.
func (lp *LocalPlanner) ComputeVelocityCommands(
	pose *referenceframe.PoseInFrame,
	vel spatialmath.Twist2D,
) (spatialmath.Twist2D, error) {
	var eval *LocalPlanEvaluation
	if lp.publisher.ShouldRecordEvaluation() {
		eval = NewLocalPlanEvaluation(pose.FrameName(), lp.clock.Now())
	}
	cmd, err := lp.computeVelocityCommands(pose, vel, eval)
	if eval != nil {
		lp.publisher.PublishEvaluation(eval)
	}
	return cmd, err
}

// cycleInput is what prepare hands to the scoring step.
type cycleInput struct {
	window planWindow
	start  spatialmath.Pose2D
	goal   spatialmath.Pose2D
}

func (lp *LocalPlanner) prepare(pose *referenceframe.PoseInFrame, vel spatialmath.Twist2D) (cycleInput, error) {
	if lp.opts.UpdateCostmapBeforePlanning {
		if err := lp.costmap.Update(); err != nil {
			return cycleInput{}, errors.Wrap(err, msgCostmapUpdating)
		}
	}

	window, err := lp.transformGlobalPlan(pose)
	if err != nil {
		return cycleInput{}, err
	}
	lp.publisher.PublishTransformedPlan(window.local)

	in := cycleInput{window: window}
	if in.start, err = lp.toLocal(pose); err != nil {
		return cycleInput{}, err
	}
	if in.goal, err = lp.toLocal(lp.state.IntermediateGoal.WithStamp(pose.Stamp())); err != nil {
		return cycleInput{}, err
	}
	lp.publisher.PublishInputParams(lp.costmap.Info(), in.start, vel, in.goal)

	for _, critic := range lp.critics {
		if !critic.Prepare(in.start, vel, in.goal, window.local) {
			lp.logger.Warnw("critic failed to prepare", "critic", critic.Name())
		}
	}
	return in, nil
}

func (lp *LocalPlanner) computeVelocityCommands(
	pose *referenceframe.PoseInFrame,
	vel spatialmath.Twist2D,
	eval *LocalPlanEvaluation,
) (spatialmath.Twist2D, error) {
	in, err := lp.prepare(pose, vel)
	if err != nil {
		lp.debrief(spatialmath.Twist2D{})
		return spatialmath.Twist2D{}, err
	}

	best, err := lp.coreScoringAlgorithm(in.start, vel, eval)
	if err != nil {
		lp.debrief(spatialmath.Twist2D{})
		lp.publisher.PublishLocalPlan(pose.FrameName(), pose.Stamp(), Trajectory{})
		lp.publisher.PublishCostGrid(lp.costmap, lp.critics)
		return spatialmath.Twist2D{}, err
	}

	if in.window.didPrune {
		lp.state.Active = in.window.pruned
		lp.publisher.PublishGlobalPlan(in.window.pruned.Path)
	}

	cmd := best.Trajectory.Velocity
	lp.debrief(cmd)
	lp.publisher.PublishLocalPlan(pose.FrameName(), pose.Stamp(), best.Trajectory)
	lp.publisher.PublishCostGrid(lp.costmap, lp.critics)
	return cmd, nil
}

func (lp *LocalPlanner) debrief(cmd spatialmath.Twist2D) {
	for _, critic := range lp.critics {
		critic.Debrief(cmd)
	}
}
