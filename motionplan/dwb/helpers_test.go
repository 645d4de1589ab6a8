package dwb

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/referenceframe"
	"go.viam.com/dwb/spatialmath"
)

// identityTransformer relabels poses without moving them, failing for the listed frames.
type identityTransformer struct {
	failFrames map[string]bool
}

func (tf *identityTransformer) TransformPose(dst string, pose *referenceframe.PoseInFrame) (*referenceframe.PoseInFrame, error) {
	if tf.failFrames[dst] {
		return nil, errors.Errorf("no transform to %s", dst)
	}
	return referenceframe.NewStampedPoseInFrame(dst, pose.Pose(), pose.Stamp()), nil
}

type fakeCostmap struct {
	width, height uint
	resolution    float64
	frame         string
	updates       int
	updateErr     error
}

func (cm *fakeCostmap) Update() error {
	cm.updates++
	return cm.updateErr
}
func (cm *fakeCostmap) Width() uint         { return cm.width }
func (cm *fakeCostmap) Height() uint        { return cm.height }
func (cm *fakeCostmap) Resolution() float64 { return cm.resolution }
func (cm *fakeCostmap) FrameID() string     { return cm.frame }
func (cm *fakeCostmap) Info() costmap.Info {
	return costmap.Info{Width: cm.width, Height: cm.height, Resolution: cm.resolution, FrameID: cm.frame}
}

// fakeGenerator enumerates a fixed list of twists and rolls each out for one second.
type fakeGenerator struct {
	twists     []spatialmath.Twist2D
	fail       map[float64]bool
	next       int
	iterations int
	resets     int
}

func (g *fakeGenerator) Name() string { return "FakeGenerator" }

func (g *fakeGenerator) StartNewIteration(spatialmath.Twist2D) {
	g.next = 0
	g.iterations++
}

func (g *fakeGenerator) HasMoreTwists() bool { return g.next < len(g.twists) }

func (g *fakeGenerator) NextTwist() spatialmath.Twist2D {
	tw := g.twists[g.next]
	g.next++
	return tw
}

func (g *fakeGenerator) GenerateTrajectory(start spatialmath.Pose2D, _, cmd spatialmath.Twist2D) (Trajectory, error) {
	if g.fail[cmd.X] {
		return Trajectory{}, errors.New("infeasible")
	}
	return Trajectory{
		Velocity: cmd,
		Samples: []TrajectorySample{
			{Pose: start, Velocity: cmd},
			{Pose: cmd.Integrate(start, 1), Velocity: cmd, Time: time.Second},
		},
	}, nil
}

func (g *fakeGenerator) Reset() { g.resets++ }

// fakeCritic scores trajectories by the x velocity of their command.
type fakeCritic struct {
	name      string
	weight    float64
	scores    map[float64]float64
	illegal   map[float64]bool
	prepareOK bool

	prepares int
	scored   int
	resets   int
	debriefs []spatialmath.Twist2D
	plan     Path
	goal     spatialmath.Pose2D
}

func newFakeCritic(name string, weight float64, scores map[float64]float64) *fakeCritic {
	return &fakeCritic{name: name, weight: weight, scores: scores, prepareOK: true}
}

func (c *fakeCritic) Name() string { return c.name }

func (c *fakeCritic) Prepare(_ spatialmath.Pose2D, _ spatialmath.Twist2D, goal spatialmath.Pose2D, plan Path) bool {
	c.prepares++
	c.plan = plan
	c.goal = goal
	return c.prepareOK
}

func (c *fakeCritic) Weight() float64 { return c.weight }

func (c *fakeCritic) ScoreTrajectory(traj Trajectory) (float64, error) {
	c.scored++
	if c.illegal[traj.Velocity.X] {
		return 0, NewIllegalTrajectoryError(c.name, "blocked")
	}
	return c.scores[traj.Velocity.X], nil
}

func (c *fakeCritic) Debrief(cmd spatialmath.Twist2D) { c.debriefs = append(c.debriefs, cmd) }

func (c *fakeCritic) Reset() { c.resets++ }

type fakeGoalChecker struct {
	reached bool
	resets  int
}

func (gc *fakeGoalChecker) IsGoalReached(_, _ spatialmath.Pose2D, _ spatialmath.Twist2D) bool {
	return gc.reached
}

func (gc *fakeGoalChecker) Reset() { gc.resets++ }

type recordingPublisher struct {
	NoopPublisher
	record      bool
	evaluations []*LocalPlanEvaluation
	globalPlans []Path
	transformed []Path
	localPlans  []Trajectory
	costGrids   int
}

func (p *recordingPublisher) ShouldRecordEvaluation() bool { return p.record }

func (p *recordingPublisher) PublishEvaluation(eval *LocalPlanEvaluation) {
	p.evaluations = append(p.evaluations, eval)
}

func (p *recordingPublisher) PublishGlobalPlan(plan Path) {
	p.globalPlans = append(p.globalPlans, plan)
}

func (p *recordingPublisher) PublishTransformedPlan(plan Path) {
	p.transformed = append(p.transformed, plan)
}

func (p *recordingPublisher) PublishLocalPlan(_ string, _ time.Time, traj Trajectory) {
	p.localPlans = append(p.localPlans, traj)
}

func (p *recordingPublisher) PublishCostGrid(Costmap, []TrajectoryCritic) { p.costGrids++ }

type plannerHarness struct {
	planner     *LocalPlanner
	generator   *fakeGenerator
	goalChecker *fakeGoalChecker
	costmap     *fakeCostmap
	transformer *identityTransformer
	publisher   *recordingPublisher
}

func newPlannerHarness(t *testing.T, opts Options, twists []spatialmath.Twist2D, critics ...TrajectoryCritic) *plannerHarness {
	t.Helper()
	h := &plannerHarness{
		generator:   &fakeGenerator{twists: twists},
		goalChecker: &fakeGoalChecker{},
		costmap:     &fakeCostmap{width: 40, height: 40, resolution: 0.1, frame: "odom"},
		transformer: &identityTransformer{failFrames: map[string]bool{}},
		publisher:   &recordingPublisher{},
	}
	planner, err := NewLocalPlanner(Dependencies{
		Generator:   h.generator,
		GoalChecker: h.goalChecker,
		Critics:     critics,
		Costmap:     h.costmap,
		Transformer: h.transformer,
		Publisher:   h.publisher,
	}, opts, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	h.planner = planner
	return h
}

func straightPath(frame string, n int, step float64) Path {
	path := Path{Frame: frame}
	for i := 0; i < n; i++ {
		path.Poses = append(path.Poses, spatialmath.NewPose2D(float64(i)*step, 0, 0))
	}
	return path
}

func robotAt(x, y, theta float64) *referenceframe.PoseInFrame {
	return referenceframe.NewPoseInFrame("map", spatialmath.NewPose2D(x, y, theta))
}
