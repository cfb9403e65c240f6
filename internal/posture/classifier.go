// Package posture classifies body landmarks into discrete exercise levels
// and checks exercise form.
package posture

import (
	"fmt"
	"math"

	"github.com/ayusman/physioduel/internal/pose"
)

// Kind identifies an exercise.
type Kind string

const (
	// KindArmRaise is the piecewise arm raise from hips to overhead.
	KindArmRaise Kind = "arm_raise"
	// KindSideStretch is a lateral bend measured on one side of the body.
	KindSideStretch Kind = "side_stretch"
	// KindSquat is a chair squat measured by knee angle.
	KindSquat Kind = "squat"
)

// Kinds lists every exercise in display order.
var Kinds = []Kind{KindArmRaise, KindSideStretch, KindSquat}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Side is the anatomical side a side stretch bends towards.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Form feedback messages.
const (
	IssueShoulderLevel = "Keep shoulders level"
	IssueHeadAlign     = "Align head with shoulders"
	IssueHipLevel      = "Keep hips stable"
	IssueKneeAlign     = "Keep knees behind toes"
	IssueBalance       = "Maintain balance - keep back straight"
	IssueBackAngle     = "Keep back straight"

	SafetyOverhead = "Avoid full overhead - protect shoulders"
)

// Reading is the result of classifying one frame for one exercise.
type Reading struct {
	Level int
	// Angle is the measured angle in degrees: the lateral bend for side
	// stretches, the average knee angle for squats and the largest arm
	// angle from vertical for arm raises.
	Angle  float64
	FormOK bool
	Issues []string
	// Unsafe is set when a safety guard blocked classification. Level is
	// meaningless in that case.
	Unsafe        bool
	SafetyMessage string
	// Degenerate is set when geometry was out of order and a fallback
	// estimate was used.
	Degenerate bool
}

var (
	armRaiseKeypoints = []int{pose.Nose, pose.LeftShoulder, pose.RightShoulder,
		pose.LeftHip, pose.RightHip, pose.LeftWrist, pose.RightWrist}
	stretchKeypoints = []int{pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip}
	squatKeypoints   = []int{pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip,
		pose.LeftKnee, pose.RightKnee, pose.LeftAnkle, pose.RightAnkle}
)

// Classifier maps landmarks to exercise readings. It holds no state.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a Classifier after validating cfg.
func NewClassifier(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{cfg: cfg}, nil
}

// Config returns the classifier configuration.
func (c *Classifier) Config() Config {
	return c.cfg
}

// MaxLevel returns the highest level an exercise can report.
func (c *Classifier) MaxLevel(kind Kind) int {
	switch kind {
	case KindArmRaise:
		return 5
	case KindSideStretch:
		return len(c.cfg.StretchAngles)
	case KindSquat:
		return len(c.cfg.SquatKneeAngles)
	}
	return 0
}

// Classify dispatches to the classifier for kind. side is only used for
// side stretches.
func (c *Classifier) Classify(kind Kind, side Side, lm *pose.Landmarks) (Reading, error) {
	switch kind {
	case KindArmRaise:
		return c.ArmRaise(lm)
	case KindSideStretch:
		return c.SideStretch(lm, side)
	case KindSquat:
		return c.Squat(lm)
	}
	return Reading{}, fmt.Errorf("unknown exercise %q", kind)
}

// ArmRaise classifies an arm raise. When the shoulder-impingement guard
// trips the reading is marked Unsafe and no level is computed.
func (c *Classifier) ArmRaise(lm *pose.Landmarks) (Reading, error) {
	if err := lm.Require(armRaiseKeypoints...); err != nil {
		return Reading{}, err
	}

	p := lm.Points
	hipY := (p[pose.LeftHip].Y + p[pose.RightHip].Y) / 2
	shoulderY := (p[pose.LeftShoulder].Y + p[pose.RightShoulder].Y) / 2
	wristY := (p[pose.LeftWrist].Y + p[pose.RightWrist].Y) / 2
	overheadY := p[pose.Nose].Y - c.cfg.OverheadOffset

	armAngle := math.Max(
		armAngleFromVertical(p[pose.LeftShoulder], p[pose.LeftWrist]),
		armAngleFromVertical(p[pose.RightShoulder], p[pose.RightWrist]),
	)

	if wristY < shoulderY-c.cfg.ImpingementLift && armAngle > c.cfg.ShoulderPainZone {
		return Reading{
			Angle:         armAngle,
			Unsafe:        true,
			SafetyMessage: SafetyOverhead,
		}, nil
	}

	level, degenerate := ArmRaiseLevel(hipY, shoulderY, overheadY, wristY)

	ref := reference(lm)
	var issues []string
	if math.Abs(p[pose.LeftShoulder].Y-p[pose.RightShoulder].Y) > c.cfg.ShoulderLevelTolerance*ref {
		issues = append(issues, IssueShoulderLevel)
	}
	shoulderCenterX := (p[pose.LeftShoulder].X + p[pose.RightShoulder].X) / 2
	if math.Abs(p[pose.Nose].X-shoulderCenterX) > c.cfg.HeadAlignTolerance*ref {
		issues = append(issues, IssueHeadAlign)
	}

	return Reading{
		Level:      level,
		Angle:      armAngle,
		FormOK:     len(issues) == 0,
		Issues:     issues,
		Degenerate: degenerate,
	}, nil
}

// SideStretch classifies a lateral bend towards side. A left stretch is
// measured on the right shoulder and hip, a right stretch on the left ones.
func (c *Classifier) SideStretch(lm *pose.Landmarks, side Side) (Reading, error) {
	if err := lm.Require(stretchKeypoints...); err != nil {
		return Reading{}, err
	}

	shoulder, hip := pose.LeftShoulder, pose.LeftHip
	if side == SideLeft {
		shoulder, hip = pose.RightShoulder, pose.RightHip
	}

	p := lm.Points
	angle, ok := AngleFromVertical(p[hip], p[shoulder])

	ref := reference(lm)
	var issues []string
	if math.Abs(p[pose.LeftShoulder].Y-p[pose.RightShoulder].Y) > c.cfg.ShoulderLevelTolerance*ref {
		issues = append(issues, IssueShoulderLevel)
	}
	if math.Abs(p[pose.LeftHip].Y-p[pose.RightHip].Y) > c.cfg.HipLevelTolerance*ref {
		issues = append(issues, IssueHipLevel)
	}

	return Reading{
		Level:      StretchLevel(angle, c.cfg.StretchAngles),
		Angle:      angle,
		FormOK:     len(issues) == 0,
		Issues:     issues,
		Degenerate: !ok,
	}, nil
}

// Squat classifies a squat by the average knee angle of both legs.
func (c *Classifier) Squat(lm *pose.Landmarks) (Reading, error) {
	if err := lm.Require(squatKeypoints...); err != nil {
		return Reading{}, err
	}

	p := lm.Points
	left, okLeft := JointAngle(p[pose.LeftHip], p[pose.LeftKnee], p[pose.LeftAnkle])
	right, okRight := JointAngle(p[pose.RightHip], p[pose.RightKnee], p[pose.RightAnkle])
	// A collapsed bone reads as a straight leg.
	if !okLeft {
		left = 180
	}
	if !okRight {
		right = 180
	}
	knee := (left + right) / 2

	ref := reference(lm)
	var issues []string

	// Knees may not extend beyond the ankles.
	kneeTol := c.cfg.KneeAlignTolerance * ref
	if p[pose.LeftKnee].X-p[pose.LeftAnkle].X >= kneeTol || p[pose.RightKnee].X-p[pose.RightAnkle].X >= kneeTol {
		issues = append(issues, IssueKneeAlign)
	}

	shoulders := lm.Midpoint(pose.LeftShoulder, pose.RightShoulder)
	hips := lm.Midpoint(pose.LeftHip, pose.RightHip)
	if math.Abs(shoulders.X-hips.X) > c.cfg.BalanceTolerance*ref {
		issues = append(issues, IssueBalance)
	}
	if back, ok := AngleFromVertical(hips, shoulders); ok && back > c.cfg.MaxBackAngle {
		issues = append(issues, IssueBackAngle)
	}

	return Reading{
		Level:      SquatLevel(knee, c.cfg.SquatKneeAngles),
		Angle:      knee,
		FormOK:     len(issues) == 0,
		Issues:     issues,
		Degenerate: !okLeft || !okRight,
	}, nil
}

// armAngleFromVertical estimates how far an arm points away from straight
// up, in degrees.
func armAngleFromVertical(shoulder, wrist pose.Point) float64 {
	return math.Abs(math.Atan2(wrist.X-shoulder.X, shoulder.Y-wrist.Y) * 180 / math.Pi)
}

// reference returns the body measurement tolerances are scaled by.
func reference(lm *pose.Landmarks) float64 {
	return math.Max(lm.TorsoLength(), 1)
}
