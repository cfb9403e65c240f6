// Package pose provides body landmark types and sources for posture classification.
package pose

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Body keypoint indices following the COCO 17-keypoint convention used by
// YOLO pose models.
const (
	Nose          = 0
	LeftEye       = 1
	RightEye      = 2
	LeftEar       = 3
	RightEar      = 4
	LeftShoulder  = 5
	RightShoulder = 6
	LeftElbow     = 7
	RightElbow    = 8
	LeftWrist     = 9
	RightWrist    = 10
	LeftHip       = 11
	RightHip      = 12
	LeftKnee      = 13
	RightKnee     = 14
	LeftAnkle     = 15
	RightAnkle    = 16
	NumKeypoints  = 17
)

// UndetectedEpsilon is the coordinate below which (on both axes) a keypoint
// is considered undetected rather than located at the origin.
const UndetectedEpsilon = 2.0

var keypointNames = [NumKeypoints]string{
	"nose", "left_eye", "right_eye", "left_ear", "right_ear",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
	"left_wrist", "right_wrist", "left_hip", "right_hip",
	"left_knee", "right_knee", "left_ankle", "right_ankle",
}

// ErrMissingLandmarks is returned when a required keypoint was not detected.
var ErrMissingLandmarks = errors.New("missing landmarks")

// MissingLandmarksError lists the keypoints that were required but undetected.
type MissingLandmarksError struct {
	Missing []string
}

func (e *MissingLandmarksError) Error() string {
	return fmt.Sprintf("missing landmarks: %s", strings.Join(e.Missing, ", "))
}

// Unwrap makes errors.Is(err, ErrMissingLandmarks) work.
func (e *MissingLandmarksError) Unwrap() error {
	return ErrMissingLandmarks
}

// Point represents a 2D image-space point. Y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detected reports whether the point carries a real position.
func (p Point) Detected() bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return false
	}
	return !(p.X < UndetectedEpsilon && p.Y < UndetectedEpsilon)
}

// Landmarks represents the keypoints estimated for one person in one frame.
type Landmarks struct {
	Points [NumKeypoints]Point `json:"points"`
	Score  float64             `json:"score"`
}

// KeypointName returns the anatomical name for a keypoint index.
func KeypointName(idx int) string {
	if idx < 0 || idx >= NumKeypoints {
		return fmt.Sprintf("keypoint_%d", idx)
	}
	return keypointNames[idx]
}

// KeypointIndex returns the index for an anatomical name.
func KeypointIndex(name string) (int, bool) {
	for i, n := range keypointNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Require returns a *MissingLandmarksError if any of the given keypoints is
// undetected. A nil receiver is treated as a frame with no detection.
func (l *Landmarks) Require(indices ...int) error {
	var missing []string
	for _, idx := range indices {
		if l == nil || idx < 0 || idx >= NumKeypoints || !l.Points[idx].Detected() {
			missing = append(missing, KeypointName(idx))
		}
	}
	if len(missing) > 0 {
		return &MissingLandmarksError{Missing: missing}
	}
	return nil
}

// Midpoint returns the point halfway between two keypoints.
func (l *Landmarks) Midpoint(a, b int) Point {
	return Point{
		X: (l.Points[a].X + l.Points[b].X) / 2,
		Y: (l.Points[a].Y + l.Points[b].Y) / 2,
	}
}

// TorsoLength returns the distance between the shoulder center and the hip
// center. It is the reference measurement for resolution-independent
// tolerances.
func (l *Landmarks) TorsoLength() float64 {
	shoulders := l.Midpoint(LeftShoulder, RightShoulder)
	hips := l.Midpoint(LeftHip, RightHip)
	return math.Hypot(shoulders.X-hips.X, shoulders.Y-hips.Y)
}

// FromPairs builds Landmarks from [x, y] pairs. Missing trailing pairs are
// left undetected.
func FromPairs(pairs [][2]float64) Landmarks {
	var lm Landmarks
	for i := 0; i < NumKeypoints && i < len(pairs); i++ {
		lm.Points[i] = Point{X: pairs[i][0], Y: pairs[i][1]}
	}
	return lm
}

// Pairs returns the keypoints as [x, y] pairs.
func (l *Landmarks) Pairs() [][2]float64 {
	out := make([][2]float64, NumKeypoints)
	for i, p := range l.Points {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}
