package pose

import (
	"context"
	"io"
	"math"
)

// MockSource is a test implementation of the Source interface.
// It plays back a fixed sequence of frames.
type MockSource struct {
	frames []Frame
	index  int
	err    error
}

// NewMockSource creates a new MockSource with the given frames.
func NewMockSource(frames ...Frame) *MockSource {
	return &MockSource{frames: frames}
}

// SetFrames replaces the frame sequence and restarts playback.
func (m *MockSource) SetFrames(frames []Frame) {
	m.frames = frames
	m.index = 0
}

// SetError sets the error that will be returned by Next.
func (m *MockSource) SetError(err error) {
	m.err = err
}

// Next returns the next configured frame, io.EOF once exhausted.
func (m *MockSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if m.err != nil {
		return Frame{}, m.err
	}
	if m.index >= len(m.frames) {
		return Frame{}, io.EOF
	}
	f := m.frames[m.index]
	m.index++
	return f, nil
}

// Close is a no-op for the mock source.
func (m *MockSource) Close() error {
	return nil
}

// Preset geometry shared by the poses below. Image coordinates, Y down.
const (
	presetShoulderY = 160.0
	presetHipY      = 300.0
	presetKneeY     = 400.0
	presetAnkleY    = 500.0
	presetNoseY     = 100.0
	presetCenterX   = 320.0
	presetThighLen  = presetKneeY - presetHipY
)

// StandingPose returns an upright, front-facing person with arms hanging
// below the hips. Torso length is 140.
func StandingPose() Landmarks {
	lm := Landmarks{Score: 0.95}

	lm.Points[Nose] = Point{X: presetCenterX, Y: presetNoseY}
	lm.Points[LeftEye] = Point{X: 330, Y: 90}
	lm.Points[RightEye] = Point{X: 310, Y: 90}
	lm.Points[LeftEar] = Point{X: 340, Y: 95}
	lm.Points[RightEar] = Point{X: 300, Y: 95}

	lm.Points[LeftShoulder] = Point{X: 360, Y: presetShoulderY}
	lm.Points[RightShoulder] = Point{X: 280, Y: presetShoulderY}
	lm.Points[LeftElbow] = Point{X: 370, Y: 230}
	lm.Points[RightElbow] = Point{X: 270, Y: 230}
	lm.Points[LeftWrist] = Point{X: 375, Y: 310}
	lm.Points[RightWrist] = Point{X: 265, Y: 310}

	lm.Points[LeftHip] = Point{X: 345, Y: presetHipY}
	lm.Points[RightHip] = Point{X: 295, Y: presetHipY}
	lm.Points[LeftKnee] = Point{X: 345, Y: presetKneeY}
	lm.Points[RightKnee] = Point{X: 295, Y: presetKneeY}
	lm.Points[LeftAnkle] = Point{X: 345, Y: presetAnkleY}
	lm.Points[RightAnkle] = Point{X: 295, Y: presetAnkleY}

	return lm
}

// ArmRaisePose returns a standing pose with both wrists placed exactly at
// the height of the given arm-raise level (0..5), assuming the default
// 20 unit overhead offset above the nose.
func ArmRaisePose(level int) Landmarks {
	lm := StandingPose()
	if level <= 0 {
		return lm
	}
	if level > 5 {
		level = 5
	}

	var wristY float64
	if level <= 3 {
		wristY = presetHipY - float64(level)/3*(presetHipY-presetShoulderY)
	} else {
		overheadY := presetNoseY - 20
		wristY = presetShoulderY - float64(level-3)/2*(presetShoulderY-overheadY)
	}

	// Arms straight up once above the shoulders, straight out below.
	lm.Points[LeftWrist] = Point{X: lm.Points[LeftShoulder].X + 15, Y: wristY}
	lm.Points[RightWrist] = Point{X: lm.Points[RightShoulder].X - 15, Y: wristY}
	lm.Points[LeftElbow] = Point{X: lm.Points[LeftShoulder].X + 10, Y: (wristY + presetShoulderY) / 2}
	lm.Points[RightElbow] = Point{X: lm.Points[RightShoulder].X - 10, Y: (wristY + presetShoulderY) / 2}
	return lm
}

// SideBendPose returns a standing pose whose upper body is shifted sideways
// so that the measuring side for the given stretch side forms deg degrees
// with the vertical. Shoulders and hips stay level.
func SideBendPose(side string, deg float64) Landmarks {
	lm := StandingPose()

	shoulder, hip := RightShoulder, RightHip
	if side == "right" {
		shoulder, hip = LeftShoulder, LeftHip
	}

	rise := lm.Points[hip].Y - lm.Points[shoulder].Y
	targetX := lm.Points[hip].X - rise*math.Tan(deg*math.Pi/180)
	shift := targetX - lm.Points[shoulder].X

	for _, idx := range []int{Nose, LeftEye, RightEye, LeftEar, RightEar,
		LeftShoulder, RightShoulder, LeftElbow, RightElbow, LeftWrist, RightWrist} {
		lm.Points[idx].X += shift
	}
	return lm
}

// SquatPose returns a pose whose knees form the given interior angle
// (180 = straight legs). Shins stay vertical over the ankles; the hips move
// back and down and the upper body follows them so the back stays upright
// and balanced.
func SquatPose(kneeDeg float64) Landmarks {
	lm := StandingPose()

	theta := kneeDeg * math.Pi / 180
	dx := -presetThighLen * math.Sin(theta)
	dy := presetThighLen * math.Cos(theta)

	shiftX := dx
	shiftY := (presetKneeY + dy) - presetHipY

	for _, idx := range []int{Nose, LeftEye, RightEye, LeftEar, RightEar,
		LeftShoulder, RightShoulder, LeftElbow, RightElbow, LeftWrist, RightWrist,
		LeftHip, RightHip} {
		lm.Points[idx].X += shiftX
		lm.Points[idx].Y += shiftY
	}
	return lm
}

// Without returns a copy of lm with the given keypoints marked undetected.
func Without(lm Landmarks, indices ...int) Landmarks {
	for _, idx := range indices {
		lm.Points[idx] = Point{}
	}
	return lm
}
