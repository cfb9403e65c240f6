package pose

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestPoint_Detected(t *testing.T) {
	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"origin", Point{}, false},
		{"near origin", Point{X: 1.5, Y: 1.9}, false},
		{"one axis away from origin", Point{X: 0, Y: 240}, true},
		{"regular", Point{X: 320, Y: 240}, true},
		{"NaN", Point{X: math.NaN(), Y: 100}, false},
		{"Inf", Point{X: 100, Y: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.Detected(); got != tt.want {
				t.Errorf("Detected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLandmarks_Require(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		lm := StandingPose()
		if err := lm.Require(Nose, LeftWrist, RightAnkle); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("lists every missing keypoint", func(t *testing.T) {
		lm := Without(StandingPose(), LeftWrist, RightKnee)
		err := lm.Require(Nose, LeftWrist, RightKnee)

		if !errors.Is(err, ErrMissingLandmarks) {
			t.Fatalf("expected ErrMissingLandmarks, got %v", err)
		}
		var missing *MissingLandmarksError
		if !errors.As(err, &missing) {
			t.Fatalf("expected *MissingLandmarksError, got %T", err)
		}
		if len(missing.Missing) != 2 || missing.Missing[0] != "left_wrist" || missing.Missing[1] != "right_knee" {
			t.Errorf("Missing = %v", missing.Missing)
		}
	})

	t.Run("nil landmarks", func(t *testing.T) {
		var lm *Landmarks
		if err := lm.Require(Nose); !errors.Is(err, ErrMissingLandmarks) {
			t.Fatalf("expected ErrMissingLandmarks, got %v", err)
		}
	})
}

func TestLandmarks_TorsoLength(t *testing.T) {
	lm := StandingPose()
	if got := lm.TorsoLength(); math.Abs(got-140) > epsilon {
		t.Errorf("TorsoLength() = %f, want 140", got)
	}
}

func TestKeypointNames(t *testing.T) {
	for i := 0; i < NumKeypoints; i++ {
		idx, ok := KeypointIndex(KeypointName(i))
		if !ok || idx != i {
			t.Errorf("KeypointIndex(KeypointName(%d)) = %d, %v", i, idx, ok)
		}
	}
	if got := KeypointName(42); got != "keypoint_42" {
		t.Errorf("KeypointName(42) = %q", got)
	}
	if _, ok := KeypointIndex("tail"); ok {
		t.Error("expected unknown name to fail")
	}
}

func TestFromPairs(t *testing.T) {
	lm := FromPairs([][2]float64{{10, 20}, {30, 40}})
	if lm.Points[Nose] != (Point{X: 10, Y: 20}) {
		t.Errorf("nose = %+v", lm.Points[Nose])
	}
	if lm.Points[LeftEye] != (Point{X: 30, Y: 40}) {
		t.Errorf("left eye = %+v", lm.Points[LeftEye])
	}
	if lm.Points[RightAnkle].Detected() {
		t.Error("trailing keypoints should be undetected")
	}
}
