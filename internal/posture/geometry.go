package posture

import (
	"math"

	"github.com/ayusman/physioduel/internal/pose"
)

// minNorm is the vector length below which an angle is undefined.
const minNorm = 1e-9

// JointAngle returns the interior angle in degrees at vertex formed by the
// segments vertex→a and vertex→c. ok is false when either segment has zero
// length.
func JointAngle(a, vertex, c pose.Point) (deg float64, ok bool) {
	bax, bay := a.X-vertex.X, a.Y-vertex.Y
	bcx, bcy := c.X-vertex.X, c.Y-vertex.Y
	return vectorAngle(bax, bay, bcx, bcy)
}

// AngleFromVertical returns the angle in degrees between the segment
// base→tip and a vertical line pointing up from base.
func AngleFromVertical(base, tip pose.Point) (deg float64, ok bool) {
	return vectorAngle(tip.X-base.X, tip.Y-base.Y, 0, -1)
}

func vectorAngle(ax, ay, bx, by float64) (float64, bool) {
	na := math.Hypot(ax, ay)
	nb := math.Hypot(bx, by)
	if na < minNorm || nb < minNorm {
		return 0, false
	}

	cos := (ax*bx + ay*by) / (na * nb)
	// Clamp to avoid NaN from floating point noise.
	cos = clamp(cos, -1, 1)
	return math.Acos(cos) * 180 / math.Pi, true
}

// ArmRaiseLevel maps the average wrist height onto levels 0..5 with the
// hips anchoring level 0, the shoulders level 3 and the overhead point
// level 5. degenerate is true when the anchors are out of order and the
// single-ratio fallback was used.
func ArmRaiseLevel(hipY, shoulderY, overheadY, wristY float64) (level int, degenerate bool) {
	if hipY <= shoulderY || shoulderY <= overheadY {
		fullRange := hipY - overheadY
		if fullRange <= 0 {
			return 0, true
		}
		ratio := clamp((hipY-wristY)/fullRange, 0, 1)
		return roundLevel(ratio*5, 5), true
	}

	var raw float64
	if wristY >= shoulderY {
		raw = 3 * clamp((hipY-wristY)/(hipY-shoulderY), 0, 1)
	} else {
		raw = 3 + 2*clamp((shoulderY-wristY)/(shoulderY-overheadY), 0, 1)
	}
	return roundLevel(raw, 5), false
}

// StretchLevel returns the highest level whose minimum angle is met.
// thresholds[i] is the minimum angle for level i+1; the bound is inclusive.
func StretchLevel(angle float64, thresholds []float64) int {
	level := 0
	for i, t := range thresholds {
		if angle >= t {
			level = i + 1
		}
	}
	return level
}

// SquatLevel returns the highest level whose maximum knee angle is met.
// thresholds[i] is the maximum angle for level i+1; the bound is inclusive.
func SquatLevel(kneeAngle float64, thresholds []float64) int {
	level := 0
	for i, t := range thresholds {
		if kneeAngle <= t {
			level = i + 1
		}
	}
	return level
}

func roundLevel(v float64, max int) int {
	l := int(math.RoundToEven(v))
	if l < 0 {
		return 0
	}
	if l > max {
		return max
	}
	return l
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
