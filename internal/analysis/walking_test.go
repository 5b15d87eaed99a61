package analysis

import (
	"math"
	"testing"

	"github.com/Krimson/gait-monitory/internal/pose"
)

// Базовый скелет COCO_17 в экранных координатах для синтетических тестов
var testSkeleton = map[string][2]float64{
	"nose": {320, 140},
	"left_eye": {312, 132}, "right_eye": {328, 132},
	"left_ear": {305, 138}, "right_ear": {335, 138},
	"left_shoulder": {290, 200}, "right_shoulder": {350, 200},
	"left_elbow": {280, 280}, "right_elbow": {360, 280},
	"left_wrist": {275, 350}, "right_wrist": {365, 350},
	"left_hip": {300, 380}, "right_hip": {340, 380},
	"left_knee": {298, 500}, "right_knee": {342, 500},
	"left_ankle": {296, 620}, "right_ankle": {344, 620},
}

// walkingFrames генерирует ходьбу слева направо: голеностопы движутся
// по синусоиде с периодом period кадров, ноги в противофазе.
// rightScale < 1 уменьшает амплитуду правой ноги (асимметрия).
func walkingFrames(count int, period float64, rightScale float64) []pose.Frame {
	const speed = 2.5 // пикселей за кадр

	frames := make([]pose.Frame, count)
	for i := 0; i < count; i++ {
		phase := 2 * math.Pi * float64(i) / period
		forward := speed * float64(i)

		kps := make([]pose.Keypoint, len(pose.FormatCOCO17.JointNames()))
		for j, name := range pose.FormatCOCO17.JointNames() {
			base := testSkeleton[name]
			x := base[0] + forward
			y := base[1]

			switch name {
			case "left_ankle":
				x += 40 * math.Sin(phase)
				y -= 20 * math.Cos(phase)
			case "right_ankle":
				x += 40 * rightScale * math.Sin(phase+math.Pi)
				y -= 20 * rightScale * math.Cos(phase+math.Pi)
			case "left_knee":
				x += 20 * math.Sin(phase)
				y -= 8 * math.Cos(phase)
			case "right_knee":
				x += 20 * rightScale * math.Sin(phase+math.Pi)
				y -= 8 * rightScale * math.Cos(phase+math.Pi)
			}

			kps[j] = pose.Keypoint{X: x, Y: y, Confidence: 0.9}
		}
		frames[i] = pose.Frame{Index: i, Keypoints: kps}
	}
	return frames
}

// staticFrames генерирует неподвижную стойку
func staticFrames(count int) []pose.Frame {
	frames := make([]pose.Frame, count)
	for i := 0; i < count; i++ {
		kps := make([]pose.Keypoint, len(pose.FormatCOCO17.JointNames()))
		for j, name := range pose.FormatCOCO17.JointNames() {
			base := testSkeleton[name]
			kps[j] = pose.Keypoint{X: base[0], Y: base[1], Confidence: 0.9}
		}
		frames[i] = pose.Frame{Index: i, Keypoints: kps}
	}
	return frames
}

func mustSequence(t *testing.T, frames []pose.Frame, fps float64) *pose.Sequence {
	t.Helper()
	seq, err := pose.NewSequence(frames, fps, pose.FormatCOCO17)
	if err != nil {
		t.Fatalf("Failed to build sequence: %v", err)
	}
	return seq
}
