package generators

import (
	"math"
	"reflect"
	"testing"

	"github.com/Krimson/gait-monitory/internal/pose"
)

func TestNextSequence_FrameShape(t *testing.T) {
	for _, format := range []pose.Format{pose.FormatCOCO17, pose.FormatBody25, pose.FormatBlazePose33} {
		generator := NewGaitGenerator(DefaultGaitConfig(format))
		frames := generator.NextSequence(50)

		if len(frames) != 50 {
			t.Fatalf("Format %s: expected 50 frames, got %d", format, len(frames))
		}
		for i, frame := range frames {
			if frame.Index != i {
				t.Errorf("Format %s: frame %d has index %d", format, i, frame.Index)
			}
			if len(frame.Keypoints) != format.JointCount() {
				t.Errorf("Format %s: frame %d has %d keypoints, expected %d",
					format, i, len(frame.Keypoints), format.JointCount())
			}
		}
	}
}

func TestNextSequence_ProducesValidSequence(t *testing.T) {
	generator := NewGaitGenerator(DefaultGaitConfig(pose.FormatCOCO17))
	frames := generator.NextSequence(100)

	if _, err := pose.NewSequence(frames, 30, pose.FormatCOCO17); err != nil {
		t.Fatalf("Generated frames must pass validation: %v", err)
	}
}

func TestNextSequence_SeededIsReproducible(t *testing.T) {
	first := NewGaitGenerator(DefaultGaitConfig(pose.FormatCOCO17))
	second := NewGaitGenerator(DefaultGaitConfig(pose.FormatCOCO17))
	first.Seed(42)
	second.Seed(42)

	if !reflect.DeepEqual(first.NextSequence(30), second.NextSequence(30)) {
		t.Error("Same seed must produce identical sequences")
	}
}

func TestNextSequence_AnklesOscillate(t *testing.T) {
	generator := NewGaitGenerator(DefaultGaitConfig(pose.FormatCOCO17))
	generator.SetNoise(0)
	frames := generator.NextSequence(90)

	ankleIdx, _ := pose.FormatCOCO17.JointIndex("left_ankle")
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, frame := range frames {
		y := frame.Keypoints[ankleIdx].Y
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}

	if maxY-minY < 10 {
		t.Errorf("Ankle must oscillate vertically during walking, range %f", maxY-minY)
	}
}

func TestSetAsymmetry_ReducesRightLegMotion(t *testing.T) {
	cfg := DefaultGaitConfig(pose.FormatCOCO17)
	generator := NewGaitGenerator(cfg)
	generator.SetNoise(0)
	generator.SetAsymmetry(1) // правая нога неподвижна относительно таза

	frames := generator.NextSequence(90)

	rightIdx, _ := pose.FormatCOCO17.JointIndex("right_ankle")
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, frame := range frames {
		y := frame.Keypoints[rightIdx].Y
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}

	if maxY-minY > 1e-9 {
		t.Errorf("Full asymmetry must freeze right ankle height, range %f", maxY-minY)
	}
}

func TestSetAsymmetry_Clamped(t *testing.T) {
	generator := NewGaitGenerator(DefaultGaitConfig(pose.FormatCOCO17))
	generator.SetAsymmetry(5)
	generator.SetNoise(-10)

	// Ни clamp асимметрии, ни отрицательный шум не должны ломать генерацию
	frames := generator.NextSequence(10)
	if len(frames) != 10 {
		t.Fatalf("Expected 10 frames, got %d", len(frames))
	}
}

func TestValidate(t *testing.T) {
	generator := NewGaitGenerator(DefaultGaitConfig(pose.FormatCOCO17))
	if err := generator.Validate(); err != nil {
		t.Errorf("Default configuration must validate: %v", err)
	}

	bad := NewGaitGenerator(DefaultGaitConfig(pose.Format("SKELETON_99")))
	if err := bad.Validate(); err == nil {
		t.Error("Unknown format must fail validation")
	}
}
