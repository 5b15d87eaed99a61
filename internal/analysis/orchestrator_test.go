package analysis

import (
	"encoding/json"
	"math"
	"testing"
)

func TestAnalyze_WalkingEndToEnd(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig())
	seq := mustSequence(t, walkingFrames(150, 30, 1), 30)

	result := analyzer.Analyze(seq)

	if len(result.QualityFlags) != 0 {
		t.Errorf("Clean walk must not raise quality flags, got %v", result.QualityFlags)
	}
	if result.Summary.Confidence != ConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", result.Summary.Confidence)
	}
	if result.Summary.Level != LevelGood {
		t.Errorf("Expected good level for normal walk, got %s", result.Summary.Level)
	}
	if len(result.GaitCycles) < 4 {
		t.Errorf("Expected at least 4 cycles, got %d", len(result.GaitCycles))
	}
	if result.Symmetry.Classification != SymmetryClassSymmetric {
		t.Errorf("Expected symmetric walk, got %s", result.Symmetry.Classification)
	}
	if result.Timing.CadenceStepsPerMin == nil {
		t.Error("Expected cadence")
	}
	if len(result.Features) == 0 {
		t.Error("Expected features")
	}
	if len(result.Summary.Recommendations) == 0 {
		t.Error("Good level must carry a confirmation recommendation")
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig())
	seq := mustSequence(t, walkingFrames(150, 30, 0.7), 30)

	first, err := json.Marshal(analyzer.Analyze(seq))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	second, err := json.Marshal(analyzer.Analyze(seq))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if string(first) != string(second) {
		t.Error("Repeated analysis of the same sequence must be identical")
	}
}

func TestAnalyze_AsymmetricWalkDegradesLevel(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig())
	seq := mustSequence(t, walkingFrames(150, 30, 0.3), 30)

	result := analyzer.Analyze(seq)

	if result.Summary.Level == LevelGood {
		t.Errorf("Severe asymmetry must degrade the level, got %s", result.Summary.Level)
	}
	if len(result.Summary.Recommendations) == 0 {
		t.Error("Degraded level must produce recommendations")
	}
}

func TestAnalyze_EmptySequenceDegrades(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig())
	seq := mustSequence(t, nil, 30)

	result := analyzer.Analyze(seq)

	if result == nil {
		t.Fatal("Analyze must never return nil")
	}
	if result.GaitCycles == nil {
		t.Error("GaitCycles must be an empty slice, not nil")
	}
	if len(result.QualityFlags) == 0 {
		t.Error("Empty sequence must raise quality flags")
	}
	if result.Summary.Confidence == ConfidenceHigh {
		t.Error("Empty sequence must not be high confidence")
	}
	if result.Symmetry.Classification != SymmetryClassUnavailable {
		t.Errorf("Expected unavailable symmetry, got %s", result.Symmetry.Classification)
	}
}

func TestAnalyze_LowConfidenceSequenceFlagged(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig())

	frames := walkingFrames(150, 30, 1)
	for i := range frames {
		for j := range frames[i].Keypoints {
			frames[i].Keypoints[j].Confidence = 0.3
		}
	}
	seq := mustSequence(t, frames, 30)

	result := analyzer.Analyze(seq)

	if !hasFlag(result.QualityFlags, FlagLowMeanConfidence) {
		t.Errorf("Expected %s flag, got %v", FlagLowMeanConfidence, result.QualityFlags)
	}
	if result.Summary.Confidence == ConfidenceHigh {
		t.Error("Low keypoint confidence must lower result confidence")
	}
}

func TestAnalyze_FlagsSortedAndUnique(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig())
	seq := mustSequence(t, staticFrames(1), 30)

	result := analyzer.Analyze(seq)

	seen := map[string]bool{}
	for i, flag := range result.QualityFlags {
		if seen[flag] {
			t.Errorf("Duplicate flag %s", flag)
		}
		seen[flag] = true
		if i > 0 && flag < result.QualityFlags[i-1] {
			t.Error("Flags must be sorted")
		}
	}
}

func TestNewAnalyzer_UnknownMethodFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DetectionMethod = DetectionMethod("gyroscope")

	analyzer := NewAnalyzer(cfg)
	if analyzer.cfg.DetectionMethod != MethodHeelStrike {
		t.Errorf("Unknown method must fall back to %s, got %s",
			MethodHeelStrike, analyzer.cfg.DetectionMethod)
	}
}

func TestCadenceVote(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig())

	cases := []struct {
		cadence  float64
		expected AssessmentLevel
	}{
		{115, LevelGood},
		{100, LevelGood},
		{130, LevelGood},
		{95, LevelModerate},
		{140, LevelModerate},
		{60, LevelPoor},
		{170, LevelPoor},
	}

	for _, tc := range cases {
		if got := analyzer.cadenceVote(tc.cadence); got != tc.expected {
			t.Errorf("cadenceVote(%f): expected %s, got %s", tc.cadence, tc.expected, got)
		}
	}
}

func TestAnalyze_BriskWalkScenario(t *testing.T) {
	analyzer := NewAnalyzer(DefaultConfig())
	// 150 кадров при 30 fps, контакт пятки каждые 25 кадров:
	// цикл ноги 0.833 секунды, обе ноги в противофазе
	seq := mustSequence(t, walkingFrames(150, 25, 1), 30)

	result := analyzer.Analyze(seq)

	if len(result.QualityFlags) != 0 {
		t.Errorf("Clean walk must not raise quality flags, got %v", result.QualityFlags)
	}
	if result.Summary.Confidence != ConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", result.Summary.Confidence)
	}

	if result.Timing.CadenceStepsPerMin == nil {
		t.Fatal("Expected cadence")
	}
	cadence := *result.Timing.CadenceStepsPerMin
	if math.Abs(cadence-144) > 14.4 {
		t.Errorf("Expected cadence 144 within 10%%, got %f", cadence)
	}

	if result.Timing.CycleDurationMean == nil {
		t.Fatal("Expected cycle duration mean")
	}
	if math.Abs(*result.Timing.CycleDurationMean-25.0/30) > 0.02 {
		t.Errorf("Expected cycle duration ~%f, got %f", 25.0/30, *result.Timing.CycleDurationMean)
	}

	if result.Symmetry.OverallSymmetryIndex == nil {
		t.Fatal("Expected overall symmetry index")
	}
	if *result.Symmetry.OverallSymmetryIndex >= 0.05 {
		t.Errorf("Expected overall symmetry index < 0.05, got %f", *result.Symmetry.OverallSymmetryIndex)
	}
	if result.Symmetry.Classification != SymmetryClassSymmetric {
		t.Errorf("Expected symmetric classification, got %s", result.Symmetry.Classification)
	}
}
