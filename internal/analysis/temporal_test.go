package analysis

import (
	"math"
	"testing"
)

func TestDetectCycles_WalkingSequence(t *testing.T) {
	analyzer := NewTemporalAnalyzer(DefaultConfig())
	// Период 30 кадров при 30 fps: цикл каждой ноги ровно 1 секунда
	seq := mustSequence(t, walkingFrames(150, 30, 1), 30)

	cycles, events, flags := analyzer.DetectCycles(seq)

	if len(cycles) < 4 {
		t.Fatalf("Expected at least 4 cycles, got %d", len(cycles))
	}
	if hasFlag(flags, FlagTooFewCycles) {
		t.Errorf("Unexpected %s flag: %v", FlagTooFewCycles, flags)
	}
	if hasFlag(flags, FlagFallbackDetection) {
		t.Errorf("Primary method must succeed, got flags %v", flags)
	}

	// Идентификаторы последовательные, циклы отсортированы по началу
	for i, c := range cycles {
		if c.CycleID != i+1 {
			t.Errorf("Cycle %d has id %d, expected %d", i, c.CycleID, i+1)
		}
		if i > 0 && c.StartFrame < cycles[i-1].StartFrame {
			t.Errorf("Cycles must be sorted by start frame")
		}
		if math.Abs(c.DurationSeconds-1.0) > 0.1 {
			t.Errorf("Cycle %d duration %f, expected ~1.0s", c.CycleID, c.DurationSeconds)
		}
		if c.Confidence <= 0 || c.Confidence > 1 {
			t.Errorf("Cycle confidence out of range: %f", c.Confidence)
		}
	}

	// Обе ноги должны дать циклы
	feet := map[Foot]int{}
	for _, c := range cycles {
		feet[c.Foot]++
	}
	if feet[FootLeft] == 0 || feet[FootRight] == 0 {
		t.Errorf("Expected cycles for both feet, got %v", feet)
	}

	// События отсортированы по кадрам
	for i := 1; i < len(events); i++ {
		if events[i].FrameIndex < events[i-1].FrameIndex {
			t.Error("Events must be sorted by frame index")
		}
	}
}

func TestDetectCycles_StaticSequence(t *testing.T) {
	analyzer := NewTemporalAnalyzer(DefaultConfig())
	seq := mustSequence(t, staticFrames(150), 30)

	cycles, _, flags := analyzer.DetectCycles(seq)

	if cycles == nil {
		t.Fatal("Cycles must be an empty slice, not nil")
	}
	if len(cycles) != 0 {
		t.Errorf("Static pose must yield no cycles, got %d", len(cycles))
	}
	if !hasFlag(flags, FlagTooFewCycles) {
		t.Errorf("Expected %s flag, got %v", FlagTooFewCycles, flags)
	}
}

func TestDetectCycles_TooShort(t *testing.T) {
	analyzer := NewTemporalAnalyzer(DefaultConfig())
	seq := mustSequence(t, staticFrames(2), 30)

	cycles, _, flags := analyzer.DetectCycles(seq)
	if len(cycles) != 0 {
		t.Errorf("Two frames must yield no cycles, got %d", len(cycles))
	}
	if !hasFlag(flags, FlagInsufficientFrames) || !hasFlag(flags, FlagTooFewCycles) {
		t.Errorf("Expected degradation flags, got %v", flags)
	}
}

func TestDetectCycles_ToeOffMethod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DetectionMethod = MethodToeOff
	analyzer := NewTemporalAnalyzer(cfg)
	seq := mustSequence(t, walkingFrames(150, 30, 1), 30)

	cycles, events, _ := analyzer.DetectCycles(seq)
	if len(cycles) < 2 {
		t.Fatalf("Toe-off method must segment cycles, got %d", len(cycles))
	}

	hasToeOff := false
	for _, e := range events {
		if e.Type == EventToeOff {
			hasToeOff = true
		}
	}
	if !hasToeOff {
		t.Error("Expected toe-off events")
	}
}

func TestDetectCycles_CombinedMethod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DetectionMethod = MethodCombined
	analyzer := NewTemporalAnalyzer(cfg)
	seq := mustSequence(t, walkingFrames(150, 30, 1), 30)

	cycles, _, flags := analyzer.DetectCycles(seq)
	if len(cycles) < 2 {
		t.Fatalf("Combined method must segment cycles, got %d flags=%v", len(cycles), flags)
	}
}

func TestDetectCycles_DiscardsOutOfRangeCycles(t *testing.T) {
	cfg := DefaultConfig()
	analyzer := NewTemporalAnalyzer(cfg)
	// Период 90 кадров при 30 fps = 3.0с на цикл, выше MaxCycleDuration 2.5с
	// и выше ослабленной границы нет - но 3.0с попадает в ослабленный диапазон [0.6, 3.0]
	seq := mustSequence(t, walkingFrames(360, 90, 1), 30)

	cycles, _, flags := analyzer.DetectCycles(seq)

	for _, c := range cycles {
		if c.DurationSeconds < cfg.RelaxedMinCycleDuration || c.DurationSeconds > cfg.RelaxedMaxCycleDuration {
			t.Errorf("Cycle duration %f outside relaxed bounds", c.DurationSeconds)
		}
	}
	if len(cycles) >= 2 && !hasFlag(flags, FlagFallbackDetection) {
		t.Errorf("Fallback chain must be flagged when primary bounds reject cycles, got %v", flags)
	}
}

func TestComputeTiming_WalkingSequence(t *testing.T) {
	analyzer := NewTemporalAnalyzer(DefaultConfig())
	seq := mustSequence(t, walkingFrames(150, 30, 1), 30)

	cycles, events, _ := analyzer.DetectCycles(seq)
	timing := analyzer.ComputeTiming(seq, cycles, events)

	if timing.CadenceStepsPerMin == nil {
		t.Fatal("Expected cadence for walking sequence")
	}
	// 9 контактов пятки за ~4.97с: около 109 шагов в минуту
	if *timing.CadenceStepsPerMin < 90 || *timing.CadenceStepsPerMin > 130 {
		t.Errorf("Expected cadence ~109, got %f", *timing.CadenceStepsPerMin)
	}

	if timing.CycleDurationMean == nil {
		t.Fatal("Expected cycle duration mean")
	}
	if math.Abs(*timing.CycleDurationMean-1.0) > 0.1 {
		t.Errorf("Expected mean cycle duration ~1.0s, got %f", *timing.CycleDurationMean)
	}

	if timing.StepRegularityCV == nil {
		t.Fatal("Expected step regularity CV")
	}
	if *timing.StepRegularityCV > 0.1 {
		t.Errorf("Periodic walk must have low CV, got %f", *timing.StepRegularityCV)
	}
}

func TestComputeTiming_NoData(t *testing.T) {
	analyzer := NewTemporalAnalyzer(DefaultConfig())
	seq := mustSequence(t, staticFrames(150), 30)

	timing := analyzer.ComputeTiming(seq, nil, nil)

	if timing.CadenceStepsPerMin != nil {
		t.Error("Cadence must be nil without events")
	}
	if timing.CycleDurationMean != nil {
		t.Error("Cycle duration must be nil without cycles")
	}
	if timing.DominantFrequencyHz != nil {
		t.Error("Static pose must have no dominant frequency")
	}
}

func TestComputeTiming_AsymmetricWalkHasDominantFrequency(t *testing.T) {
	analyzer := NewTemporalAnalyzer(DefaultConfig())
	// При асимметрии вертикальные траектории ног не компенсируют
	// друг друга и остаточная периодика видна в спектре
	seq := mustSequence(t, walkingFrames(300, 30, 0.4), 30)

	cycles, events, _ := analyzer.DetectCycles(seq)
	timing := analyzer.ComputeTiming(seq, cycles, events)

	if timing.DominantFrequencyHz == nil {
		t.Fatal("Expected dominant frequency for asymmetric walk")
	}
	// Частота цикла одной ноги: 1 Гц
	if math.Abs(*timing.DominantFrequencyHz-1.0) > 0.2 {
		t.Errorf("Expected ~1.0 Hz, got %f", *timing.DominantFrequencyHz)
	}
}

func TestComputeTiming_PhaseDurations(t *testing.T) {
	analyzer := NewTemporalAnalyzer(DefaultConfig())
	seq := mustSequence(t, walkingFrames(300, 30, 1), 30)

	cycles, events, _ := analyzer.DetectCycles(seq)
	if len(cycles) < 4 {
		t.Fatalf("Expected at least 4 cycles, got %d", len(cycles))
	}

	// На чистой ходьбе каждый цикл несет кадр отрыва носка строго
	// внутри своих границ
	for _, c := range cycles {
		if c.ToeOffFrame == nil {
			t.Fatalf("Cycle %d has no toe-off frame", c.CycleID)
		}
		if *c.ToeOffFrame <= c.StartFrame || *c.ToeOffFrame >= c.EndFrame {
			t.Errorf("Cycle %d toe-off frame %d outside (%d, %d)",
				c.CycleID, *c.ToeOffFrame, c.StartFrame, c.EndFrame)
		}
	}

	timing := analyzer.ComputeTiming(seq, cycles, events)

	if timing.StancePhaseDuration == nil {
		t.Fatal("Expected stance phase duration")
	}
	if timing.SwingPhaseDuration == nil {
		t.Fatal("Expected swing phase duration")
	}
	stance := *timing.StancePhaseDuration
	swing := *timing.SwingPhaseDuration
	cycleMean := *timing.CycleDurationMean

	if stance <= 0 || stance >= cycleMean {
		t.Errorf("Stance duration %f must be within (0, %f)", stance, cycleMean)
	}
	if swing <= 0 {
		t.Errorf("Swing duration must be positive, got %f", swing)
	}
	if math.Abs(stance+swing-cycleMean) > 1e-9 {
		t.Errorf("Stance %f + swing %f must equal cycle mean %f", stance, swing, cycleMean)
	}
}

func TestComputeTiming_DoubleSupportOmittedWithoutOverlap(t *testing.T) {
	analyzer := NewTemporalAnalyzer(DefaultConfig())
	// Синусоидальная походка держит стопы строго в противофазе:
	// опорные окна левой и правой ноги не пересекаются, поэтому
	// двойная опора не оценивается, а не подставляется нулем
	seq := mustSequence(t, walkingFrames(300, 30, 1), 30)

	cycles, events, _ := analyzer.DetectCycles(seq)
	timing := analyzer.ComputeTiming(seq, cycles, events)

	if timing.DoubleSupportDuration != nil {
		t.Errorf("Expected no double support estimate, got %f", *timing.DoubleSupportDuration)
	}
}

func TestComputePhases_DoubleSupportFromOverlap(t *testing.T) {
	analyzer := NewTemporalAnalyzer(DefaultConfig())
	leftToeOff, rightToeOff := 12, 20
	cycles := []GaitCycle{
		{Foot: FootLeft, StartFrame: 0, EndFrame: 30, ToeOffFrame: &leftToeOff, DurationSeconds: 1},
		{Foot: FootRight, StartFrame: 10, EndFrame: 40, ToeOffFrame: &rightToeOff, DurationSeconds: 1},
	}

	timing := TimingAnalysis{}
	analyzer.computePhases(&timing, cycles, 1, 30)

	// Опорные окна [0,12] и [10,20] пересекаются на 2 кадра
	if timing.DoubleSupportDuration == nil {
		t.Fatal("Expected double support from overlapping stance windows")
	}
	if math.Abs(*timing.DoubleSupportDuration-2.0/30) > 1e-9 {
		t.Errorf("Expected double support %f, got %f", 2.0/30, *timing.DoubleSupportDuration)
	}
	if math.Abs(*timing.StancePhaseDuration-11.0/30) > 1e-9 {
		t.Errorf("Expected stance %f, got %f", 11.0/30, *timing.StancePhaseDuration)
	}
	if math.Abs(*timing.SwingPhaseDuration-19.0/30) > 1e-9 {
		t.Errorf("Expected swing %f, got %f", 19.0/30, *timing.SwingPhaseDuration)
	}
}
