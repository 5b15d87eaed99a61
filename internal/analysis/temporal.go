package analysis

import (
	"log"
	"sort"

	"github.com/Krimson/gait-monitory/internal/pose"
	"github.com/Krimson/gait-monitory/internal/signal"
	"gonum.org/v1/gonum/stat"
)

// TemporalAnalyzer детектирует шаговые события (контакт пятки, отрыв носка),
// сегментирует циклы шага и считает временные параметры походки.
// На плохих данных не падает: при нехватке циклов перебирает методы
// детекции по цепочке fallback и в худшем случае возвращает пустой
// список с флагом качества.
type TemporalAnalyzer struct {
	cfg Config
}

// NewTemporalAnalyzer создает анализатор с фиксированной конфигурацией
func NewTemporalAnalyzer(cfg Config) *TemporalAnalyzer {
	return &TemporalAnalyzer{cfg: cfg}
}

// candidate - кандидат события во внутренних координатах:
// pos - позиция в последовательности, frame - реальный индекс кадра
type candidate struct {
	pos        int
	frame      int
	confidence float64
}

type methodAttempt struct {
	method DetectionMethod
	minDur float64
	maxDur float64
}

// DetectCycles находит циклы шага. Возвращает циклы, принятые события
// и флаги качества. Никогда не возвращает ошибку.
func (a *TemporalAnalyzer) DetectCycles(seq *pose.Sequence) ([]GaitCycle, []GaitEvent, []string) {
	if seq.Len() < 3 {
		return []GaitCycle{}, nil, []string{FlagInsufficientFrames, FlagTooFewCycles}
	}

	tracks := map[Foot]*jointTrack{
		FootLeft:  newJointTrack(seq, "left_ankle", a.cfg),
		FootRight: newJointTrack(seq, "right_ankle", a.cfg),
	}

	// Цепочка fallback: настроенный метод, затем heel_strike, toe_off,
	// и в конце combined с ослабленными границами длительности
	attempts := []methodAttempt{
		{a.cfg.DetectionMethod, a.cfg.MinCycleDuration, a.cfg.MaxCycleDuration},
		{MethodHeelStrike, a.cfg.MinCycleDuration, a.cfg.MaxCycleDuration},
		{MethodToeOff, a.cfg.MinCycleDuration, a.cfg.MaxCycleDuration},
		{MethodCombined, a.cfg.RelaxedMinCycleDuration, a.cfg.RelaxedMaxCycleDuration},
	}

	var primaryEvents []GaitEvent
	tried := map[DetectionMethod]bool{}
	attemptNum := 0
	for _, attempt := range attempts {
		if tried[attempt.method] && attempt.method != MethodCombined {
			continue
		}
		tried[attempt.method] = true
		attemptNum++

		cycles, events := a.detectWithMethod(seq, tracks, attempt.method, attempt.minDur, attempt.maxDur)
		if attemptNum == 1 {
			primaryEvents = events
		}

		if len(cycles) >= 2 {
			var flags []string
			if attemptNum > 1 {
				log.Printf("[WARN] [GAIT] Primary detection method %s yielded too few cycles, used %s",
					a.cfg.DetectionMethod, attempt.method)
				flags = append(flags, FlagFallbackDetection)
			}
			return finalizeCycles(cycles), sortEvents(events), flags
		}
	}

	log.Printf("[WARN] [GAIT] All detection methods yielded fewer than 2 cycles")
	return []GaitCycle{}, sortEvents(primaryEvents), []string{FlagTooFewCycles}
}

// detectWithMethod выполняет один проход детекции выбранным методом
func (a *TemporalAnalyzer) detectWithMethod(seq *pose.Sequence, tracks map[Foot]*jointTrack, method DetectionMethod, minDur, maxDur float64) ([]GaitCycle, []GaitEvent) {
	var cycles []GaitCycle
	var events []GaitEvent

	for _, foot := range []Foot{FootLeft, FootRight} {
		track := tracks[foot]
		if !track.usable(a.cfg) {
			continue
		}

		heelStrikes := a.heelStrikeCandidates(seq, track)
		toeOffs := a.toeOffCandidates(seq, track)

		if method == MethodCombined {
			heelStrikes, toeOffs = a.crossValidate(heelStrikes, toeOffs, seq.FPS(), minDur, maxDur)
		}

		bounding := heelStrikes
		boundingType := EventHeelStrike
		if method == MethodToeOff {
			bounding = toeOffs
			boundingType = EventToeOff
		}

		for _, c := range bounding {
			events = append(events, GaitEvent{
				FrameIndex: c.frame,
				Foot:       foot,
				Type:       boundingType,
				Confidence: c.confidence,
			})
		}
		if boundingType == EventHeelStrike {
			for _, c := range toeOffs {
				events = append(events, GaitEvent{
					FrameIndex: c.frame,
					Foot:       foot,
					Type:       EventToeOff,
					Confidence: c.confidence,
				})
			}
		}

		cycles = append(cycles, a.segmentCycles(foot, bounding, toeOffs, boundingType, seq.FPS(), minDur, maxDur)...)
	}

	return cycles, events
}

// heelStrikeCandidates ищет контакты пятки: локальные минимумы высоты
// голеностопа, подтвержденные переходом вертикальной скорости из
// отрицательной в положительную (момент касания опоры)
func (a *TemporalAnalyzer) heelStrikeCandidates(seq *pose.Sequence, track *jointTrack) []candidate {
	heights := track.heights()
	velocity := signal.Diff(heights, seq.FPS())
	noise := signal.ResidualStd(heights, a.cfg.SmoothingWindow)
	radius := a.cfg.SmoothingWindow
	if radius < 2 {
		radius = 2
	}

	var out []candidate
	for _, m := range signal.LocalMinima(heights) {
		if m.Prominence <= 0 {
			continue
		}
		if !signal.HasUpwardCrossing(velocity, m.Index, radius) {
			continue
		}
		out = append(out, candidate{
			pos:        m.Index,
			frame:      seq.Frame(m.Index).Index,
			confidence: m.Prominence / (m.Prominence + 2*noise),
		})
	}
	return out
}

// toeOffCandidates ищет отрывы носка: пики горизонтального ускорения
// в фазе толчка, подтвержденные последующим подъемом голеностопа
func (a *TemporalAnalyzer) toeOffCandidates(seq *pose.Sequence, track *jointTrack) []candidate {
	n := len(track.xs)
	if n < 4 {
		return nil
	}

	// Направление ходьбы определяется по суммарному смещению,
	// чтобы толчок всегда давал положительный пик ускорения
	forward := make([]float64, n)
	copy(forward, track.xs)
	if track.xs[n-1] < track.xs[0] {
		for i := range forward {
			forward[i] = -forward[i]
		}
	}

	fps := seq.FPS()
	velocity := signal.Diff(forward, fps)
	accel := signal.Diff(velocity, fps) // accel[i] относится к позиции i+1

	heights := track.heights()
	riseWindow := int(0.25 * fps)
	if riseWindow < 2 {
		riseWindow = 2
	}
	noise := signal.ResidualStd(accel, a.cfg.SmoothingWindow)

	var out []candidate
	for _, m := range signal.LocalMaxima(accel) {
		if m.Prominence <= 0 {
			continue
		}
		pos := m.Index + 1

		rises := false
		for k := 1; k <= riseWindow && pos+k < n; k++ {
			if heights[pos+k] > heights[pos] {
				rises = true
				break
			}
		}
		if !rises {
			continue
		}

		out = append(out, candidate{
			pos:        pos,
			frame:      seq.Frame(pos).Index,
			confidence: m.Prominence / (m.Prominence + 2*noise),
		})
	}
	return out
}

// crossValidate отбрасывает события, у которых нет правдоподобной пары:
// контакт пятки без последующего отрыва носка в окне ожидаемой фазы
// опоры (и наоборот) считается ложным
func (a *TemporalAnalyzer) crossValidate(heelStrikes, toeOffs []candidate, fps, minDur, maxDur float64) ([]candidate, []candidate) {
	stanceMin := 0.2 * minDur
	stanceMax := 0.8 * maxDur

	paired := func(from candidate, others []candidate, after bool) bool {
		for _, o := range others {
			dt := float64(o.frame-from.frame) / fps
			if !after {
				dt = -dt
			}
			if dt >= stanceMin && dt <= stanceMax {
				return true
			}
		}
		return false
	}

	var hs []candidate
	for _, h := range heelStrikes {
		if paired(h, toeOffs, true) {
			hs = append(hs, h)
		}
	}
	var to []candidate
	for _, t := range toeOffs {
		if paired(t, heelStrikes, false) {
			to = append(to, t)
		}
	}
	return hs, to
}

// segmentCycles строит циклы между последовательными событиями одной ноги.
// Циклы с длительностью вне [minDur, maxDur] отбрасываются с записью в лог,
// не прерывая детекцию остальных.
func (a *TemporalAnalyzer) segmentCycles(foot Foot, bounding, toeOffs []candidate, boundingType EventType, fps, minDur, maxDur float64) []GaitCycle {
	var cycles []GaitCycle
	for i := 0; i+1 < len(bounding); i++ {
		start, end := bounding[i], bounding[i+1]
		duration := float64(end.frame-start.frame) / fps
		if duration < minDur || duration > maxDur {
			log.Printf("[WARN] [GAIT] Discarding out-of-range cycle: foot=%s duration=%.3fs bounds=[%.2f,%.2f]",
				foot, duration, minDur, maxDur)
			continue
		}

		cycle := GaitCycle{
			Foot:            foot,
			StartFrame:      start.frame,
			EndFrame:        end.frame,
			DurationSeconds: duration,
			Confidence:      (start.confidence + end.confidence) / 2,
		}

		if boundingType == EventHeelStrike {
			for _, t := range toeOffs {
				if t.frame > start.frame && t.frame < end.frame {
					frame := t.frame
					cycle.ToeOffFrame = &frame
					break
				}
			}
		}

		cycles = append(cycles, cycle)
	}
	return cycles
}

// finalizeCycles сортирует циклы по началу и назначает идентификаторы
func finalizeCycles(cycles []GaitCycle) []GaitCycle {
	sort.Slice(cycles, func(i, j int) bool {
		if cycles[i].StartFrame != cycles[j].StartFrame {
			return cycles[i].StartFrame < cycles[j].StartFrame
		}
		return cycles[i].Foot < cycles[j].Foot
	})
	for i := range cycles {
		cycles[i].CycleID = i + 1
	}
	return cycles
}

func sortEvents(events []GaitEvent) []GaitEvent {
	sort.Slice(events, func(i, j int) bool {
		if events[i].FrameIndex != events[j].FrameIndex {
			return events[i].FrameIndex < events[j].FrameIndex
		}
		if events[i].Foot != events[j].Foot {
			return events[i].Foot < events[j].Foot
		}
		return events[i].Type < events[j].Type
	})
	return events
}

// ComputeTiming считает временные параметры по принятым циклам и событиям
func (a *TemporalAnalyzer) ComputeTiming(seq *pose.Sequence, cycles []GaitCycle, events []GaitEvent) TimingAnalysis {
	timing := TimingAnalysis{}

	heelStrikeCount := 0
	toeOffCount := 0
	for _, e := range events {
		switch e.Type {
		case EventHeelStrike:
			heelStrikeCount++
		case EventToeOff:
			toeOffCount++
		}
	}
	steps := heelStrikeCount
	if steps == 0 {
		steps = toeOffCount
	}

	if duration := seq.DurationSec(); duration > 0 && steps > 0 {
		timing.CadenceStepsPerMin = float64Ptr(60 * float64(steps) / duration)
	}

	if len(cycles) > 0 {
		durations := make([]float64, len(cycles))
		for i, c := range cycles {
			durations[i] = c.DurationSeconds
		}
		mean := stat.Mean(durations, nil)
		std := stdOrZero(durations)
		timing.CycleDurationMean = float64Ptr(mean)
		timing.CycleDurationStd = float64Ptr(std)
		if mean > 0 {
			timing.StepRegularityCV = float64Ptr(std / mean)
		}

		a.computePhases(&timing, cycles, mean, seq.FPS())
	}

	a.computeDominantFrequency(&timing, seq)

	return timing
}

// computePhases оценивает фазы опоры и переноса, а также двойную опору
// по перекрытию опорных интервалов противоположных ног
func (a *TemporalAnalyzer) computePhases(timing *TimingAnalysis, cycles []GaitCycle, cycleMean, fps float64) {
	var stances []float64
	intervals := map[Foot][][2]int{}
	for _, c := range cycles {
		if c.ToeOffFrame == nil {
			continue
		}
		stances = append(stances, float64(*c.ToeOffFrame-c.StartFrame)/fps)
		intervals[c.Foot] = append(intervals[c.Foot], [2]int{c.StartFrame, *c.ToeOffFrame})
	}
	if len(stances) == 0 {
		return
	}

	stanceMean := stat.Mean(stances, nil)
	timing.StancePhaseDuration = float64Ptr(stanceMean)
	timing.SwingPhaseDuration = float64Ptr(cycleMean - stanceMean)

	var overlaps []float64
	for _, left := range intervals[FootLeft] {
		for _, right := range intervals[FootRight] {
			lo := left[0]
			if right[0] > lo {
				lo = right[0]
			}
			hi := left[1]
			if right[1] < hi {
				hi = right[1]
			}
			if hi > lo {
				overlaps = append(overlaps, float64(hi-lo)/fps)
			}
		}
	}
	if len(overlaps) > 0 {
		timing.DoubleSupportDuration = float64Ptr(stat.Mean(overlaps, nil))
	}
}

// computeDominantFrequency ищет спектральный пик вертикальной траектории
// голеностопов в правдоподобной полосе частот походки, отсекая
// высокочастотный шум трекинга
func (a *TemporalAnalyzer) computeDominantFrequency(timing *TimingAnalysis, seq *pose.Sequence) {
	var combined []float64
	count := 0
	for _, joint := range []string{"left_ankle", "right_ankle"} {
		track := newJointTrack(seq, joint, a.cfg)
		if !track.usable(a.cfg) {
			continue
		}
		heights := track.heights()
		if combined == nil {
			combined = heights
		} else {
			for i := range combined {
				combined[i] += heights[i]
			}
		}
		count++
	}
	if count == 0 {
		return
	}
	for i := range combined {
		combined[i] /= float64(count)
	}

	if freq, ok := signal.DominantFrequency(combined, seq.FPS(), a.cfg.GaitBandMinHz, a.cfg.GaitBandMaxHz); ok {
		timing.DominantFrequencyHz = float64Ptr(freq)
	}
}
