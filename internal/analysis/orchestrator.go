package analysis

import (
	"log"
	"sort"

	"github.com/Krimson/gait-monitory/internal/pose"
)

// Analyzer - главная точка входа анализа походки. Оркестрирует
// экстракцию признаков, детекцию циклов и анализ симметрии, сводит
// их выводы в клиническую оценку. На одной и той же последовательности
// с одной конфигурацией всегда выдает идентичный результат.
type Analyzer struct {
	cfg      Config
	features *FeatureExtractor
	temporal *TemporalAnalyzer
	symmetry *SymmetryAnalyzer
}

// NewAnalyzer создает анализатор. Неизвестный метод детекции
// заменяется методом по умолчанию с предупреждением в логе.
func NewAnalyzer(cfg Config) *Analyzer {
	if !cfg.DetectionMethod.Valid() {
		log.Printf("[WARN] [GAIT] Unknown detection method %q, using %s",
			cfg.DetectionMethod, MethodHeelStrike)
		cfg.DetectionMethod = MethodHeelStrike
	}
	return &Analyzer{
		cfg:      cfg,
		features: NewFeatureExtractor(cfg),
		temporal: NewTemporalAnalyzer(cfg),
		symmetry: NewSymmetryAnalyzer(cfg),
	}
}

// Analyze выполняет полный анализ последовательности. Никогда не
// возвращает ошибку: деградация данных отражается во флагах качества
// и понижает confidence итоговой сводки.
func (a *Analyzer) Analyze(seq *pose.Sequence) *Result {
	features, featureFlags := a.features.Extract(seq)
	cycles, events, cycleFlags := a.temporal.DetectCycles(seq)
	timing := a.temporal.ComputeTiming(seq, cycles, events)
	symmetry, symmetryFlags := a.symmetry.Analyze(seq, features)

	var flags []string
	flags = append(flags, featureFlags...)
	flags = append(flags, cycleFlags...)
	flags = append(flags, symmetryFlags...)
	if seq.MeanConfidence() < a.cfg.ConfidenceThreshold {
		flags = append(flags, FlagLowMeanConfidence)
	}
	flags = normalizeFlags(flags)

	return &Result{
		Features:     features,
		GaitCycles:   cycles,
		Timing:       timing,
		Symmetry:     symmetry,
		Summary:      a.summarize(features, timing, symmetry, flags),
		QualityFlags: flags,
	}
}

// ===== Итоговая оценка =====

var levelRank = map[AssessmentLevel]int{
	LevelGood:     0,
	LevelModerate: 1,
	LevelPoor:     2,
}

// summarize сводит выводы анализаторов в итоговый уровень.
// Каждый доступный показатель голосует своим уровнем, побеждает
// худший голос. Без единого голоса уровень - moderate.
func (a *Analyzer) summarize(features FeatureVector, timing TimingAnalysis, symmetry SymmetryResult, flags []string) Summary {
	var votes []AssessmentLevel

	switch symmetry.Classification {
	case SymmetryClassSymmetric:
		votes = append(votes, LevelGood)
	case SymmetryClassMild:
		votes = append(votes, LevelModerate)
	case SymmetryClassModerate, SymmetryClassSevere:
		votes = append(votes, LevelPoor)
	}

	if timing.CadenceStepsPerMin != nil {
		votes = append(votes, a.cadenceVote(*timing.CadenceStepsPerMin))
	}

	if stability, ok := features["com_stability_index"]; ok {
		switch {
		case stability < 0.6:
			votes = append(votes, LevelGood)
		case stability < 1.2:
			votes = append(votes, LevelModerate)
		default:
			votes = append(votes, LevelPoor)
		}
	}

	level := LevelModerate
	if len(votes) > 0 {
		level = votes[0]
		for _, v := range votes[1:] {
			if levelRank[v] > levelRank[level] {
				level = v
			}
		}
	}

	return Summary{
		Level:           level,
		Confidence:      confidenceFromFlags(flags),
		Recommendations: a.recommendations(level, timing, symmetry, flags),
	}
}

// cadenceVote оценивает каденс: нормальный диапазон - good, умеренное
// отклонение (до 15 шагов/мин от границы) - moderate, дальше - poor
func (a *Analyzer) cadenceVote(cadence float64) AssessmentLevel {
	switch {
	case cadence >= a.cfg.CadenceNormalMin && cadence <= a.cfg.CadenceNormalMax:
		return LevelGood
	case cadence >= a.cfg.CadenceNormalMin-15 && cadence <= a.cfg.CadenceNormalMax+15:
		return LevelModerate
	default:
		return LevelPoor
	}
}

// confidenceFromFlags: чем больше флагов качества, тем ниже уверенность
func confidenceFromFlags(flags []string) ResultConfidence {
	switch {
	case len(flags) == 0:
		return ConfidenceHigh
	case len(flags) <= 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// recommendations формирует текстовые рекомендации по найденным отклонениям
func (a *Analyzer) recommendations(level AssessmentLevel, timing TimingAnalysis, symmetry SymmetryResult, flags []string) []string {
	var recs []string

	switch symmetry.Classification {
	case SymmetryClassMild:
		recs = append(recs, "Mild bilateral asymmetry detected; consider targeted gait re-training exercises.")
	case SymmetryClassModerate, SymmetryClassSevere:
		recs = append(recs, "Significant bilateral asymmetry detected; clinical gait assessment is recommended.")
	}

	if timing.CadenceStepsPerMin != nil {
		switch {
		case *timing.CadenceStepsPerMin < a.cfg.CadenceNormalMin:
			recs = append(recs, "Cadence is below the normal range; check walking speed and endurance.")
		case *timing.CadenceStepsPerMin > a.cfg.CadenceNormalMax:
			recs = append(recs, "Cadence is above the normal range; verify recording frame rate and walking pace.")
		}
	}

	if hasFlag(flags, FlagLowMeanConfidence) || hasFlag(flags, FlagLowConfidenceJoints) {
		recs = append(recs, "Keypoint confidence is low; consider re-recording with better camera placement and lighting.")
	}
	if hasFlag(flags, FlagTooFewCycles) {
		recs = append(recs, "Too few gait cycles detected; a longer walking bout improves metric reliability.")
	}

	if len(recs) == 0 && level == LevelGood {
		recs = append(recs, "Gait parameters are within normal ranges.")
	}
	if recs == nil {
		recs = []string{}
	}
	return recs
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

// normalizeFlags убирает дубликаты и сортирует флаги для детерминизма
func normalizeFlags(flags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
