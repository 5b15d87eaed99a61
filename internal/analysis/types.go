package analysis

// FeatureVector - плоский набор признаков имя->значение.
// Признак, который невозможно посчитать на имеющихся данных,
// отсутствует в наборе, а не записывается нулем или NaN.
type FeatureVector map[string]float64

// Флаги качества данных. Поднимаются анализаторами вместо ошибок
// и понижают итоговую confidence результата.
const (
	FlagInsufficientFrames  = "insufficient_frames"
	FlagLowConfidenceJoints = "low_confidence_joints"
	FlagTooFewCycles        = "too_few_cycles"
	FlagFallbackDetection   = "fallback_detection_method"
	FlagLowMeanConfidence   = "low_mean_keypoint_confidence"
	FlagSymmetryUnavailable = "symmetry_unavailable"
)

// Foot обозначает сторону тела
type Foot string

const (
	FootLeft  Foot = "left"
	FootRight Foot = "right"
)

// EventType - тип шагового события
type EventType string

const (
	EventHeelStrike EventType = "heel_strike"
	EventToeOff     EventType = "toe_off"
)

// GaitEvent - обнаруженное шаговое событие
type GaitEvent struct {
	FrameIndex int       `json:"frame_index"`
	Foot       Foot      `json:"foot"`
	Type       EventType `json:"type"`
	Confidence float64   `json:"confidence"`
}

// GaitCycle - один полный цикл шага: от контакта пятки до следующего
// контакта той же ноги. Циклы с длительностью вне настроенных границ
// не материализуются вовсе.
type GaitCycle struct {
	CycleID         int     `json:"cycle_id"`
	Foot            Foot    `json:"foot"`
	StartFrame      int     `json:"start_frame"`
	EndFrame        int     `json:"end_frame"`
	ToeOffFrame     *int    `json:"toe_off_frame,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
	Confidence      float64 `json:"confidence"`
}

// TimingAnalysis - временные параметры походки. nil означает,
// что параметр невозможно было вычислить на имеющихся данных.
type TimingAnalysis struct {
	CadenceStepsPerMin    *float64 `json:"cadence_steps_per_minute,omitempty"`
	CycleDurationMean     *float64 `json:"cycle_duration_mean,omitempty"`
	CycleDurationStd      *float64 `json:"cycle_duration_std,omitempty"`
	StancePhaseDuration   *float64 `json:"stance_phase_duration,omitempty"`
	SwingPhaseDuration    *float64 `json:"swing_phase_duration,omitempty"`
	DoubleSupportDuration *float64 `json:"double_support_duration,omitempty"`
	StepRegularityCV      *float64 `json:"step_regularity_cv,omitempty"`
	DominantFrequencyHz   *float64 `json:"dominant_frequency_hz,omitempty"`
}

// SymmetryClass - классификация билатеральной симметрии
type SymmetryClass string

const (
	SymmetryClassSymmetric   SymmetryClass = "symmetric"
	SymmetryClassMild        SymmetryClass = "mildly_asymmetric"
	SymmetryClassModerate    SymmetryClass = "moderately_asymmetric"
	SymmetryClassSevere      SymmetryClass = "severely_asymmetric"
	SymmetryClassUnavailable SymmetryClass = "unavailable"
)

// JointAsymmetry - сустав с его индексом асимметрии
type JointAsymmetry struct {
	Joint string  `json:"joint"`
	Index float64 `json:"symmetry_index"`
}

// SymmetryResult - результат анализа билатеральной симметрии.
// Индекс всегда >= 0; ноль означает численно идентичные агрегаты
// левой и правой стороны.
type SymmetryResult struct {
	PerJoint             map[string]float64 `json:"per_joint"`
	OverallSymmetryIndex *float64           `json:"overall_symmetry_index,omitempty"`
	Classification       SymmetryClass      `json:"classification"`
	MostAsymmetricJoints []JointAsymmetry   `json:"most_asymmetric_joints"`
}

// AssessmentLevel - итоговый качественный уровень походки
type AssessmentLevel string

const (
	LevelGood     AssessmentLevel = "good"
	LevelModerate AssessmentLevel = "moderate"
	LevelPoor     AssessmentLevel = "poor"
)

// ResultConfidence - уверенность в результате, производная от флагов качества
type ResultConfidence string

const (
	ConfidenceHigh   ResultConfidence = "high"
	ConfidenceMedium ResultConfidence = "medium"
	ConfidenceLow    ResultConfidence = "low"
)

// Summary - итоговая клиническая сводка
type Summary struct {
	Level           AssessmentLevel  `json:"level"`
	Confidence      ResultConfidence `json:"confidence"`
	Recommendations []string         `json:"recommendations"`
}

// Result - полный результат анализа одной последовательности.
// Создается заново на каждый вызов, после возврата не мутирует.
type Result struct {
	Features     FeatureVector  `json:"features"`
	GaitCycles   []GaitCycle    `json:"gait_cycles"`
	Timing       TimingAnalysis `json:"timing_analysis"`
	Symmetry     SymmetryResult `json:"symmetry_analysis"`
	Summary      Summary        `json:"summary"`
	QualityFlags []string       `json:"quality_flags"`
}

func float64Ptr(v float64) *float64 {
	return &v
}
