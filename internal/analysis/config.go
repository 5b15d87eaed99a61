package analysis

// DetectionMethod определяет стратегию детекции шаговых событий
type DetectionMethod string

const (
	MethodHeelStrike DetectionMethod = "heel_strike"
	MethodToeOff     DetectionMethod = "toe_off"
	MethodCombined   DetectionMethod = "combined"
)

// Valid проверяет, что метод известен
func (m DetectionMethod) Valid() bool {
	switch m {
	case MethodHeelStrike, MethodToeOff, MethodCombined:
		return true
	}
	return false
}

// Config содержит параметры всех трех анализаторов.
// Фиксируется при создании анализатора, между вызовами не мутирует.
type Config struct {
	// Препроцессинг
	SmoothingWindow     int     // окно скользящего среднего, кадров
	ConfidenceThreshold float64 // минимальная confidence точки для участия в агрегатах
	MinValidFraction    float64 // минимальная доля валидных кадров сустава, иначе сустав исключается

	// Детекция циклов
	DetectionMethod         DetectionMethod
	MinCycleDuration        float64 // секунды
	MaxCycleDuration        float64
	RelaxedMinCycleDuration float64 // ослабленные границы для fallback
	RelaxedMaxCycleDuration float64

	// Спектральный анализ
	GaitBandMinHz float64
	GaitBandMaxHz float64

	// Стабильность
	StationaryThreshold float64 // макс. смещение CoM за кадр для режима "квазистатика"

	// Симметрия
	SymmetricThreshold  float64 // индекс ниже - symmetric
	MildThreshold       float64 // индекс ниже - mildly_asymmetric
	ModerateThreshold   float64 // индекс ниже - moderately_asymmetric, выше - severely
	TopAsymmetricJoints int

	// Оценка каденса для итогового уровня
	CadenceNormalMin float64
	CadenceNormalMax float64
}

// DefaultConfig возвращает конфигурацию с клиническими значениями по умолчанию
func DefaultConfig() Config {
	return Config{
		SmoothingWindow:     5,
		ConfidenceThreshold: 0.5,
		MinValidFraction:    0.5,

		DetectionMethod:         MethodHeelStrike,
		MinCycleDuration:        0.8,
		MaxCycleDuration:        2.5,
		RelaxedMinCycleDuration: 0.6,
		RelaxedMaxCycleDuration: 3.0,

		GaitBandMinHz: 0.5,
		GaitBandMaxHz: 3.0,

		StationaryThreshold: 2.0,

		SymmetricThreshold:  0.10,
		MildThreshold:       0.20,
		ModerateThreshold:   0.30,
		TopAsymmetricJoints: 3,

		CadenceNormalMin: 100,
		CadenceNormalMax: 130,
	}
}
