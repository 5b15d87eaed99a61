package analysis

import (
	"github.com/Krimson/gait-monitory/internal/pose"
	"github.com/Krimson/gait-monitory/internal/signal"
	"gonum.org/v1/gonum/stat"
)

// jointTrack - сглаженная траектория одного сустава с разметкой валидности.
// Кадры с confidence ниже порога не участвуют в агрегатах, но для
// непрерывности сглаживания удерживают последнее валидное значение -
// нулевая позиция никогда не подставляется.
type jointTrack struct {
	xs    []float64 // сглаженные X
	ys    []float64 // сглаженные Y
	valid []bool    // confidence >= порога в исходном кадре

	validFraction  float64
	meanConfidence float64
}

// newJointTrack строит трек сустава. Возвращает nil, если сустав
// отсутствует в формате или ни один кадр не прошел порог confidence.
func newJointTrack(seq *pose.Sequence, joint string, cfg Config) *jointTrack {
	rawXs, rawYs, confs, ok := seq.Series(joint)
	if !ok || len(rawXs) == 0 {
		return nil
	}

	n := len(rawXs)
	valid := make([]bool, n)
	validCount := 0
	confSum := 0.0
	firstValid := -1
	for i, c := range confs {
		if c >= cfg.ConfidenceThreshold {
			valid[i] = true
			validCount++
			if firstValid < 0 {
				firstValid = i
			}
		}
		confSum += c
	}
	if validCount == 0 {
		return nil
	}

	// Удержание последнего валидного значения; ведущие невалидные
	// кадры заполняются первым валидным
	heldXs := make([]float64, n)
	heldYs := make([]float64, n)
	lastX, lastY := rawXs[firstValid], rawYs[firstValid]
	for i := 0; i < n; i++ {
		if valid[i] {
			lastX, lastY = rawXs[i], rawYs[i]
		}
		heldXs[i] = lastX
		heldYs[i] = lastY
	}

	return &jointTrack{
		xs:             signal.MovingAverage(heldXs, cfg.SmoothingWindow),
		ys:             signal.MovingAverage(heldYs, cfg.SmoothingWindow),
		valid:          valid,
		validFraction:  float64(validCount) / float64(n),
		meanConfidence: confSum / float64(n),
	}
}

// usable - достаточно ли валидных кадров, чтобы признаки сустава
// можно было считать без загрязнения шумом
func (t *jointTrack) usable(cfg Config) bool {
	return t != nil && t.validFraction >= cfg.MinValidFraction
}

// heights возвращает вертикальную позицию "вверх положительно".
// Экранная ось Y растет вниз, поэтому знак инвертируется.
func (t *jointTrack) heights() []float64 {
	hs := make([]float64, len(t.ys))
	for i, y := range t.ys {
		hs[i] = -y
	}
	return hs
}

// buildTracks строит треки всех суставов формата
func buildTracks(seq *pose.Sequence, cfg Config) map[string]*jointTrack {
	tracks := make(map[string]*jointTrack)
	for _, name := range seq.Format().JointNames() {
		tracks[name] = newJointTrack(seq, name, cfg)
	}
	return tracks
}

// stdOrZero - стандартное отклонение с защитой от NaN на коротких выборках
func stdOrZero(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}
