package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/Krimson/gait-monitory/internal/pose"
)

// SymmetryAnalyzer оценивает билатеральную симметрию движения.
// Для каждой пары симметричных суставов сравнивается скалярный агрегат
// левой и правой стороны: для коленей, бедер и голеностопов - размах
// суставного угла из вектора признаков, для остальных пар - средняя
// скорость сустава. Индекс пары = |L-R| / ((L+R)/2), всегда >= 0.
type SymmetryAnalyzer struct {
	cfg Config
}

// NewSymmetryAnalyzer создает анализатор с фиксированной конфигурацией
func NewSymmetryAnalyzer(cfg Config) *SymmetryAnalyzer {
	return &SymmetryAnalyzer{cfg: cfg}
}

// Пары, для которых предпочитается размах суставного угла
var angleRangePairs = map[string]bool{
	"knee":  true,
	"hip":   true,
	"ankle": true,
}

// Analyze возвращает результат анализа симметрии и флаги качества.
// Если ни одна пара не дала измерения, классификация - unavailable,
// а общий индекс отсутствует.
func (a *SymmetryAnalyzer) Analyze(seq *pose.Sequence, fv FeatureVector) (SymmetryResult, []string) {
	result := SymmetryResult{
		PerJoint:             map[string]float64{},
		MostAsymmetricJoints: []JointAsymmetry{},
	}

	tracks := buildTracks(seq, a.cfg)

	weightedSum := 0.0
	weightTotal := 0.0
	for _, pair := range seq.Format().PairedJoints() {
		left, leftOK := a.pairAggregate(pair.Name, pair.Left, "left", tracks, fv, seq.FPS())
		right, rightOK := a.pairAggregate(pair.Name, pair.Right, "right", tracks, fv, seq.FPS())
		if !leftOK || !rightOK {
			continue
		}

		index := symmetryIndex(left, right)
		result.PerJoint[pair.Name] = index

		// Пары с уверенным трекингом весят больше в общем индексе
		weight := pairWeight(tracks[pair.Left], tracks[pair.Right])
		weightedSum += index * weight
		weightTotal += weight
	}

	if weightTotal <= 0 {
		result.Classification = SymmetryClassUnavailable
		return result, []string{FlagSymmetryUnavailable}
	}

	overall := weightedSum / weightTotal
	result.OverallSymmetryIndex = float64Ptr(overall)
	result.Classification = a.classify(overall)
	result.MostAsymmetricJoints = topAsymmetric(result.PerJoint, a.cfg.TopAsymmetricJoints)

	return result, nil
}

// pairAggregate возвращает скалярный агрегат одной стороны пары
func (a *SymmetryAnalyzer) pairAggregate(pairName, joint, side string, tracks map[string]*jointTrack, fv FeatureVector, fps float64) (float64, bool) {
	if angleRangePairs[pairName] {
		if v, ok := fv[fmt.Sprintf("%s_%s_angle_range", side, pairName)]; ok {
			return v, true
		}
	}
	return meanSpeed(tracks[joint], a.cfg, fps)
}

// meanSpeed - средняя скорость сустава по валидным соседним кадрам
func meanSpeed(track *jointTrack, cfg Config, fps float64) (float64, bool) {
	if !track.usable(cfg) {
		return 0, false
	}
	total := 0.0
	count := 0
	for i := 1; i < len(track.xs); i++ {
		if !track.valid[i-1] || !track.valid[i] {
			continue
		}
		total += math.Hypot(track.xs[i]-track.xs[i-1], track.ys[i]-track.ys[i-1]) * fps
		count++
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

// symmetryIndex - нормированная разница сторон. Когда обе стороны
// численно нулевые, движение идентично и индекс равен нулю.
func symmetryIndex(left, right float64) float64 {
	denom := (left + right) / 2
	if math.Abs(denom) < 1e-12 {
		return 0
	}
	return math.Abs(left-right) / denom
}

func pairWeight(left, right *jointTrack) float64 {
	if left == nil || right == nil {
		return 1
	}
	w := (left.meanConfidence + right.meanConfidence) / 2
	if w <= 0 {
		return 1e-6
	}
	return w
}

// classify переводит общий индекс в класс. Граничное значение
// относится к более тяжелому классу.
func (a *SymmetryAnalyzer) classify(overall float64) SymmetryClass {
	switch {
	case overall < a.cfg.SymmetricThreshold:
		return SymmetryClassSymmetric
	case overall < a.cfg.MildThreshold:
		return SymmetryClassMild
	case overall < a.cfg.ModerateThreshold:
		return SymmetryClassModerate
	default:
		return SymmetryClassSevere
	}
}

// topAsymmetric возвращает limit пар с наибольшим индексом асимметрии.
// При равных индексах порядок стабилизируется именем пары.
func topAsymmetric(perJoint map[string]float64, limit int) []JointAsymmetry {
	out := make([]JointAsymmetry, 0, len(perJoint))
	for joint, index := range perJoint {
		out = append(out, JointAsymmetry{Joint: joint, Index: index})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index > out[j].Index
		}
		return out[i].Joint < out[j].Joint
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
