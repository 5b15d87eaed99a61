package analysis

import (
	"fmt"
	"math"

	"github.com/Krimson/gait-monitory/internal/pose"
	"github.com/Krimson/gait-monitory/internal/signal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FeatureExtractor вычисляет агрегированный вектор признаков по
// последовательности позы: кинематика, суставные углы, шаговые и
// стабилометрические признаки. Никогда не возвращает ошибку на
// разреженных данных - неподдержанные признаки опускаются, а проблема
// отражается во флагах качества.
type FeatureExtractor struct {
	cfg Config
}

// NewFeatureExtractor создает экстрактор с фиксированной конфигурацией
func NewFeatureExtractor(cfg Config) *FeatureExtractor {
	return &FeatureExtractor{cfg: cfg}
}

// Extract возвращает вектор признаков и флаги качества данных
func (e *FeatureExtractor) Extract(seq *pose.Sequence) (FeatureVector, []string) {
	fv := make(FeatureVector)
	var flags []string

	if seq.Len() < 2 {
		return fv, []string{FlagInsufficientFrames}
	}

	tracks := buildTracks(seq, e.cfg)

	omitted := 0
	for _, name := range seq.Format().JointNames() {
		if !tracks[name].usable(e.cfg) {
			omitted++
		}
	}
	if omitted > 0 {
		flags = append(flags, FlagLowConfidenceJoints)
	}

	e.extractKinematics(seq, tracks, fv, &flags)
	e.extractJointAngles(seq, tracks, fv)
	e.extractStride(seq, tracks, fv)
	e.extractStability(seq, tracks, fv)

	return fv, flags
}

// ===== Кинематика =====

// extractKinematics считает скорости, ускорения и рывок по всем пригодным
// суставам. Производные берутся внутри непрерывных валидных отрезков трека,
// чтобы скачок через удержанный кадр не попадал в агрегаты.
func (e *FeatureExtractor) extractKinematics(seq *pose.Sequence, tracks map[string]*jointTrack, fv FeatureVector, flags *[]string) {
	fps := seq.FPS()

	var velocities, accelerations, jerks []float64

	for _, name := range seq.Format().JointNames() {
		track := tracks[name]
		if !track.usable(e.cfg) {
			continue
		}

		for _, run := range validRuns(track.valid) {
			if run.length() < 2 {
				continue
			}
			vel := make([]float64, 0, run.length()-1)
			for i := run.start; i < run.end; i++ {
				dx := track.xs[i+1] - track.xs[i]
				dy := track.ys[i+1] - track.ys[i]
				vel = append(vel, math.Hypot(dx, dy)*fps)
			}
			velocities = append(velocities, vel...)

			acc := signal.Diff(vel, fps)
			accelerations = append(accelerations, acc...)
			jerks = append(jerks, signal.Diff(acc, fps)...)
		}
	}

	if len(velocities) > 0 {
		putAggregates(fv, "velocity", velocities)
	}
	// Последовательности короче 3 валидных кадров не дают ускорения -
	// признак опускается, а не обнуляется
	if len(accelerations) > 0 {
		putAggregates(fv, "acceleration", accelerations)
	} else {
		*flags = appendUnique(*flags, FlagInsufficientFrames)
	}
	if len(jerks) > 0 {
		putAggregates(fv, "jerk", jerks)
	}
}

// ===== Суставные углы =====

// Тройки для вершинных углов: вершина и два соседних сустава
var angleTriples = []struct {
	feature string
	a       string // первый луч
	vertex  string
	b       string // второй луч
}{
	{"left_knee_angle", "left_hip", "left_knee", "left_ankle"},
	{"right_knee_angle", "right_hip", "right_knee", "right_ankle"},
	{"left_hip_angle", "left_shoulder", "left_hip", "left_knee"},
	{"right_hip_angle", "right_shoulder", "right_hip", "right_knee"},
}

// Голеностоп измеряется не тройкой, а наклоном голени к вертикали
var ankleAngles = []struct {
	feature string
	ankle   string
	knee    string
}{
	{"left_ankle_angle", "left_ankle", "left_knee"},
	{"right_ankle_angle", "right_ankle", "right_knee"},
}

func (e *FeatureExtractor) extractJointAngles(seq *pose.Sequence, tracks map[string]*jointTrack, fv FeatureVector) {
	for _, triple := range angleTriples {
		ta, tv, tb := tracks[triple.a], tracks[triple.vertex], tracks[triple.b]
		if !ta.usable(e.cfg) || !tv.usable(e.cfg) || !tb.usable(e.cfg) {
			continue
		}

		var angles []float64
		for i := range tv.xs {
			if !ta.valid[i] || !tv.valid[i] || !tb.valid[i] {
				continue
			}
			angle, ok := vertexAngle(
				ta.xs[i]-tv.xs[i], ta.ys[i]-tv.ys[i],
				tb.xs[i]-tv.xs[i], tb.ys[i]-tv.ys[i],
			)
			if ok {
				angles = append(angles, angle)
			}
		}
		if len(angles) > 0 {
			putAngleAggregates(fv, triple.feature, angles)
		}
	}

	for _, aa := range ankleAngles {
		ta, tk := tracks[aa.ankle], tracks[aa.knee]
		if !ta.usable(e.cfg) || !tk.usable(e.cfg) {
			continue
		}

		var angles []float64
		for i := range ta.xs {
			if !ta.valid[i] || !tk.valid[i] {
				continue
			}
			// Вектор голени от голеностопа к колену против вертикали "вверх".
			// В экранных координатах вверх - это (0,-1).
			angle, ok := vertexAngle(
				tk.xs[i]-ta.xs[i], tk.ys[i]-ta.ys[i],
				0, -1,
			)
			if ok {
				angles = append(angles, angle)
			}
		}
		if len(angles) > 0 {
			putAngleAggregates(fv, aa.feature, angles)
		}
	}
}

// vertexAngle - угол между двумя векторами в градусах, диапазон [0,180].
// Возвращает false для вырожденного (нулевого) вектора.
func vertexAngle(ax, ay, bx, by float64) (float64, bool) {
	la := math.Hypot(ax, ay)
	lb := math.Hypot(bx, by)
	if la < 1e-12 || lb < 1e-12 {
		return 0, false
	}
	cos := (ax*bx + ay*by) / (la * lb)
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi, true
}

// ===== Шаговые признаки =====

func (e *FeatureExtractor) extractStride(seq *pose.Sequence, tracks map[string]*jointTrack, fv FeatureVector) {
	left, right := tracks["left_ankle"], tracks["right_ankle"]

	leftPath, leftOK := pathLength(left, e.cfg)
	rightPath, rightOK := pathLength(right, e.cfg)
	if leftOK {
		fv["left_ankle_path_length"] = leftPath
	}
	if rightOK {
		fv["right_ankle_path_length"] = rightPath
	}
	if leftOK && rightOK {
		fv["ankle_distance_asymmetry"] = signal.SafeRatio(
			math.Abs(leftPath-rightPath), (leftPath+rightPath)/2)
	}

	if left.usable(e.cfg) && right.usable(e.cfg) {
		var widths []float64
		for i := range left.xs {
			if left.valid[i] && right.valid[i] {
				widths = append(widths, math.Abs(left.xs[i]-right.xs[i]))
			}
		}
		if len(widths) > 0 {
			fv["step_width_mean"] = stat.Mean(widths, nil)
			fv["step_width_std"] = stdOrZero(widths)
		}
	}
}

// pathLength - суммарный путь сустава по валидным соседним кадрам
func pathLength(track *jointTrack, cfg Config) (float64, bool) {
	if !track.usable(cfg) {
		return 0, false
	}
	total := 0.0
	steps := 0
	for i := 1; i < len(track.xs); i++ {
		if !track.valid[i-1] || !track.valid[i] {
			continue
		}
		total += math.Hypot(track.xs[i]-track.xs[i-1], track.ys[i]-track.ys[i-1])
		steps++
	}
	return total, steps > 0
}

// ===== Стабилометрия =====

// extractStability аппроксимирует центр масс средним положением
// тазобедренных суставов и оценивает его подвижность
func (e *FeatureExtractor) extractStability(seq *pose.Sequence, tracks map[string]*jointTrack, fv FeatureVector) {
	left, right := tracks["left_hip"], tracks["right_hip"]
	if !left.usable(e.cfg) || !right.usable(e.cfg) {
		return
	}

	var comXs, comYs []float64
	for i := range left.xs {
		if left.valid[i] && right.valid[i] {
			comXs = append(comXs, (left.xs[i]+right.xs[i])/2)
			comYs = append(comYs, (left.ys[i]+right.ys[i])/2)
		}
	}
	if len(comXs) < 2 {
		return
	}

	displacements := make([]float64, len(comXs)-1)
	stationary := true
	for i := 1; i < len(comXs); i++ {
		d := math.Hypot(comXs[i]-comXs[i-1], comYs[i]-comYs[i-1])
		displacements[i-1] = d
		if d >= e.cfg.StationaryThreshold {
			stationary = false
		}
	}

	mean := stat.Mean(displacements, nil)
	std := stdOrZero(displacements)
	fv["com_movement_mean"] = mean
	fv["com_movement_std"] = std
	// Нормированная дисперсия смещения: меньше - стабильнее
	fv["com_stability_index"] = signal.SafeRatio(std, mean)

	// Площадь постурального колебания имеет смысл только в квазистатике:
	// при ходьбе в нее утекает поступательное движение
	if stationary {
		fv["postural_sway_area"] = math.Pi * stdOrZero(comXs) * stdOrZero(comYs)
	}
}

// ===== Утилиты =====

// frameRun - непрерывный отрезок валидных кадров [start, end]
type frameRun struct {
	start, end int
}

func (r frameRun) length() int {
	return r.end - r.start + 1
}

// validRuns разбивает маску валидности на непрерывные отрезки
func validRuns(valid []bool) []frameRun {
	var runs []frameRun
	start := -1
	for i, v := range valid {
		switch {
		case v && start < 0:
			start = i
		case !v && start >= 0:
			runs = append(runs, frameRun{start: start, end: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, frameRun{start: start, end: len(valid) - 1})
	}
	return runs
}

// putAggregates добавляет mean/std/max/min признаки с заданным префиксом
func putAggregates(fv FeatureVector, prefix string, values []float64) {
	fv[fmt.Sprintf("%s_mean", prefix)] = stat.Mean(values, nil)
	fv[fmt.Sprintf("%s_std", prefix)] = stdOrZero(values)
	fv[fmt.Sprintf("%s_max", prefix)] = floats.Max(values)
	fv[fmt.Sprintf("%s_min", prefix)] = floats.Min(values)
}

// putAngleAggregates добавляет угловые агрегаты, включая размах
func putAngleAggregates(fv FeatureVector, prefix string, angles []float64) {
	max := floats.Max(angles)
	min := floats.Min(angles)
	fv[fmt.Sprintf("%s_mean", prefix)] = stat.Mean(angles, nil)
	fv[fmt.Sprintf("%s_std", prefix)] = stdOrZero(angles)
	fv[fmt.Sprintf("%s_range", prefix)] = max - min
	fv[fmt.Sprintf("%s_max", prefix)] = max
	fv[fmt.Sprintf("%s_min", prefix)] = min
}

func appendUnique(flags []string, flag string) []string {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	return append(flags, flag)
}
