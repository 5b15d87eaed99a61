package generators

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Krimson/gait-monitory/internal/pose"
)

// GaitConfig - параметры генератора походки
type GaitConfig struct {
	Format       pose.Format
	FPS          float64
	StepFreqHz   float64 // частота шагов одной ноги
	StrideAmpPx  float64 // амплитуда горизонтального маха голеностопа
	LiftAmpPx    float64 // амплитуда подъема стопы
	WalkSpeedPx  float64 // поступательная скорость, пикселей в секунду
	ArmSwingPx   float64 // амплитуда маха рук
}

// DefaultGaitConfig возвращает параметры нормальной походки ~120 шагов/мин
func DefaultGaitConfig(format pose.Format) GaitConfig {
	return GaitConfig{
		Format:      format,
		FPS:         30,
		StepFreqHz:  1.0, // цикл одной ноги раз в секунду = 120 шагов/мин на обе
		StrideAmpPx: 40,
		LiftAmpPx:   25,
		WalkSpeedPx: 80,
		ArmSwingPx:  20,
	}
}

// Базовый скелет в экранных координатах (Y растет вниз), человек ~500px ростом.
// Суставы, отсутствующие в шаблоне, получают позицию тазобедренного узла.
var skeletonTemplate = map[string][2]float64{
	"nose": {320, 140}, "neck": {320, 190},
	"left_eye": {312, 132}, "right_eye": {328, 132},
	"left_ear": {305, 138}, "right_ear": {335, 138},
	"left_shoulder": {290, 200}, "right_shoulder": {350, 200},
	"left_elbow": {280, 280}, "right_elbow": {360, 280},
	"left_wrist": {275, 350}, "right_wrist": {365, 350},
	"left_hip": {300, 380}, "right_hip": {340, 380}, "mid_hip": {320, 380},
	"left_knee": {298, 500}, "right_knee": {342, 500},
	"left_ankle": {296, 620}, "right_ankle": {344, 620},
	"left_heel": {290, 635}, "right_heel": {350, 635},
	"left_big_toe": {300, 640}, "right_big_toe": {340, 640},
	"left_small_toe": {295, 642}, "right_small_toe": {345, 642},
	"left_foot_index": {302, 640}, "right_foot_index": {338, 640},
}

type gaitGenerator struct {
	rand      *rand.Rand
	config    GaitConfig
	asymmetry float64
	noise     float64
	sequences int
	mu        sync.Mutex
}

// NewGaitGenerator создает генератор синтетической походки
func NewGaitGenerator(cfg GaitConfig) GaitGenerator {
	return &gaitGenerator{
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		config: cfg,
	}
}

// NextSequence генерирует последовательность кадров ходьбы слева направо
func (g *gaitGenerator) NextSequence(frameCount int) []pose.Frame {
	g.mu.Lock()
	defer g.mu.Unlock()

	jointNames := g.config.Format.JointNames()
	frames := make([]pose.Frame, frameCount)

	for i := 0; i < frameCount; i++ {
		t := float64(i) / g.config.FPS
		keypoints := make([]pose.Keypoint, len(jointNames))

		for j, name := range jointNames {
			base, ok := skeletonTemplate[name]
			if !ok {
				base = skeletonTemplate["mid_hip"]
			}

			x := base[0] + g.config.WalkSpeedPx*t
			y := base[1]
			x, y = g.applyGaitMotion(name, t, x, y)

			// Координатный шум и правдоподобная confidence
			if g.noise > 0 {
				x += g.rand.NormFloat64() * g.noise
				y += g.rand.NormFloat64() * g.noise
			}
			confidence := 0.85 + 0.1*g.rand.Float64()
			if g.noise > 5 && g.rand.Float64() < 0.1 {
				confidence = 0.2 + 0.2*g.rand.Float64() // имитация потери трекинга
			}

			keypoints[j] = pose.Keypoint{X: x, Y: y, Confidence: confidence}
		}

		frames[i] = pose.Frame{
			Index:     i,
			TimeSec:   t,
			Keypoints: keypoints,
		}
	}

	g.sequences++
	return frames
}

// applyGaitMotion накладывает периодическое движение конечностей.
// Левая и правая нога ходят в противофазе; асимметрия уменьшает
// амплитуду движения правой ноги.
func (g *gaitGenerator) applyGaitMotion(joint string, t, x, y float64) (float64, float64) {
	phase := 2 * math.Pi * g.config.StepFreqHz * t
	rightScale := 1 - g.asymmetry

	switch joint {
	case "left_ankle", "left_heel", "left_big_toe", "left_small_toe", "left_foot_index":
		x += g.config.StrideAmpPx * math.Sin(phase)
		y -= g.config.LiftAmpPx * lift(phase)
	case "right_ankle", "right_heel", "right_big_toe", "right_small_toe", "right_foot_index":
		x += g.config.StrideAmpPx * rightScale * math.Sin(phase+math.Pi)
		y -= g.config.LiftAmpPx * rightScale * lift(phase+math.Pi)
	case "left_knee":
		x += 0.5 * g.config.StrideAmpPx * math.Sin(phase)
		y -= 0.4 * g.config.LiftAmpPx * lift(phase)
	case "right_knee":
		x += 0.5 * g.config.StrideAmpPx * rightScale * math.Sin(phase+math.Pi)
		y -= 0.4 * g.config.LiftAmpPx * rightScale * lift(phase+math.Pi)
	case "left_wrist", "left_elbow":
		// Руки машут в противофазе со своей ногой
		x += g.config.ArmSwingPx * math.Sin(phase+math.Pi)
	case "right_wrist", "right_elbow":
		x += g.config.ArmSwingPx * math.Sin(phase)
	case "left_hip", "right_hip", "mid_hip":
		// Вертикальная осцилляция таза на двойной частоте шага
		y += 3 * math.Sin(2*phase)
	}
	return x, y
}

// lift - профиль подъема стопы: нога поднимается только в фазе переноса
func lift(phase float64) float64 {
	s := math.Sin(phase)
	if s < 0 {
		return 0
	}
	return s
}

// SetAsymmetry задает степень асимметрии правой ноги
func (g *gaitGenerator) SetAsymmetry(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	g.asymmetry = value
}

// SetNoise задает амплитуду координатного шума в пикселях
func (g *gaitGenerator) SetNoise(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if value < 0 {
		value = 0
	}
	g.noise = value
}

// Validate проверяет корректность конфигурации и выходных кадров
func (g *gaitGenerator) Validate() error {
	if !g.config.Format.Valid() {
		return ErrInvalidFormat
	}
	if g.config.FPS <= 0 || g.config.StepFreqHz <= 0 {
		return ErrInvalidConfig
	}

	frames := g.NextSequence(3)
	for _, frame := range frames {
		if len(frame.Keypoints) != g.config.Format.JointCount() {
			return ErrInvalidGaitValue
		}
	}
	return nil
}

// Reset сбрасывает состояние генератора
func (g *gaitGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sequences = 0
	g.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Seed устанавливает seed для воспроизводимых последовательностей
func (g *gaitGenerator) Seed(seed int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rand = rand.New(rand.NewSource(seed))
}
