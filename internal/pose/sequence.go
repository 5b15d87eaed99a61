package pose

import "fmt"

// Keypoint представляет одну ключевую точку в кадре.
// Координаты в единицах источника (пиксели или нормализованные),
// ось Y растет вниз (экранные координаты). Confidence в диапазоне [0,1].
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Frame представляет один кадр позы. Keypoints следуют порядку формата.
// TimeSec опционален: если 0 и кадр не первый, время выводится из индекса и fps.
type Frame struct {
	Index     int        `json:"frame_index"`
	TimeSec   float64    `json:"time_sec,omitempty"`
	Keypoints []Keypoint `json:"keypoints"`
}

// ValidationError - фатальная ошибка валидации входных данных.
// Единственный класс ошибок, который ядро анализа поднимает наверх;
// все остальные проблемы деградируют в quality flags.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid pose sequence: " + e.Reason
}

// Sequence - неизменяемая последовательность кадров позы.
// Инварианты проверяются один раз при создании: известный формат,
// fps > 0, совпадение количества точек с форматом, строго
// возрастающие индексы кадров.
type Sequence struct {
	frames []Frame
	fps    float64
	format Format
}

// NewSequence создает последовательность и валидирует инварианты.
// Пустая последовательность (0 кадров) допустима: анализаторы обязаны
// деградировать на ней, а не падать.
func NewSequence(frames []Frame, fps float64, format Format) (*Sequence, error) {
	if !format.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown keypoint format %q", format)}
	}
	if fps <= 0 {
		return nil, &ValidationError{Reason: fmt.Sprintf("fps must be positive, got %g", fps)}
	}

	expected := format.JointCount()
	for i, frame := range frames {
		if len(frame.Keypoints) != expected {
			return nil, &ValidationError{Reason: fmt.Sprintf(
				"frame %d has %d keypoints, format %s expects %d",
				frame.Index, len(frame.Keypoints), format, expected)}
		}
		if i > 0 && frame.Index <= frames[i-1].Index {
			return nil, &ValidationError{Reason: fmt.Sprintf(
				"frame indices must be strictly increasing: %d after %d",
				frame.Index, frames[i-1].Index)}
		}
	}

	// Копируем кадры, чтобы последовательность была изолирована от вызывающего
	owned := make([]Frame, len(frames))
	copy(owned, frames)
	for i := range owned {
		kps := make([]Keypoint, len(frames[i].Keypoints))
		copy(kps, frames[i].Keypoints)
		owned[i].Keypoints = kps
		if owned[i].TimeSec == 0 {
			owned[i].TimeSec = float64(owned[i].Index) / fps
		}
	}

	return &Sequence{frames: owned, fps: fps, format: format}, nil
}

// Len возвращает количество кадров
func (s *Sequence) Len() int {
	return len(s.frames)
}

// FPS возвращает частоту кадров
func (s *Sequence) FPS() float64 {
	return s.fps
}

// Format возвращает формат ключевых точек
func (s *Sequence) Format() Format {
	return s.format
}

// Frame возвращает кадр по позиции (не по frame_index)
func (s *Sequence) Frame(i int) Frame {
	return s.frames[i]
}

// DurationSec возвращает длительность последовательности в секундах
// по разнице индексов первого и последнего кадров
func (s *Sequence) DurationSec() float64 {
	if len(s.frames) < 2 {
		return 0
	}
	return float64(s.frames[len(s.frames)-1].Index-s.frames[0].Index) / s.fps
}

// Joint возвращает точку сустава в кадре i
func (s *Sequence) Joint(i int, name string) (Keypoint, bool) {
	idx, ok := s.format.JointIndex(name)
	if !ok {
		return Keypoint{}, false
	}
	return s.frames[i].Keypoints[idx], true
}

// Series возвращает траекторию сустава: координаты и confidence по кадрам
func (s *Sequence) Series(name string) (xs, ys, confs []float64, ok bool) {
	idx, found := s.format.JointIndex(name)
	if !found {
		return nil, nil, nil, false
	}

	xs = make([]float64, len(s.frames))
	ys = make([]float64, len(s.frames))
	confs = make([]float64, len(s.frames))
	for i, frame := range s.frames {
		kp := frame.Keypoints[idx]
		xs[i] = kp.X
		ys[i] = kp.Y
		confs[i] = kp.Confidence
	}
	return xs, ys, confs, true
}

// MeanConfidence возвращает среднюю confidence всех точек последовательности
func (s *Sequence) MeanConfidence() float64 {
	if len(s.frames) == 0 {
		return 0
	}
	total := 0.0
	count := 0
	for _, frame := range s.frames {
		for _, kp := range frame.Keypoints {
			total += kp.Confidence
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
