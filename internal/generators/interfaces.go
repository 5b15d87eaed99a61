package generators

import (
	"errors"

	"github.com/Krimson/gait-monitory/internal/pose"
)

// Ошибки генераторов
var (
	ErrInvalidFormat    = errors.New("unknown keypoint format")
	ErrInvalidGaitValue = errors.New("generated keypoint out of bounds")
	ErrInvalidConfig    = errors.New("invalid generator configuration")
)

// SequenceGenerator интерфейс для генераторов синтетических последовательностей позы
type SequenceGenerator interface {
	// NextSequence возвращает следующую сгенерированную последовательность кадров
	NextSequence(frameCount int) []pose.Frame

	// Validate проверяет корректность работы генератора
	Validate() error

	// Reset сбрасывает состояние генератора
	Reset()

	// Seed устанавливает seed для случайного генератора
	Seed(seed int64)
}

// GaitGenerator интерфейс для генератора походки
type GaitGenerator interface {
	SequenceGenerator

	// SetAsymmetry задает степень асимметрии правой ноги (0 - симметрично, 1 - нога неподвижна)
	SetAsymmetry(value float64)

	// SetNoise задает амплитуду координатного шума в пикселях
	SetNoise(value float64)
}
