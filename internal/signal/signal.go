// Package signal содержит низкоуровневые операции над одномерными
// сигналами траекторий суставов: сглаживание, производные, поиск
// экстремумов и спектральный анализ.
package signal

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Peak описывает найденный экстремум сигнала
type Peak struct {
	Index      int
	Value      float64
	Prominence float64
}

// MovingAverage сглаживает сигнал центрированным скользящим средним.
// На краях окно усекается. window <= 1 возвращает копию сигнала.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}

	half := window / 2
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(values)-1 {
			hi = len(values) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// Diff возвращает первую разность сигнала, умноженную на scale.
// Длина результата на 1 меньше длины входа.
func Diff(values []float64, scale float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = (values[i] - values[i-1]) * scale
	}
	return out
}

// LocalMaxima находит локальные максимумы с их prominence.
// Плато схлопываются в первую точку плато.
func LocalMaxima(values []float64) []Peak {
	var peaks []Peak
	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] >= values[i+1] {
			peaks = append(peaks, Peak{
				Index:      i,
				Value:      values[i],
				Prominence: prominence(values, i),
			})
		}
	}
	return peaks
}

// LocalMinima находит локальные минимумы. Prominence считается
// на инвертированном сигнале.
func LocalMinima(values []float64) []Peak {
	inverted := make([]float64, len(values))
	for i, v := range values {
		inverted[i] = -v
	}
	peaks := LocalMaxima(inverted)
	for i := range peaks {
		peaks[i].Value = values[peaks[i].Index]
	}
	return peaks
}

// prominence вычисляет выступ пика над окружающими долинами:
// минимум сигнала между пиком и ближайшим более высоким пиком
// (или краем сигнала) с каждой стороны, берется высшая из двух долин.
func prominence(values []float64, peak int) float64 {
	leftValley := values[peak]
	for i := peak - 1; i >= 0; i-- {
		if values[i] > values[peak] {
			break
		}
		if values[i] < leftValley {
			leftValley = values[i]
		}
	}

	rightValley := values[peak]
	for i := peak + 1; i < len(values); i++ {
		if values[i] > values[peak] {
			break
		}
		if values[i] < rightValley {
			rightValley = values[i]
		}
	}

	base := leftValley
	if rightValley > base {
		base = rightValley
	}
	return values[peak] - base
}

// ResidualStd оценивает уровень шума сигнала как стандартное отклонение
// остатка после сглаживания. Гладкий сигнал дает значение около нуля.
func ResidualStd(values []float64, window int) float64 {
	if len(values) < 3 {
		return 0
	}
	smoothed := MovingAverage(values, window)
	residual := make([]float64, len(values))
	for i := range values {
		residual[i] = values[i] - smoothed[i]
	}
	return stat.StdDev(residual, nil)
}

// HasUpwardCrossing проверяет наличие перехода производной из
// отрицательной в неотрицательную область в окне [center-radius, center+radius]
func HasUpwardCrossing(derivative []float64, center, radius int) bool {
	lo := center - radius
	if lo < 1 {
		lo = 1
	}
	hi := center + radius
	if hi > len(derivative)-1 {
		hi = len(derivative) - 1
	}
	for i := lo; i <= hi; i++ {
		if derivative[i-1] < 0 && derivative[i] >= 0 {
			return true
		}
	}
	return false
}

// DominantFrequency находит частоту спектрального пика сигнала в полосе
// [minHz, maxHz]. Сигнал центрируется вычитанием среднего, чтобы нулевая
// частота не доминировала. Возвращает false, если сигнал слишком короткий
// или в полосе нет ни одной частотной компоненты.
func DominantFrequency(values []float64, sampleRate, minHz, maxHz float64) (float64, bool) {
	if len(values) < 8 || sampleRate <= 0 {
		return 0, false
	}

	mean := stat.Mean(values, nil)
	centered := make([]float64, len(values))
	for i, v := range values {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(centered))
	coeffs := fft.Coefficients(nil, centered)

	bestFreq := 0.0
	bestPower := 0.0
	found := false
	for i, c := range coeffs {
		freq := fft.Freq(i) * sampleRate
		if freq < minHz || freq > maxHz {
			continue
		}
		power := cmplx.Abs(c)
		power *= power
		if !found || power > bestPower {
			bestFreq = freq
			bestPower = power
			found = true
		}
	}

	if !found || bestPower == 0 {
		return 0, false
	}
	return bestFreq, true
}

// SafeRatio возвращает a/b с защитой от деления на близкое к нулю значение
func SafeRatio(a, b float64) float64 {
	if math.Abs(b) < 1e-12 {
		return 0
	}
	return a / b
}
