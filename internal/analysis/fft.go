package analysis

import (
	"errors"
	"math"
	"math/cmplx"
)

var ErrTooShort = errors.New("analysis: need at least two samples")

// FFT is a radix-2 Cooley-Tukey transform; len(data) must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// Pad zero-pads data to the next power of two.
func Pad(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}

// PowerSpectrum returns the magnitudes of the non-negative frequency bins.
func PowerSpectrum(data []float64) []float64 {
	fft := FFT(data)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// Spectrum is the frequency content of one trace.
type Spectrum struct {
	Power      []float64
	Resolution float64 // Hz per bin
	Frequency  float64 // dominant frequency, Hz; 0 when the trace is flat
	Peak       float64
}

func (s Spectrum) Period() float64 {
	if s.Frequency == 0 {
		return math.Inf(1)
	}
	return 1 / s.Frequency
}

// Analyze removes the mean of data, sampled every dt seconds, and finds its
// dominant oscillation.
func Analyze(data []float64, dt float64) (Spectrum, error) {
	if len(data) < 2 {
		return Spectrum{}, ErrTooShort
	}

	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	padded := Pad(centered)
	sp := Spectrum{
		Power:      PowerSpectrum(padded),
		Resolution: 1 / (float64(len(padded)) * dt),
	}
	for i := 1; i < len(sp.Power); i++ {
		if sp.Power[i] > sp.Peak {
			sp.Peak = sp.Power[i]
			sp.Frequency = float64(i) * sp.Resolution
		}
	}
	return sp, nil
}
