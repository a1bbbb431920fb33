package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// PowerSpectrum returns the magnitude of the real FFT of data for the
// non-negative frequencies 0..n/2. Bin i corresponds to i/(n·dt) Hz.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	fft := fourier.NewFFT(len(data))
	coeff := fft.Coefficients(nil, data)

	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the angular frequency (rad/s) of the strongest
// spectral peak of a uniformly sampled series, refined by parabolic
// interpolation between neighbouring bins. The mean is removed first.
func DominantFrequency(series []float64, dt float64) (float64, error) {
	if len(series) < 4 {
		return 0, dynamo.Invalid("need at least 4 samples for a spectrum, got %d", len(series))
	}
	if !(dt > 0) {
		return 0, dynamo.Invalid("sample spacing must be positive, got %g", dt)
	}
	if !dynamo.Finite(series) {
		return 0, dynamo.Invalid("series contains non-finite values")
	}

	centered := dynamo.Clone(series)
	floats.AddConst(-stat.Mean(centered, nil), centered)

	ps := PowerSpectrum(centered)
	peak := 1 + floats.MaxIdx(ps[1:])
	if ps[peak] == 0 {
		return 0, dynamo.Invalid("series has no oscillating component")
	}

	bin := float64(peak)
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if den := a - 2*b + c; den != 0 {
			bin += 0.5 * (a - c) / den
		}
	}
	return 2 * math.Pi * bin / (float64(len(series)) * dt), nil
}
