package validate

import (
	"math"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/danielpatrickdp/coherence-engine/internal/config"
)

// minSegmentLength is the floor the segment auto-reduction stops at.
const minSegmentLength = 8

// #region spectral-test

// spectralTest computes magnitude-squared coherence between x and y via
// segmented-FFT cross and auto spectra and takes the maximum over frequency
// as the statistic. The configured segment length halves until at least two
// segments fit; with a single segment coherence is identically one and the
// permutation p-value degrades to 1 on its own.
func spectralTest(x, y []float64, cfg config.Bundle) (SpectralResult, []SpectrumPoint) {
	if len(x) < minSamples {
		return SpectralResult{Status: StatusInsufficientData}, nil
	}

	segLen := segmentLength(cfg.SpectralSegmentLength, len(x))
	spectrum := coherenceSpectrum(x, y, segLen)
	peak := peakCoherence(spectrum)

	null := nullDistribution(cfg.PermutationCount, cfg.PermutationSeed, func(rng *rand.Rand) float64 {
		shuffled := blockShuffle(x, cfg.BlockSize, rng)
		return peakCoherence(coherenceSpectrum(shuffled, y, segLen))
	})

	return SpectralResult{
		Status:        StatusOK,
		PeakCoherence: peak,
		PValue:        pValue(null, peak),
	}, spectrum
}

// #endregion spectral-test

// #region spectrum

// segmentLength halves the configured length until two segments fit in n.
func segmentLength(configured, n int) int {
	segLen := configured
	for segLen > minSegmentLength && 2*segLen > n {
		segLen /= 2
	}
	return segLen
}

// coherenceSpectrum averages windowed cross/auto spectra over non-overlapping
// segments and returns C(f) = |Pxy|² / (Pxx·Pyy) for f > 0.
func coherenceSpectrum(x, y []float64, segLen int) []SpectrumPoint {
	segments := len(x) / segLen
	if segments < 1 {
		return nil
	}

	fft := fourier.NewFFT(segLen)
	window := hannWindow(segLen)
	bins := segLen/2 + 1

	pxx := make([]float64, bins)
	pyy := make([]float64, bins)
	pxy := make([]complex128, bins)

	xseg := make([]float64, segLen)
	yseg := make([]float64, segLen)
	for s := 0; s < segments; s++ {
		off := s * segLen
		for i := 0; i < segLen; i++ {
			xseg[i] = x[off+i] * window[i]
			yseg[i] = y[off+i] * window[i]
		}
		xc := fft.Coefficients(nil, xseg)
		yc := fft.Coefficients(nil, yseg)
		for f := 0; f < bins; f++ {
			pxx[f] += real(xc[f])*real(xc[f]) + imag(xc[f])*imag(xc[f])
			pyy[f] += real(yc[f])*real(yc[f]) + imag(yc[f])*imag(yc[f])
			pxy[f] += xc[f] * cmplx.Conj(yc[f])
		}
	}

	// Skip the DC bin; the inputs are detrended and z-scored anyway.
	out := make([]SpectrumPoint, 0, bins-1)
	for f := 1; f < bins; f++ {
		denom := pxx[f] * pyy[f]
		var c float64
		if denom > 0 {
			cross := real(pxy[f])*real(pxy[f]) + imag(pxy[f])*imag(pxy[f])
			c = cross / denom
		}
		out = append(out, SpectrumPoint{
			Frequency: float64(f) / float64(segLen),
			Coherence: c,
		})
	}
	return out
}

// peakCoherence returns the maximum coherence over frequency.
func peakCoherence(spectrum []SpectrumPoint) float64 {
	var peak float64
	for _, p := range spectrum {
		peak = math.Max(peak, p.Coherence)
	}
	return peak
}

// hannWindow builds a Hann taper of length n.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// #endregion spectrum
