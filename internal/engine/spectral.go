package engine

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Peak is a spectral peak refined by parabolic interpolation.
type Peak struct {
	Frequency float64 // Hz
	Magnitude float64 // linear
}

// PeakParams bounds spectral peak picking.
type PeakParams struct {
	MaxPeaks     int
	Threshold    float64 // minimum linear magnitude
	MinFrequency float64 // Hz
	MaxFrequency float64 // Hz
}

// HPCPParams configures harmonic pitch class profile accumulation.
type HPCPParams struct {
	Size      int     // bins per octave wrap, normally 12
	Reference float64 // tuning reference for A4, normally 440 Hz
}

// Windowing applies the named analysis window to a copy of the frame.
// Unknown names fall back to Hann, the default for all key analysis.
func (e *Engine) Windowing(frame []float64, name string) []float64 {
	out := make([]float64, len(frame))
	copy(out, frame)

	var w []float64
	switch name {
	case "hamming":
		w = window.Hamming(len(frame))
	case "blackman":
		w = window.Blackman(len(frame))
	default:
		w = window.Hann(len(frame))
	}
	for i := range out {
		out[i] *= w[i]
	}
	return out
}

// Spectrum returns the single-sided magnitude spectrum of a frame. The
// frame is zero-padded to the next power of two for the FFT; magnitudes are
// scaled so a full-scale sine in the frame reads close to 1.0.
func (e *Engine) Spectrum(frame []float64) []float64 {
	if len(frame) == 0 {
		return nil
	}
	n := 1
	for n < len(frame) {
		n <<= 1
	}
	padded := make([]float64, n)
	copy(padded, frame)

	bins := fft.FFTReal(padded)
	half := n/2 + 1
	mags := make([]float64, half)
	scale := 2.0 / float64(len(frame))
	for i := 0; i < half; i++ {
		re := real(bins[i])
		im := imag(bins[i])
		mags[i] = math.Sqrt(re*re+im*im) * scale
	}
	return mags
}

// SpectralPeaks picks local maxima from a magnitude spectrum inside the
// configured frequency band, refining each peak position and height with a
// parabolic fit through its neighbours. Peaks are returned strongest first.
func (e *Engine) SpectralPeaks(spectrum []float64, sampleRate int, params PeakParams) []Peak {
	if len(spectrum) < 3 || sampleRate <= 0 {
		return nil
	}
	binHz := float64(sampleRate) / 2 / float64(len(spectrum)-1)

	var peaks []Peak
	for i := 1; i < len(spectrum)-1; i++ {
		m := spectrum[i]
		if m < params.Threshold || m <= spectrum[i-1] || m < spectrum[i+1] {
			continue
		}

		// Parabolic refinement: vertex of the parabola through the three
		// bins around the maximum.
		alpha, beta, gamma := spectrum[i-1], m, spectrum[i+1]
		denom := alpha - 2*beta + gamma
		offset := 0.0
		height := beta
		if denom != 0 {
			offset = 0.5 * (alpha - gamma) / denom
			height = beta - 0.25*(alpha-gamma)*offset
		}

		freq := (float64(i) + offset) * binHz
		if freq < params.MinFrequency || freq > params.MaxFrequency {
			continue
		}
		peaks = append(peaks, Peak{Frequency: freq, Magnitude: height})
	}

	// Strongest first, cap at MaxPeaks.
	for i := 1; i < len(peaks); i++ {
		for j := i; j > 0 && peaks[j].Magnitude > peaks[j-1].Magnitude; j-- {
			peaks[j], peaks[j-1] = peaks[j-1], peaks[j]
		}
	}
	if params.MaxPeaks > 0 && len(peaks) > params.MaxPeaks {
		peaks = peaks[:params.MaxPeaks]
	}
	return peaks
}

// HPCP accumulates spectral peaks into a harmonic pitch class profile. Each
// peak contributes a cosine-squared weight spread over +-half a semitone
// around its pitch class, which tolerates slight detuning without smearing
// the profile. The result is normalized to a unit maximum.
func (e *Engine) HPCP(peaks []Peak, params HPCPParams) ([]float64, error) {
	if params.Size <= 0 {
		return nil, fmt.Errorf("invalid HPCP size %d", params.Size)
	}
	if params.Reference <= 0 {
		return nil, fmt.Errorf("invalid tuning reference %.1f", params.Reference)
	}

	profile := make([]float64, params.Size)
	refC := params.Reference * math.Pow(2, -9.0/12.0) // C relative to A4
	binsPerSemitone := float64(params.Size) / 12.0
	spread := 0.5 * binsPerSemitone

	for _, p := range peaks {
		if p.Frequency <= 0 || p.Magnitude <= 0 {
			continue
		}
		pc := math.Mod(12*math.Log2(p.Frequency/refC), 12)
		if pc < 0 {
			pc += 12
		}
		center := pc * binsPerSemitone
		lo := int(math.Floor(center - spread))
		hi := int(math.Ceil(center + spread))
		for b := lo; b <= hi; b++ {
			dist := math.Abs(float64(b) - center)
			if d := float64(params.Size) - dist; d < dist {
				dist = d // circular distance
			}
			if dist > spread {
				continue
			}
			bin := ((b % params.Size) + params.Size) % params.Size
			w := math.Cos(math.Pi * dist / (2 * spread))
			profile[bin] += p.Magnitude * p.Magnitude * w * w
		}
	}

	max := 0.0
	for _, v := range profile {
		if v > max {
			max = v
		}
	}
	if max > 0 {
		for i := range profile {
			profile[i] /= max
		}
	}
	return profile, nil
}
