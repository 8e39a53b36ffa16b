package dsp

import "math"

// SilenceThreshold is the absolute amplitude below which a sample counts as
// silent for boundary detection (-60 dBFS).
const SilenceThreshold = 0.001

// SilenceInfo reports head/tail silence and the edge sample amplitudes of a
// single channel.
type SilenceInfo struct {
	FirstSample  float64 // absolute amplitude of the first sample
	LastSample   float64 // absolute amplitude of the last sample
	FirstIsZero  bool    // first sample below threshold
	LastIsZero   bool    // last sample below threshold
	HeadDuration float64 // seconds of consecutive silence from the start
	TailDuration float64 // seconds of consecutive silence from the end
}

// AnalyzeSilence measures leading and trailing silence independently,
// stopping each scan at the first sample above the threshold.
func AnalyzeSilence(samples []float64, sampleRate int) SilenceInfo {
	info := SilenceInfo{}
	if len(samples) == 0 || sampleRate <= 0 {
		return info
	}

	info.FirstSample = math.Abs(samples[0])
	info.LastSample = math.Abs(samples[len(samples)-1])
	info.FirstIsZero = info.FirstSample < SilenceThreshold
	info.LastIsZero = info.LastSample < SilenceThreshold

	head := 0
	for head < len(samples) && math.Abs(samples[head]) < SilenceThreshold {
		head++
	}

	tail := 0
	for tail < len(samples) && math.Abs(samples[len(samples)-1-tail]) < SilenceThreshold {
		tail++
	}

	info.HeadDuration = float64(head) / float64(sampleRate)
	info.TailDuration = float64(tail) / float64(sampleRate)
	return info
}
