// Package analysis estimates the pitch of rendered voice outputs.
package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/ktye/fft"
)

// MinSize is the smallest window PeakFrequency accepts.
const MinSize = 1024

// PeakFrequency returns the frequency of the strongest spectral bin in
// samples, using the largest power-of-two window that fits. The estimate is
// refined by parabolic interpolation around the peak bin.
func PeakFrequency(samples []float32, sampleRate int) (float64, error) {
	n := 1
	for n*2 <= len(samples) {
		n *= 2
	}
	if n < MinSize {
		return 0, errors.New("analysis: not enough samples")
	}
	f, err := fft.New(n)
	if err != nil {
		return 0, err
	}
	buf := make([]complex128, n)
	for i := range buf {
		w := (1 - math.Cos(2*math.Pi*float64(i)/float64(n))) / 2
		buf[i] = complex(float64(samples[i])*w, 0)
	}
	buf = f.Transform(buf)

	mags := make([]float64, n/2)
	peak := 1
	for i := 1; i < n/2; i++ {
		mags[i] = cmplx.Abs(buf[i])
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	bin := float64(peak)
	if peak > 1 && peak < n/2-1 {
		a, b, c := mags[peak-1], mags[peak], mags[peak+1]
		if d := a - 2*b + c; d != 0 {
			bin += 0.5 * (a - c) / d
		}
	}
	return bin * float64(sampleRate) / float64(n), nil
}

// Cents returns the distance from want to got in cents.
func Cents(got, want float64) float64 {
	return 1200 * math.Log2(got/want)
}
