package mfrack

import (
	"encoding/binary"
	"math"

	"github.com/cbegin/mfrack-go/internal/kanon"
	"github.com/cbegin/mfrack-go/internal/rack"
)

// RenderSamples renders seconds of the rig's stereo mix.
func RenderSamples(rig *rack.Rig, seconds float64) []float32 {
	frames := int(float64(rig.SampleRate()) * seconds)
	out := make([]float32, frames*2)
	rig.Process(out)
	return out
}

// RenderVoices renders seconds of Kanon's four voice outputs in volts.
func RenderVoices(rig *rack.Rig, seconds float64) [kanon.NumVoices][]float32 {
	frames := int(float64(rig.SampleRate()) * seconds)
	var voices [kanon.NumVoices][]float32
	for v := range voices {
		voices[v] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		f := rig.Step()
		for v := range voices {
			voices[v][i] = f.Voices[v]
		}
	}
	return voices
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
