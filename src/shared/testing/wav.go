package testing

import (
	"math"

	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-separator/src/shared/lib/wavfile"
)

const TestSampleRate = wavfile.StandardSampleRate

// ToneAudio is a short stereo sine tone, the pitch only exists to tell files apart
func ToneAudio(frequency float64, frames int) wavfile.Audio {
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sample := 0.5 * math.Sin(2*math.Pi*frequency*float64(i)/TestSampleRate)
		left[i] = sample
		right[i] = -sample
	}

	return wavfile.Audio{
		Channels:   [][]float64{left, right},
		SampleRate: TestSampleRate,
	}
}

func WriteToneWAV(path string, frequency float64, frames int) {
	err := wavfile.Encode(path, ToneAudio(frequency, frames))
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
}
