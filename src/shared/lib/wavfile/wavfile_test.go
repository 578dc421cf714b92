package wavfile_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-separator/src/shared/lib/wavfile"
)

var _ = Describe("Wavfile", func() {
	var (
		dir  string
		path string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		path = filepath.Join(dir, "stem.wav")
	})

	Describe("Encoding stereo audio", func() {
		var input wavfile.Audio

		BeforeEach(func() {
			input = wavfile.Audio{
				Channels: [][]float64{
					{0, 0.5, -0.5, 1},
					{0.25, -0.25, 0.75, -1},
				},
				SampleRate: 44100,
			}

			Expect(wavfile.Encode(path, input)).To(Succeed())
		})

		It("reads back with the same layout", func() {
			decoded, err := wavfile.Decode(path)
			Expect(err).NotTo(HaveOccurred())

			Expect(decoded.SampleRate).To(Equal(44100))
			Expect(decoded.Channels).To(HaveLen(2))
			Expect(decoded.NumFrames()).To(Equal(4))
		})

		It("keeps each channel's samples in place", func() {
			decoded, err := wavfile.Decode(path)
			Expect(err).NotTo(HaveOccurred())

			for c := range input.Channels {
				for i := range input.Channels[c] {
					Expect(decoded.Channels[c][i]).To(BeNumerically("~", input.Channels[c][i], 0.001))
				}
			}
		})
	})

	It("clips samples outside the valid range", func() {
		input := wavfile.Audio{
			Channels:   [][]float64{{2, -3}},
			SampleRate: 44100,
		}
		Expect(wavfile.Encode(path, input)).To(Succeed())

		decoded, err := wavfile.Decode(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.Channels[0][0]).To(BeNumerically("~", 1, 0.001))
		Expect(decoded.Channels[0][1]).To(BeNumerically("~", -1, 0.001))
	})

	It("refuses channels of different lengths", func() {
		input := wavfile.Audio{
			Channels:   [][]float64{{0, 0}, {0}},
			SampleRate: 44100,
		}
		Expect(wavfile.Encode(path, input)).NotTo(Succeed())
		Expect(path).NotTo(BeAnExistingFile())
	})

	It("refuses audio without channels", func() {
		Expect(wavfile.Encode(path, wavfile.Audio{SampleRate: 44100})).NotTo(Succeed())
	})

	It("fails to decode something that isn't a wav", func() {
		Expect(os.WriteFile(path, []byte("definitely not riff"), 0o644)).To(Succeed())

		_, err := wavfile.Decode(path)
		Expect(err).To(HaveOccurred())
	})

	It("fails to decode a missing file", func() {
		_, err := wavfile.Decode(filepath.Join(dir, "nope.wav"))
		Expect(err).To(HaveOccurred())
	})
})
