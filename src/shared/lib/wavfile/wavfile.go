package wavfile

import (
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
)

// StandardSampleRate is what the separation model works at and what every stem is written at
const StandardSampleRate = 44100

const (
	pcmFormat   = 1
	outBitDepth = 16
)

// Audio holds samples as channels x frames, each sample in [-1, 1]
type Audio struct {
	Channels   [][]float64
	SampleRate int
}

func (a Audio) NumFrames() int {
	if len(a.Channels) == 0 {
		return 0
	}

	return len(a.Channels[0])
}

// Encode writes 16-bit PCM, interleaving the channels frame by frame
func Encode(path string, a Audio) error {
	errctx := cerr.Field("path", path).Field("sample_rate", a.SampleRate)

	numChannels := len(a.Channels)
	if numChannels == 0 {
		return errctx.Error("Cannot encode audio without channels")
	}

	if a.SampleRate <= 0 {
		return errctx.Error("Cannot encode audio without a sample rate")
	}

	numFrames := a.NumFrames()
	for i, channel := range a.Channels {
		if len(channel) != numFrames {
			return errctx.Field("channel", i).Error("Channels have mismatched lengths")
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errctx.Wrap(err).Error("Failed to create wav file")
	}
	defer file.Close()

	maxValue := float64(int(1)<<(outBitDepth-1) - 1)
	data := make([]int, 0, numFrames*numChannels)
	for frame := 0; frame < numFrames; frame++ {
		for _, channel := range a.Channels {
			sample := math.Max(-1, math.Min(1, channel[frame]))
			data = append(data, int(math.Round(sample*maxValue)))
		}
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  a.SampleRate,
		},
		Data:           data,
		SourceBitDepth: outBitDepth,
	}

	encoder := wav.NewEncoder(file, a.SampleRate, outBitDepth, numChannels, pcmFormat)
	if err := encoder.Write(buf); err != nil {
		return errctx.Wrap(err).Error("Failed to write samples")
	}

	if err := encoder.Close(); err != nil {
		return errctx.Wrap(err).Error("Failed to finalize wav header")
	}

	if err := file.Close(); err != nil {
		return errctx.Wrap(err).Error("Failed to close wav file")
	}

	return nil
}

func Decode(path string) (Audio, error) {
	errctx := cerr.Field("path", path)

	file, err := os.Open(path)
	if err != nil {
		return Audio{}, errctx.Wrap(err).Error("Failed to open wav file")
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return Audio{}, errctx.Error("File is not a valid wav file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Audio{}, errctx.Wrap(err).Error("Failed to read pcm data")
	}

	numChannels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	if numChannels == 0 || bitDepth == 0 {
		return Audio{}, errctx.Field("channels", numChannels).Field("bit_depth", bitDepth).
			Error("Wav header is missing channel or bit depth info")
	}

	scale := float64(int(1) << (bitDepth - 1))
	numFrames := len(buf.Data) / numChannels

	channels := make([][]float64, numChannels)
	for c := range channels {
		channels[c] = make([]float64, numFrames)
	}

	for frame := 0; frame < numFrames; frame++ {
		for c := 0; c < numChannels; c++ {
			channels[c][frame] = float64(buf.Data[frame*numChannels+c]) / scale
		}
	}

	return Audio{
		Channels:   channels,
		SampleRate: int(decoder.SampleRate),
	}, nil
}
