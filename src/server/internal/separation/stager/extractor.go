package stager

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
	"github.com/veedubyou/stem-separator/src/shared/lib/executor"
)

const extractedSampleRate = 44100

var _ AudioExtractor = FFmpegExtractor{}

type AudioExtractor interface {
	ExtractAudio(ctx context.Context, containerPath string, audioPath string) error
}

func NewFFmpegExtractor(ffmpegBinPath string, executor executor.Executor) FFmpegExtractor {
	return FFmpegExtractor{
		ffmpegBinPath: ffmpegBinPath,
		executor:      executor,
	}
}

// FFmpegExtractor drops the video stream and writes 16-bit stereo pcm
type FFmpegExtractor struct {
	ffmpegBinPath string
	executor      executor.Executor
}

func (f FFmpegExtractor) ExtractAudio(ctx context.Context, containerPath string, audioPath string) error {
	logger := log.WithFields(log.Fields{
		"containerPath": containerPath,
		"audioPath":     audioPath,
	})

	logger.Info("Running ffmpeg command")

	args := []string{
		"-y",
		"-i", containerPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprint(extractedSampleRate),
		"-ac", "2",
		audioPath,
	}

	errctx := cerr.Field("ffmpeg_bin_path", f.ffmpegBinPath).Field("ffmpeg_args", args)

	cmd := f.executor.Command(ctx, f.ffmpegBinPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errctx.Field("ffmpeg_output", string(output)).
			Wrap(err).
			Error(fmt.Sprintf("Error occurred while running ffmpeg: %s", string(output)))
	}

	logger.Debug(string(output))
	logger.Info("Finished ffmpeg command")

	return nil
}
