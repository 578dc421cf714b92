package config

import (
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

func FindBin(bin string) string {
	path, err := LookupBin(bin)
	if err != nil {
		panic(err.Error())
	}

	return path
}

func LookupBin(bin string) (string, error) {
	cmd := exec.Command("which", bin)
	output, err := cmd.CombinedOutput()

	stringOutput := string(output)
	if err != nil {
		return "", errors.Newf("failed to find %s: %s", bin, stringOutput)
	}

	trimmedOutput := strings.TrimSpace(stringOutput)
	if trimmedOutput == "" {
		return "", errors.Newf("no bin found for %s", bin)
	}

	return trimmedOutput, nil
}

func FFmpegPath() string {
	return FindBin("ffmpeg")
}

func DemucsPath() string {
	return FindBin("demucs")
}

// DeviceProbePath falls back to the bare name, a missing probe just means no accelerator
func DeviceProbePath() string {
	path, err := LookupBin("nvidia-smi")
	if err != nil {
		return "nvidia-smi"
	}

	return path
}
