package model

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/entity"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
	"github.com/veedubyou/stem-separator/src/shared/lib/executor"
	"github.com/veedubyou/stem-separator/src/shared/lib/wavfile"
	"github.com/veedubyou/stem-separator/src/shared/lib/working_dir"
)

const stemFileTemplate = "{stem}.{ext}"

var (
	_ Loader = DemucsLoader{}
	_ Model  = DemucsModel{}
)

type Model interface {
	Separate(ctx context.Context, audioPath string) (entity.Separation, error)
	Device() Device
}

type Loader interface {
	Load(ctx context.Context) (Model, error)
}

func NewDemucsLoader(demucsBinPath string, modelName string, workingDirStr string, devices *DeviceResolver, executor executor.Executor) (DemucsLoader, error) {
	workingDir, err := working_dir.NewWorkingDir(workingDirStr)
	if err != nil {
		return DemucsLoader{}, cerr.Wrap(err).Error("Failed to prepare the model working dir")
	}

	return DemucsLoader{
		demucsBinPath: demucsBinPath,
		modelName:     modelName,
		workingDir:    workingDir,
		devices:       devices,
		executor:      executor,
	}, nil
}

type DemucsLoader struct {
	demucsBinPath string
	modelName     string
	workingDir    working_dir.WorkingDir
	devices       *DeviceResolver
	executor      executor.Executor
}

func (d DemucsLoader) Load(ctx context.Context) (Model, error) {
	device := d.devices.Resolve(ctx)

	logger := log.WithFields(log.Fields{
		"demucs_bin_path": d.demucsBinPath,
		"model":           d.modelName,
		"device":          device,
	})
	logger.Info("Loading separation model")

	cmd := d.executor.Command(ctx, d.demucsBinPath, "--help")
	cmd.SetDir(d.workingDir.Root())

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, cerr.Field("demucs_bin_path", d.demucsBinPath).
			Field("demucs_output", string(output)).
			Wrap(err).
			Error(fmt.Sprintf("Separation model is unavailable: %s", string(output)))
	}

	logger.Info("Separation model is ready")

	return DemucsModel{
		demucsBinPath: d.demucsBinPath,
		modelName:     d.modelName,
		device:        device,
		workingDir:    d.workingDir,
		executor:      d.executor,
	}, nil
}

type DemucsModel struct {
	demucsBinPath string
	modelName     string
	device        Device
	workingDir    working_dir.WorkingDir
	executor      executor.Executor
}

func (d DemucsModel) Device() Device {
	return d.device
}

func (d DemucsModel) Separate(ctx context.Context, audioPath string) (entity.Separation, error) {
	absAudioPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, cerr.Wrap(err).Error("Cannot convert audio path to absolute format")
	}

	errctx := cerr.Field("audio_path", absAudioPath)

	// separating is a lengthy process, if we want to halt now is the time
	if ctx.Err() != nil {
		return nil, errctx.Wrap(ctx.Err()).Error("Context cancelled before separating could happen")
	}

	scratchDir, err := d.workingDir.TempDir()
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to create scratch dir")
	}
	defer os.RemoveAll(scratchDir)

	if err := d.runDemucs(ctx, absAudioPath, scratchDir); err != nil {
		return nil, errctx.Field("scratch_dir", scratchDir).Wrap(err).Error("Failed to execute demucs")
	}

	return d.collectStems(filepath.Join(scratchDir, d.modelName))
}

func (d DemucsModel) runDemucs(ctx context.Context, sourcePath string, destPath string) error {
	logger := log.WithFields(log.Fields{
		"sourcePath": sourcePath,
		"destPath":   destPath,
		"model":      d.modelName,
		"device":     d.device,
	})

	logger.Info("Running demucs command")

	args := []string{"-n", d.modelName, "-d", string(d.device), "-o", destPath, "--filename", stemFileTemplate, sourcePath}

	errctx := cerr.Field("demucs_bin_path", d.demucsBinPath).Field("demucs_args", args)

	cmd := d.executor.Command(ctx, d.demucsBinPath, args...)
	cmd.SetDir(d.workingDir.Root())

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errctx.Field("demucs_output", string(output)).
			Wrap(err).
			Error(fmt.Sprintf("Error occurred while running demucs: %s", string(output)))
	}

	logger.Debug(string(output))
	logger.Info("Finished demucs command")

	return nil
}

func (d DemucsModel) collectStems(dir string) (entity.Separation, error) {
	logger := log.WithField("dir", dir)
	logger.Info("Decoding separated stems")

	separation := entity.Separation{}
	for _, stem := range entity.AllStems {
		stemPath := filepath.Join(dir, stem.FileName())

		decoded, err := wavfile.Decode(stemPath)
		if err != nil {
			return nil, cerr.Field("stem", stem).Wrap(err).Error("Failed to decode separated stem")
		}

		if decoded.SampleRate != wavfile.StandardSampleRate {
			logger.WithFields(log.Fields{
				"stem":        stem,
				"sample_rate": decoded.SampleRate,
			}).Warn("Model produced an unexpected sample rate")
		}

		separation = append(separation, entity.StemWaveform{
			Stem:     stem,
			Waveform: entity.Waveform(decoded.Channels),
		})
	}

	return separation, nil
}
