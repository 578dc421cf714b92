package separationusecase

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/veedubyou/stem-separator/src/server/internal/errors/api"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/entity"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/errors"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/layout"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/stager"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/writer"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
	"github.com/veedubyou/stem-separator/src/shared/lib/metrics"
	"github.com/veedubyou/stem-separator/src/shared/lib/rabbitmq"
)

const CompletedEventType = "separation_completed"

type Separator interface {
	Separate(ctx context.Context, audioPath string) (entity.Separation, error)
	Accelerated(ctx context.Context) bool
}

type Usecase struct {
	layout    layout.Layout
	stager    stager.Stager
	separator Separator
	writer    writer.ResultWriter
	publisher rabbitmq.Publisher
}

func NewUsecase(layout layout.Layout, stager stager.Stager, separator Separator, writer writer.ResultWriter, publisher rabbitmq.Publisher) Usecase {
	return Usecase{
		layout:    layout,
		stager:    stager,
		separator: separator,
		writer:    writer,
		publisher: publisher,
	}
}

func (u Usecase) Health(ctx context.Context) entity.Health {
	return entity.Health{
		Status:         "healthy",
		TorchAvailable: u.separator.Accelerated(ctx),
	}
}

// ValidateFileName runs before anything touches the disk or the model
func (u Usecase) ValidateFileName(fileName string) *api.Error {
	if fileName == "" {
		return u.fail(api.CommitError(errors.New("Upload has an empty file name"),
			separationerrors.NoFileSelectedCode,
			separationerrors.NoFileSelectedMsg))
	}

	if _, ok := stager.Extension(fileName); !ok {
		err := cerr.Field("file_name", fileName).Error("Upload has a disallowed extension")
		return u.fail(api.CommitError(err,
			separationerrors.FileTypeNotAllowedCode,
			separationerrors.FileTypeNotAllowedMsg))
	}

	return nil
}

// RejectMissingFile is for requests whose form carries no "file" part at all
func (u Usecase) RejectMissingFile(err error) *api.Error {
	return u.fail(api.CommitError(err,
		separationerrors.NoFileProvidedCode,
		separationerrors.NoFileProvidedMsg))
}

// RejectUnreadableUpload is for uploads that were received but can't be opened
func (u Usecase) RejectUnreadableUpload(err error) *api.Error {
	return u.fail(api.CommitError(err,
		separationerrors.StagingFailedCode,
		err.Error()))
}

func (u Usecase) Separate(ctx context.Context, fileName string, content io.Reader) (entity.SeparationResult, *api.Error) {
	if apiErr := u.ValidateFileName(fileName); apiErr != nil {
		return entity.SeparationResult{}, apiErr
	}

	jobID := entity.NewJobID()
	logger := log.WithFields(log.Fields{
		"job_id":    jobID,
		"file_name": fileName,
	})
	logger.Info("Received separation request")

	started := time.Now()
	staged, err := u.stager.Stage(ctx, jobID, fileName, content)
	metrics.ObserveStage("staging", started)
	if err != nil {
		err = cerr.Field("job_id", jobID).Wrap(err).Error("Failed to stage upload")
		switch {
		case markers.Is(err, stager.DisallowedTypeMark):
			return entity.SeparationResult{}, u.fail(api.CommitError(err,
				separationerrors.FileTypeNotAllowedCode,
				separationerrors.FileTypeNotAllowedMsg))

		case markers.Is(err, stager.ExtractionMark):
			return entity.SeparationResult{}, u.fail(api.CommitError(err,
				separationerrors.ExtractionFailedCode,
				err.Error()))

		case markers.Is(err, stager.StagingMark):
			fallthrough
		default:
			return entity.SeparationResult{}, u.fail(api.CommitError(err,
				separationerrors.StagingFailedCode,
				err.Error()))
		}
	}
	defer staged.Cleanup()

	started = time.Now()
	separation, err := u.separator.Separate(ctx, staged.AudioPath)
	metrics.ObserveStage("inference", started)
	if err != nil {
		err = cerr.Field("job_id", jobID).Wrap(err).Error("Failed to separate audio")
		return entity.SeparationResult{}, u.fail(api.CommitError(err,
			separationerrors.InferenceFailedCode,
			err.Error()))
	}

	started = time.Now()
	tracks, err := u.writer.Write(ctx, jobID, separation)
	metrics.ObserveStage("write", started)
	if err != nil {
		err = cerr.Field("job_id", jobID).Wrap(err).Error("Failed to write stems")
		return entity.SeparationResult{}, u.fail(api.CommitError(err,
			separationerrors.WriteFailedCode,
			err.Error()))
	}

	u.publishCompleted(ctx, entity.CompletedEvent{
		JobID:    jobID,
		FileName: fileName,
		Stems:    entity.AllStems,
		Tracks:   tracks,
	})

	metrics.IncSeparation(metrics.OutcomeSuccess, "")
	logger.Info("Finished separation request")

	return entity.SeparationResult{
		JobID:  jobID,
		Tracks: tracks,
	}, nil
}

// LocateStem resolves a download to a file on disk. Every way of not finding it is a not found.
func (u Usecase) LocateStem(jobIDStr string, stemStr string) (string, entity.Stem, *api.Error) {
	notFound := func(err error) (string, entity.Stem, *api.Error) {
		metrics.IncDownload("invalid", false)
		return "", "", api.CommitError(err,
			separationerrors.StemNotFoundCode,
			separationerrors.StemNotFoundMsg)
	}

	jobID, err := entity.ParseJobID(jobIDStr)
	if err != nil {
		return notFound(errors.Wrap(err, "Download requested with a bad job id"))
	}

	stem, err := entity.ParseStem(stemStr)
	if err != nil {
		return notFound(errors.Wrap(err, "Download requested with a bad stem"))
	}

	stemPath := u.layout.StemPath(jobID, stem)
	info, err := os.Stat(stemPath)
	if err != nil {
		metrics.IncDownload(string(stem), false)
		return "", "", api.CommitError(cerr.Field("path", stemPath).Wrap(err).Error("Stem file is unavailable"),
			separationerrors.StemNotFoundCode,
			separationerrors.StemNotFoundMsg)
	}

	if !info.Mode().IsRegular() {
		metrics.IncDownload(string(stem), false)
		return "", "", api.CommitError(cerr.Field("path", stemPath).Error("Stem path is not a regular file"),
			separationerrors.StemNotFoundCode,
			separationerrors.StemNotFoundMsg)
	}

	metrics.IncDownload(string(stem), true)
	return stemPath, stem, nil
}

func (u Usecase) publishCompleted(ctx context.Context, event entity.CompletedEvent) {
	err := rabbitmq.PublishJSON(ctx, u.publisher, CompletedEventType, event)
	if err != nil {
		log.WithField("job_id", event.JobID).
			WithError(err).
			Warn("Failed to publish separation completed event")
	}
}

func (u Usecase) fail(apiErr *api.Error) *api.Error {
	metrics.IncSeparation(metrics.OutcomeFailure, string(apiErr.ErrorCode))
	return apiErr
}
