package writer

import (
	"context"
	"os"

	"github.com/apex/log"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/entity"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/layout"
	"github.com/veedubyou/stem-separator/src/shared/cloud_storage/store"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
	"github.com/veedubyou/stem-separator/src/shared/lib/storagepath"
	"github.com/veedubyou/stem-separator/src/shared/lib/wavfile"
)

func NewResultWriter(layout layout.Layout) ResultWriter {
	return ResultWriter{
		layout: layout,
	}
}

type ResultWriter struct {
	layout layout.Layout

	fileStore     store.FileStore
	pathGenerator storagepath.Generator
}

// WithMirror copies every written stem to cloud storage as well
func (r ResultWriter) WithMirror(fileStore store.FileStore, pathGenerator storagepath.Generator) ResultWriter {
	r.fileStore = fileStore
	r.pathGenerator = pathGenerator
	return r
}

// Write has no rollback, stems written before a failure stay on disk
func (r ResultWriter) Write(ctx context.Context, jobID entity.JobID, separation entity.Separation) (entity.Tracks, error) {
	errctx := cerr.Field("job_id", jobID)

	if err := separation.Validate(); err != nil {
		return nil, errctx.Wrap(err).Error("Refusing to write an incomplete separation")
	}

	tracks := entity.Tracks{}
	for _, stemWaveform := range separation {
		stemPath := r.layout.StemPath(jobID, stemWaveform.Stem)

		err := wavfile.Encode(stemPath, wavfile.Audio{
			Channels:   stemWaveform.Waveform,
			SampleRate: wavfile.StandardSampleRate,
		})
		if err != nil {
			return nil, errctx.Field("stem", stemWaveform.Stem).Wrap(err).Error("Failed to write stem")
		}

		tracks[stemWaveform.Stem] = layout.DownloadPath(jobID, stemWaveform.Stem)
	}

	if r.fileStore != nil {
		r.mirror(ctx, jobID)
	}

	return tracks, nil
}

func (r ResultWriter) mirror(ctx context.Context, jobID entity.JobID) {
	for _, stem := range entity.AllStems {
		logger := log.WithFields(log.Fields{
			"job_id": jobID,
			"stem":   stem,
		})

		contents, err := os.ReadFile(r.layout.StemPath(jobID, stem))
		if err != nil {
			logger.WithError(err).Warn("Failed to read stem for mirroring")
			continue
		}

		url := r.pathGenerator.GeneratePath(jobID.String(), stem.FileName())
		if err := r.fileStore.WriteFile(ctx, url, contents); err != nil {
			logger.WithError(err).WithField("url", url).Warn("Failed to mirror stem to cloud storage")
			continue
		}

		logger.WithField("url", url).Debug("Mirrored stem")
	}
}
