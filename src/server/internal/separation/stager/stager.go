package stager

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/entity"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/layout"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
)

var (
	DisallowedTypeMark = errors.New("file type not allowed")
	StagingMark        = errors.New("staging failed")
	ExtractionMark     = errors.New("audio extraction failed")
)

var (
	videoExtensions = map[string]bool{"mp4": true, "avi": true, "mov": true, "mkv": true}
	audioExtensions = map[string]bool{"mp3": true, "wav": true}
)

// Extension returns the lowercased text after the last dot, if the type is accepted
func Extension(fileName string) (string, bool) {
	dot := strings.LastIndex(fileName, ".")
	if dot < 0 {
		return "", false
	}

	ext := strings.ToLower(fileName[dot+1:])
	if !videoExtensions[ext] && !audioExtensions[ext] {
		return "", false
	}

	return ext, true
}

func IsVideo(ext string) bool {
	return videoExtensions[ext]
}

// StagedInput is the single audio file a job separates, plus whatever is left on disk for it
type StagedInput struct {
	JobID      entity.JobID
	UploadPath string
	AudioPath  string
	FromVideo  bool
}

// Cleanup removes every staged file of the job, missing files are fine
func (s StagedInput) Cleanup() {
	for _, path := range []string{s.AudioPath, s.UploadPath} {
		if path == "" {
			continue
		}

		err := os.Remove(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithFields(log.Fields{
				"job_id": s.JobID,
				"path":   path,
			}).WithError(err).Warn("Failed to remove staged file")
		}
	}
}

func NewStager(layout layout.Layout, extractor AudioExtractor) Stager {
	return Stager{
		layout:    layout,
		extractor: extractor,
	}
}

type Stager struct {
	layout    layout.Layout
	extractor AudioExtractor
}

func (s Stager) Stage(ctx context.Context, jobID entity.JobID, fileName string, content io.Reader) (StagedInput, error) {
	errctx := cerr.Field("job_id", jobID).Field("file_name", fileName)

	ext, ok := Extension(fileName)
	if !ok {
		return StagedInput{}, errors.Mark(errctx.Error("File type not allowed"), DisallowedTypeMark)
	}

	staged := StagedInput{
		JobID:      jobID,
		UploadPath: s.layout.UploadPath(jobID, ext),
		FromVideo:  IsVideo(ext),
	}

	if err := saveUpload(staged.UploadPath, content); err != nil {
		staged.Cleanup()
		return StagedInput{}, errors.Mark(errctx.Wrap(err).Error("Failed to save upload"), StagingMark)
	}

	if staged.FromVideo {
		staged.AudioPath = s.layout.AudioPath(jobID)

		if err := s.extractor.ExtractAudio(ctx, staged.UploadPath, staged.AudioPath); err != nil {
			staged.Cleanup()
			return StagedInput{}, errors.Mark(errctx.Wrap(err).Error("Failed to extract audio from video"), ExtractionMark)
		}

		if err := os.Remove(staged.UploadPath); err != nil {
			staged.Cleanup()
			return StagedInput{}, errors.Mark(errctx.Wrap(err).Error("Failed to remove video container"), StagingMark)
		}
		staged.UploadPath = ""
	} else {
		staged.AudioPath = staged.UploadPath
	}

	if err := s.layout.EnsureJobOutputDir(jobID); err != nil {
		staged.Cleanup()
		return StagedInput{}, errors.Mark(errctx.Wrap(err).Error("Failed to prepare output dir"), StagingMark)
	}

	log.WithFields(log.Fields{
		"job_id":     jobID,
		"audio_path": staged.AudioPath,
		"from_video": staged.FromVideo,
	}).Info("Staged upload")

	return staged, nil
}

func saveUpload(path string, content io.Reader) error {
	file, err := os.Create(path)
	if err != nil {
		return cerr.Field("path", path).Wrap(err).Error("Failed to create upload file")
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return cerr.Field("path", path).Wrap(err).Error("Failed to copy upload contents")
	}

	if err := file.Close(); err != nil {
		return cerr.Field("path", path).Wrap(err).Error("Failed to close upload file")
	}

	return nil
}
