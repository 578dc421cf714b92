package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/entity"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
)

const downloadRoute = "/api/download"

// Layout knows where every file of a job lives. Paths are only ever
// built from a validated job id, stem or extension.
type Layout struct {
	uploadRoot string
	outputRoot string
}

func NewLayout(uploadRoot string, outputRoot string) (Layout, error) {
	absUploadRoot, err := filepath.Abs(uploadRoot)
	if err != nil {
		return Layout{}, cerr.Field("upload_root", uploadRoot).Wrap(err).Error("Cannot convert upload root to absolute format")
	}

	absOutputRoot, err := filepath.Abs(outputRoot)
	if err != nil {
		return Layout{}, cerr.Field("output_root", outputRoot).Wrap(err).Error("Cannot convert output root to absolute format")
	}

	return Layout{
		uploadRoot: absUploadRoot,
		outputRoot: absOutputRoot,
	}, nil
}

func (l Layout) Ensure() error {
	for _, dir := range []string{l.uploadRoot, l.outputRoot} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return cerr.Field("dir", dir).Wrap(err).Error("Failed to create storage root")
		}
	}

	return nil
}

func (l Layout) UploadRoot() string {
	return l.uploadRoot
}

func (l Layout) OutputRoot() string {
	return l.outputRoot
}

func (l Layout) UploadPath(jobID entity.JobID, ext string) string {
	return filepath.Join(l.uploadRoot, fmt.Sprintf("%s_input.%s", jobID, ext))
}

func (l Layout) AudioPath(jobID entity.JobID) string {
	return filepath.Join(l.uploadRoot, fmt.Sprintf("%s_audio.wav", jobID))
}

func (l Layout) JobOutputDir(jobID entity.JobID) string {
	return filepath.Join(l.outputRoot, jobID.String())
}

func (l Layout) EnsureJobOutputDir(jobID entity.JobID) error {
	dir := l.JobOutputDir(jobID)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return cerr.Field("dir", dir).Wrap(err).Error("Failed to create job output dir")
	}

	return nil
}

func (l Layout) StemPath(jobID entity.JobID, stem entity.Stem) string {
	return filepath.Join(l.JobOutputDir(jobID), stem.FileName())
}

func DownloadPath(jobID entity.JobID, stem entity.Stem) string {
	return fmt.Sprintf("%s/%s/%s", downloadRoute, jobID, stem)
}

// Prune removes job output dirs last modified before now - olderThan.
// Anything in the output root that isn't named like a job is left alone.
func (l Layout) Prune(olderThan time.Duration, now time.Time) ([]entity.JobID, error) {
	cutoff := now.Add(-olderThan)
	logger := log.WithFields(log.Fields{
		"output_root": l.outputRoot,
		"cutoff":      cutoff,
	})

	dirEntries, err := os.ReadDir(l.outputRoot)
	if err != nil {
		return nil, cerr.Field("output_root", l.outputRoot).Wrap(err).Error("Error reading output root")
	}

	pruned := []entity.JobID{}
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}

		jobID, err := entity.ParseJobID(dirEntry.Name())
		if err != nil {
			continue
		}

		info, err := dirEntry.Info()
		if err != nil {
			return pruned, cerr.Field("job_id", jobID).Wrap(err).Error("Failed to stat job output dir")
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(l.JobOutputDir(jobID)); err != nil {
			return pruned, cerr.Field("job_id", jobID).Wrap(err).Error("Failed to remove job output dir")
		}

		pruned = append(pruned, jobID)
	}

	logger.WithField("pruned", len(pruned)).Info("Finished pruning job outputs")
	return pruned, nil
}
