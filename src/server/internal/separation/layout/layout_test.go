package layout_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/entity"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/layout"
	. "github.com/veedubyou/stem-separator/src/shared/testing"
)

var _ = Describe("Layout", func() {
	var (
		root       string
		uploadRoot string
		outputRoot string
		storage    layout.Layout
		jobID      entity.JobID
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		uploadRoot = filepath.Join(root, "uploads")
		outputRoot = filepath.Join(root, "outputs")
		storage = ExpectSuccess(layout.NewLayout(uploadRoot, outputRoot))
		jobID = entity.NewJobID()
	})

	It("creates both roots", func() {
		Expect(storage.Ensure()).To(Succeed())
		Expect(uploadRoot).To(BeADirectory())
		Expect(outputRoot).To(BeADirectory())
	})

	It("is fine with roots that already exist", func() {
		Expect(storage.Ensure()).To(Succeed())
		Expect(storage.Ensure()).To(Succeed())
	})

	Describe("Paths", func() {
		It("names the staged upload after the job", func() {
			Expect(storage.UploadPath(jobID, "mp4")).To(Equal(filepath.Join(uploadRoot, string(jobID)+"_input.mp4")))
		})

		It("names the extracted audio after the job", func() {
			Expect(storage.AudioPath(jobID)).To(Equal(filepath.Join(uploadRoot, string(jobID)+"_audio.wav")))
		})

		It("puts stems in the job's output dir", func() {
			Expect(storage.StemPath(jobID, entity.Vocals)).To(Equal(filepath.Join(outputRoot, string(jobID), "vocals.wav")))
		})

		It("builds the download path from the job and stem", func() {
			Expect(layout.DownloadPath(jobID, entity.Bass)).To(Equal("/api/download/" + string(jobID) + "/bass"))
		})
	})

	Describe("Pruning", func() {
		var (
			now    time.Time
			oldJob entity.JobID
			newJob entity.JobID
		)

		BeforeEach(func() {
			now = time.Now()
			oldJob = entity.NewJobID()
			newJob = entity.NewJobID()

			Expect(storage.Ensure()).To(Succeed())
			Expect(storage.EnsureJobOutputDir(oldJob)).To(Succeed())
			Expect(storage.EnsureJobOutputDir(newJob)).To(Succeed())

			longAgo := now.Add(-48 * time.Hour)
			Expect(os.Chtimes(storage.JobOutputDir(oldJob), longAgo, longAgo)).To(Succeed())

			By("Adding something that isn't a job")
			stranger := filepath.Join(outputRoot, "keep-me")
			Expect(os.MkdirAll(stranger, os.ModePerm)).To(Succeed())
			Expect(os.Chtimes(stranger, longAgo, longAgo)).To(Succeed())
		})

		It("removes only jobs older than the cutoff", func() {
			pruned, err := storage.Prune(24*time.Hour, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(pruned).To(ConsistOf(oldJob))

			Expect(storage.JobOutputDir(oldJob)).NotTo(BeADirectory())
			Expect(storage.JobOutputDir(newJob)).To(BeADirectory())
			Expect(filepath.Join(outputRoot, "keep-me")).To(BeADirectory())
		})
	})
})
