package logging_test

import (
	"os"
	"path/filepath"

	"github.com/apex/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-separator/src/shared/lib/env"
	"github.com/veedubyou/stem-separator/src/shared/lib/logging"
)

var _ = Describe("Logging", func() {
	AfterEach(func() {
		log.SetLevel(log.InfoLevel)
	})

	It("rejects an unknown level", func() {
		_, err := logging.Setup(logging.Config{
			Environment: env.Test,
			Level:       "chatty",
		})
		Expect(err).To(HaveOccurred())
	})

	It("writes json lines to the rotated file", func() {
		logPath := filepath.Join(GinkgoT().TempDir(), "logs", "server.log")

		closer, err := logging.Setup(logging.Config{
			Environment: env.Test,
			Level:       "debug",
			FilePath:    logPath,
		})
		Expect(err).NotTo(HaveOccurred())

		log.WithField("job_id", "abc").Info("hello from the test")
		Expect(closer.Close()).To(Succeed())

		contents, err := os.ReadFile(logPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(contents)).To(ContainSubstring(`"job_id":"abc"`))
		Expect(string(contents)).To(ContainSubstring("hello from the test"))
	})
})
