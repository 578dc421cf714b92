package cerr_test

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
)

var _ = Describe("Cerr", func() {
	var rootErr error

	BeforeEach(func() {
		rootErr = errors.New("disk on fire")
	})

	It("prefixes the message when wrapping", func() {
		err := cerr.Wrap(rootErr).Error("Failed to write stem")
		Expect(err.Error()).To(Equal("Failed to write stem: disk on fire"))
	})

	It("keeps the original error reachable", func() {
		err := cerr.Field("path", "/tmp/a.wav").Wrap(rootErr).Error("Failed to write stem")
		Expect(errors.Is(err, rootErr)).To(BeTrue())
	})

	It("returns nil when wrapping nil", func() {
		err := cerr.Field("path", "/tmp/a.wav").Wrap(nil).Error("Nothing happened")
		Expect(err).To(BeNil())
	})

	Describe("Collecting fields", func() {
		It("gathers fields from every layer of the chain", func() {
			inner := cerr.Field("stem", "vocals").Wrap(rootErr).Error("Failed to encode")
			outer := cerr.Fields(cerr.F{"job_id": "abc"}).Wrap(inner).Error("Failed to write results")

			fields := cerr.CollectFields(outer)
			Expect(fields).To(HaveKeyWithValue("stem", "vocals"))
			Expect(fields).To(HaveKeyWithValue("job_id", "abc"))
		})

		It("lets the outer layer override the inner one", func() {
			inner := cerr.Field("stage", "inference").Error("Model exploded")
			outer := cerr.Field("stage", "request").Wrap(inner).Error("Request failed")

			Expect(cerr.CollectFields(outer)).To(HaveKeyWithValue("stage", "request"))
		})

		It("is empty for plain errors", func() {
			Expect(cerr.CollectFields(rootErr)).To(BeEmpty())
		})
	})
})
