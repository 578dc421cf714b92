package store_test

import (
	"context"

	"github.com/fsouza/fake-gcs-server/fakestorage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-separator/src/shared/cloud_storage/store"
)

var _ = Describe("GoogleFileStore", func() {
	const (
		host       = "https://storage.googleapis.com"
		bucketName = "stems-test"
	)

	var (
		server    *fakestorage.Server
		fileStore store.GoogleFileStore
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()

		By("Starting the fake cloud storage server")
		server = fakestorage.NewServer(nil)
		server.CreateBucketWithOpts(fakestorage.CreateBucketOpts{Name: bucketName})

		fileStore = store.NewGoogleFileStoreFromClient(host, server.Client())
	})

	AfterEach(func() {
		server.Stop()
	})

	It("writes objects under the bucket named in the URL", func() {
		err := fileStore.WriteFile(ctx, host+"/"+bucketName+"/job-1/vocals.wav", []byte("riff"))
		Expect(err).NotTo(HaveOccurred())

		object, err := server.GetObject(bucketName, "job-1/vocals.wav")
		Expect(err).NotTo(HaveOccurred())
		Expect(object.Content).To(Equal([]byte("riff")))
	})

	It("reads back what was written", func() {
		fileURL := host + "/" + bucketName + "/job-2/drums.wav"
		Expect(fileStore.WriteFile(ctx, fileURL, []byte("boom"))).To(Succeed())

		contents, err := fileStore.GetFile(ctx, fileURL)
		Expect(err).NotTo(HaveOccurred())
		Expect(contents).To(Equal([]byte("boom")))
	})

	It("fails on a missing object", func() {
		_, err := fileStore.GetFile(ctx, host+"/"+bucketName+"/nothing/here.wav")
		Expect(err).To(HaveOccurred())
	})

	It("rejects URLs for another host", func() {
		err := fileStore.WriteFile(ctx, "https://elsewhere.example.com/"+bucketName+"/a.wav", []byte("x"))
		Expect(err).To(HaveOccurred())
	})

	It("rejects URLs without an object name", func() {
		err := fileStore.WriteFile(ctx, host+"/"+bucketName, []byte("x"))
		Expect(err).To(HaveOccurred())
	})
})
