package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-separator/src/shared/config"
)

var _ = Describe("ListenAddress", func() {
	DescribeTable("turns a port setting into something echo can listen on",
		func(port string, expected string) {
			Expect(config.ListenAddress(port)).To(Equal(expected))
		},
		Entry("a bare port", "5000", ":5000"),
		Entry("a port with a colon", ":5000", ":5000"),
		Entry("a host and port", "0.0.0.0:8080", "0.0.0.0:8080"),
		Entry("nothing", "", ""),
	)
})
