package testing

import (
	"os"

	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-separator/src/shared/lib/env"
)

func SetTestEnv() {
	err := os.Setenv(env.Key, string(env.Test))
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
}
