package env

import (
	"os"

	"github.com/cockroachdb/errors"
)

const Key = "ENVIRONMENT"

type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
	Test        Environment = "test"
)

func Parse(value string) (Environment, error) {
	switch Environment(value) {
	case Production, Development, Test:
		return Environment(value), nil
	case "":
		return "", errors.New("no environment is set")
	default:
		return "", errors.Newf("invalid environment %q", value)
	}
}

// Get panics when ENVIRONMENT is missing or unknown, there is no sane default
func Get() Environment {
	environment, err := Parse(os.Getenv(Key))
	if err != nil {
		panic(err.Error())
	}

	return environment
}
