package entity

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type JobID string

var InvalidJobIDMark = errors.New("invalid job id")

func NewJobID() JobID {
	return JobID(uuid.NewString())
}

// ParseJobID only accepts the canonical lowercase form NewJobID produces,
// so a job id is always safe to use as a single path segment
func ParseJobID(value string) (JobID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "job id %q is not a uuid", value), InvalidJobIDMark)
	}

	if parsed.String() != value {
		return "", errors.Mark(errors.Newf("job id %q is not in canonical form", value), InvalidJobIDMark)
	}

	return JobID(value), nil
}

func (j JobID) String() string {
	return string(j)
}
