package dummy

import "github.com/cockroachdb/errors"

var NetworkFailure = errors.New("Network failure")
var ProcessFailure = errors.New("exit status 1")
