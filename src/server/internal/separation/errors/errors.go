package separationerrors

import "github.com/veedubyou/stem-separator/src/server/internal/errors/api"

// validation
const (
	NoFileProvidedCode     = api.ErrorCode("no_file_provided")
	NoFileSelectedCode     = api.ErrorCode("no_file_selected")
	FileTypeNotAllowedCode = api.ErrorCode("file_type_not_allowed")
)

// processing
const (
	StagingFailedCode    = api.ErrorCode("staging_failed")
	ExtractionFailedCode = api.ErrorCode("extraction_failed")
	InferenceFailedCode  = api.ErrorCode("inference_failed")
	WriteFailedCode      = api.ErrorCode("write_failed")
)

// lookup
const (
	StemNotFoundCode = api.ErrorCode("stem_not_found")
)

const (
	NoFileProvidedMsg     = "No file provided"
	NoFileSelectedMsg     = "No file selected"
	FileTypeNotAllowedMsg = "File type not allowed"
	StemNotFoundMsg       = "File not found"
)
