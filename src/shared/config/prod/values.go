package prod

const (
	GOOGLE_STORAGE_HOST = "https://storage.googleapis.com"
)

// Server
const (
	Port      = ":5000"
	UploadDir = "/var/lib/stem-separator/uploads"
	OutputDir = "/var/lib/stem-separator/outputs"
)

// Model
const (
	DemucsModel          = "htdemucs"
	InferenceConcurrency = 1
)

// Logs
const (
	LogMaxSizeMB  = 100
	LogMaxBackups = 5
	LogMaxAgeDays = 30
)
