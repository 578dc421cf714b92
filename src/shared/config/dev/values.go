package dev

// Server
const (
	Port      = ":5000"
	UploadDir = "uploads"
	OutputDir = "outputs"
)

// Model
const (
	DemucsModel          = "htdemucs"
	ModelWorkingDirPath  = "wd/demucs"
	InferenceConcurrency = 1
)

// RabbitMQ, left empty so that a local broker is opt-in through .env
const (
	RabbitMQHost      = ""
	RabbitMQQueueName = "stem-separator-events-dev"
)

// Cloud storage emulator
const (
	StorageHost         = "http://localhost:4443"
	StorageHostEndpoint = "http://localhost:4443/storage/v1"
	StorageBucketName   = "stem-separator-dev"
)
