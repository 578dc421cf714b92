package testing

import (
	"path/filepath"

	server_app "github.com/veedubyou/stem-separator/src/server/application"
	"github.com/veedubyou/stem-separator/src/shared/config/dev"
	"github.com/veedubyou/stem-separator/src/shared/lib/executor"
)

// ServerConfig keeps every file the server writes under root
func ServerConfig(root string, mediaExecutor executor.Executor) server_app.Config {
	return server_app.Config{
		Port:                 ServerPort,
		Log:                  false,
		CORSAllowedOrigins:   []string{"*"},
		UploadDir:            filepath.Join(root, "uploads"),
		OutputDir:            filepath.Join(root, "outputs"),
		FFmpegBinPath:        "/usr/bin/ffmpeg",
		DemucsBinPath:        "/usr/bin/demucs",
		DemucsModel:          dev.DemucsModel,
		DeviceProbeBinPath:   "/usr/bin/nvidia-smi",
		ModelWorkingDirPath:  filepath.Join(root, "wd", "demucs"),
		InferenceConcurrency: dev.InferenceConcurrency,
		RabbitMQURL:          "",
		RabbitMQQueueName:    RabbitMQQueueName,
		Executor:             mediaExecutor,
	}
}

// RabbitMQ
const (
	RabbitMQQueueName = "stem-separator-events-test"
)

// Server
const (
	ServerPort = ":5010"
)
