package cmd

import (
	"strings"

	"github.com/veedubyou/stem-separator/src/server/application"
	"github.com/veedubyou/stem-separator/src/shared/config"
	"github.com/veedubyou/stem-separator/src/shared/config/dev"
	"github.com/veedubyou/stem-separator/src/shared/config/envvar"
	"github.com/veedubyou/stem-separator/src/shared/config/prod"
	"github.com/veedubyou/stem-separator/src/shared/lib/env"
	"github.com/veedubyou/stem-separator/src/shared/lib/logging"
)

func appConfig(environment env.Environment) application.Config {
	uploadDir, outputDir := storageDirs(environment)

	switch environment {
	case env.Production:
		commaSeparatedOrigins := envvar.MustGet(envvar.ALLOWED_FE_ORIGINS)
		allowedOrigins := strings.Split(commaSeparatedOrigins, ",")

		var cloudStorageConfig config.CloudStorage
		if bucketName := envvar.GetOrDefault(envvar.GOOGLE_CLOUD_STORAGE_BUCKET_NAME, ""); bucketName != "" {
			cloudStorageConfig = config.ProdCloudStorage{
				StorageHost: prod.GOOGLE_STORAGE_HOST,
				SecretKey:   envvar.MustGet(envvar.GOOGLE_CLOUD_KEY),
				BucketName:  bucketName,
			}
		}

		return application.Config{
			Port:                 config.ListenAddress(envvar.GetOrDefault(envvar.PORT, prod.Port)),
			Log:                  true,
			CORSAllowedOrigins:   allowedOrigins,
			UploadDir:            uploadDir,
			OutputDir:            outputDir,
			FFmpegBinPath:        envvar.MustGet(envvar.FFMPEG_BIN_PATH),
			DemucsBinPath:        envvar.MustGet(envvar.DEMUCS_BIN_PATH),
			DemucsModel:          envvar.GetOrDefault(envvar.DEMUCS_MODEL, prod.DemucsModel),
			DeviceProbeBinPath:   envvar.GetOrDefault(envvar.DEVICE_PROBE_BIN_PATH, ""),
			ModelWorkingDirPath:  envvar.MustGet(envvar.MODEL_WORKING_DIR_PATH),
			InferenceConcurrency: int64(envvar.GetIntOrDefault(envvar.INFERENCE_CONCURRENCY, prod.InferenceConcurrency)),
			RabbitMQURL:          envvar.GetOrDefault(envvar.RABBITMQ_URL, ""),
			RabbitMQQueueName:    envvar.GetOrDefault(envvar.RABBITMQ_QUEUE_NAME, ""),
			CloudStorageConfig:   cloudStorageConfig,
		}

	case env.Development:
		var cloudStorageConfig config.CloudStorage
		if bucketName := envvar.GetOrDefault(envvar.GOOGLE_CLOUD_STORAGE_BUCKET_NAME, ""); bucketName != "" {
			cloudStorageConfig = config.LocalCloudStorage{
				StorageHost:  dev.StorageHost,
				HostEndpoint: dev.StorageHostEndpoint,
				BucketName:   bucketName,
			}
		}

		return application.Config{
			Port:                 config.ListenAddress(envvar.GetOrDefault(envvar.PORT, dev.Port)),
			Log:                  true,
			CORSAllowedOrigins:   []string{"*"},
			UploadDir:            uploadDir,
			OutputDir:            outputDir,
			FFmpegBinPath:        binPath(envvar.FFMPEG_BIN_PATH, config.FFmpegPath),
			DemucsBinPath:        binPath(envvar.DEMUCS_BIN_PATH, config.DemucsPath),
			DemucsModel:          envvar.GetOrDefault(envvar.DEMUCS_MODEL, dev.DemucsModel),
			DeviceProbeBinPath:   binPath(envvar.DEVICE_PROBE_BIN_PATH, config.DeviceProbePath),
			ModelWorkingDirPath:  envvar.GetOrDefault(envvar.MODEL_WORKING_DIR_PATH, dev.ModelWorkingDirPath),
			InferenceConcurrency: int64(envvar.GetIntOrDefault(envvar.INFERENCE_CONCURRENCY, dev.InferenceConcurrency)),
			RabbitMQURL:          envvar.GetOrDefault(envvar.RABBITMQ_URL, dev.RabbitMQHost),
			RabbitMQQueueName:    envvar.GetOrDefault(envvar.RABBITMQ_QUEUE_NAME, dev.RabbitMQQueueName),
			CloudStorageConfig:   cloudStorageConfig,
		}

	default:
		panic("Unexpected environment")
	}
}

func storageDirs(environment env.Environment) (string, string) {
	if environment == env.Production {
		return envvar.GetOrDefault(envvar.UPLOAD_DIR, prod.UploadDir),
			envvar.GetOrDefault(envvar.OUTPUT_DIR, prod.OutputDir)
	}

	return envvar.GetOrDefault(envvar.UPLOAD_DIR, dev.UploadDir),
		envvar.GetOrDefault(envvar.OUTPUT_DIR, dev.OutputDir)
}

func loggingConfig(environment env.Environment) logging.Config {
	return logging.Config{
		Environment: environment,
		Level:       envvar.GetOrDefault(envvar.LOG_LEVEL, ""),
		FilePath:    envvar.GetOrDefault(envvar.LOG_FILE, ""),
		MaxSizeMB:   prod.LogMaxSizeMB,
		MaxBackups:  prod.LogMaxBackups,
		MaxAgeDays:  prod.LogMaxAgeDays,
	}
}

func binPath(key string, find func() string) string {
	if path := envvar.GetOrDefault(key, ""); path != "" {
		return path
	}

	return find()
}
