package envvar

import (
	"fmt"
	"os"
	"strconv"
)

const (
	PORT                             = "PORT"
	UPLOAD_DIR                       = "UPLOAD_DIR"
	OUTPUT_DIR                       = "OUTPUT_DIR"
	FFMPEG_BIN_PATH                  = "FFMPEG_BIN_PATH"
	DEMUCS_BIN_PATH                  = "DEMUCS_BIN_PATH"
	DEMUCS_MODEL                     = "DEMUCS_MODEL"
	DEVICE_PROBE_BIN_PATH            = "DEVICE_PROBE_BIN_PATH"
	MODEL_WORKING_DIR_PATH           = "MODEL_WORKING_DIR_PATH"
	INFERENCE_CONCURRENCY            = "INFERENCE_CONCURRENCY"
	ALLOWED_FE_ORIGINS               = "ALLOWED_FE_ORIGINS"
	RABBITMQ_URL                     = "RABBITMQ_URL"
	RABBITMQ_QUEUE_NAME              = "RABBITMQ_QUEUE_NAME"
	GOOGLE_CLOUD_KEY                 = "GOOGLE_CLOUD_KEY"
	GOOGLE_CLOUD_STORAGE_BUCKET_NAME = "GOOGLE_CLOUD_STORAGE_BUCKET_NAME"
	LOG_LEVEL                        = "LOG_LEVEL"
	LOG_FILE                         = "LOG_FILE"
)

func MustGet(key string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet {
		panic(fmt.Sprintf("No env variable found for key %s", key))
	}

	if val == "" {
		panic(fmt.Sprintf("Env variable is empty for key %s", key))
	}

	return val
}

func GetOrDefault(key string, fallback string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet || val == "" {
		return fallback
	}

	return val
}

func GetIntOrDefault(key string, fallback int) int {
	val, isSet := os.LookupEnv(key)
	if !isSet || val == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		panic(fmt.Sprintf("Env variable %s is not an integer: %s", key, val))
	}

	return parsed
}
