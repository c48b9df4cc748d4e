package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	envGRPCAddr              = "DIARY_GRPC_ADDR"
	envMetricsAddr           = "DIARY_METRICS_ADDR"
	envDatabaseDSN           = "DIARY_DATABASE_DSN"
	envSecretKey             = "DIARY_SECRET_KEY"
	envS3User                = "DIARY_S3_USER"
	envS3Password            = "DIARY_S3_PASSWORD"
	envS3Bucket              = "DIARY_S3_BUCKET"
	envS3Region              = "DIARY_S3_REGION"
	envS3Endpoint            = "DIARY_S3_ENDPOINT"
	envTranscriptionURL      = "DIARY_TRANSCRIPTION_URL"
	envTranscriptionModel    = "DIARY_TRANSCRIPTION_MODEL"
	envTranscriptionLanguage = "DIARY_TRANSCRIPTION_LANGUAGE"
	envTranscriptionTimeout  = "DIARY_TRANSCRIPTION_TIMEOUT"
	envWorkers               = "DIARY_WORKERS"
	envQueueSize             = "DIARY_QUEUE_SIZE"
	envFreeEntryLimit        = "DIARY_FREE_ENTRY_LIMIT"
	envDailyQuestionLimit    = "DIARY_DAILY_QUESTION_LIMIT"
	envLogLevel              = "DIARY_LOG_LEVEL"
)

// parseEnv overlays Config with DIARY_* environment variables.
//
// A dotenv file is loaded first: the path given by -env, or ./.env when
// present. godotenv never overrides variables already set in the process
// environment. A missing default .env is not an error; a missing explicit
// -env file or a malformed value panics, like the JSON layer does.
func parseEnv(config *Config) {
	loadDotenv(flagx.EnvFileFlags())

	setString(&config.EndpointAddrGRPC, envGRPCAddr)
	setString(&config.MetricsAddr, envMetricsAddr)
	setString(&config.DatabaseDSN, envDatabaseDSN)
	setString(&config.SecretKey, envSecretKey)
	setString(&config.S3RootUser, envS3User)
	setString(&config.S3RootPassword, envS3Password)
	setString(&config.S3Bucket, envS3Bucket)
	setString(&config.S3Region, envS3Region)
	setString(&config.S3BaseEndpoint, envS3Endpoint)
	setString(&config.TranscriptionURL, envTranscriptionURL)
	setString(&config.TranscriptionModel, envTranscriptionModel)
	setString(&config.TranscriptionLanguage, envTranscriptionLanguage)
	setString(&config.LogLevel, envLogLevel)

	if v, ok := os.LookupEnv(envTranscriptionTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.TranscriptionTimeout = d
	}
	if v, ok := lookupInt(envWorkers); ok {
		config.Workers = int(v)
	}
	if v, ok := lookupInt(envQueueSize); ok {
		config.QueueSize = int(v)
	}
	if v, ok := lookupInt(envFreeEntryLimit); ok {
		config.FreeEntryLimit = v
	}
	if v, ok := lookupInt(envDailyQuestionLimit); ok {
		config.DailyQuestionLimit = v
	}
}

func loadDotenv(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupInt(key string) (int64, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		panic(err)
	}
	return n, true
}
