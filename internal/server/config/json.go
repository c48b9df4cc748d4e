package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/voicediary/internal/flagx"
	"github.com/dmitrijs2005/voicediary/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration, so both "30s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	MetricsAddr           string         `json:"metrics_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	TranscriptionURL      string         `json:"transcription_url"`
	TranscriptionModel    string         `json:"transcription_model"`
	TranscriptionLanguage string         `json:"transcription_language"`
	TranscriptionTimeout  timex.Duration `json:"transcription_timeout"`
	Workers               int            `json:"workers"`
	QueueSize             int            `json:"queue_size"`
	FreeEntryLimit        int64          `json:"free_entry_limit"`
	DailyQuestionLimit    int64          `json:"daily_question_limit"`
	LogLevel              string         `json:"log_level"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Without the flag nothing is loaded. Only keys present with a
// non-zero value override what earlier layers set. Read or decode errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlay(&config.MetricsAddr, c.MetricsAddr)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.TranscriptionURL, c.TranscriptionURL)
	overlay(&config.TranscriptionModel, c.TranscriptionModel)
	overlay(&config.TranscriptionLanguage, c.TranscriptionLanguage)
	overlay(&config.TranscriptionTimeout, c.TranscriptionTimeout.Duration)
	overlay(&config.Workers, c.Workers)
	overlay(&config.QueueSize, c.QueueSize)
	overlay(&config.FreeEntryLimit, c.FreeEntryLimit)
	overlay(&config.DailyQuestionLimit, c.DailyQuestionLimit)
	overlay(&config.LogLevel, c.LogLevel)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
