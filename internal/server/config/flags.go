package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/voicediary/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address (empty disables /metrics)
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-t string   transcription endpoint URL
//	-l string   transcription language code
//	-w int      pipeline workers
//	-q int      pipeline queue size
//	-v string   log level
//
// os.Args is filtered first with flagx.FilterArgs so -c/-config and -env,
// owned by other layers, do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-t", "-l", "-w", "-q", "-v",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 audio bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.TranscriptionURL, "t", config.TranscriptionURL, "transcription endpoint URL")
	fs.StringVar(&config.TranscriptionLanguage, "l", config.TranscriptionLanguage, "transcription language")
	fs.IntVar(&config.Workers, "w", config.Workers, "pipeline workers")
	fs.IntVar(&config.QueueSize, "q", config.QueueSize, "pipeline queue size")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
