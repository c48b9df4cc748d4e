package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the diary server
//	-k string   access token
//	-r int      request timeout in seconds
//
// os.Args is filtered with flagx.FilterArgs so -c/-config, owned by the JSON
// layer, does not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.AccessToken, "k", cfg.AccessToken, "access token")
	timeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
