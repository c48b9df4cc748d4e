// Package flagx lets independent config layers read their own flags from
// os.Args without tripping over flags owned by other layers.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs returns the subset of args made of allowed flags and their values.
//
// Supported forms:
//
//	-c conf.json        flag and value as separate arguments
//	--config=conf.json  flag and value joined by '='
//
// A separate value is only taken when the next argument does not start with '-'.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// StringFlag looks up a string flag known under several names (e.g. "c" and
// "config") in args and returns its last value, or "" if absent.
func StringFlag(args []string, names ...string) string {
	allowed := make([]string, 0, len(names)*2)
	for _, n := range names {
		allowed = append(allowed, "-"+n, "--"+n)
	}

	var value string
	fs := flag.NewFlagSet("flagx", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, "", "")
	}
	_ = fs.Parse(FilterArgs(args, allowed))

	return value
}

// JsonConfigFlags returns the JSON config path given via -c or -config.
func JsonConfigFlags() string {
	return StringFlag(os.Args[1:], "c", "config")
}

// EnvFileFlags returns the dotenv path given via -env, or "" if absent.
func EnvFileFlags() string {
	return StringFlag(os.Args[1:], "env")
}
