// Package flagx holds small helpers that let several independent flag sets
// share one command line without tripping over each other's flags.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// splitFlag returns the bare flag name of arg ("-c", "--c" and "-c=x" all give
// "c") and whether the value is inlined with '='.
func splitFlag(arg string) (name string, inline bool, ok bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false, false
	}
	name = strings.TrimLeft(arg, "-")
	if name == "" {
		return "", false, false
	}
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true, true
	}
	return name, false, true
}

// FilterArgs keeps only the flags listed in allowed (given with or without
// leading dashes) together with their values. Both "-c value" and
// "-c=value" forms are recognised, and single or double dash prefixes are
// treated alike. A token following a flag is taken as its value unless it
// starts with '-'.
//
// The result is never nil.
func FilterArgs(args []string, allowed []string) []string {
	names := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		names[strings.TrimLeft(a, "-")] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, inline, ok := splitFlag(args[i])
		if !ok {
			continue
		}
		if _, keep := names[name]; !keep {
			continue
		}
		out = append(out, args[i])
		if !inline && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigFile extracts the JSON config path passed via -c or -config from
// args. The last occurrence wins; "" means no config file was requested.
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"c", "config"}))

	return path
}
