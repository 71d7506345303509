// Package flagx lets several loaders share one command line: each loader
// picks out the flags it owns and parses only those.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// normalize maps "--name" to "-name" so both spellings match one entry.
func normalize(name string) string {
	if strings.HasPrefix(name, "--") {
		return name[1:]
	}
	return name
}

// FilterArgs keeps the flags listed in owned, together with their values,
// and drops everything else. Values may be attached ("-c=x.json") or follow
// as the next argument ("-c x.json"). A following argument that starts with
// "-" is never taken as a value.
func FilterArgs(args []string, owned []string) []string {
	set := make(map[string]struct{}, len(owned))
	for _, f := range owned {
		set[normalize(f)] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, attached := strings.Cut(arg, "=")
		if _, ok := set[normalize(name)]; !ok {
			continue
		}
		out = append(out, arg)
		if attached {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigPath returns the JSON config file named by -c / -config, or "".
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}
