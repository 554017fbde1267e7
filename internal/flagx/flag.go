// Package flagx offers small helpers for commands whose flags are parsed by
// several independent loaders (config file lookup, server flags, client flags).
package flagx

import (
	"flag"
	"path/filepath"
	"strconv"
	"strings"
)

// FilterArgs keeps only the flags named in allowedFlags (and their values),
// so that a FlagSet can parse its own subset of os.Args without failing on
// flags that belong to another loader.
//
// Both "-f value" and "-f=value" forms are recognised. A value is taken from
// the next argument only if it does not itself start with "-".
//
// Flags listed in boolFlags never capture a following argument; a following
// "true" or "false" is folded into "-f=value", since flag.Parse would
// otherwise stop at it and drop every later flag.
func FilterArgs(args []string, allowedFlags []string, boolFlags ...string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}
	bools := make(map[string]struct{}, len(boolFlags))
	for _, f := range boolFlags {
		bools[f] = struct{}{}
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

		if _, ok := bools[arg]; ok {
			if i+1 < len(args) {
				if _, err := strconv.ParseBool(args[i+1]); err == nil {
					filtered = append(filtered, arg+"="+args[i+1])
					i++
					continue
				}
			}
			filtered = append(filtered, arg)
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

// ConfigFileFlag returns the config file path given with -c or -config,
// or an empty string. Other arguments are ignored. When both are given the
// last one wins.
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}

// Config file formats understood by ConfigFormat.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ConfigFormat picks the decoder for a config file by its extension.
// Anything that is not .yaml/.yml is treated as JSON.
func ConfigFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
