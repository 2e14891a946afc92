package util

import (
	"os"
	"sort"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// RequiredFlags maps a string flag value to the name it is registered under on the command line.
var RequiredFlags = map[*string]string{}

// RequiredFlag(startPtr, "--start"). "-start" and "start" are accepted too.
func RequiredFlag(flagPointer *string, cliName string) {
	RequiredFlags[flagPointer] = normalizeFlagName(cliName)
}

func normalizeFlagName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "--") {
		return name
	}
	if strings.HasPrefix(name, "-") {
		return "-" + name
	}
	return "--" + name
}

// MissingFlags returns the sorted names of required flags left empty.
func MissingFlags() []string {
	missing := make([]string, 0)
	for flagPointer, cliName := range RequiredFlags {
		if flagPointer == nil || strings.TrimSpace(*flagPointer) == "" {
			missing = append(missing, cliName)
		}
	}
	sort.Strings(missing)
	return missing
}

// EnsureFlags logs every missing required flag and exits(1) if any were missing.
func EnsureFlags() {
	missing := MissingFlags()
	for _, cliName := range missing {
		tl.Log(tl.Warning, palette.YellowBold, "%s parameter is %s", cliName, "required")
	}
	if len(missing) > 0 {
		os.Exit(1)
	}
}
