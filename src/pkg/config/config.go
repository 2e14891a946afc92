// Package config loads run settings from the environment and per-package tunables from a JSON file.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	echomw "sales-report/src/pkg/echo-middleware"
	"sales-report/src/pkg/fetch"
	"sales-report/src/pkg/report"
)

/*
FileConfig is the layout of ./cfg/config.json.

Every section is optional. A missing section, or a missing field inside one,
keeps that package's defaults.
*/
type FileConfig struct {
	Report         *report.Config `json:"report,omitempty"`
	Fetch          *fetch.Config  `json:"fetch,omitempty"`
	EchoMiddleware *echomw.Config `json:"echo_middleware,omitempty"`
}

/*
InitializeConfig reads the JSON config file and hands each section to its package.

A config file that does not exist is not an error: every package keeps its defaults.
*/
func InitializeConfig(configPath string) (e *xerr.Error) {
	fileConfig, e := ReadConfigFile(configPath)
	if e != nil {
		return e
	}

	report.InitializeConfig(fileConfig.Report)
	fetch.InitializeConfig(fileConfig.Fetch)
	echomw.InitializeConfig(fileConfig.EchoMiddleware)

	return nil
}

// ReadConfigFile parses configPath. A missing file yields an empty FileConfig.
func ReadConfigFile(configPath string) (fileConfig FileConfig, e *xerr.Error) {
	configBytes, readErr := os.ReadFile(configPath)
	if errors.Is(readErr, fs.ErrNotExist) {
		tl.Log(tl.Info, palette.Purple, "Config file '%s' is %s, keeping %s", configPath, "not present", "defaults")
		return fileConfig, nil
	}
	if readErr != nil {
		e = xerr.NewErrorEC(readErr, "read config file", "path", configPath, false)
		return fileConfig, e
	}

	unmarshalErr := json.Unmarshal(configBytes, &fileConfig)
	if unmarshalErr != nil {
		e = xerr.NewErrorEC(unmarshalErr, "unmarshal config file", "path", configPath, false)
		return fileConfig, e
	}

	tl.Log(tl.Info1, palette.Green, "Loaded config file '%s'", configPath)
	return fileConfig, nil
}

// CheckIfEnvVarsPresent warns about every listed variable that is unset or blank.
func CheckIfEnvVarsPresent(names ...string) (missing []string) {
	missing = make([]string, 0)
	for _, name := range names {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			missing = append(missing, name)
			tl.Log(tl.Warning, palette.YellowBold, "Environment variable %s is %s", name, "not set")
		}
	}
	return missing
}
