package report

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"sales-report/src/pkg/sales"
	"sales-report/src/pkg/util"
)

type Config struct {
	OutputDir   string `json:"output_dir,omitempty"`
	FilePrefix  string `json:"file_prefix,omitempty"`
	TopProducts int    `json:"top_products,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		OutputDir:   "outputs",
		FilePrefix:  "sales-report",
		TopProducts: sales.DefaultTopN,
	}
}

// create config with default values before config gets initialized
var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", util.GetPackageName(), "not provided", "default report config")
		return
	}

	defaultConfig := DefaultValueConfig()
	Cfg = *localConfig

	tl.ApplyDefaults(&Cfg, defaultConfig, func(field string, defVal any) {
		tl.Log(
			tl.Info, palette.Purple,
			"%s field is %s in %s configuration. Using default value: %v",
			field, "missing", util.GetPackageName(), tl.PrettyForStderr(defVal),
		)
	})

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", util.GetPackageName(), "provided", "local report config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", util.GetPackageName()), Cfg)
}
