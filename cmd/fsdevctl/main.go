package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/embhal/fsdevhal/internal/config"
	"github.com/embhal/fsdevhal/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configCandidates(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("fsdevctl"),
		kong.Description("Inspection tooling for the FSDEV USB device peripheral: BTABLE layout, register decoding and PMA snapshot dumps."),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup logger:", err)
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

// findUserConfig extracts --config before Kong parses, so the value can
// seed the configuration loaders themselves.
func findUserConfig(args []string) string {
	for i, a := range args {
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("FSDEV_CONFIG")
}

// configCandidates returns the config file search paths per format: the
// user-supplied file (routed by extension) followed by the defaults under
// the user config directory.
func configCandidates(user string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if user != "" {
		switch strings.ToLower(filepath.Ext(user)) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, user)
		case ".toml":
			tomlPaths = append(tomlPaths, user)
		default:
			jsonPaths = append(jsonPaths, user)
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		base := filepath.Join(dir, "fsdevctl")
		jsonPaths = append(jsonPaths, filepath.Join(base, "config.json"))
		yamlPaths = append(yamlPaths, filepath.Join(base, "config.yaml"))
		tomlPaths = append(tomlPaths, filepath.Join(base, "config.toml"))
	}
	return jsonPaths, yamlPaths, tomlPaths
}
