// Package mwconfig resolves mwpersist's configuration by layering, in
// increasing priority: built-in defaults, a config file, environment
// variables, and command-line flags — the same precedence viper enforces,
// applied here to the CLI flags spec.md §6 names.
package mwconfig

import (
	"strings"

	"github.com/spf13/viper"
)

// Keys are the viper key names every subcommand reads via viper.Get*; flags
// are bound to the same key in each subcommand's init().
const (
	KeyWindow       = "window"
	KeyRevertRadius = "revert-radius"
	KeyMinPersisted = "min-persisted"
	KeyMinVisible   = "min-visible"
	KeyInclude      = "include"
	KeyExclude      = "exclude"
	KeySunset       = "sunset"
	KeyTimeout      = "timeout"
	KeyNamespaces   = "namespaces"
	KeyKeepText     = "keep-text"
	KeyKeepDiff     = "keep-diff"
	KeyKeepTokens   = "keep-tokens"
	KeyThreads      = "threads"
	KeyOutput       = "output"
	KeyCompress     = "compress"
	KeyVerbose      = "verbose"
	KeyStoreDSN     = "store-dsn"
)

func setDefaults() {
	viper.SetDefault(KeyWindow, 50)
	viper.SetDefault(KeyRevertRadius, 15)
	viper.SetDefault(KeyMinPersisted, 5)
	viper.SetDefault(KeyMinVisible, 14*24*3600)
	viper.SetDefault(KeyInclude, []string{})
	viper.SetDefault(KeyExclude, []string{})
	viper.SetDefault(KeySunset, "now")
	viper.SetDefault(KeyTimeout, "30s")
	viper.SetDefault(KeyNamespaces, []int{})
	viper.SetDefault(KeyKeepText, false)
	viper.SetDefault(KeyKeepDiff, false)
	viper.SetDefault(KeyKeepTokens, true)
	viper.SetDefault(KeyThreads, 1)
	viper.SetDefault(KeyOutput, "-")
	viper.SetDefault(KeyCompress, "")
	viper.SetDefault(KeyVerbose, false)
	viper.SetDefault(KeyStoreDSN, "")
}

// Load wires up viper's layered resolution: defaults, then an optional
// config file, then MWPERSIST_-prefixed environment variables. It starts
// with viper.Reset, which also discards any flag bindings made earlier, so
// the caller binds the running command's flags after Load returns (flag >
// env > file > default is viper's built-in precedence).
func Load(cfgFile string) error {
	viper.Reset()
	setDefaults()

	viper.SetEnvPrefix("MWPERSIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
		return nil
	}

	viper.SetConfigName(".mwpersist")
	viper.SetConfigType("toml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return err
		}
	}
	return nil
}
