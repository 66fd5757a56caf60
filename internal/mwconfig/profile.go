package mwconfig

import (
	"github.com/BurntSushi/toml"
)

// TokenProfile is a named include/exclude rule set a user can check into
// version control and point --include/--exclude at by file path, rather
// than repeating long lists of regular expressions on the command line.
// Unlike the rest of mwpersist's layered configuration, this file is
// parsed directly with BurntSushi/toml (not viper): it is a single,
// self-contained document handed to the stats reducer, not a source that
// merges with flags/env/defaults.
type TokenProfile struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// LoadTokenProfile parses a token profile file from path.
func LoadTokenProfile(path string) (*TokenProfile, error) {
	var p TokenProfile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
