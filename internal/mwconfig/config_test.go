package mwconfig

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadEstablishesDefaults(t *testing.T) {
	if err := Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := viper.GetInt(KeyWindow); got != 50 {
		t.Errorf("KeyWindow default = %d, want 50", got)
	}
	if got := viper.GetInt(KeyRevertRadius); got != 15 {
		t.Errorf("KeyRevertRadius default = %d, want 15", got)
	}
	if got := viper.GetBool(KeyKeepTokens); !got {
		t.Error("KeyKeepTokens default should be true")
	}
	if got := viper.GetString(KeySunset); got != "now" {
		t.Errorf("KeySunset default = %q, want \"now\"", got)
	}
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("MWPERSIST_WINDOW", "99")
	if err := Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := viper.GetInt(KeyWindow); got != 99 {
		t.Errorf("KeyWindow after env override = %d, want 99", got)
	}
}

func TestLoadMissingConfigFileIsNotAnError(t *testing.T) {
	if err := Load(""); err != nil {
		t.Fatalf("Load with no config file present should not error, got: %v", err)
	}
}
