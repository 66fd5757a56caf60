package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/mwconfig"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/sqlstore"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/sunset"
)

// doctorCheck is one diagnostic result, the same Name/Status/Message/Detail
// shape the teacher's database doctor command reports, adapted here to
// mwpersist's configuration surface instead of a database's schema state.
type doctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warn", "fail"
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Sanity-check the active configuration, sunset value, and SQL sink",
	RunE: func(cmd *cobra.Command, args []string) error {
		checks := runDoctorChecks(rootCtx)
		if jsonOutput {
			data, err := json.MarshalIndent(checks, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		} else {
			for _, c := range checks {
				fmt.Printf("[%s] %s: %s\n", c.Status, c.Name, c.Message)
				if c.Detail != "" {
					fmt.Printf("    %s\n", c.Detail)
				}
			}
		}
		for _, c := range checks {
			if c.Status == "fail" {
				return fmt.Errorf("doctor: %s failed", c.Name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctorChecks(ctx context.Context) []doctorCheck {
	return []doctorCheck{
		doctorCheckSunset(),
		doctorCheckThresholds(),
		doctorCheckStoreDSN(ctx),
	}
}

func doctorCheckSunset() doctorCheck {
	value := viper.GetString(mwconfig.KeySunset)
	t, err := sunset.Parse(value, time.Now().UTC())
	if err != nil {
		return doctorCheck{Name: "sunset", Status: "fail", Message: "could not parse --sunset", Detail: err.Error()}
	}
	return doctorCheck{Name: "sunset", Status: "ok", Message: "resolves to " + t.Format(time.RFC3339)}
}

func doctorCheckThresholds() doctorCheck {
	if viper.GetInt(mwconfig.KeyWindow) <= 0 {
		return doctorCheck{Name: "window", Status: "fail", Message: "--window must be positive"}
	}
	if viper.GetInt(mwconfig.KeyRevertRadius) <= 0 {
		return doctorCheck{Name: "revert-radius", Status: "fail", Message: "--revert-radius must be positive"}
	}
	return doctorCheck{Name: "thresholds", Status: "ok", Message: "window and revert-radius are positive"}
}

func doctorCheckStoreDSN(ctx context.Context) doctorCheck {
	dsn := viper.GetString(mwconfig.KeyStoreDSN)
	if dsn == "" {
		return doctorCheck{Name: "store-dsn", Status: "ok", Message: "no SQL sink configured, writing to --output instead"}
	}
	store, err := sqlstore.Open(ctx, dsn)
	if err != nil {
		return doctorCheck{Name: "store-dsn", Status: "fail", Message: "could not open SQL sink", Detail: err.Error()}
	}
	store.Close()
	return doctorCheck{Name: "store-dsn", Status: "ok", Message: "SQL sink reachable and schema ensured"}
}
