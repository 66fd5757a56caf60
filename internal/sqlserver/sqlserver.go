// Package sqlserver manages a throwaway Dolt SQL server for internal/sqlstore's
// integration tests, backed by a Docker container rather than the embedded
// dolthub/driver path.
package sqlserver

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/dolt"
)

// Image is the Docker image used for the test Dolt server. Pinned because
// Dolt >= 1.44 changed its default auth handshake (root@localhost vs root@%)
// in a way that breaks the go-sql-driver TCP path this package exercises.
const Image = "dolthub/dolt-sql-server:1.43.0"

var (
	dockerOnce  sync.Once
	dockerAvail bool
)

func dockerAvailable() bool {
	dockerOnce.Do(func() {
		dockerAvail = exec.Command("docker", "info").Run() == nil
	})
	return dockerAvail
}

// StartContainer launches a per-test Dolt server and returns a DSN accepted
// by internal/sqlstore.Open: "mysql://"-prefixed, since the container
// speaks the MySQL wire protocol remotely rather than the embedded
// dolthub/driver path. The container is torn down via t.Cleanup. Skips the
// test if Docker isn't reachable.
func StartContainer(t *testing.T, database string) string {
	t.Helper()
	if !dockerAvailable() {
		t.Skip("docker not available, skipping sqlstore integration test")
	}

	ctx := context.Background()
	ctr, err := dolt.Run(ctx, Image, dolt.WithDatabase(database))
	if err != nil {
		t.Fatalf("starting dolt container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminating dolt container: %v", err)
		}
	})

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("getting dolt container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("getting dolt container port: %v", err)
	}

	return fmt.Sprintf("mysql://root@tcp(%s:%s)/%s", host, port.Port(), database)
}
