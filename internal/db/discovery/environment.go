package discovery

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazyquery/internal/models"
)

// FromEnvironment builds a PostgreSQL data source from the PG* variables.
// The password stays in PGPASSWORD, which the driver reads itself.
func FromEnvironment() *DiscoveredSource {
	host := os.Getenv("PGHOST")
	portStr := os.Getenv("PGPORT")
	database := os.Getenv("PGDATABASE")
	user := os.Getenv("PGUSER")

	if host == "" && database == "" {
		return nil
	}

	// Set defaults
	if host == "" {
		host = "localhost"
	}
	if database == "" {
		database = user
	}

	port := 5432
	if portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil && p > 0 && p <= 65535 {
			port = p
		}
	}

	parts := []string{fmt.Sprintf("host=%s", host), fmt.Sprintf("port=%d", port)}
	if database != "" {
		parts = append(parts, "dbname="+database)
	}
	if user != "" {
		parts = append(parts, "user="+user)
	}

	return &DiscoveredSource{
		Config: models.DataSourceConfig{
			Name:     "environment",
			Driver:   "pgx",
			DSN:      strings.Join(parts, " "),
			Database: database,
		},
		Description: "PostgreSQL from PG* environment variables",
		Driver:      "pgx",
		Kind:        SourceEnvironment,
		Origin:      "environment",
	}
}
