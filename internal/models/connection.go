package models

import (
	"strings"
)

// DataSourceConfig describes a database the queries can run against
type DataSourceConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	Driver   string `yaml:"driver" mapstructure:"driver"`     // odbc, pgx, sqlite3
	DSN      string `yaml:"dsn" mapstructure:"dsn"`           // driver connection string, for ODBC "DSN=NEON_DSN;UID=..."
	Database string `yaml:"database" mapstructure:"database"` // database name reported alongside results
	User     string `yaml:"user" mapstructure:"user"`
	Catalog  string `yaml:"catalog" mapstructure:"catalog"` // information_schema (default) or sqlite
	// Password is never persisted; it is resolved from the keyring at connect time.
	Password string `yaml:"-" mapstructure:"-"`
}

// OdbcName returns the ODBC data source name used for dialect detection.
// For "DSN=NAME;UID=..." strings that is NAME, otherwise the configured name.
func (c DataSourceConfig) OdbcName() string {
	if name, ok := dsnAttribute(c.DSN, "DSN"); ok {
		return name
	}
	if (c.Driver == "" || c.Driver == "odbc") && c.DSN != "" && !strings.Contains(c.DSN, "=") {
		return c.DSN
	}
	return c.Name
}

// HasPassword reports whether the DSN already carries a password attribute
func (c DataSourceConfig) HasPassword() bool {
	_, ok := dsnAttribute(c.DSN, "PWD")
	return ok
}

// dsnAttribute extracts KEY=value from a "K1=v1;K2=v2" connection string
func dsnAttribute(dsn, key string) (string, bool) {
	for _, part := range strings.Split(dsn, ";") {
		k, v, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
