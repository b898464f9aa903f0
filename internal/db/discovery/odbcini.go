package discovery

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rebeliceyang/lazyquery/internal/models"
)

// IniSection is one [NAME] block of an odbc.ini file
type IniSection struct {
	Name  string
	Attrs map[string]string // keys upper-cased
}

// ParseOdbcIni reads an odbc.ini file. A missing file yields no sections.
func ParseOdbcIni(path string) ([]IniSection, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []IniSection{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var sections []IniSection
	var current *IniSection
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			sections = append(sections, IniSection{
				Name:  strings.TrimSpace(line[1 : len(line)-1]),
				Attrs: make(map[string]string),
			})
			current = &sections[len(sections)-1]
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok || current == nil {
			continue // Skip invalid lines
		}
		current.Attrs[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return sections, nil
}

// UserIniPath returns the per-user odbc.ini, honouring ODBCINI
func UserIniPath() string {
	if p := os.Getenv("ODBCINI"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".odbc.ini")
}

// SystemIniPath returns the system odbc.ini, honouring ODBCSYSINI
func SystemIniPath() string {
	if dir := os.Getenv("ODBCSYSINI"); dir != "" {
		return filepath.Join(dir, "odbc.ini")
	}
	return "/etc/odbc.ini"
}

// sectionsToSources converts odbc.ini sections into data sources
func sectionsToSources(sections []IniSection, kind SourceKind, origin string) []DiscoveredSource {
	sources := make([]DiscoveredSource, 0, len(sections))
	for _, s := range sections {
		// the driver registry section is not a data source
		if strings.EqualFold(s.Name, "ODBC Data Sources") || strings.EqualFold(s.Name, "ODBC") {
			continue
		}

		database := s.Attrs["DATABASE"]
		user := firstNonEmpty(s.Attrs["UID"], s.Attrs["USER"], s.Attrs["USERNAME"])

		sources = append(sources, DiscoveredSource{
			Config: models.DataSourceConfig{
				Name:     s.Name,
				Driver:   "odbc",
				DSN:      "DSN=" + s.Name,
				Database: database,
				User:     user,
			},
			Description: s.Attrs["DESCRIPTION"],
			Driver:      s.Attrs["DRIVER"],
			Kind:        kind,
			Origin:      origin,
		})
	}
	return sources
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
