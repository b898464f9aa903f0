// Package discovery finds data sources that are not in the config file:
// ODBC DSNs declared in odbc.ini and a PostgreSQL server described by the
// PG* environment variables.
package discovery

import (
	"sort"
	"strings"

	"github.com/rebeliceyang/lazyquery/internal/models"
)

// SourceKind tells where a data source was found. Lower values win on name clashes.
type SourceKind int

const (
	SourceUserIni SourceKind = iota
	SourceSystemIni
	SourceEnvironment
)

func (k SourceKind) String() string {
	switch k {
	case SourceUserIni:
		return "user"
	case SourceSystemIni:
		return "system"
	case SourceEnvironment:
		return "environment"
	}
	return "unknown"
}

// DiscoveredSource is a data source found outside the config file
type DiscoveredSource struct {
	Config      models.DataSourceConfig
	Description string
	Driver      string // ODBC driver name or path as declared
	Kind        SourceKind
	Origin      string // file path or "environment"
}

// Discoverer coordinates all discovery methods
type Discoverer struct {
	UserIni   string
	SystemIni string
}

// NewDiscoverer creates a discoverer reading the standard odbc.ini locations
func NewDiscoverer() *Discoverer {
	return &Discoverer{
		UserIni:   UserIniPath(),
		SystemIni: SystemIniPath(),
	}
}

// DiscoverAll runs all discovery methods. Unreadable files are skipped.
func (d *Discoverer) DiscoverAll() []DiscoveredSource {
	sources := make([]DiscoveredSource, 0)

	// 1. User DSNs
	if d.UserIni != "" {
		if sections, err := ParseOdbcIni(d.UserIni); err == nil {
			sources = append(sources, sectionsToSources(sections, SourceUserIni, d.UserIni)...)
		}
	}

	// 2. System DSNs
	if d.SystemIni != "" {
		if sections, err := ParseOdbcIni(d.SystemIni); err == nil {
			sources = append(sources, sectionsToSources(sections, SourceSystemIni, d.SystemIni)...)
		}
	}

	// 3. Environment variables
	if env := FromEnvironment(); env != nil {
		sources = append(sources, *env)
	}

	sources = deduplicateSources(sources)

	// Sort by source priority, then name
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Kind != sources[j].Kind {
			return sources[i].Kind < sources[j].Kind
		}
		return strings.ToLower(sources[i].Config.Name) < strings.ToLower(sources[j].Config.Name)
	})

	return sources
}

// deduplicateSources keeps one source per name (case-insensitive)
func deduplicateSources(sources []DiscoveredSource) []DiscoveredSource {
	seen := make(map[string]DiscoveredSource)

	for _, s := range sources {
		key := strings.ToLower(s.Config.Name)

		// Keep the one with higher priority source
		if existing, exists := seen[key]; !exists || s.Kind < existing.Kind {
			seen[key] = s
		}
	}

	result := make([]DiscoveredSource, 0, len(seen))
	for _, s := range seen {
		result = append(result, s)
	}
	return result
}
