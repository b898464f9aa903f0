package querybuilder

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// ErrNoDisplayFields is returned when a query has nothing to select
var ErrNoDisplayFields = errors.New("query has no display fields")

// DefaultDialectMarker is the ODBC data source name that needs the DB2 prefix
const DefaultDialectMarker = "NEON_DSN"

// db2Prefix works around a DB2 driver quirk with bare SELECT statements
const db2Prefix = "WITH DUMBY AS (SELECT 1 FROM DB2TAB.LH_COV_PHA)"

// Compiler turns query definitions into SQL text
type Compiler struct {
	// DialectMarkers are DSN names (case-insensitive) that receive the DB2 prefix
	DialectMarkers []string
}

// NewCompiler creates a compiler. Without markers the default DB2 marker is used.
func NewCompiler(markers ...string) *Compiler {
	if len(markers) == 0 {
		markers = []string{DefaultDialectMarker}
	}
	return &Compiler{DialectMarkers: markers}
}

// statement holds the clause pieces shared by the compact and pretty renderers
type statement struct {
	prefix  string
	columns []string
	from    string
	joins   []joinClause
	where   []string
}

type joinClause struct {
	head string   // "INNER JOIN T2"
	on   []string // "T1.A = T2.B"
}

func (j joinClause) String() string {
	if len(j.on) == 0 {
		return j.head
	}
	return j.head + " ON " + strings.Join(j.on, " AND ")
}

// IsDialectDSN reports whether dsn needs the DB2 prefix
func (c *Compiler) IsDialectDSN(dsn string) bool {
	for _, m := range c.DialectMarkers {
		if strings.EqualFold(dsn, m) {
			return true
		}
	}
	return false
}

func (c *Compiler) build(def *models.QueryDefinition, dsn string) (*statement, error) {
	if len(def.Display) == 0 {
		return nil, ErrNoDisplayFields
	}

	st := &statement{from: def.BaseTable()}
	if c.IsDialectDSN(dsn) {
		st.prefix = db2Prefix
	}

	for _, d := range def.Display {
		st.columns = append(st.columns, d.Table+"."+d.Field)
	}

	for _, j := range def.Joins {
		jc := joinClause{head: fmt.Sprintf("%s %s", joinKeyword(j.Type), j.RightTable)}
		for _, cond := range j.Conditions {
			jc.on = append(jc.on, fmt.Sprintf("%s.%s = %s.%s", j.LeftTable, cond.LeftField, j.RightTable, cond.RightField))
		}
		st.joins = append(st.joins, jc)
	}

	st.where = BuildPredicates(def.Criteria)
	return st, nil
}

// Compile assembles the SQL statement for def. dsn is only used to detect
// the DB2 dialect. Joins and criteria are not validated against each other.
func (c *Compiler) Compile(def *models.QueryDefinition, dsn string) (string, error) {
	st, err := c.build(def, dsn)
	if err != nil {
		return "", err
	}

	qb := sq.Select(st.columns...).From(st.from)
	if st.prefix != "" {
		qb = qb.Prefix(st.prefix)
	}
	for _, j := range st.joins {
		qb = qb.JoinClause(j.String())
	}
	for _, p := range st.where {
		qb = qb.Where(sq.Expr(p))
	}

	sql, _, err := qb.ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to assemble query %q: %w", def.Name, err)
	}
	return sql, nil
}

// CompilePretty renders the same statement as Compile, one clause item per line
func (c *Compiler) CompilePretty(def *models.QueryDefinition, dsn string) (string, error) {
	st, err := c.build(def, dsn)
	if err != nil {
		return "", err
	}

	const indent = "    "
	var b strings.Builder
	if st.prefix != "" {
		b.WriteString(st.prefix + "\n")
	}
	b.WriteString("SELECT\n")
	b.WriteString(indent + strings.Join(st.columns, ",\n"+indent) + "\n")
	b.WriteString("FROM\n")
	b.WriteString(indent + st.from + "\n")
	for _, j := range st.joins {
		b.WriteString(j.head + "\n")
		for i, on := range j.on {
			kw := "AND"
			if i == 0 {
				kw = "ON"
			}
			b.WriteString(indent + kw + " " + on + "\n")
		}
	}
	if len(st.where) > 0 {
		b.WriteString("WHERE\n")
		b.WriteString(indent + strings.Join(st.where, "\n"+indent+"AND ") + "\n")
	}
	return b.String(), nil
}

func joinKeyword(t models.JoinType) string {
	if t == "" {
		return string(models.InnerJoin)
	}
	return string(t)
}

// NormalizeWhitespace collapses runs of whitespace to single spaces
func NormalizeWhitespace(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
