package querybuilder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazyquery/internal/models"
)

// numericTypeCodes are the ODBC SQL type codes treated as numeric:
// INTEGER, BIGINT, DECIMAL, NUMERIC, FLOAT, REAL, DOUBLE, SMALLINT, TINYINT.
var numericTypeCodes = map[int]bool{
	4: true, -5: true, 3: true, 2: true, 6: true, 7: true, 8: true, 5: true, -6: true,
}

// numericTypeTags are matched case-insensitively against textual type names
var numericTypeTags = []string{"INT", "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "MONEY"}

// IsNumericType classifies a field data type as numeric.
// Integer type codes are looked up in the ODBC numeric set; anything else is
// matched against the numeric type name fragments.
func IsNumericType(dataType string) bool {
	dataType = strings.TrimSpace(dataType)
	if code, err := strconv.Atoi(dataType); err == nil {
		return numericTypeCodes[code]
	}

	upper := strings.ToUpper(dataType)
	for _, tag := range numericTypeTags {
		if strings.Contains(upper, tag) {
			return true
		}
	}
	return false
}

// BuildPredicate converts one criteria field into a WHERE fragment.
// An empty string means the field contributes nothing to the WHERE clause.
//
// Values are inlined into the SQL text. Single quotes are doubled in quoted
// literals; numeric text values are inserted exactly as typed.
func BuildPredicate(c models.CriteriaField) string {
	column := c.Table + "." + c.Field

	if c.HasListBox && len(c.SelectedValues) > 0 {
		values := make([]string, 0, len(c.SelectedValues))
		for _, v := range c.SelectedValues {
			if v == models.NoneValue {
				continue
			}
			values = append(values, v)
		}

		switch len(values) {
		case 0:
			return ""
		case 1:
			return fmt.Sprintf("%s = %s", column, quote(values[0]))
		default:
			quoted := make([]string, len(values))
			for i, v := range values {
				quoted[i] = quote(v)
			}
			return fmt.Sprintf("%s IN (%s)", column, strings.Join(quoted, ", "))
		}
	}

	if strings.TrimSpace(c.TextValue) == "" {
		return ""
	}

	if IsNumericType(c.DataType) {
		return fmt.Sprintf("%s = %s", column, c.TextValue)
	}

	value := escape(c.TextValue)
	switch c.Operator {
	case models.OpContains:
		return fmt.Sprintf("%s LIKE '%%%s%%'", column, value)
	case models.OpBeginsWith:
		return fmt.Sprintf("%s LIKE '%s%%'", column, value)
	case models.OpEndsWith:
		return fmt.Sprintf("%s LIKE '%%%s'", column, value)
	default:
		return fmt.Sprintf("%s = '%s'", column, value)
	}
}

// BuildPredicates returns the non-empty predicates of criteria in order
func BuildPredicates(criteria []models.CriteriaField) []string {
	var preds []string
	for _, c := range criteria {
		if p := BuildPredicate(c); p != "" {
			preds = append(preds, p)
		}
	}
	return preds
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func quote(s string) string {
	return "'" + escape(s) + "'"
}
