package cli

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyquery/internal/autofilter"
	"github.com/rebeliceyang/lazyquery/internal/ui/filterpicker"
	"github.com/rebeliceyang/lazyquery/internal/ui/theme"
)

// columnFilter is one --filter column=v1,v2 argument
type columnFilter struct {
	Column string
	Values autofilter.Set // nil clears
}

// parseFilters parses column=v1,v2 arguments. Values are taken verbatim.
// column= with no values clears the column's filter.
func parseFilters(args []string) ([]columnFilter, error) {
	filters := make([]columnFilter, 0, len(args))
	for _, arg := range args {
		column, values, ok := strings.Cut(arg, "=")
		column = strings.TrimSpace(column)
		if !ok || column == "" {
			return nil, fmt.Errorf("invalid filter %q: want column=value[,value...]", arg)
		}
		f := columnFilter{Column: column}
		if values != "" {
			f.Values = autofilter.NewSet(strings.Split(values, ",")...)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// applyFilters applies filters in order, as if picked one after another
func applyFilters[R any](e *autofilter.Engine[R], args []string) error {
	filters, err := parseFilters(args)
	if err != nil {
		return err
	}
	for _, f := range filters {
		e.ApplyFilter(f.Column, f.Values)
	}
	return nil
}

// pickFilters opens the interactive picker for each column in turn
func pickFilters[R any](e *autofilter.Engine[R], columns []string, th theme.Theme) error {
	for _, col := range columns {
		sel, err := filterpicker.Run(col, e.AvailableValues(col), e.Filter(col), th)
		if err != nil {
			return err
		}
		if sel.Cancelled {
			continue
		}
		e.ApplyFilter(col, sel.Values)
	}
	return nil
}

// describeFilters renders the active filters as col=v1,v2 in column order
func describeFilters(active map[string]autofilter.Set, columns []string) string {
	var parts []string
	for _, col := range columns {
		if s, ok := active[col]; ok {
			parts = append(parts, col+"="+strings.Join(s.Sorted(), ","))
		}
	}
	return strings.Join(parts, " ")
}
