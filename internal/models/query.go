package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrIndexOutOfRange is returned by mutations addressing a missing element
var ErrIndexOutOfRange = errors.New("index out of range")

// NoneValue is the list-box placeholder meaning "nothing selected"
const NoneValue = "(none)"

// StringOperator is the comparison applied to text criteria
type StringOperator string

const (
	OpNone       StringOperator = ""
	OpEquals     StringOperator = "equals"
	OpContains   StringOperator = "contains"
	OpBeginsWith StringOperator = "begins with"
	OpEndsWith   StringOperator = "ends with"
)

// StringOperators lists the operators offered for text fields
var StringOperators = []StringOperator{OpEquals, OpContains, OpBeginsWith, OpEndsWith}

// ParseStringOperator normalizes user input into a StringOperator.
// Unknown input is returned as-is; the predicate builder treats it as equals.
func ParseStringOperator(s string) StringOperator {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return OpNone
	case "equals", "=", "eq":
		return OpEquals
	case "contains", "like":
		return OpContains
	case "begins with", "begins", "starts with", "prefix":
		return OpBeginsWith
	case "ends with", "ends", "suffix":
		return OpEndsWith
	default:
		return StringOperator(s)
	}
}

// JoinType is the SQL join keyword emitted for a JoinSpec
type JoinType string

const (
	InnerJoin      JoinType = "INNER JOIN"
	LeftOuterJoin  JoinType = "LEFT OUTER JOIN"
	RightOuterJoin JoinType = "RIGHT OUTER JOIN"
)

// ParseJoinType accepts INNER, LEFT OUTER, RIGHT OUTER (optionally suffixed
// with JOIN) and the short forms LEFT and RIGHT.
func ParseJoinType(s string) (JoinType, error) {
	norm := strings.Join(strings.Fields(strings.ToUpper(s)), " ")
	norm = strings.TrimSuffix(norm, " JOIN")
	switch norm {
	case "INNER", "":
		return InnerJoin, nil
	case "LEFT", "LEFT OUTER":
		return LeftOuterJoin, nil
	case "RIGHT", "RIGHT OUTER":
		return RightOuterJoin, nil
	default:
		return "", fmt.Errorf("unsupported join type: %s", s)
	}
}

// CriteriaField is one user-entered filter condition.
// When HasListBox is set SelectedValues is authoritative, otherwise TextValue is.
type CriteriaField struct {
	Table          string         `yaml:"table"`
	Field          string         `yaml:"field"`
	DataType       string         `yaml:"data_type"`
	HasListBox     bool           `yaml:"has_list_box"`
	SelectedValues []string       `yaml:"selected_values,omitempty"`
	TextValue      string         `yaml:"text_value,omitempty"`
	Operator       StringOperator `yaml:"operator,omitempty"`
	PanelHeight    int            `yaml:"panel_height,omitempty"` // UI only
}

// Key returns the table/field pair of the criteria
func (c CriteriaField) Key() FieldKey {
	return FieldKey{Table: c.Table, Field: c.Field}
}

// DisplayField is one SELECT-list column
type DisplayField struct {
	Table    string `yaml:"table"`
	Field    string `yaml:"field"`
	DataType string `yaml:"data_type"`
}

// Key returns the table/field pair of the display field
func (d DisplayField) Key() FieldKey {
	return FieldKey{Table: d.Table, Field: d.Field}
}

// JoinCondition is one leftTable.LeftField = rightTable.RightField equality
type JoinCondition struct {
	LeftField  string `yaml:"left_field"`
	RightField string `yaml:"right_field"`
}

// JoinSpec joins RightTable onto the query. A spec without conditions is
// tolerated while it is being edited.
type JoinSpec struct {
	LeftTable  string          `yaml:"left_table"`
	Type       JoinType        `yaml:"type"`
	RightTable string          `yaml:"right_table"`
	Conditions []JoinCondition `yaml:"conditions"`
}

// QueryDefinition is a named query built from criteria, display fields and joins.
// Name is the identity key and compares case-insensitively.
type QueryDefinition struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	DataSource string          `yaml:"data_source,omitempty"`
	Criteria   []CriteriaField `yaml:"criteria"`
	Display    []DisplayField  `yaml:"display"`
	Joins      []JoinSpec      `yaml:"joins"`
	CreatedAt  time.Time       `yaml:"created_at"`
	ModifiedAt time.Time       `yaml:"modified_at"`

	onChange func(*QueryDefinition)
}

// NewQueryDefinition creates an empty query definition
func NewQueryDefinition(id, name string) *QueryDefinition {
	now := time.Now()
	return &QueryDefinition{
		ID:         id,
		Name:       name,
		Criteria:   []CriteriaField{},
		Display:    []DisplayField{},
		Joins:      []JoinSpec{},
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// SetOnChange installs the hook invoked after every successful mutation.
// Passing nil removes it.
func (q *QueryDefinition) SetOnChange(fn func(*QueryDefinition)) {
	q.onChange = fn
}

func (q *QueryDefinition) changed() {
	q.ModifiedAt = time.Now()
	if q.onChange != nil {
		q.onChange(q)
	}
}

// SetDataSource binds the query to a data source name
func (q *QueryDefinition) SetDataSource(name string) {
	q.DataSource = name
	q.changed()
}

// AddCriteria appends a criteria field
func (q *QueryDefinition) AddCriteria(c CriteriaField) {
	q.Criteria = append(q.Criteria, c)
	q.changed()
}

// RemoveCriteria removes the criteria field at index i
func (q *QueryDefinition) RemoveCriteria(i int) error {
	if i < 0 || i >= len(q.Criteria) {
		return fmt.Errorf("criteria %d: %w", i, ErrIndexOutOfRange)
	}
	q.Criteria = append(q.Criteria[:i], q.Criteria[i+1:]...)
	q.changed()
	return nil
}

// UpdateCriteria applies fn to the criteria field at index i
func (q *QueryDefinition) UpdateCriteria(i int, fn func(*CriteriaField)) error {
	if i < 0 || i >= len(q.Criteria) {
		return fmt.Errorf("criteria %d: %w", i, ErrIndexOutOfRange)
	}
	fn(&q.Criteria[i])
	q.changed()
	return nil
}

// AddDisplay appends a display field
func (q *QueryDefinition) AddDisplay(d DisplayField) {
	q.Display = append(q.Display, d)
	q.changed()
}

// RemoveDisplay removes the display field at index i
func (q *QueryDefinition) RemoveDisplay(i int) error {
	if i < 0 || i >= len(q.Display) {
		return fmt.Errorf("display %d: %w", i, ErrIndexOutOfRange)
	}
	q.Display = append(q.Display[:i], q.Display[i+1:]...)
	q.changed()
	return nil
}

// AddJoin appends a join
func (q *QueryDefinition) AddJoin(j JoinSpec) {
	q.Joins = append(q.Joins, j)
	q.changed()
}

// RemoveJoin removes the join at index i. Removing the last join is allowed.
func (q *QueryDefinition) RemoveJoin(i int) error {
	if i < 0 || i >= len(q.Joins) {
		return fmt.Errorf("join %d: %w", i, ErrIndexOutOfRange)
	}
	q.Joins = append(q.Joins[:i], q.Joins[i+1:]...)
	q.changed()
	return nil
}

// MoveJoin moves the join at index from to index to, shifting the others
func (q *QueryDefinition) MoveJoin(from, to int) error {
	if from < 0 || from >= len(q.Joins) {
		return fmt.Errorf("join %d: %w", from, ErrIndexOutOfRange)
	}
	if to < 0 || to >= len(q.Joins) {
		return fmt.Errorf("join %d: %w", to, ErrIndexOutOfRange)
	}
	if from == to {
		return nil
	}
	j := q.Joins[from]
	q.Joins = append(q.Joins[:from], q.Joins[from+1:]...)
	q.Joins = append(q.Joins[:to], append([]JoinSpec{j}, q.Joins[to:]...)...)
	q.changed()
	return nil
}

// ReplaceFields swaps criteria and display lists in one mutation
func (q *QueryDefinition) ReplaceFields(criteria []CriteriaField, display []DisplayField) {
	q.Criteria = criteria
	q.Display = display
	q.changed()
}

// BaseTable returns the FROM-clause table: the first join's left table,
// else the first display field's table, else "".
func (q *QueryDefinition) BaseTable() string {
	if len(q.Joins) > 0 {
		return q.Joins[0].LeftTable
	}
	if len(q.Display) > 0 {
		return q.Display[0].Table
	}
	return ""
}

// Clone returns a deep copy without the change hook
func (q *QueryDefinition) Clone() *QueryDefinition {
	c := *q
	c.onChange = nil
	c.Criteria = CloneCriteria(q.Criteria)
	c.Display = append([]DisplayField(nil), q.Display...)
	c.Joins = make([]JoinSpec, len(q.Joins))
	for i, j := range q.Joins {
		j.Conditions = append([]JoinCondition(nil), j.Conditions...)
		c.Joins[i] = j
	}
	return &c
}

// CloneCriteria deep copies a criteria list
func CloneCriteria(in []CriteriaField) []CriteriaField {
	out := make([]CriteriaField, len(in))
	for i, c := range in {
		c.SelectedValues = append([]string(nil), c.SelectedValues...)
		out[i] = c
	}
	return out
}
