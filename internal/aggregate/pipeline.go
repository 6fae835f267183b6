// Package aggregate builds read-only derived views by composing pipeline
// stages (match, lookup, unwind, addFields, sort, skip, limit and friends)
// over JSONB documents projected from relational tables. A pipeline compiles
// to a single SQL statement of nested subqueries; every level yields two
// columns, doc (JSONB) and ord (INT8), where ord carries the order established
// by the last Sort stage.
package aggregate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidPipeline is returned when a pipeline references unknown fields or
// malformed identifiers.
var ErrInvalidPipeline = errors.New("aggregate: invalid pipeline")

// Field maps a document key onto a table column.
type Field struct {
	Name   string
	Column string
	Type   string
}

// Collection describes how the rows of a table are presented as documents.
type Collection struct {
	Table  string
	Fields []Field
}

func (c Collection) field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (c Collection) docExpr(alias string) string {
	parts := make([]string, 0, len(c.Fields)*2)
	for _, f := range c.Fields {
		parts = append(parts, quote(f.Name), alias+"."+f.Column)
	}
	return "jsonb_build_object(" + strings.Join(parts, ", ") + ")"
}

// Stage is one step of a pipeline.
type Stage interface {
	apply(b *builder, input string) (string, error)
}

// Pipeline is a source collection followed by stages.
type Pipeline struct {
	from   Collection
	stages []Stage
}

// From starts a pipeline over collection c.
func From(c Collection, stages ...Stage) Pipeline {
	return Pipeline{from: c, stages: stages}
}

// Build compiles the pipeline into SQL returning one doc column per result row.
func (p Pipeline) Build() (string, []any, error) {
	b := &builder{}
	inner, err := p.compile(b, nil)
	if err != nil {
		return "", nil, err
	}
	query := fmt.Sprintf("SELECT out.doc FROM (%s) AS out ORDER BY out.ord, out.doc->>'_id'", inner)
	return query, b.args, nil
}

// compile renders the source scan and every stage. Leading Match stages whose
// fields all belong to the collection are pushed into the scan's WHERE clause
// so they can use the table's indexes.
func (p Pipeline) compile(b *builder, correlate func(table string) string) (string, error) {
	t := b.alias("t")

	var filters []string
	if correlate != nil {
		filters = append(filters, correlate(t))
	}

	stages := p.stages
	for len(stages) > 0 {
		m, ok := stages[0].(matchStage)
		if !ok || !p.from.hasFields(m.cond.fields()) {
			break
		}
		filters = append(filters, m.cond.render(b, columnRefs{coll: p.from, alias: t}))
		stages = stages[1:]
	}

	sql := fmt.Sprintf("SELECT %s AS doc, CAST(0 AS INT8) AS ord FROM %s AS %s", p.from.docExpr(t), p.from.Table, t)
	if len(filters) > 0 {
		sql += " WHERE " + strings.Join(filters, " AND ")
	}

	for _, stage := range stages {
		next, err := stage.apply(b, sql)
		if err != nil {
			return "", err
		}
		sql = next
	}
	return sql, nil
}

func (c Collection) hasFields(names []string) bool {
	for _, n := range names {
		if _, ok := c.field(n); !ok {
			return false
		}
	}
	return true
}

type builder struct {
	args []any
	n    int
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) alias(prefix string) string {
	b.n++
	return fmt.Sprintf("%s%d", prefix, b.n)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func checkIdent(names ...string) error {
	for _, n := range names {
		if !identPattern.MatchString(n) {
			return fmt.Errorf("%w: bad identifier %q", ErrInvalidPipeline, n)
		}
	}
	return nil
}

// ---- match ----

// Cond is a predicate used by Match.
type Cond interface {
	fields() []string
	render(b *builder, refs refResolver) string
}

type refResolver interface {
	// ref returns the SQL expression for field and whether it is a document
	// (text) reference rather than a typed column.
	ref(field string) (expr string, typ string, doc bool)
}

type columnRefs struct {
	coll  Collection
	alias string
}

func (c columnRefs) ref(field string) (string, string, bool) {
	f, _ := c.coll.field(field)
	return c.alias + "." + f.Column, f.Type, false
}

type docRefs struct{ doc string }

func (d docRefs) ref(field string) (string, string, bool) {
	return d.doc + "->>" + quote(field), "TEXT", true
}

type eqCond struct {
	field string
	value any
}

// Eq matches documents whose field equals value.
func Eq(field string, value any) Cond { return eqCond{field: field, value: value} }

func (c eqCond) fields() []string { return []string{c.field} }

func (c eqCond) render(b *builder, refs refResolver) string {
	expr, typ, doc := refs.ref(c.field)
	if doc {
		return fmt.Sprintf("%s = %s", expr, b.arg(fmt.Sprint(c.value)))
	}
	return fmt.Sprintf("%s = CAST(%s AS %s)", expr, b.arg(c.value), typ)
}

type inCond struct {
	field  string
	values []string
}

// In matches documents whose field equals any of values.
func In(field string, values ...string) Cond { return inCond{field: field, values: values} }

func (c inCond) fields() []string { return []string{c.field} }

func (c inCond) render(b *builder, refs refResolver) string {
	expr, typ, doc := refs.ref(c.field)
	if doc {
		return fmt.Sprintf("%s = ANY(%s)", expr, b.arg(c.values))
	}
	return fmt.Sprintf("%s = ANY(CAST(%s AS %s[]))", expr, b.arg(c.values), typ)
}

type containsCond struct {
	field  string
	needle string
}

// Contains matches documents whose field contains needle, ignoring case.
// Pattern metacharacters in needle match literally.
func Contains(field, needle string) Cond { return containsCond{field: field, needle: needle} }

func (c containsCond) fields() []string { return []string{c.field} }

func (c containsCond) render(b *builder, refs refResolver) string {
	expr, _, _ := refs.ref(c.field)
	return fmt.Sprintf("%s ILIKE %s", expr, b.arg("%"+EscapeLike(c.needle)+"%"))
}

type existsCond struct{ field string }

// Exists matches documents where field is present and not null.
func Exists(field string) Cond { return existsCond{field: field} }

func (c existsCond) fields() []string { return []string{c.field} }

func (c existsCond) render(_ *builder, refs refResolver) string {
	expr, _, _ := refs.ref(c.field)
	return expr + " IS NOT NULL"
}

type boolCond struct {
	op    string
	conds []Cond
}

// And matches documents satisfying every condition.
func And(conds ...Cond) Cond { return boolCond{op: " AND ", conds: conds} }

// Or matches documents satisfying at least one condition.
func Or(conds ...Cond) Cond { return boolCond{op: " OR ", conds: conds} }

func (c boolCond) fields() []string {
	var out []string
	for _, cond := range c.conds {
		out = append(out, cond.fields()...)
	}
	return out
}

func (c boolCond) render(b *builder, refs refResolver) string {
	if len(c.conds) == 0 {
		return "TRUE"
	}
	parts := make([]string, 0, len(c.conds))
	for _, cond := range c.conds {
		parts = append(parts, cond.render(b, refs))
	}
	return "(" + strings.Join(parts, c.op) + ")"
}

// EscapeLike escapes LIKE metacharacters so s matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type matchStage struct{ cond Cond }

// Match keeps documents satisfying cond.
func Match(cond Cond) Stage { return matchStage{cond: cond} }

func (m matchStage) apply(b *builder, input string) (string, error) {
	if err := checkIdent(m.cond.fields()...); err != nil {
		return "", err
	}
	a := b.alias("s")
	where := m.cond.render(b, docRefs{doc: a + ".doc"})
	return fmt.Sprintf("SELECT %[1]s.doc, %[1]s.ord FROM (%[2]s) AS %[1]s WHERE %[3]s", a, input, where), nil
}

// ---- lookup ----

// Lookup attaches, under As, the array of documents of From whose
// ForeignField equals this document's LocalField, after running Pipeline on them.
type Lookup struct {
	From         Collection
	LocalField   string
	ForeignField string
	As           string
	Pipeline     []Stage
}

func (l Lookup) apply(b *builder, input string) (string, error) {
	if err := checkIdent(l.LocalField, l.ForeignField, l.As); err != nil {
		return "", err
	}
	foreign, ok := l.From.field(l.ForeignField)
	if !ok {
		return "", fmt.Errorf("%w: %s has no field %q", ErrInvalidPipeline, l.From.Table, l.ForeignField)
	}

	a := b.alias("s")
	correlate := func(t string) string {
		return fmt.Sprintf("%s.%s = CAST(%s.doc->>%s AS %s)", t, foreign.Column, a, quote(l.LocalField), foreign.Type)
	}

	sub, err := Pipeline{from: l.From, stages: l.Pipeline}.compile(b, correlate)
	if err != nil {
		return "", err
	}

	la := b.alias("l")
	agg := fmt.Sprintf("COALESCE((SELECT jsonb_agg(%[1]s.doc ORDER BY %[1]s.ord, %[1]s.doc->>'_id') FROM (%[2]s) AS %[1]s), '[]'::JSONB)", la, sub)
	return fmt.Sprintf("SELECT %[1]s.doc || jsonb_build_object(%[2]s, %[3]s) AS doc, %[1]s.ord FROM (%[4]s) AS %[1]s", a, quote(l.As), agg, input), nil
}

// ---- unwind / first ----

type unwindStage struct{ field string }

// Unwind emits one document per element of the array field, replacing the
// array with the element. Documents with an empty or missing array are dropped.
func Unwind(field string) Stage { return unwindStage{field: field} }

func (u unwindStage) apply(b *builder, input string) (string, error) {
	if err := checkIdent(u.field); err != nil {
		return "", err
	}
	a := b.alias("s")
	e := b.alias("e")
	return fmt.Sprintf(
		"SELECT %[1]s.doc || jsonb_build_object(%[2]s, %[3]s.value) AS doc, %[1]s.ord FROM (%[4]s) AS %[1]s CROSS JOIN LATERAL jsonb_array_elements(COALESCE(%[1]s.doc->%[2]s, '[]'::JSONB)) AS %[3]s(value)",
		a, quote(u.field), e, input,
	), nil
}

type firstStage struct{ field string }

// First replaces the array field with its first element, or null when empty.
func First(field string) Stage { return firstStage{field: field} }

func (f firstStage) apply(b *builder, input string) (string, error) {
	if err := checkIdent(f.field); err != nil {
		return "", err
	}
	a := b.alias("s")
	return fmt.Sprintf("SELECT %[1]s.doc || jsonb_build_object(%[2]s, %[1]s.doc->%[2]s->0) AS doc, %[1]s.ord FROM (%[3]s) AS %[1]s", a, quote(f.field), input), nil
}

// ---- addFields ----

// Expr computes a derived value from a document.
type Expr interface {
	render(b *builder, doc string) string
	refs() []string
}

type sizeExpr struct{ field string }

// Size counts the elements of an array field.
func Size(field string) Expr { return sizeExpr{field: field} }

func (s sizeExpr) refs() []string { return []string{s.field} }

func (s sizeExpr) render(_ *builder, doc string) string {
	return fmt.Sprintf("jsonb_array_length(COALESCE(%s->%s, '[]'::JSONB))", doc, quote(s.field))
}

type sumExpr struct{ array, field string }

// Sum adds up field across the elements of array.
func Sum(array, field string) Expr { return sumExpr{array: array, field: field} }

func (s sumExpr) refs() []string { return []string{s.array, s.field} }

func (s sumExpr) render(b *builder, doc string) string {
	e := b.alias("e")
	return fmt.Sprintf(
		"(SELECT CAST(COALESCE(SUM(CAST(%[1]s.value->>%[2]s AS INT8)), 0) AS INT8) FROM jsonb_array_elements(COALESCE(%[3]s->%[4]s, '[]'::JSONB)) AS %[1]s(value))",
		e, quote(s.field), doc, quote(s.array),
	)
}

type containsValueExpr struct {
	array, field string
	value        string
}

// ContainsValue reports whether any element of array has field equal to value.
func ContainsValue(array, field, value string) Expr {
	return containsValueExpr{array: array, field: field, value: value}
}

func (c containsValueExpr) refs() []string { return []string{c.array, c.field} }

func (c containsValueExpr) render(b *builder, doc string) string {
	e := b.alias("e")
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM jsonb_array_elements(COALESCE(%[1]s->%[2]s, '[]'::JSONB)) AS %[3]s(value) WHERE %[3]s.value->>%[4]s = %[5]s)",
		doc, quote(c.array), e, quote(c.field), b.arg(c.value),
	)
}

type fieldExpr struct{ field string }

// FieldOf copies the value of another field.
func FieldOf(field string) Expr { return fieldExpr{field: field} }

func (f fieldExpr) refs() []string { return []string{f.field} }

func (f fieldExpr) render(_ *builder, doc string) string {
	return doc + "->" + quote(f.field)
}

// Assignment binds a derived expression to a field name.
type Assignment struct {
	Name string
	Expr Expr
}

// Set builds an Assignment.
func Set(name string, expr Expr) Assignment { return Assignment{Name: name, Expr: expr} }

type addFieldsStage struct{ sets []Assignment }

// AddFields merges derived fields into each document.
func AddFields(sets ...Assignment) Stage { return addFieldsStage{sets: sets} }

func (s addFieldsStage) apply(b *builder, input string) (string, error) {
	if len(s.sets) == 0 {
		return input, nil
	}
	a := b.alias("s")
	parts := make([]string, 0, len(s.sets)*2)
	for _, set := range s.sets {
		if err := checkIdent(append([]string{set.Name}, set.Expr.refs()...)...); err != nil {
			return "", err
		}
		parts = append(parts, quote(set.Name), set.Expr.render(b, a+".doc"))
	}
	return fmt.Sprintf("SELECT %[1]s.doc || jsonb_build_object(%[2]s) AS doc, %[1]s.ord FROM (%[3]s) AS %[1]s", a, strings.Join(parts, ", "), input), nil
}

// ---- project / replaceRoot ----

type projectStage struct{ fields []string }

// Project keeps only _id and the listed fields.
func Project(fields ...string) Stage { return projectStage{fields: fields} }

func (p projectStage) apply(b *builder, input string) (string, error) {
	if err := checkIdent(p.fields...); err != nil {
		return "", err
	}
	a := b.alias("s")
	parts := []string{quote("_id"), a + ".doc->'_id'"}
	for _, f := range p.fields {
		if f == "_id" {
			continue
		}
		parts = append(parts, quote(f), a+".doc->"+quote(f))
	}
	return fmt.Sprintf("SELECT jsonb_build_object(%[2]s) AS doc, %[1]s.ord FROM (%[3]s) AS %[1]s", a, strings.Join(parts, ", "), input), nil
}

type replaceRootStage struct{ field string }

// ReplaceRoot promotes an embedded object to be the document. Documents where
// the field is not an object are dropped.
func ReplaceRoot(field string) Stage { return replaceRootStage{field: field} }

func (r replaceRootStage) apply(b *builder, input string) (string, error) {
	if err := checkIdent(r.field); err != nil {
		return "", err
	}
	a := b.alias("s")
	return fmt.Sprintf("SELECT %[1]s.doc->%[2]s AS doc, %[1]s.ord FROM (%[3]s) AS %[1]s WHERE jsonb_typeof(%[1]s.doc->%[2]s) = 'object'", a, quote(r.field), input), nil
}

// ---- sort / skip / limit ----

// SortType selects how a document field is compared.
type SortType string

// Sort types name the SQL cast applied to a field before ordering.
const (
	SortText    SortType = "TEXT"
	SortInteger SortType = "INT8"
	SortNumber  SortType = "FLOAT8"
	SortTime    SortType = "TIMESTAMPTZ"
)

// SortKey orders documents by one field.
type SortKey struct {
	Field string
	Type  SortType
	Desc  bool
}

type sortStage struct{ keys []SortKey }

// Sort orders documents by keys, breaking ties by _id so the order is total.
func Sort(keys ...SortKey) Stage { return sortStage{keys: keys} }

func (s sortStage) apply(b *builder, input string) (string, error) {
	a := b.alias("s")
	order := make([]string, 0, len(s.keys)+1)
	for _, k := range s.keys {
		if err := checkIdent(k.Field); err != nil {
			return "", err
		}
		expr := a + ".doc->>" + quote(k.Field)
		switch k.Type {
		case SortText, "":
		case SortInteger, SortNumber, SortTime:
			expr = fmt.Sprintf("CAST(%s AS %s)", expr, k.Type)
		default:
			return "", fmt.Errorf("%w: unknown sort type %q", ErrInvalidPipeline, k.Type)
		}
		if k.Desc {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		order = append(order, expr)
	}
	order = append(order, a+".doc->>'_id' ASC")
	return fmt.Sprintf("SELECT %[1]s.doc, row_number() OVER (ORDER BY %[2]s) AS ord FROM (%[3]s) AS %[1]s", a, strings.Join(order, ", "), input), nil
}

type skipStage struct{ n int64 }

// Skip drops the first n documents in the current order.
func Skip(n int64) Stage { return skipStage{n: n} }

func (s skipStage) apply(b *builder, input string) (string, error) {
	if s.n < 0 {
		return "", fmt.Errorf("%w: negative skip", ErrInvalidPipeline)
	}
	a := b.alias("s")
	return fmt.Sprintf("SELECT %[1]s.doc, %[1]s.ord FROM (%[2]s) AS %[1]s ORDER BY %[1]s.ord, %[1]s.doc->>'_id' OFFSET %[3]s", a, input, b.arg(s.n)), nil
}

type limitStage struct{ n int64 }

// Limit keeps at most n documents in the current order.
func Limit(n int64) Stage { return limitStage{n: n} }

func (l limitStage) apply(b *builder, input string) (string, error) {
	if l.n <= 0 {
		return "", fmt.Errorf("%w: limit must be positive", ErrInvalidPipeline)
	}
	a := b.alias("s")
	return fmt.Sprintf("SELECT %[1]s.doc, %[1]s.ord FROM (%[2]s) AS %[1]s ORDER BY %[1]s.ord, %[1]s.doc->>'_id' LIMIT %[3]s", a, input, b.arg(l.n)), nil
}
