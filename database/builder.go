package database

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// QueryBuilder provides a fluent, type-safe API for building database queries
type QueryBuilder[T any] struct {
	db *DB

	// Query clauses
	wheres      []*WhereClause
	whereGroups []*WhereGroup
	orders      []*OrderClause
	limitVal    *int
	offsetVal   *int

	// Timeout
	timeout time.Duration
}

// WhereClause represents a WHERE condition
type WhereClause struct {
	Column   string
	Operator string
	Value    any
	IsRaw    bool
	RawSQL   string
	RawArgs  []any
}

// WhereGroup represents a parenthesised group of conditions joined by Connector
type WhereGroup struct {
	Conditions []*WhereClause
	Connector  string // "AND" or "OR"
}

// OrderClause represents an ORDER BY clause
type OrderClause struct {
	Column    string
	Direction OrderDirection
}

type OrderDirection string

const (
	Asc  OrderDirection = "ASC"
	Desc OrderDirection = "DESC"
)

// WhereGroupBuilder collects the conditions of one group
type WhereGroupBuilder[T any] struct {
	parent *QueryBuilder[T]
	group  *WhereGroup
}

// Query starts a new query on the table of T
func Query[T any](db *DB) *QueryBuilder[T] {
	return &QueryBuilder[T]{
		db:      db,
		timeout: db.queryTimeout,
	}
}

// Where adds an equality condition
func (q *QueryBuilder[T]) Where(column string, value any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, &WhereClause{Column: column, Operator: "=", Value: value})
	return q
}

// WhereOp adds a condition with a custom comparison operator
func (q *QueryBuilder[T]) WhereOp(column, operator string, value any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, &WhereClause{Column: column, Operator: operator, Value: value})
	return q
}

// WhereRaw adds a raw SQL condition
func (q *QueryBuilder[T]) WhereRaw(sql string, args ...any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, &WhereClause{IsRaw: true, RawSQL: sql, RawArgs: args})
	return q
}

// WhereGroup opens a parenthesised group whose conditions are joined by connector
func (q *QueryBuilder[T]) WhereGroup(connector string) *WhereGroupBuilder[T] {
	return &WhereGroupBuilder[T]{
		parent: q,
		group:  &WhereGroup{Connector: strings.ToUpper(connector)},
	}
}

// OrderBy adds an ORDER BY clause
func (q *QueryBuilder[T]) OrderBy(column string, direction OrderDirection) *QueryBuilder[T] {
	if direction != Asc && direction != Desc {
		direction = Asc
	}
	q.orders = append(q.orders, &OrderClause{Column: column, Direction: direction})
	return q
}

func (q *QueryBuilder[T]) Limit(limit int) *QueryBuilder[T] {
	q.limitVal = &limit
	return q
}

func (q *QueryBuilder[T]) Offset(offset int) *QueryBuilder[T] {
	q.offsetVal = &offset
	return q
}

// Timeout overrides the per-query timeout
func (q *QueryBuilder[T]) Timeout(duration time.Duration) *QueryBuilder[T] {
	q.timeout = duration
	return q
}

func (w *WhereGroupBuilder[T]) Where(column string, value any) *WhereGroupBuilder[T] {
	return w.WhereOp(column, "=", value)
}

func (w *WhereGroupBuilder[T]) WhereOp(column, operator string, value any) *WhereGroupBuilder[T] {
	w.group.Conditions = append(w.group.Conditions, &WhereClause{Column: column, Operator: operator, Value: value})
	return w
}

func (w *WhereGroupBuilder[T]) WhereRaw(sql string, args ...any) *WhereGroupBuilder[T] {
	w.group.Conditions = append(w.group.Conditions, &WhereClause{IsRaw: true, RawSQL: sql, RawArgs: args})
	return w
}

// End closes the group and returns to the parent query
func (w *WhereGroupBuilder[T]) End() *QueryBuilder[T] {
	if len(w.group.Conditions) > 0 {
		w.parent.whereGroups = append(w.parent.whereGroups, w.group)
	}
	return w.parent
}

func (c *WhereClause) expr() (string, []any) {
	if c.IsRaw {
		return c.RawSQL, c.RawArgs
	}
	return "? " + c.Operator + " ?", []any{bun.Ident(c.Column), c.Value}
}

// applyWheres applies every WHERE condition and group to any bun query
func (q *QueryBuilder[T]) applyWheres(qb bun.QueryBuilder) bun.QueryBuilder {
	for _, c := range q.wheres {
		sql, args := c.expr()
		qb = qb.Where(sql, args...)
	}

	for _, group := range q.whereGroups {
		qb = qb.WhereGroup(" AND ", func(g bun.QueryBuilder) bun.QueryBuilder {
			for _, c := range group.Conditions {
				sql, args := c.expr()
				if group.Connector == "OR" {
					g = g.WhereOr(sql, args...)
				} else {
					g = g.Where(sql, args...)
				}
			}
			return g
		})
	}

	return qb
}

// buildSelect creates the SELECT for model, with conditions, ordering and paging applied
func (q *QueryBuilder[T]) buildSelect(model any) *bun.SelectQuery {
	query := q.db.NewSelect().Model(model).ApplyQueryBuilder(q.applyWheres)

	for _, o := range q.orders {
		query = query.OrderExpr("? "+string(o.Direction), bun.Ident(o.Column))
	}
	if q.limitVal != nil {
		query = query.Limit(*q.limitVal)
	}
	if q.offsetVal != nil {
		query = query.Offset(*q.offsetVal)
	}

	return query
}
