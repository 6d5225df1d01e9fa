package database

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// TxBuilder assembles a BEGIN/COMMIT TRANSACTION block, namespacing the
// variables of each statement so that two statements using $id do not collide.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
	varCounter uint64
}

// NewTxBuilder creates an empty builder.
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		statements: make([]string, 0),
		vars:       make(map[string]interface{}),
	}
}

// Add appends a statement, rewriting $name to $v<N>_name.
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) {
	newQuery := query

	// Longest names first so $seat is not rewritten inside $seat_number
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sortByLengthDesc(names)

	for _, name := range names {
		counter := atomic.AddUint64(&tb.varCounter, 1)
		renamed := fmt.Sprintf("v%d_%s", counter, name)
		newQuery = strings.ReplaceAll(newQuery, "$"+name, "$"+renamed)
		tb.vars[renamed] = vars[name]
	}

	tb.statements = append(tb.statements, newQuery)
}

// Build returns the transaction text and merged variables.
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

// AtomicBatch collects statements that must succeed or fail together.
type AtomicBatch struct {
	queries []batchQuery
}

type batchQuery struct {
	query string
	vars  map[string]interface{}
}

// NewAtomicBatch creates an empty batch.
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{}
}

// Add appends a statement.
func (ab *AtomicBatch) Add(query string, vars map[string]interface{}) *AtomicBatch {
	ab.queries = append(ab.queries, batchQuery{query: query, vars: vars})
	return ab
}

// Execute sends all statements as a single transaction.
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) error {
	if len(ab.queries) == 0 {
		return nil
	}

	tb := NewTxBuilder()
	for _, q := range ab.queries {
		tb.Add(q.query, q.vars)
	}

	query, vars := tb.Build()
	return db.Execute(ctx, query, vars)
}

// Len returns the number of statements queued.
func (ab *AtomicBatch) Len() int {
	return len(ab.queries)
}

func sortByLengthDesc(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && len(names[j]) > len(names[j-1]); j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}
