// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/charadex/internal/boundary"
	"github.com/taibuivan/charadex/internal/platform/database/schema"
	"github.com/taibuivan/charadex/internal/platform/dberr"
	"github.com/taibuivan/charadex/pkg/uuidv7"
)

// maxStackBytes caps the stored stack trace.
const maxStackBytes = 16 << 10

// execer is the part of [pgxpool.Pool] the reporter needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresReporter implements [Reporter] using pgx.
type PostgresReporter struct {
	pool  execer
	query string
}

// NewPostgresReporter creates a reporter writing to diagnostics.error_report.
func NewPostgresReporter(pool execer) *PostgresReporter {
	columns := schema.DiagnosticsErrorReport.InsertColumns()

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		schema.DiagnosticsErrorReport.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	return &PostgresReporter{pool: pool, query: query}
}

/*
Report inserts one diagnostic row.

Parameters:
  - ctx: context.Context
  - diagnostic: boundary.Diagnostic

Returns:
  - error: Wrapped database failures
*/
func (reporter *PostgresReporter) Report(ctx context.Context, diagnostic boundary.Diagnostic) error {
	stack := diagnostic.Stack
	if len(stack) > maxStackBytes {
		stack = strings.ToValidUTF8(stack[:maxStackBytes], "")
	}

	_, err := reporter.pool.Exec(ctx, reporter.query,
		uuidv7.New(),
		diagnostic.Boundary,
		diagnostic.View,
		diagnostic.Message,
		stack,
		diagnostic.UserAgent,
		diagnostic.URL,
		diagnostic.Timestamp,
	)
	if err != nil {
		return dberr.Wrap(err, "insert error report")
	}

	return nil
}
