package schema

// DiagnosticsErrorReportTable represents the 'diagnostics.error_report' table
type DiagnosticsErrorReportTable struct {
	Table      string
	ID         string
	Boundary   string
	View       string
	Message    string
	Stack      string
	UserAgent  string
	URL        string
	OccurredAt string
	CreatedAt  string
}

// DiagnosticsErrorReport is the schema definition for diagnostics.error_report
var DiagnosticsErrorReport = DiagnosticsErrorReportTable{
	Table:      "diagnostics.error_report",
	ID:         "id",
	Boundary:   "boundary",
	View:       "view",
	Message:    "message",
	Stack:      "stack",
	UserAgent:  "useragent",
	URL:        "url",
	OccurredAt: "occurredat",
	CreatedAt:  "createdat",
}

// InsertColumns lists the columns written by the report store, in bind order.
func (t DiagnosticsErrorReportTable) InsertColumns() []string {
	return []string{t.ID, t.Boundary, t.View, t.Message, t.Stack, t.UserAgent, t.URL, t.OccurredAt}
}
