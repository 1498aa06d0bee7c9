package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldPath          = "path"
	FieldBackend       = "backend"
	FieldTransactionID = "transaction_id"
	FieldRow           = "row"
	FieldCategory      = "category"
	FieldAmount        = "amount"
	FieldDate          = "date"
	FieldAttempt       = "attempt"
	FieldSucceeded     = "succeeded"
	FieldFailed        = "failed"
	FieldDuration      = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStorage = "storage"
	ComponentImport  = "import"
	ComponentReport  = "report"
	ComponentCharts  = "charts"
	ComponentBackend = "backend"
	ComponentSetup   = "setup"
)

// Operations defines standard operation names
const (
	OpInsert  = "insert"
	OpScan    = "scan"
	OpList    = "list"
	OpMigrate = "migrate"
	OpReset   = "reset"
	OpImport  = "import"
	OpAnalyze = "analyze"
	OpRender  = "render"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id int64, date, category, amount string) LogFields {
	if id != 0 {
		f[FieldTransactionID] = id
	}
	f[FieldDate] = date
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
