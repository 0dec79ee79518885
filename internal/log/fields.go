package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldID        = "id"
	FieldDate      = "date"
	FieldDue       = "due"
	FieldTitle     = "title"
	FieldAmount    = "amount"
	FieldKind      = "type"
	FieldCategory  = "category"
	FieldMonth     = "month"
	FieldPath      = "path"
	FieldBackend   = "backend"
	FieldCount     = "count"
	FieldStatus    = "status"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentDaemon  = "daemon"
	ComponentCLI     = "cli"
	ComponentTUI     = "tui"
	ComponentExport  = "export"
)

// Standard operation names.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
	OpSave   = "save"
	OpLoad   = "load"
	OpPost   = "post_due"
	OpExport = "export"
)

// Fields is a builder for structured log attributes.
type Fields map[string]any

// NewFields creates an empty Fields.
func NewFields() Fields {
	return make(Fields)
}

// WithOperation adds the operation field.
func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error field when err is non-nil.
func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithTransaction adds the identifying fields of a transaction.
func (f Fields) WithTransaction(id int64, date, kind, amount string) Fields {
	f[FieldID] = id
	f[FieldDate] = date
	f[FieldKind] = kind
	f[FieldAmount] = amount
	return f
}

// ToSlice flattens the fields into slog key/value pairs.
func (f Fields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
