package log

import "time"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldCostID     = "id"
	FieldSum        = "sum"
	FieldCurrency   = "currency"
	FieldCategory   = "category"
	FieldRatesURL   = "rates_url"
	FieldRatesState = "rates_state"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentCost    = "cost"
	ComponentStorage = "storage"
	ComponentRates   = "rates"
	ComponentReports = "reports"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
)

// Operations defines standard operation names
const (
	OpAdd     = "add"
	OpReport  = "report"
	OpFetch   = "fetch"
	OpConvert = "convert"
	OpExport  = "export"
)

// LogFields provides a builder for structured log fields
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

// WithRequest adds request fields
func (f LogFields) WithRequest(method, path, query, clientIP string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldClientIP] = clientIP
	return f
}

// WithStatus adds response outcome fields
func (f LogFields) WithStatus(status int, duration time.Duration) LogFields {
	f[FieldStatusCode] = status
	f[FieldDuration] = duration.Milliseconds()
	f[FieldSuccess] = status < 400
	return f
}

// WithCost adds cost-record fields
func (f LogFields) WithCost(id int64, sum float64, currency, category string) LogFields {
	f[FieldCostID] = id
	f[FieldSum] = sum
	f[FieldCurrency] = currency
	f[FieldCategory] = category
	return f
}

// WithPeriod adds report-period fields
func (f LogFields) WithPeriod(year, month int) LogFields {
	f[FieldYear] = year
	f[FieldMonth] = month
	return f
}

// WithRates adds rate-source fields
func (f LogFields) WithRates(url, state string) LogFields {
	f[FieldRatesURL] = url
	f[FieldRatesState] = state
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
