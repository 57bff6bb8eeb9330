// Package schema describes the per-kind configuration form of every node
// type: which fields exist, how they render, and what values they accept.
// The registry is purely declarative; nothing here interprets a config.
package schema

import (
	"encoding/json"
	"fmt"

	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
)

// FieldType selects the widget and the accepted value shape for one field
type FieldType string

const (
	FieldString     FieldType = "string"
	FieldText       FieldType = "text"
	FieldNumber     FieldType = "number"
	FieldBoolean    FieldType = "boolean"
	FieldSelect     FieldType = "select"
	FieldStringList FieldType = "stringlist"
	FieldFileList   FieldType = "filelist"
)

// Field describes one config form input
type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Options     []string  `json:"options,omitempty"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Default     any       `json:"default,omitempty"`
}

// Schema is the config form definition for one node kind
type Schema struct {
	Kind   valueobjects.NodeKind `json:"kind"`
	Title  string                `json:"title"`
	Fields []Field               `json:"fields"`
}

func num(v float64) *float64 { return &v }

var registry = map[valueobjects.NodeKind]Schema{
	valueobjects.KindTrigger: {
		Kind: valueobjects.KindTrigger, Title: "Trigger Settings",
		Fields: []Field{
			{Name: "triggerType", Type: FieldSelect, Options: []string{"manual", "scheduled", "webhook"}, Default: "manual"},
			{Name: "acceptedFileTypes", Type: FieldStringList},
			{Name: "uploadedFiles", Type: FieldFileList},
		},
	},
	valueobjects.KindEmail: {
		Kind: valueobjects.KindEmail, Title: "Email Settings",
		Fields: []Field{
			{Name: "emailTo", Type: FieldString, Placeholder: "recipient@example.com"},
			{Name: "emailSubject", Type: FieldString, Placeholder: "Email subject"},
			{Name: "emailBody", Type: FieldText, Placeholder: "Email body content"},
		},
	},
	valueobjects.KindDelay: {
		Kind: valueobjects.KindDelay, Title: "Delay Settings",
		Fields: []Field{
			{Name: "delayAmount", Type: FieldNumber, Min: num(1), Default: 1},
			{Name: "delayUnit", Type: FieldSelect, Options: []string{"minutes", "hours", "days"}, Default: "days"},
		},
	},
	valueobjects.KindExport: {
		Kind: valueobjects.KindExport, Title: "Export Settings",
		Fields: []Field{
			{Name: "exportFormat", Type: FieldSelect, Options: []string{"CSV", "Excel", "JSON", "PDF"}, Default: "CSV"},
		},
	},
	valueobjects.KindCondition: {
		Kind: valueobjects.KindCondition, Title: "Condition Settings",
		Fields: []Field{
			{Name: "condition", Type: FieldString, Placeholder: "e.g., amount > 1000"},
		},
	},
	valueobjects.KindLoop: {
		Kind: valueobjects.KindLoop, Title: "Loop Settings",
		Fields: []Field{
			{Name: "loopOver", Type: FieldString, Placeholder: "items"},
			{Name: "maxIterations", Type: FieldNumber, Min: num(1), Max: num(10000)},
		},
	},
	valueobjects.KindApproval: {
		Kind: valueobjects.KindApproval, Title: "Approval Settings",
		Fields: []Field{
			{Name: "approverEmail", Type: FieldString, Placeholder: "approver@example.com"},
			{Name: "timeoutHours", Type: FieldNumber, Min: num(1), Max: num(720), Default: 48},
			{Name: "escalateOnTimeout", Type: FieldBoolean, Default: false},
		},
	},
	valueobjects.KindCode: {
		Kind: valueobjects.KindCode, Title: "Code Settings",
		Fields: []Field{
			{Name: "code", Type: FieldText, Placeholder: "// Write your code here"},
		},
	},
	valueobjects.KindParser: {
		Kind: valueobjects.KindParser, Title: "Document Parser",
		Fields: []Field{
			{Name: "emailInbox", Type: FieldString, Placeholder: "invoices@company.com"},
			{Name: "apiEndpoint", Type: FieldString},
			{Name: "ocrEnabled", Type: FieldBoolean, Default: true},
		},
	},
	valueobjects.KindValidator: {
		Kind: valueobjects.KindValidator, Title: "Validation Rules",
		Fields: []Field{
			{Name: "requiredFields", Type: FieldStringList},
			{Name: "taxIdCheck", Type: FieldBoolean, Default: true},
			{Name: "rejectOnFailure", Type: FieldBoolean, Default: false},
		},
	},
	valueobjects.KindMatcher: {
		Kind: valueobjects.KindMatcher, Title: "Matching Settings",
		Fields: []Field{
			{Name: "quantityField", Type: FieldString, Default: "quantity"},
			{Name: "priceField", Type: FieldString, Default: "unit_price"},
			{Name: "tolerancePercentage", Type: FieldNumber, Min: num(0), Max: num(100), Default: 5},
			{Name: "autoApprove", Type: FieldBoolean, Default: false},
		},
	},
	valueobjects.KindDuplicate: {
		Kind: valueobjects.KindDuplicate, Title: "Duplicate Detection",
		Fields: []Field{
			{Name: "matchFields", Type: FieldStringList},
			{Name: "confidenceThreshold", Type: FieldNumber, Min: num(0), Max: num(1), Default: 0.8},
		},
	},
	valueobjects.KindException: {
		Kind: valueobjects.KindException, Title: "Exception Routing",
		Fields: []Field{
			{Name: "routeTo", Type: FieldString, Placeholder: "ap-exceptions@company.com"},
			{Name: "severityLevels", Type: FieldStringList},
		},
	},
	valueobjects.KindBilling: {
		Kind: valueobjects.KindBilling, Title: "Billing Settings",
		Fields: []Field{
			{Name: "billingCycle", Type: FieldSelect, Options: []string{"weekly", "monthly", "quarterly"}, Default: "monthly"},
			{Name: "currency", Type: FieldString, Default: "USD"},
		},
	},
	valueobjects.KindAllocator: {
		Kind: valueobjects.KindAllocator, Title: "Payment Allocation",
		Fields: []Field{
			{Name: "bankCreditField", Type: FieldString, Default: "credit_amount"},
			{Name: "invoiceRefField", Type: FieldString, Default: "invoice_ref"},
			{Name: "allocationMethod", Type: FieldSelect, Options: []string{"fifo", "exact", "proportional"}, Default: "fifo"},
		},
	},
	valueobjects.KindAging: {
		Kind: valueobjects.KindAging, Title: "Aging Analysis",
		Fields: []Field{
			{Name: "agingBuckets", Type: FieldStringList, Default: []string{"0-30", "31-60", "61-90", "90+"}},
			{Name: "dsoFormula", Type: FieldSelect, Options: []string{"standard", "countback"}, Default: "standard"},
			{Name: "calculationPeriod", Type: FieldNumber, Min: num(1), Max: num(365), Default: 90},
		},
	},
	valueobjects.KindRecon: {
		Kind: valueobjects.KindRecon, Title: "Reconciliation Settings",
		Fields: []Field{
			{Name: "bankStatementSource", Type: FieldString},
			{Name: "ledgerSource", Type: FieldString},
			{Name: "matchWindowDays", Type: FieldNumber, Min: num(1), Max: num(90), Default: 7},
		},
	},
	valueobjects.KindVariance: {
		Kind: valueobjects.KindVariance, Title: "Variance Analysis",
		Fields: []Field{
			{Name: "baselineField", Type: FieldString, Default: "budget"},
			{Name: "actualField", Type: FieldString, Default: "actual"},
			{Name: "alertThreshold", Type: FieldNumber, Min: num(0), Max: num(100), Default: 10},
		},
	},
	valueobjects.KindERPSync: {
		Kind: valueobjects.KindERPSync, Title: "ERP Sync Settings",
		Fields: []Field{
			{Name: "erpSystem", Type: FieldSelect, Options: []string{"sap", "netsuite", "dynamics", "tally"}},
			{Name: "syncDirection", Type: FieldSelect, Options: []string{"push", "pull", "bidirectional"}, Default: "push"},
			{Name: "batchSize", Type: FieldNumber, Min: num(1), Max: num(1000), Default: 100},
		},
	},
	valueobjects.KindLogger: {
		Kind: valueobjects.KindLogger, Title: "Audit Logging",
		Fields: []Field{
			{Name: "logLevel", Type: FieldSelect, Options: []string{"debug", "info", "warn", "error"}, Default: "info"},
			{Name: "retentionDays", Type: FieldNumber, Min: num(1), Max: num(3650), Default: 365},
		},
	},
	valueobjects.KindAPReporting: {
		Kind: valueobjects.KindAPReporting, Title: "AP Report Settings",
		Fields: []Field{
			{Name: "reportType", Type: FieldSelect, Options: []string{"AP_AGING", "AP_OVERDUE", "AP_DUPLICATE", "AP_REGISTER"}},
			{Name: "groupBy", Type: FieldString, Default: "vendor"},
		},
	},
	valueobjects.KindARReporting: {
		Kind: valueobjects.KindARReporting, Title: "AR Report Settings",
		Fields: []Field{
			{Name: "reportType", Type: FieldSelect, Options: []string{"AR_AGING", "AR_REGISTER", "AR_COLLECTION", "DSO"}},
			{Name: "groupBy", Type: FieldString, Default: "customer"},
		},
	},
	valueobjects.KindReconReporting: {
		Kind: valueobjects.KindReconReporting, Title: "Recon Report Settings",
		Fields: []Field{
			{Name: "includeMatched", Type: FieldBoolean, Default: false},
			{Name: "includeUnmatched", Type: FieldBoolean, Default: true},
		},
	},
	valueobjects.KindAuditReporting: {
		Kind: valueobjects.KindAuditReporting, Title: "Audit Report Settings",
		Fields: []Field{
			{Name: "auditPeriod", Type: FieldSelect, Options: []string{"monthly", "quarterly", "yearly"}, Default: "quarterly"},
			{Name: "includeTrail", Type: FieldBoolean, Default: true},
		},
	},
	valueobjects.KindOrchestrator: {
		Kind: valueobjects.KindOrchestrator, Title: "Orchestrator Settings",
		Fields: []Field{
			{Name: "maxParallelism", Type: FieldNumber, Min: num(1), Max: num(32), Default: 4},
			{Name: "retryCount", Type: FieldNumber, Min: num(0), Max: num(10), Default: 2},
		},
	},
	valueobjects.KindCodeAgent: {
		Kind: valueobjects.KindCodeAgent, Title: "Code Agent Settings",
		Fields: []Field{
			{Name: "language", Type: FieldSelect, Options: []string{"python", "sql"}, Default: "python"},
			{Name: "instructions", Type: FieldText},
		},
	},
	valueobjects.KindVizAgent: {
		Kind: valueobjects.KindVizAgent, Title: "Visualization Settings",
		Fields: []Field{
			{Name: "chartType", Type: FieldSelect, Options: []string{"bar", "line", "pie", "table"}, Default: "table"},
			{Name: "aggregation", Type: FieldSelect, Options: []string{"sum", "avg", "count", "min", "max"}, Default: "sum"},
		},
	},
	valueobjects.KindSandbox: {
		Kind: valueobjects.KindSandbox, Title: "Sandbox Settings",
		Fields: []Field{
			{Name: "timeoutSeconds", Type: FieldNumber, Min: num(1), Max: num(600), Default: 60},
			{Name: "memoryLimitMB", Type: FieldNumber, Min: num(64), Max: num(4096), Default: 512},
		},
	},
	valueobjects.KindLiveCode: {
		Kind: valueobjects.KindLiveCode, Title: "Live Code Settings",
		Fields: []Field{
			{Name: "autoRun", Type: FieldBoolean, Default: false},
			{Name: "code", Type: FieldText},
		},
	},
	valueobjects.KindInsight: {
		Kind: valueobjects.KindInsight, Title: "Insight Settings",
		Fields: []Field{
			{Name: "focusAreas", Type: FieldStringList},
			{Name: "narrativeStyle", Type: FieldSelect, Options: []string{"brief", "detailed"}, Default: "brief"},
		},
	},
	valueobjects.KindDataGrid: {
		Kind: valueobjects.KindDataGrid, Title: "Data Grid Settings",
		Fields: []Field{
			{Name: "pageSize", Type: FieldNumber, Min: num(10), Max: num(500), Default: 50},
			{Name: "editable", Type: FieldBoolean, Default: false},
		},
	},
	valueobjects.KindGuardrails: {
		Kind: valueobjects.KindGuardrails, Title: "Guardrail Settings",
		Fields: []Field{
			{Name: "blockedOperations", Type: FieldStringList},
			{Name: "piiRedaction", Type: FieldBoolean, Default: true},
		},
	},
	valueobjects.KindMemory: {
		Kind: valueobjects.KindMemory, Title: "Memory Settings",
		Fields: []Field{
			{Name: "scope", Type: FieldSelect, Options: []string{"session", "workflow", "global"}, Default: "session"},
			{Name: "ttlHours", Type: FieldNumber, Min: num(1), Max: num(8760), Default: 24},
		},
	},
}

// Fields every kind accepts in addition to its schema
var commonFields = map[string]struct{}{
	"name":        {},
	"description": {},
}

// ForKind returns the config schema for a node kind
func ForKind(kind valueobjects.NodeKind) (Schema, error) {
	s, ok := registry[kind]
	if !ok {
		return Schema{}, pkgerrors.NewNotFoundError("schema")
	}
	return s, nil
}

// All returns every schema, ordered by the canonical kind order
func All() []Schema {
	out := make([]Schema, 0, len(registry))
	for _, k := range valueobjects.AllKinds() {
		if s, ok := registry[k]; ok {
			out = append(out, s)
		}
	}
	return out
}

// ValidatePatch checks a config patch against the kind's schema: known field
// names, value shape, enum membership and numeric ranges. It is data-entry
// validation only; it never interprets values.
func ValidatePatch(kind valueobjects.NodeKind, patch map[string]interface{}) error {
	s, err := ForKind(kind)
	if err != nil {
		return err
	}

	fields := make(map[string]Field, len(s.Fields))
	for _, f := range s.Fields {
		fields[f.Name] = f
	}

	for name, value := range patch {
		if _, common := commonFields[name]; common {
			continue
		}
		f, ok := fields[name]
		if !ok {
			return pkgerrors.NewValidationError(fmt.Sprintf("unknown config field %q for kind %s", name, kind))
		}
		if err := validateValue(f, value); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(f Field, value interface{}) error {
	if value == nil {
		return nil
	}
	switch f.Type {
	case FieldString, FieldText:
		if _, ok := value.(string); !ok {
			return pkgerrors.NewValidationError(fmt.Sprintf("%s must be a string", f.Name))
		}
	case FieldNumber:
		n, ok := toFloat(value)
		if !ok {
			return pkgerrors.NewValidationError(fmt.Sprintf("%s must be a number", f.Name))
		}
		if f.Min != nil && n < *f.Min {
			return pkgerrors.NewValidationError(fmt.Sprintf("%s must be at least %v", f.Name, *f.Min))
		}
		if f.Max != nil && n > *f.Max {
			return pkgerrors.NewValidationError(fmt.Sprintf("%s must be at most %v", f.Name, *f.Max))
		}
	case FieldBoolean:
		if _, ok := value.(bool); !ok {
			return pkgerrors.NewValidationError(fmt.Sprintf("%s must be a boolean", f.Name))
		}
	case FieldSelect:
		s, ok := value.(string)
		if !ok {
			return pkgerrors.NewValidationError(fmt.Sprintf("%s must be a string", f.Name))
		}
		for _, opt := range f.Options {
			if s == opt {
				return nil
			}
		}
		return pkgerrors.NewValidationError(fmt.Sprintf("%s must be one of %v", f.Name, f.Options))
	case FieldStringList, FieldFileList:
		switch v := value.(type) {
		case []string:
			return nil
		case []interface{}:
			for _, item := range v {
				if _, ok := item.(string); !ok {
					return pkgerrors.NewValidationError(fmt.Sprintf("%s must contain only strings", f.Name))
				}
			}
			return nil
		default:
			return pkgerrors.NewValidationError(fmt.Sprintf("%s must be a list", f.Name))
		}
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
