package mapper

import (
	"strings"

	"flowbuilder/domain/core/valueobjects"
)

// TemplateNode is one predefined step of a report template
type TemplateNode struct {
	Title string
	Kind  valueobjects.NodeKind
}

// reportTemplates maps report-type keys to their canonical step sequence.
// Used to synthesize a full graph when the backend sends a sparse payload,
// and to enrich node titles/kinds when it sends bare node lists.
var reportTemplates = map[string][]TemplateNode{
	"AP_AGING": {
		{Title: "Fetch Purchase Invoices", Kind: valueobjects.KindParser},
		{Title: "Calculate Outstanding", Kind: valueobjects.KindAllocator},
		{Title: "Calculate Aging Days", Kind: valueobjects.KindAging},
		{Title: "Group by Bucket", Kind: valueobjects.KindMatcher},
		{Title: "Calculate Summary", Kind: valueobjects.KindVizAgent},
		{Title: "Export Excel", Kind: valueobjects.KindExport},
	},
	"AP_OVERDUE": {
		{Title: "Fetch Purchase Invoices", Kind: valueobjects.KindParser},
		{Title: "Calculate Outstanding", Kind: valueobjects.KindAllocator},
		{Title: "Check SLA Breaches", Kind: valueobjects.KindCondition},
		{Title: "Filter by Severity", Kind: valueobjects.KindCondition},
		{Title: "Sort by Overdue", Kind: valueobjects.KindAllocator},
		{Title: "Generate Report", Kind: valueobjects.KindExport},
	},
	"AP_DUPLICATE": {
		{Title: "Fetch Purchase Invoices", Kind: valueobjects.KindParser},
		{Title: "Detect Duplicates", Kind: valueobjects.KindMatcher},
		{Title: "Filter Confidence", Kind: valueobjects.KindCondition},
		{Title: "Generate Report", Kind: valueobjects.KindExport},
	},
	"AP_REGISTER": {
		{Title: "Fetch All Invoices", Kind: valueobjects.KindParser},
		{Title: "Calculate Outstanding", Kind: valueobjects.KindAllocator},
		{Title: "Filter Paid Status", Kind: valueobjects.KindCondition},
		{Title: "Format Data", Kind: valueobjects.KindCode},
		{Title: "Calculate Totals", Kind: valueobjects.KindVizAgent},
		{Title: "Export Register", Kind: valueobjects.KindExport},
	},
	"AR_AGING": {
		{Title: "Fetch Sales Invoices", Kind: valueobjects.KindParser},
		{Title: "Calculate Outstanding", Kind: valueobjects.KindAllocator},
		{Title: "Calculate Aging Days", Kind: valueobjects.KindAging},
		{Title: "Group by Bucket", Kind: valueobjects.KindMatcher},
		{Title: "Calculate Summary", Kind: valueobjects.KindVizAgent},
		{Title: "Export Excel", Kind: valueobjects.KindExport},
	},
	"AR_REGISTER": {
		{Title: "Fetch Sales Invoices", Kind: valueobjects.KindParser},
		{Title: "Calculate Outstanding", Kind: valueobjects.KindAllocator},
		{Title: "Filter Paid Status", Kind: valueobjects.KindCondition},
		{Title: "Format Data", Kind: valueobjects.KindCode},
		{Title: "Calculate Totals", Kind: valueobjects.KindVizAgent},
		{Title: "Export Register", Kind: valueobjects.KindExport},
	},
	"AR_COLLECTION": {
		{Title: "Fetch Sales Invoices", Kind: valueobjects.KindParser},
		{Title: "Calculate Outstanding", Kind: valueobjects.KindAllocator},
	},
	"DSO": {
		{Title: "Fetch Sales Invoices", Kind: valueobjects.KindParser},
		{Title: "Calculate Outstanding", Kind: valueobjects.KindAllocator},
		{Title: "Calculate DSO", Kind: valueobjects.KindAging},
		{Title: "Generate Report", Kind: valueobjects.KindExport},
	},
}

// TemplateKeys returns the catalog keys in a stable order
func TemplateKeys() []string {
	return []string{
		"AP_AGING", "AP_OVERDUE", "AP_DUPLICATE", "AP_REGISTER",
		"AR_AGING", "AR_REGISTER", "AR_COLLECTION", "DSO",
	}
}

// Template returns a template by exact key
func Template(key string) ([]TemplateNode, bool) {
	t, ok := reportTemplates[key]
	return t, ok
}

// LookupTemplate resolves a template from free-text hints. The report type is
// tried first, case-sensitively then case-insensitively; the workflow name is
// tried last, by case-insensitive exact match or substring containment in
// either direction ("ap_aging report" matches "AP_AGING").
func LookupTemplate(reportType, workflowName string) ([]TemplateNode, bool) {
	if reportType != "" {
		if t, ok := reportTemplates[reportType]; ok {
			return t, true
		}
		for _, key := range TemplateKeys() {
			if strings.EqualFold(key, reportType) {
				return reportTemplates[key], true
			}
		}
	}

	if workflowName != "" {
		upper := strings.ToUpper(workflowName)
		for _, key := range TemplateKeys() {
			if strings.EqualFold(key, workflowName) ||
				strings.Contains(upper, key) ||
				strings.Contains(key, upper) {
				return reportTemplates[key], true
			}
		}
	}

	return nil, false
}
