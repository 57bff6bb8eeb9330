package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupTemplate_ExactReportType(t *testing.T) {
	// Act
	template, ok := LookupTemplate("AP_AGING", "")

	// Assert
	require.True(t, ok)
	require.Len(t, template, 6)
	assert.Equal(t, "Fetch Purchase Invoices", template[0].Title)
}

func TestLookupTemplate_CaseInsensitiveReportType(t *testing.T) {
	// Act
	template, ok := LookupTemplate("ap_aging", "")

	// Assert
	require.True(t, ok)
	assert.Len(t, template, 6)
}

func TestLookupTemplate_WorkflowNameContainsKey(t *testing.T) {
	// Act
	template, ok := LookupTemplate("", "My AR_AGING report for Q3")

	// Assert
	require.True(t, ok)
	assert.Equal(t, "Fetch Sales Invoices", template[0].Title)
}

func TestLookupTemplate_KeyContainsWorkflowName(t *testing.T) {
	// "DSO" is matched when the whole name is a fragment of a key
	template, ok := LookupTemplate("", "dso")

	require.True(t, ok)
	assert.Equal(t, "Calculate DSO", template[2].Title)
}

func TestLookupTemplate_ReportTypeBeatsWorkflowName(t *testing.T) {
	// Act
	template, ok := LookupTemplate("AP_DUPLICATE", "AR_AGING Dashboard")

	// Assert
	require.True(t, ok)
	assert.Equal(t, "Detect Duplicates", template[1].Title)
}

func TestLookupTemplate_NoMatch(t *testing.T) {
	// Act
	template, ok := LookupTemplate("UNKNOWN_REPORT", "Quarterly Review")

	// Assert
	assert.False(t, ok)
	assert.Nil(t, template)
}

func TestTemplateKeys_AllResolvable(t *testing.T) {
	for _, key := range TemplateKeys() {
		template, ok := Template(key)
		assert.True(t, ok, "key %s has no template", key)
		assert.NotEmpty(t, template, "key %s is empty", key)
	}
}
