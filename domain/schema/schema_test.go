package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowbuilder/domain/core/valueobjects"
)

func TestForKind_EveryKindHasASchema(t *testing.T) {
	for _, kind := range valueobjects.AllKinds() {
		s, err := ForKind(kind)
		require.NoError(t, err, "kind %s has no schema", kind)
		assert.Equal(t, kind, s.Kind)
		assert.NotEmpty(t, s.Title)
	}
}

func TestForKind_UnknownKind(t *testing.T) {
	_, err := ForKind(valueobjects.NodeKind("ghost"))
	assert.Error(t, err)
}

func TestAll_OrderedByCanonicalKindOrder(t *testing.T) {
	// Act
	all := All()

	// Assert
	require.Len(t, all, len(valueobjects.AllKinds()))
	for i, kind := range valueobjects.AllKinds() {
		assert.Equal(t, kind, all[i].Kind)
	}
}

func TestValidatePatch_AcceptsValidValues(t *testing.T) {
	// Act
	err := ValidatePatch(valueobjects.KindDelay, map[string]interface{}{
		"delayAmount": 3,
		"delayUnit":   "hours",
		"name":        "Wait a bit",
	})

	// Assert
	assert.NoError(t, err)
}

func TestValidatePatch_UnknownField(t *testing.T) {
	err := ValidatePatch(valueobjects.KindDelay, map[string]interface{}{
		"delayColor": "red",
	})
	assert.Error(t, err)
}

func TestValidatePatch_CommonFieldsAlwaysAllowed(t *testing.T) {
	err := ValidatePatch(valueobjects.KindCode, map[string]interface{}{
		"name":        "Format Data",
		"description": "reshapes the rows",
	})
	assert.NoError(t, err)
}

func TestValidatePatch_TypeMismatches(t *testing.T) {
	tests := []struct {
		name  string
		kind  valueobjects.NodeKind
		patch map[string]interface{}
	}{
		{"string field gets number", valueobjects.KindEmail, map[string]interface{}{"emailSubject": 42}},
		{"number field gets string", valueobjects.KindDelay, map[string]interface{}{"delayAmount": "three"}},
		{"boolean field gets string", valueobjects.KindParser, map[string]interface{}{"ocrEnabled": "yes"}},
		{"select outside options", valueobjects.KindDelay, map[string]interface{}{"delayUnit": "weeks"}},
		{"list field gets scalar", valueobjects.KindValidator, map[string]interface{}{"requiredFields": "amount"}},
		{"list with non-string item", valueobjects.KindValidator, map[string]interface{}{"requiredFields": []interface{}{"amount", 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidatePatch(tt.kind, tt.patch))
		})
	}
}

func TestValidatePatch_NumericRange(t *testing.T) {
	// delayAmount has a minimum of 1
	assert.Error(t, ValidatePatch(valueobjects.KindDelay, map[string]interface{}{"delayAmount": 0}))
	assert.NoError(t, ValidatePatch(valueobjects.KindDelay, map[string]interface{}{"delayAmount": 1}))

	// tolerancePercentage is capped at 100
	assert.Error(t, ValidatePatch(valueobjects.KindMatcher, map[string]interface{}{"tolerancePercentage": 150}))
}

func TestValidatePatch_JSONDecodedValues(t *testing.T) {
	// JSON numbers arrive as float64
	err := ValidatePatch(valueobjects.KindDelay, map[string]interface{}{"delayAmount": float64(5)})
	assert.NoError(t, err)

	// JSON string lists arrive as []interface{}
	err = ValidatePatch(valueobjects.KindAging, map[string]interface{}{"agingBuckets": []interface{}{"0-30", "31-60"}})
	assert.NoError(t, err)
}

func TestValidatePatch_NilValueAllowed(t *testing.T) {
	// Clearing a field is always legal
	err := ValidatePatch(valueobjects.KindEmail, map[string]interface{}{"emailSubject": nil})
	assert.NoError(t, err)
}
