package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_CarriesCodeAndStack(t *testing.T) {
	err := New(CodeValidation, "amount is required")
	assert.Equal(t, CodeValidation, err.Code)
	assert.Contains(t, err.Error(), "COMMON_010")
	assert.Contains(t, err.Error(), "amount is required")
	assert.NotEmpty(t, err.Stack)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeDatabase, "query failed"))
}

func TestWrap_PreservesCodeThroughUnknown(t *testing.T) {
	inner := NewIndeterminateBasis("claimant type unset", "claimant.type")
	wrapped := Wrap(inner, CodeUnknown, "interest calculation failed")
	assert.Equal(t, CodeIndeterminateBasis, wrapped.Code)
	assert.True(t, IsCode(wrapped, CodeIndeterminateBasis))
}

func TestWrap_UnwrapChain(t *testing.T) {
	base := fmt.Errorf("connection refused")
	wrapped := Wrap(base, CodeDatabase, "deadline upsert failed")
	outer := Wrap(wrapped, CodeInternal, "sync failed")

	assert.True(t, IsCode(outer, CodeDatabase))
	assert.True(t, IsCode(outer, CodeInternal))
	assert.False(t, IsCode(outer, CodeValidation))
}

func TestNewIncompleteData_NamesMissingFields(t *testing.T) {
	err := NewIncompleteData("cannot generate document", "claimant.name", "invoice.amount")
	assert.Equal(t, CodeIncompleteData, err.Code)
	assert.Equal(t, []string{"claimant.name", "invoice.amount"}, FieldsOf(err))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, CodeTemplateMismatch, GetCode(NewTemplateMismatch("page count 3, want 4")))
}

func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	base := NotFound("claim not found")
	detailed := base.WithDetail("id=abc")
	assert.Empty(t, base.Detail)
	assert.Equal(t, "id=abc", detailed.Detail)
	assert.Contains(t, detailed.Error(), "id=abc")
}

func TestRetryable(t *testing.T) {
	assert.True(t, CodeValidation.Retryable())
	assert.True(t, CodeIncompleteData.Retryable())
	assert.True(t, CodeIndeterminateBasis.Retryable())
	assert.False(t, CodeTemplateMismatch.Retryable())
	assert.False(t, CodeInternal.Retryable())
}
