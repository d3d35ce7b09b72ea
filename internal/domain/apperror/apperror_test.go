package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeOrderNotFound, "order %d not found")
	wrapped := fmt.Errorf("load: %w", sentinel.With(42))

	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, New(CodeUserNotFound, "user not found"))
	assert.Equal(t, "load: order 42 not found", wrapped.Error())
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", Validation("quantity must be greater than zero"))

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, CodeValidationFailed, appErr.Code)
	assert.Equal(t, "validation failed: quantity must be greater than zero", appErr.Error())

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestCodeKind(t *testing.T) {
	tests := []struct {
		code Code
		kind Kind
		name string
	}{
		{CodeUserNotFound, KindNotFound, "USER_NOT_FOUND"},
		{CodeCategoryNotFound, KindNotFound, "CATEGORY_NOT_FOUND"},
		{CodeProductAlreadyExists, KindAlreadyExists, "PRODUCT_ALREADY_EXISTS"},
		{CodeAccessDenied, KindAccessDenied, "ACCESS_DENIED"},
		{CodeCannotCancelOrder, KindConflict, "CANNOT_CANCEL_ORDER"},
		{CodeInvalidOrderStatus, KindConflict, "INVALID_ORDER_STATUS"},
		{CodeInsufficientBalance, KindInvalid, "INSUFFICIENT_BALANCE"},
		{CodeValidationFailed, KindValidation, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.code.Kind())
			assert.Equal(t, tt.name, tt.code.String())
		})
	}
	assert.Equal(t, "CODE_999", Code(999).String())
}
