package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/orderentry/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type amountInput struct {
	Amount   *decimal.Decimal `json:"amount" binding:"required,decimal_gte0" validate:"required,decimal_gte0"`
	Discount *decimal.Decimal `json:"discount" validate:"omitempty,decimal_gte0"`
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRegisterValidations(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidations(v))

	tests := []struct {
		name    string
		in      amountInput
		wantErr bool
	}{
		{"zero allowed", amountInput{Amount: decPtr("0")}, false},
		{"positive", amountInput{Amount: decPtr("12.75")}, false},
		{"negative rejected", amountInput{Amount: decPtr("-0.01")}, true},
		{"missing rejected", amountInput{}, true},
		{"optional negative rejected", amountInput{Amount: decPtr("1"), Discount: decPtr("-5")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHandleValidationError(t *testing.T) {
	require.NoError(t, SetupValidator())

	e := gin.New()
	e.Use(RequestID())
	e.POST("/", func(c *gin.Context) {
		var req amountInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	t.Run("field details use json names", func(t *testing.T) {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"-3"}`)))
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "amount", resp.Error.Details[0].Field)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeBadRequest)
	})

	t.Run("valid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":5}`)))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
