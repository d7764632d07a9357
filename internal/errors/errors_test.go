package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnNotFoundListsHeaders(t *testing.T) {
	err := ColumnNotFound("Revenue", []string{"Region", "Sales", "Date"})

	assert.Equal(t, CodeColumnNotFound, err.Code)
	assert.Contains(t, err.Error(), `"Revenue"`)
	assert.Contains(t, err.Error(), `["Region", "Sales", "Date"]`)
}

func TestWrapKeepsCode(t *testing.T) {
	base := NoValidData("price")
	wrapped := Wrap(base, "histogram failed")

	assert.Equal(t, CodeNoValidData, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeNoValidData))
	assert.ErrorIs(t, wrapped, base)
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "outer")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("service: %w", MissingParameter("groupBy", "aggregateField"))
	assert.Equal(t, CodeMissingParameter, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"column not found", ColumnNotFound("x", nil), http.StatusBadRequest},
		{"missing parameter", MissingParameter("column"), http.StatusBadRequest},
		{"no data", NoData("no rows"), http.StatusBadRequest},
		{"no valid data", NoValidData("x"), http.StatusBadRequest},
		{"unsupported format", UnsupportedFormat("xls"), http.StatusBadRequest},
		{"not found", NotFound("dataset"), http.StatusNotFound},
		{"database", DatabaseError("down"), http.StatusInternalServerError},
		{"plain", fmt.Errorf("plain"), http.StatusInternalServerError},
		{"canceled", FromContext(context.Canceled, "stopped"), StatusClientClosedRequest},
		{"deadline", FromContext(context.DeadlineExceeded, "stopped"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
