package shared

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name        string
		body        string
		wantErr     bool
		errContains string
	}{
		{name: "valid json", body: `{"name": "test", "age": 30}`},
		{name: "invalid json", body: `{"name": "test",}`, wantErr: true, errContains: "invalid character"},
		{name: "empty body", body: "", wantErr: true, errContains: "empty"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body io.Reader = bytes.NewBufferString(tc.body)
			if tc.body == "" {
				body = http.NoBody
			}
			req := httptest.NewRequest(http.MethodPost, "/test", body)

			var got payload
			err := DecodeJSON(req, &got)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, payload{Name: "test", Age: 30}, got)
		})
	}
}

func TestDecodeJSONRejectsOversizedBody(t *testing.T) {
	huge := `{"name":"` + strings.Repeat("a", MaxRequestBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(huge))

	var got struct{ Name string }
	assert.Error(t, DecodeJSON(req, &got))
}

type selfValidating struct {
	Name string
}

func (s *selfValidating) Validate() error {
	if s.Name == "invalid" {
		return assert.AnError
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	type tagged struct {
		Email string `validate:"required,email"`
	}

	assert.NoError(t, ValidateRequest(&selfValidating{Name: "ok"}))
	assert.ErrorIs(t, ValidateRequest(&selfValidating{Name: "invalid"}), assert.AnError)
	assert.NoError(t, ValidateRequest(&tagged{Email: "a@b.co"}))
	assert.Error(t, ValidateRequest(&tagged{Email: "nope"}))
}
