// AngelaMos | 2026
// validate_test.go

package setting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubfines/backend/internal/core"
)

func TestValidateValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		ok    bool
	}{
		{"valid currency", "currency", "EUR", true},
		{"lowercase currency", "currency", "eur", false},
		{"long currency", "currency", "EURO", false},
		{"empty currency", "currency", "", false},
		{"valid club name", "clubName", "FC Example", true},
		{"empty club name", "clubName", "", false},
		{"overlong club name", "clubName", strings.Repeat("x", 101), false},
		{"club name at limit", "clubName", strings.Repeat("x", 100), true},
		{"valid https logo", "logoUrl", "https://cdn.example.com/logo.png", true},
		{"valid http logo", "logoUrl", "http://cdn.example.com/logo.png", true},
		{"ftp logo", "logoUrl", "ftp://cdn.example.com/logo.png", false},
		{"relative logo", "logoUrl", "/logo.png", false},
		{"unknown key passes through", "themeColor", "anything at all", true},
		{"unknown key empty value", "motto", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateValue(tc.key, tc.value)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var appErr *core.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "INVALID_SETTING_VALUE", appErr.Code)
			assert.Equal(t, 400, appErr.Status)
		})
	}
}
