package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pntme/Retail-management/internal/domain"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation maps to 400",
			err:        domain.Validationf("quantity must be positive"),
			wantStatus: http.StatusBadRequest,
			wantError:  "quantity must be positive",
		},
		{
			name:       "not found maps to 404",
			err:        domain.NotFound("bill"),
			wantStatus: http.StatusNotFound,
			wantError:  "bill not found",
		},
		{
			name:       "conflict maps to 409",
			err:        domain.Conflictf("vehicle number already registered"),
			wantStatus: http.StatusConflict,
			wantError:  "vehicle number already registered",
		},
		{
			name:       "computation maps to 500",
			err:        domain.Computation("allocate bill number", errors.New("malformed bill number")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "allocate bill number: malformed bill number",
		},
		{
			name:       "wrapped computation maps to 500",
			err:        domain.Computation("insert bill", errors.New("connection reset")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "insert bill: connection reset",
		},
		{
			name:       "unknown error maps to 500",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestDateRangeOrDefault(t *testing.T) {
	now := time.Date(2025, time.June, 18, 15, 30, 0, 0, time.UTC)

	t.Run("explicit bounds", func(t *testing.T) {
		from, to, err := dateRangeOrDefault("2025-06-01", "2025-06-10", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), from)
		// to covers the whole requested day
		assert.Equal(t, time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC).Add(24*time.Hour-time.Nanosecond), to)
	})

	t.Run("missing from defaults to month start", func(t *testing.T) {
		from, to, err := dateRangeOrDefault("", "2025-06-10", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), from)
		assert.True(t, to.After(from))
	})

	t.Run("missing to defaults to end of today", func(t *testing.T) {
		_, to, err := dateRangeOrDefault("2025-06-01", "", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC).Add(24*time.Hour-time.Nanosecond), to)
	})

	t.Run("both missing", func(t *testing.T) {
		from, to, err := dateRangeOrDefault("", "", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), from)
		assert.True(t, to.After(now))
	})

	t.Run("invalid date rejected", func(t *testing.T) {
		_, _, err := dateRangeOrDefault("not-a-date", "", now)
		assert.Error(t, err)
	})
}
