package billing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSequentialEmpty(t *testing.T) {
	number, err := NextSequential(nil, 2025)
	require.NoError(t, err)
	assert.Equal(t, "BIL-2025-0001", number)
}

func TestNextSequentialIncrements(t *testing.T) {
	existing := []string{"BIL-2025-0001", "BIL-2025-0003", "BIL-2025-0002"}
	number, err := NextSequential(existing, 2025)
	require.NoError(t, err)
	assert.Equal(t, "BIL-2025-0004", number)
}

func TestNextSequentialIgnoresOtherYears(t *testing.T) {
	existing := []string{"BIL-2024-0099", "BIL-1735689600000-1234"}
	number, err := NextSequential(existing, 2025)
	require.NoError(t, err)
	assert.Equal(t, "BIL-2025-0001", number)
}

func TestNextSequentialBeyondPadding(t *testing.T) {
	number, err := NextSequential([]string{"BIL-2025-9999"}, 2025)
	require.NoError(t, err)
	assert.Equal(t, "BIL-2025-10000", number)
}

func TestNextSequentialMalformed(t *testing.T) {
	_, err := NextSequential([]string{"BIL-2025-abcd"}, 2025)
	assert.Error(t, err)
}

func TestSaleBillNumberShape(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	number := SaleBillNumber(at)
	parts := strings.Split(number, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "BIL", parts[0])
	assert.Equal(t, "1748779200000", parts[1])
	assert.Len(t, parts[2], 4)
}
