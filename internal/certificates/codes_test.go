package certificates

import (
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^KDO-BMG-(\d{6})$`)

func TestCodeGeneratorFormat(t *testing.T) {
	g := NewCodeGenerator("KDO-BMG", nil, nil)
	for i := 0; i < 1000; i++ {
		tr := g.Next()
		m := codePattern.FindStringSubmatch(string(tr.Code))
		require.NotNil(t, m, tr.Code)
		n, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestCodeGeneratorBounds(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 6, 15, 10, 30, 0, 999, time.UTC) }

	low := NewCodeGenerator("KDO-BMG", func(int) int { return 0 }, now).Next()
	high := NewCodeGenerator("KDO-BMG", func(n int) int { return n - 1 }, now).Next()

	assert.Equal(t, TrackingCode("KDO-BMG-100000"), low.Code)
	assert.Equal(t, TrackingCode("KDO-BMG-999999"), high.Code)
	assert.Equal(t, "2024-06-15 10:30:00", low.Timestamp)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC), low.IssuedAt)
}

func TestCodeGeneratorRange(t *testing.T) {
	var got int
	g := NewCodeGenerator("X", func(n int) int { got = n; return 0 }, nil)
	g.Next()
	assert.Equal(t, 900000, got)
}

func TestStaticCode(t *testing.T) {
	src := StaticCode(fixedTracking)
	assert.Equal(t, fixedTracking, src.Next())
	assert.Equal(t, fixedTracking, src.Next())
}
