package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dumeirei/innflow-backend/internal/models"
)

func TestNextReference(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	property := models.Property{RefPrefix: "INF", LastRefNumber: 12}

	ref, updated := NextReference(property, now)
	assert.Equal(t, "INF-2024-0013", ref)
	assert.Equal(t, 13, updated.LastRefNumber)
	assert.Equal(t, 12, property.LastRefNumber, "入参不被修改")
}

func TestNextReference_DefaultPrefix(t *testing.T) {
	ref, _ := NextReference(models.Property{}, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "INF-2025-0001", ref)
}

func TestNextReference_SequentialUniqueness(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	property := models.Property{RefPrefix: "OWL", LastRefNumber: 40}

	const n = 100
	seen := make(map[string]bool, n)
	prev := ""
	for i := 0; i < n; i++ {
		var ref string
		ref, property = NextReference(property, now)
		assert.False(t, seen[ref], "duplicate %s", ref)
		assert.Greater(t, ref, prev)
		seen[ref] = true
		prev = ref
	}
	assert.Equal(t, 40+n, property.LastRefNumber)
	assert.Equal(t, "OWL-2024-0140", prev)
}

func TestNextReference_NoYearlyReset(t *testing.T) {
	property := models.Property{RefPrefix: "INF", LastRefNumber: 13}

	ref, property := NextReference(property, time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "INF-2025-0014", ref)

	ref, _ = NextReference(property, time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC))
	assert.Equal(t, "INF-2026-0015", ref)
}

func TestNextReference_UsesLocalYear(t *testing.T) {
	// 约翰内斯堡已是新年，UTC 仍是旧年
	loc := time.FixedZone("SAST", 2*60*60)
	now := time.Date(2025, 1, 1, 1, 0, 0, 0, loc)
	ref, _ := NextReference(models.Property{LastRefNumber: 0}, now)
	assert.Equal(t, "INF-2025-0001", ref)

	ref, _ = NextReference(models.Property{LastRefNumber: 0}, now.UTC())
	assert.Equal(t, "INF-2024-0001", ref)
}

func TestParseReferenceSeq(t *testing.T) {
	tests := []struct {
		ref  string
		want int
		ok   bool
	}{
		{"INF-2024-0013", 13, true},
		{"INF-2024-12345", 12345, true},
		{"INF-2023-0013", 0, false},
		{"OWL-2024-0013", 0, false},
		{"INF-2024-00x3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			seq, ok := ParseReferenceSeq(tt.ref, "INF", 2024)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, seq)
		})
	}
}

func TestFormatReference_WideCounter(t *testing.T) {
	assert.Equal(t, "INF-2024-12345", FormatReference("INF", 2024, 12345))
}
