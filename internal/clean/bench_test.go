package clean

import (
	"context"
	"strconv"
	"testing"

	"github.com/JonMunkholm/tabkit/internal/frame"
)

// ============================================================================
// Cell Parsing Benchmarks
// ============================================================================

// BenchmarkCleanCell runs once per CSV cell.
func BenchmarkCleanCell(b *testing.B) {
	testCases := []string{
		"normal value",
		`="formula"`,
		`"quoted"`,
		"  whitespace  ",
		`="12345"`,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			CleanCell(tc)
		}
	}
}

func BenchmarkParseNumber(b *testing.B) {
	testCases := []string{"123", "1,234.56", "$1,000", "(500)", "1.5e3", "not a number"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseNumber(tc)
		}
	}
}

func BenchmarkParseDate(b *testing.B) {
	testCases := []string{"2024-01-15", "01/15/2024", "1/5/24", "2024-01-15 10:30:00", "garbage"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseDate(tc)
		}
	}
}

// ============================================================================
// Table Benchmarks
// ============================================================================

// BenchmarkInferTypes converts a 10k-row text table with numeric, date and
// free-text columns.
func BenchmarkInferTypes(b *testing.B) {
	rows := make([][]any, 10000)
	for i := range rows {
		rows[i] = []any{strconv.Itoa(i), "2024-01-15", "note " + strconv.Itoa(i)}
	}
	f := frame.MustFromRows(frame.Labels("n", "d", "s"), rows, nil)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := InferTypes(ctx, f); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTrimNA(b *testing.B) {
	values := make([]any, 10000)
	for i := 100; i < len(values)-100; i++ {
		values[i] = i
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := TrimNA(values, TrimOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}
