package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \n\t ", want: ""},
		{name: "collapses runs", in: "  Alice:\n\nwe   ship\tFriday ", want: "Alice: we ship Friday"},
		{name: "already clean", in: "Bob: agreed.", want: "Bob: agreed."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestWindowChunker_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		textLen int
		size    int
		overlap int
		want    [][2]int // rune offsets of each chunk
	}{
		{name: "shorter than window", textLen: 40, size: 100, overlap: 20, want: [][2]int{{0, 40}}},
		{name: "exactly one window", textLen: 100, size: 100, overlap: 20, want: [][2]int{{0, 100}}},
		{name: "two windows", textLen: 150, size: 100, overlap: 20, want: [][2]int{{0, 100}, {80, 150}}},
		{name: "trailing window inside overlap", textLen: 185, size: 100, overlap: 20, want: [][2]int{{0, 100}, {80, 180}, {160, 185}}},
		{name: "no overlap", textLen: 250, size: 100, overlap: 0, want: [][2]int{{0, 100}, {100, 200}, {200, 250}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runes := []rune(testText(tt.textLen))
			got := NewWindowChunker(tt.size, tt.overlap).Chunk(string(runes))

			require.Len(t, got, len(tt.want))
			for i, span := range tt.want {
				assert.Equal(t, string(runes[span[0]:span[1]]), got[i], "chunk %d", i)
			}
		})
	}
}

func TestWindowChunker_EmptyInput(t *testing.T) {
	c := NewWindowChunker(DefaultSize, DefaultOverlap)
	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("   \n\t"))
}

func TestWindowChunker_DefaultsProduceSingleChunk(t *testing.T) {
	c := New(Config{Size: DefaultSize, Overlap: DefaultOverlap})
	got := c.Chunk("Alice: we should ship Friday. Bob: agreed.")
	assert.Equal(t, []string{"Alice: we should ship Friday. Bob: agreed."}, got)
}

func TestWindowChunker_CountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("é", 15)
	got := NewWindowChunker(10, 2).Chunk(text)

	require.Len(t, got, 2)
	assert.Equal(t, 10, utf8.RuneCountInString(got[0]))
	assert.Equal(t, 7, utf8.RuneCountInString(got[1]))
}

func TestWindowChunker_OverlapNotSmallerThanSizeTerminates(t *testing.T) {
	got := NewWindowChunker(5, 5).Chunk(testText(8))
	// stride falls back to one character
	assert.Len(t, got, 8)
}

func TestWindowChunker_Properties(t *testing.T) {
	configs := []struct{ size, overlap int }{{10, 0}, {10, 3}, {10, 9}, {10, 10}, {7, 2}, {1000, 200}}
	lengths := []int{0, 1, 9, 10, 11, 57, 2500}

	for _, cfg := range configs {
		for _, n := range lengths {
			text := testText(n)
			c := NewWindowChunker(cfg.size, cfg.overlap)

			first := c.Chunk(text)
			second := c.Chunk(text)
			assert.Equal(t, first, second, "chunking must be deterministic (size=%d overlap=%d len=%d)", cfg.size, cfg.overlap, n)

			prevStart, prevEnd := 0, 0
			for i, chunk := range first {
				// every rune in testText is unique, so the first rune locates the chunk
				start := runeOffset(t, text, chunk)
				if i > 0 {
					assert.GreaterOrEqual(t, start, prevStart, "chunk %d out of order", i)
					assert.LessOrEqual(t, start, prevEnd, "chunk %d starts after the previous chunk ended", i)
				}
				length := utf8.RuneCountInString(chunk)
				assert.LessOrEqual(t, length, cfg.size)
				prevStart, prevEnd = start, start+length
			}
			if n > 0 {
				assert.Equal(t, n, prevEnd, "chunks must cover the text")
			}
		}
	}
}

func TestRecursiveChunker(t *testing.T) {
	c := New(Config{Size: 50, Overlap: 10, Strategy: "recursive"})

	assert.Empty(t, c.Chunk(""))

	text := strings.Repeat("Alice said we should ship on Friday. ", 10)
	first := c.Chunk(text)
	require.NotEmpty(t, first)
	assert.Equal(t, first, c.Chunk(text))
	for _, chunk := range first {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50)
	}
}

// testText returns n pairwise distinct non-space runes.
func testText(n int) string {
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = rune(0x4E00 + i)
	}
	return string(runes)
}

func runeOffset(t *testing.T, text, chunk string) int {
	t.Helper()
	first, _ := utf8.DecodeRuneInString(chunk)
	idx := strings.IndexRune(text, first)
	require.GreaterOrEqual(t, idx, 0)
	return utf8.RuneCountInString(text[:idx])
}
