package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunks := SplitText("hello world", 100, 20)
	assert.Equal(t, []string{"hello world"}, chunks)
}

func TestSplitTextOverlapPreservesBoundaryContext(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := SplitText(text, 40, 10)

	assert.True(t, len(chunks) > 1)
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-10:]
		assert.True(t, strings.HasPrefix(chunks[i], prevTail),
			"chunk %d should start with the last 10 chars of chunk %d", i, i-1)
	}
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("x", 3205)
	chunks := SplitText(text, 1500, 200)

	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(text, last))

	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 1500)
		total += len(c)
	}
	assert.GreaterOrEqual(t, total, len(text))
}

func TestSplitTextOverlapLargerThanChunkFallsBack(t *testing.T) {
	text := strings.Repeat("y", 50)
	chunks := SplitText(text, 10, 15)

	// Degenerate overlap must not loop forever; chunks become disjoint.
	assert.Equal(t, 5, len(chunks))
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitTextMultibyteRunesNotBroken(t *testing.T) {
	text := strings.Repeat("写作助手", 100) // 400 runes, 1200 bytes
	chunks := SplitText(text, 150, 30)

	for _, c := range chunks {
		for _, r := range c {
			assert.NotEqual(t, '�', r)
		}
	}
}
