package tool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePlainTextSplitsOnBlankLines(t *testing.T) {
	content := "First paragraph here.\n\nSecond paragraph.\n\n\nThird one."

	paragraphs := AnalyzeDocument(content, nil)
	require.Len(t, paragraphs, 3)

	assert.Equal(t, "p_1", paragraphs[0].ID)
	assert.Equal(t, "First paragraph here.", paragraphs[0].Content)
	assert.Equal(t, 0, paragraphs[0].StartOffset)
	assert.Equal(t, len("First paragraph here."), paragraphs[0].EndOffset)

	assert.Equal(t, "p_2", paragraphs[1].ID)
	assert.Equal(t, "Second paragraph.", content[paragraphs[1].StartOffset:paragraphs[1].EndOffset])

	assert.Equal(t, "p_3", paragraphs[2].ID)
	assert.Equal(t, "Third one.", content[paragraphs[2].StartOffset:paragraphs[2].EndOffset])

	for _, p := range paragraphs {
		assert.True(t, p.ShouldProcess)
		assert.False(t, p.IsRelevant)
	}
}

func TestAnalyzePlainTextRepeatedParagraphNeverRewinds(t *testing.T) {
	content := "same text\n\nsame text\n\nsame text"

	paragraphs := AnalyzeDocument(content, nil)
	require.Len(t, paragraphs, 3)

	assert.Equal(t, 0, paragraphs[0].StartOffset)
	assert.Less(t, paragraphs[0].EndOffset, paragraphs[1].StartOffset+1)
	assert.Less(t, paragraphs[1].EndOffset, paragraphs[2].StartOffset+1)
}

func TestAnalyzeHTMLUsesElementIds(t *testing.T) {
	content := `<h1 id="heading-0">History of AI</h1><p>It started in the fifties.</p><h1 id="heading-1">Modern era</h1><p>Deep learning changed everything.</p>`

	paragraphs := AnalyzeDocument(content, nil)
	require.Len(t, paragraphs, 4)

	assert.Equal(t, "heading-0", paragraphs[0].ID)
	assert.Equal(t, "History of AI", paragraphs[0].Content)
	assert.Equal(t, "p_1", paragraphs[1].ID)
	assert.Equal(t, "It started in the fifties.", paragraphs[1].Content)
	assert.Equal(t, "heading-1", paragraphs[2].ID)
	assert.Equal(t, "p_2", paragraphs[3].ID)

	// Offsets are match spans in the original markup, in document order.
	for i := 1; i < len(paragraphs); i++ {
		assert.Greater(t, paragraphs[i].StartOffset, paragraphs[i-1].StartOffset)
	}
}

func TestAnalyzeHTMLStripsNestedMarkup(t *testing.T) {
	content := `<p><span style="font-size: 18px;"><strong>Intro:</strong> nested content</span></p><p></p><p>plain block</p>`

	paragraphs := AnalyzeDocument(content, nil)
	require.Len(t, paragraphs, 2)
	assert.Equal(t, "Intro: nested content", paragraphs[0].Content)
	assert.Equal(t, "plain block", paragraphs[1].Content)
}

func TestAnalyzeMarkdownSegmentsBlocks(t *testing.T) {
	content := "# Title\n\nOpening paragraph.\n\n- first item\n- second item\n\n> quoted line\n"

	paragraphs := AnalyzeDocument(content, nil)
	require.Len(t, paragraphs, 5)

	assert.Equal(t, "h1_1", paragraphs[0].ID)
	assert.Equal(t, "Title", paragraphs[0].Content)
	assert.Equal(t, "p_1", paragraphs[1].ID)
	assert.Equal(t, "Opening paragraph.", paragraphs[1].Content)
	assert.Equal(t, "li_1", paragraphs[2].ID)
	assert.Equal(t, "li_2", paragraphs[3].ID)
	assert.Equal(t, "blockquote_1", paragraphs[4].ID)
}

func TestSelectionMarksOnlyOverlappingParagraphRelevant(t *testing.T) {
	blocks := []string{
		"Paragraph one is here.",
		"Paragraph two is the target.",
		"Paragraph three follows.",
		"Paragraph four continues.",
		"Paragraph five closes.",
	}
	content := strings.Join(blocks, "\n\n")

	all := AnalyzeDocument(content, nil)
	require.Len(t, all, 5)

	// Selection strictly inside paragraph two.
	sel := &Selection{Start: all[1].StartOffset + 2, End: all[1].EndOffset - 2}
	paragraphs := AnalyzeDocument(content, sel)

	for i, p := range paragraphs {
		if i == 1 {
			assert.True(t, p.IsRelevant, "paragraph %d", i+1)
			assert.True(t, p.ShouldProcess)
		} else {
			assert.False(t, p.IsRelevant, "paragraph %d", i+1)
			assert.False(t, p.ShouldProcess)
		}
	}
}

func TestSelectionOnBoundaryOverlaps(t *testing.T) {
	content := "aaaa\n\nbbbb"
	paragraphs := AnalyzeDocument(content, &Selection{Start: 4, End: 4})

	// End offset touching the selection start still counts as overlap.
	require.Len(t, paragraphs, 2)
	assert.True(t, paragraphs[0].IsRelevant)
	assert.False(t, paragraphs[1].IsRelevant)
}

func TestAnalyzeHTMLWithoutBlockElementsFallsBack(t *testing.T) {
	content := `<div>alpha beta</div><div>gamma delta</div>`

	paragraphs := AnalyzeDocument(content, nil)
	require.Len(t, paragraphs, 2)
	assert.Equal(t, "p_1", paragraphs[0].ID)
	assert.Equal(t, "alpha beta", paragraphs[0].Content)
	assert.Equal(t, "gamma delta", paragraphs[1].Content)
}
