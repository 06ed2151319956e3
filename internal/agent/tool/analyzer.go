package tool

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Paragraph is one analyzed document segment. Offsets are byte positions
// into the string the analyzer was given.
type Paragraph struct {
	ID            string `json:"id"`
	Content       string `json:"content"`
	StartOffset   int    `json:"startOffset"`
	EndOffset     int    `json:"endOffset"`
	IsRelevant    bool   `json:"isRelevant"`
	ShouldProcess bool   `json:"shouldProcess"`
}

// Selection is the caller-supplied character range the edit should target.
type Selection struct {
	Start int
	End   int
}

var (
	markupPattern    = regexp.MustCompile(`<[a-zA-Z][a-zA-Z0-9]*(\s[^>]*)?>`)
	stripTagPattern  = regexp.MustCompile(`<[^>]+>`)
	idAttrPattern    = regexp.MustCompile(`id\s*=\s*"([^"]+)"`)
	blankLinePattern = regexp.MustCompile(`\n[ \t]*\n+`)
	blockBreaker     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|blockquote|pre|tr)>|<br\s*/?>`)
	markdownMarker   = regexp.MustCompile(`(?m)^(#{1,6}\s|[-*+]\s|>\s|` + "```" + `|\d+\.\s)`)
)

// blockTags are matched individually because RE2 has no backreferences
// to pair an opening tag with its own closing tag.
var blockTags = []string{"h1", "h2", "h3", "h4", "h5", "h6", "p", "li", "blockquote", "pre"}

var blockPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(blockTags))
	for _, tag := range blockTags {
		patterns[tag] = regexp.MustCompile(`(?is)<` + tag + `(\s[^>]*)?>(.*?)</` + tag + `\s*>`)
	}
	return patterns
}()

// AnalyzeDocument segments content into paragraphs. HTML documents are
// split on top-level block elements, markdown on AST blocks, and plain
// text on blank lines. A nil selection means whole-document mode where
// every paragraph should be processed.
func AnalyzeDocument(content string, sel *Selection) []Paragraph {
	var paragraphs []Paragraph
	switch {
	case markupPattern.MatchString(content):
		paragraphs = analyzeHTML(content)
	case markdownMarker.MatchString(content):
		paragraphs = analyzeMarkdown(content)
	default:
		paragraphs = analyzePlainText(content)
	}

	for i := range paragraphs {
		p := &paragraphs[i]
		if sel != nil {
			p.IsRelevant = !(p.EndOffset < sel.Start || p.StartOffset > sel.End)
			p.ShouldProcess = p.IsRelevant
		} else {
			p.ShouldProcess = true
		}
	}
	return paragraphs
}

type htmlBlock struct {
	tag        string
	openingTag string
	inner      string
	start      int
	end        int
}

func analyzeHTML(content string) []Paragraph {
	blocks := make([]htmlBlock, 0)
	for _, tag := range blockTags {
		for _, m := range blockPatterns[tag].FindAllStringSubmatchIndex(content, -1) {
			blocks = append(blocks, htmlBlock{
				tag:        tag,
				openingTag: content[m[0]:m[4]],
				inner:      content[m[4]:m[5]],
				start:      m[0],
				end:        m[1],
			})
		}
	}
	if len(blocks) == 0 {
		return analyzeStrippedHTML(content)
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].start < blocks[j].start })

	counters := make(map[string]int)
	out := make([]Paragraph, 0, len(blocks))
	for _, b := range blocks {
		plain := strings.TrimSpace(html.UnescapeString(stripTagPattern.ReplaceAllString(b.inner, "")))
		if plain == "" {
			continue
		}

		counters[b.tag]++
		id := fmt.Sprintf("%s_%d", b.tag, counters[b.tag])
		if m := idAttrPattern.FindStringSubmatch(b.openingTag); m != nil {
			id = m[1]
		}

		out = append(out, Paragraph{
			ID:          id,
			Content:     plain,
			StartOffset: b.start,
			EndOffset:   b.end,
		})
	}
	if len(out) == 0 {
		return analyzeStrippedHTML(content)
	}
	return out
}

// analyzeStrippedHTML handles markup with no recognizable block elements:
// turn block-ish boundaries into blank lines, strip the rest of the tags,
// and resegment the surviving text. Offsets refer to the stripped text.
func analyzeStrippedHTML(content string) []Paragraph {
	broken := blockBreaker.ReplaceAllString(content, "\n\n")
	stripped := html.UnescapeString(stripTagPattern.ReplaceAllString(broken, ""))
	return analyzePlainText(stripped)
}

func analyzePlainText(content string) []Paragraph {
	out := make([]Paragraph, 0)
	cursor := 0
	for _, segment := range blankLinePattern.Split(content, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		// Forward search only; a repeated paragraph binds to its next
		// unclaimed occurrence, never an earlier one.
		idx := strings.Index(content[cursor:], segment)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		end := start + len(segment)
		cursor = end

		out = append(out, Paragraph{
			ID:          fmt.Sprintf("p_%d", len(out)+1),
			Content:     segment,
			StartOffset: start,
			EndOffset:   end,
		})
	}
	return out
}

func analyzeMarkdown(content string) []Paragraph {
	source := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	counters := make(map[string]int)
	out := make([]Paragraph, 0)

	appendBlock := func(prefix string, node ast.Node) {
		start, end, ok := nodeSpan(node)
		if !ok {
			return
		}
		segment := strings.TrimSpace(string(source[start:end]))
		if segment == "" {
			return
		}
		counters[prefix]++
		out = append(out, Paragraph{
			ID:          fmt.Sprintf("%s_%d", prefix, counters[prefix]),
			Content:     segment,
			StartOffset: start,
			EndOffset:   end,
		})
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			appendBlock(fmt.Sprintf("h%d", n.Level), n)
		case *ast.List:
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				appendBlock("li", item)
			}
		case *ast.Blockquote:
			appendBlock("blockquote", n)
		default:
			appendBlock("p", node)
		}
	}
	return out
}

// nodeSpan returns the byte range covered by a block node's source lines,
// descending into children for containers that carry no lines themselves.
func nodeSpan(node ast.Node) (int, int, bool) {
	start, end := -1, -1
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if start < 0 || seg.Start < start {
				start = seg.Start
			}
			if seg.Stop > end {
				end = seg.Stop
			}
		}
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			visit(child)
		}
	}
	visit(node)
	if start < 0 {
		return 0, 0, false
	}
	return start, end, true
}

func (t *Toolbox) analyzeDocument(input *DocumentAnalyzerInput) (string, error) {
	var sel *Selection
	if input.SelectionStart != nil && input.SelectionEnd != nil {
		sel = &Selection{Start: *input.SelectionStart, End: *input.SelectionEnd}
	}

	paragraphs := AnalyzeDocument(input.Content, sel)

	encoded, err := json.Marshal(map[string]interface{}{
		"paragraphCount": len(paragraphs),
		"paragraphs":     paragraphs,
	})
	if err != nil {
		return "", fmt.Errorf("encode analysis result: %w", err)
	}
	return string(encoded), nil
}
