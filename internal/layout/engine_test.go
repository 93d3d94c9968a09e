package layout

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	e := NewEngine()
	e.Now = func() time.Time { return time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC) }
	return e
}

// textOps returns the text operations on a page in draw order.
func textOps(page *Page) []Op {
	var ops []Op
	for _, op := range page.Ops() {
		if op.Kind == OpText {
			ops = append(ops, op)
		}
	}
	return ops
}

// footerOps returns the page-number texts found on a page.
func footerOps(page *Page) []string {
	var found []string
	for _, op := range textOps(page) {
		if strings.HasPrefix(op.Text, "Page ") {
			found = append(found, op.Text)
		}
	}
	return found
}

func TestRender_SinglePageDocument(t *testing.T) {
	doc := testEngine().Render("Custom CV", "Summary\nA Go engineer.\n\nSkills\n- Go\n- SQL", ModeAuto)
	require.Equal(t, 1, doc.PageCount())

	page := doc.Pages()[0]
	require.NotEmpty(t, page.Ops())

	// Header band first, then the title on it.
	first := page.Ops()[0]
	assert.Equal(t, OpFillRect, first.Kind)
	assert.Equal(t, headerBandHeight, first.H)
	assert.Equal(t, accentColor, first.Color)
	assert.Equal(t, "Custom CV", textOps(page)[0].Text)

	assert.Equal(t, []string{"Page 1 of 1"}, footerOps(page))
}

func TestRender_ThreePageFooters(t *testing.T) {
	var lines []string
	lines = append(lines, "EXPERIENCE")
	for i := 0; i < 120; i++ {
		lines = append(lines, fmt.Sprintf("- did impactful backend work number %d", i))
	}

	doc := testEngine().Render("CV", strings.Join(lines, "\n"), ModeAuto)
	require.Equal(t, 3, doc.PageCount())

	for i, page := range doc.Pages() {
		footers := footerOps(page)
		require.Len(t, footers, 1, "page %d", i+1)
		assert.Equal(t, fmt.Sprintf("Page %d of 3", i+1), footers[0])
	}
}

func TestRender_FooterDateOnEveryPage(t *testing.T) {
	doc := testEngine().Render("CV", "Summary\nshort", ModeAuto)
	var sawDate bool
	for _, op := range textOps(doc.Pages()[0]) {
		if op.Text == "March 14, 2025" {
			sawDate = true
			assert.Greater(t, op.Y, pageHeight-marginBottom)
		}
	}
	assert.True(t, sawDate)
}

func TestRender_HeaderBandOnEveryPage(t *testing.T) {
	var lines []string
	lines = append(lines, "EXPERIENCE")
	for i := 0; i < 120; i++ {
		lines = append(lines, fmt.Sprintf("- line %d", i))
	}

	doc := testEngine().Render("My CV", strings.Join(lines, "\n"), ModeAuto)
	require.Greater(t, doc.PageCount(), 1)

	for i, page := range doc.Pages() {
		first := page.Ops()[0]
		assert.Equal(t, OpFillRect, first.Kind, "page %d", i+1)
		assert.Equal(t, "My CV", textOps(page)[0].Text, "page %d", i+1)
	}
}

func TestRender_QAPairsNeverSplitAcrossPages(t *testing.T) {
	var lines []string
	answer := strings.Repeat("a thorough multi-clause answer segment ", 6)
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf("Q: Interview question number %d?", i))
		lines = append(lines, "A: "+answer)
	}

	doc := testEngine().Render("Interview Prep", strings.Join(lines, "\n"), ModeAuto)
	require.Greater(t, doc.PageCount(), 1)

	// Each page must carry complete pairs: equal counts of question and
	// answer starts.
	for i, page := range doc.Pages() {
		q, a := 0, 0
		for _, op := range textOps(page) {
			if strings.HasPrefix(op.Text, "Q: ") {
				q++
			}
			if strings.HasPrefix(op.Text, "A: ") {
				a++
			}
		}
		assert.Equal(t, q, a, "page %d", i+1)
	}
}

func TestRender_ContentStaysInsideBottomMargin(t *testing.T) {
	var lines []string
	lines = append(lines, "EXPERIENCE")
	for i := 0; i < 200; i++ {
		lines = append(lines, fmt.Sprintf("- item %d", i))
	}

	doc := testEngine().Render("CV", strings.Join(lines, "\n"), ModeAuto)
	for i, page := range doc.Pages() {
		for _, op := range textOps(page) {
			if strings.HasPrefix(op.Text, "Page ") || op.Style.Size == 8 {
				continue // footer ops live in the margin on purpose
			}
			assert.LessOrEqual(t, op.Y, pageHeight-marginBottom, "page %d", i+1)
		}
	}
}

func TestRender_EmptyInputStillProducesOnePage(t *testing.T) {
	doc := testEngine().Render("CV", "", ModeAuto)
	require.Equal(t, 1, doc.PageCount())
	assert.Equal(t, []string{"Page 1 of 1"}, footerOps(doc.Pages()[0]))
}

func TestWrapText_RespectsWidth(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 50), 100, bodySize)
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 20)
	}
}

func TestWrapText_EmptyInput(t *testing.T) {
	assert.Nil(t, wrapText("   ", 100, bodySize))
}
