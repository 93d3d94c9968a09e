package layout

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Page geometry in points (A4).
const (
	pageWidth    = 595.28
	pageHeight   = 841.89
	marginLeft   = 48.0
	marginRight  = 48.0
	marginTop    = 20.0
	marginBottom = 56.0

	headerBandHeight = 64.0
	bulletIndent     = 16.0
)

// Type sizes and per-block spacing.
const (
	titleSize      = 18.0
	headingSize    = 14.0
	subheadingSize = 11.0
	bodySize       = 10.0

	lineHeight     = 14.0
	headingLead    = 10.0
	blockSpacing   = 6.0
	sectionSpacing = 12.0
)

var (
	accentColor = RGB{R: 31, G: 78, B: 121}
	headingText = RGB{R: 31, G: 78, B: 121}
	bodyText    = RGB{R: 33, G: 33, B: 33}
	footerText  = RGB{R: 128, G: 128, B: 128}
	headerInk   = RGB{R: 255, G: 255, B: 255}
)

// avgCharWidthFactor approximates glyph width as a fraction of font size for
// wrap estimation.
const avgCharWidthFactor = 0.5

// cursor is the explicit layout context threaded through every draw step:
// the document, the current page, and the vertical write position. Page
// breaks are a function of (cursor, requested height), never a hidden side
// effect of drawing.
type cursor struct {
	doc   *Document
	page  *Page
	y     float64
	title string
}

// Engine lays out classified blocks onto paginated canvases.
type Engine struct {
	// Now supplies the footer date; overridable for deterministic output.
	Now func() time.Time
}

// NewEngine builds an engine stamping footers with the current date.
func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

// Render parses text in the given mode and lays it out: a single forward
// content pass committing blocks to pages, then a footer pass over every
// page once the total count is known.
func (e *Engine) Render(title, text string, mode Mode) *Document {
	blocks := ParseBlocks(text, mode)

	doc := &Document{}
	cur := &cursor{doc: doc, title: title}
	cur.startPage()

	for _, block := range blocks {
		e.drawBlock(cur, block)
	}

	e.stampFooters(doc)
	return doc
}

// startPage opens a new page and draws the header band, which appears on
// every page including the first.
func (c *cursor) startPage() {
	c.page = c.doc.addPage()
	c.page.FillRect(0, 0, pageWidth, headerBandHeight, accentColor)
	c.page.Text(marginLeft, headerBandHeight/2-titleSize/2, contentWidth(), c.title, TextStyle{
		Size:  titleSize,
		Bold:  true,
		Color: headerInk,
	})
	c.y = headerBandHeight + marginTop
}

// ensure guarantees at least height points of vertical space on the current
// page, opening a new page when the remainder is too small. Blocks taller
// than a whole page get a fresh page and are allowed to overrun.
func (c *cursor) ensure(height float64) {
	usable := pageHeight - marginBottom - (headerBandHeight + marginTop)
	if height > usable {
		height = usable
	}
	if c.y+height > pageHeight-marginBottom {
		c.startPage()
	}
}

func contentWidth() float64 {
	return pageWidth - marginLeft - marginRight
}

func (e *Engine) drawBlock(cur *cursor, block Block) {
	switch block.Kind {
	case SectionHeading:
		e.drawSectionHeading(cur, block.Text)
	case Subheading:
		e.drawSubheading(cur, block.Text)
	case Bullet:
		e.drawBullet(cur, block.Text)
	case Paragraph:
		e.drawParagraph(cur, block.Text)
	case QAPair:
		e.drawQAPair(cur, block)
	}
}

// drawSectionHeading emits the accent marker and heading text as one atomic
// unit.
func (e *Engine) drawSectionHeading(cur *cursor, text string) {
	height := headingLead + headingSize + blockSpacing
	cur.ensure(height + lineHeight) // keep at least one content line with the heading
	cur.y += headingLead

	cur.page.Circle(marginLeft+3, cur.y+headingSize/2, 3, accentColor)
	cur.page.Text(marginLeft+12, cur.y, contentWidth()-12, text, TextStyle{
		Size:  headingSize,
		Bold:  true,
		Color: headingText,
	})
	cur.y += headingSize + blockSpacing
}

func (e *Engine) drawSubheading(cur *cursor, text string) {
	lines := wrapText(text, contentWidth(), subheadingSize)
	height := float64(len(lines))*lineHeight + blockSpacing
	cur.ensure(height)

	for _, line := range lines {
		cur.page.Text(marginLeft, cur.y, contentWidth(), line, TextStyle{
			Size:  subheadingSize,
			Bold:  true,
			Color: bodyText,
		})
		cur.y += lineHeight
	}
	cur.y += blockSpacing
}

// drawBullet emits the glyph and the wrapped bullet text atomically: a
// bullet never splits across a page boundary.
func (e *Engine) drawBullet(cur *cursor, text string) {
	width := contentWidth() - bulletIndent
	lines := wrapText(text, width, bodySize)
	height := float64(len(lines)) * lineHeight
	cur.ensure(height)

	cur.page.Circle(marginLeft+4, cur.y+lineHeight/2, 1.5, bodyText)
	for _, line := range lines {
		cur.page.Text(marginLeft+bulletIndent, cur.y, width, line, TextStyle{
			Size:  bodySize,
			Color: bodyText,
		})
		cur.y += lineHeight
	}
}

// drawParagraph flows wrapped lines, breaking to a new page between lines
// when the current page runs out. Paragraphs are the one block kind allowed
// to continue across a page boundary.
func (e *Engine) drawParagraph(cur *cursor, text string) {
	for _, line := range wrapText(text, contentWidth(), bodySize) {
		cur.ensure(lineHeight)
		cur.page.Text(marginLeft, cur.y, contentWidth(), line, TextStyle{
			Size:  bodySize,
			Color: bodyText,
		})
		cur.y += lineHeight
	}
	cur.y += blockSpacing
}

// drawQAPair emits a question/answer pair as one atomic block.
func (e *Engine) drawQAPair(cur *cursor, block Block) {
	qLines := wrapText("Q: "+block.Question, contentWidth(), bodySize)
	aLines := wrapText("A: "+block.Answer, contentWidth(), bodySize)
	height := float64(len(qLines)+len(aLines))*lineHeight + sectionSpacing
	cur.ensure(height)

	for _, line := range qLines {
		cur.page.Text(marginLeft, cur.y, contentWidth(), line, TextStyle{
			Size:  bodySize,
			Bold:  true,
			Color: headingText,
		})
		cur.y += lineHeight
	}
	for _, line := range aLines {
		cur.page.Text(marginLeft, cur.y, contentWidth(), line, TextStyle{
			Size:  bodySize,
			Color: bodyText,
		})
		cur.y += lineHeight
	}
	cur.y += sectionSpacing
}

// stampFooters is the second pass: once the content pass has produced the
// final page count, every page receives a generation date on the left and a
// "Page X of N" marker on the right, inside the bottom margin.
func (e *Engine) stampFooters(doc *Document) {
	total := doc.PageCount()
	date := e.Now().Format("January 2, 2006")
	footerY := pageHeight - marginBottom + lineHeight

	for i, page := range doc.Pages() {
		page.Text(marginLeft, footerY, contentWidth()/2, date, TextStyle{
			Size:  8,
			Color: footerText,
		})
		page.Text(pageWidth/2, footerY, contentWidth()/2, fmt.Sprintf("Page %d of %d", i+1, total), TextStyle{
			Size:  8,
			Color: footerText,
			Align: AlignRight,
		})
	}
}

// wrapText estimates word wrapping for the given width and font size. The
// estimate only drives pagination; the concrete encoder performs the real
// glyph-accurate wrap within the recorded width.
func wrapText(text string, width, fontSize float64) []string {
	perLine := int(math.Floor(width / (fontSize * avgCharWidthFactor)))
	if perLine < 1 {
		perLine = 1
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= perLine {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
