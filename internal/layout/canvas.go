package layout

// RGB is a 24-bit color used by the draw primitives.
type RGB struct {
	R, G, B uint8
}

// Align positions text horizontally within its bounding width.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle carries the visual attributes of one text operation.
type TextStyle struct {
	Size  float64
	Bold  bool
	Color RGB
	Align Align
}

// OpKind identifies a draw primitive.
type OpKind int

const (
	OpFillRect OpKind = iota
	OpText
	OpCircle
)

// Op is one recorded draw instruction. X and Y are measured from the top
// left of the page in points. For OpText, W is the wrapping width; for
// OpCircle, W is the radius.
type Op struct {
	Kind  OpKind
	X, Y  float64
	W, H  float64
	Text  string
	Style TextStyle
	Color RGB
}

// Page records the draw instructions committed to one output page. A
// concrete encoder (PDF, image) replays Ops in order.
type Page struct {
	ops []Op
}

// FillRect records a filled rectangle.
func (p *Page) FillRect(x, y, w, h float64, color RGB) {
	p.ops = append(p.ops, Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h, Color: color})
}

// Text records a text run wrapped to the given width.
func (p *Page) Text(x, y, w float64, text string, style TextStyle) {
	p.ops = append(p.ops, Op{Kind: OpText, X: x, Y: y, W: w, Text: text, Style: style})
}

// Circle records a filled circle of the given radius.
func (p *Page) Circle(x, y, r float64, color RGB) {
	p.ops = append(p.ops, Op{Kind: OpCircle, X: x, Y: y, W: r, Color: color})
}

// Ops returns the recorded instructions in draw order.
func (p *Page) Ops() []Op {
	return p.ops
}

// Document is the fully laid out output: an ordered set of pages of draw
// instructions with a known final page count.
type Document struct {
	pages []*Page
}

func (d *Document) addPage() *Page {
	page := &Page{}
	d.pages = append(d.pages, page)
	return page
}

// Pages returns the laid-out pages in order.
func (d *Document) Pages() []*Page {
	return d.pages
}

// PageCount returns the final number of pages.
func (d *Document) PageCount() int {
	return len(d.pages)
}
