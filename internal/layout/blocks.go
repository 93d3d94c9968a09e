// Package layout converts generated application documents (plain text) into
// paginated, structured draw instructions. It infers structure heuristically
// (headings, subheadings, bullets, Q&A pairs) and flows the resulting blocks
// across pages, stamping footers once the final page count is known.
package layout

import (
	"strings"
	"unicode"
)

// Mode selects how input text is interpreted.
type Mode int

const (
	// ModeAuto detects Q&A content heuristically and falls back to prose.
	ModeAuto Mode = iota
	// ModeProse forces prose interpretation.
	ModeProse
	// ModeQA forces question/answer interpretation.
	ModeQA
)

// BlockKind identifies the structural role of a block.
type BlockKind int

const (
	SectionHeading BlockKind = iota
	Subheading
	Bullet
	Paragraph
	QAPair
)

// Block is one classified unit of content. For QAPair blocks Question and
// Answer are set and Text is empty; for every other kind Text is set.
type Block struct {
	Kind     BlockKind
	Text     string
	Question string
	Answer   string
}

// qaMarkerThreshold is the minimum number of Q: and A: lines (each) needed
// before a document is treated as Q&A content.
const qaMarkerThreshold = 3

// maxSubheadingLength bounds lines considered for the subheading heuristic.
const maxSubheadingLength = 120

// maxShortHeadingLength bounds lines considered for the title-case heading
// heuristic.
const maxShortHeadingLength = 48

// sectionVocabulary lists the resume section names recognized as headings,
// compared case-insensitively after trimming a trailing colon.
var sectionVocabulary = map[string]bool{
	"summary":                 true,
	"professional summary":    true,
	"objective":               true,
	"profile":                 true,
	"experience":              true,
	"work experience":         true,
	"professional experience": true,
	"education":               true,
	"skills":                  true,
	"technical skills":        true,
	"projects":                true,
	"certifications":          true,
	"awards":                  true,
	"publications":            true,
	"languages":               true,
	"interests":               true,
	"references":              true,
	"contact":                 true,
}

// ParseBlocks normalizes the input text and classifies it into blocks. In
// ModeAuto the Q&A heuristic decides the interpretation; ModeProse and
// ModeQA bypass detection.
func ParseBlocks(text string, mode Mode) []Block {
	lines := normalizeLines(text)

	if mode == ModeQA || (mode == ModeAuto && detectQA(lines)) {
		return parseQA(lines)
	}
	return parseProse(lines)
}

// normalizeLines unifies line endings, strips trailing whitespace, and drops
// decorative underline lines (runs of = or -, length >= 3) that immediately
// follow a non-blank line.
func normalizeLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, " \t")
		if isUnderline(line) && len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isUnderline(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	for _, r := range trimmed {
		if r != '=' && r != '-' {
			return false
		}
	}
	return true
}

// detectQA reports whether the document reads as interview Q&A content.
func detectQA(lines []string) bool {
	questions, answers := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if hasMarker(trimmed, "q") {
			questions++
		} else if hasMarker(trimmed, "a") {
			answers++
		}
	}
	return questions >= qaMarkerThreshold && answers >= qaMarkerThreshold
}

// hasMarker reports whether the line starts with "<marker>:" case-insensitively.
func hasMarker(line, marker string) bool {
	if len(line) < len(marker)+1 {
		return false
	}
	return strings.EqualFold(line[:len(marker)], marker) && line[len(marker)] == ':'
}

func stripMarker(line, marker string) string {
	return strings.TrimSpace(line[len(marker)+1:])
}

// parseQA folds lines into (question, answer) pairs. A Q: line opens a new
// pair, an A: line opens the answer, and unmarked lines are space-joined
// onto whichever part is currently open. A pair is emitted only when both
// parts are non-empty, so a trailing unanswered question is dropped.
func parseQA(lines []string) []Block {
	var blocks []Block
	var question, answer strings.Builder
	inAnswer := false

	flush := func() {
		q := strings.TrimSpace(question.String())
		a := strings.TrimSpace(answer.String())
		if q != "" && a != "" {
			blocks = append(blocks, Block{Kind: QAPair, Question: q, Answer: a})
		}
		question.Reset()
		answer.Reset()
		inAnswer = false
	}

	appendTo := func(sb *strings.Builder, s string) {
		if s == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(s)
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case hasMarker(trimmed, "q"):
			flush()
			appendTo(&question, stripMarker(trimmed, "q"))
		case hasMarker(trimmed, "a"):
			inAnswer = true
			appendTo(&answer, stripMarker(trimmed, "a"))
		case inAnswer:
			appendTo(&answer, trimmed)
		default:
			appendTo(&question, trimmed)
		}
	}
	flush()

	return blocks
}

// parseProse classifies lines into headings, subheadings, bullets and
// paragraphs. Paragraph text accumulates in a buffer flushed on blank lines
// and on any structural line. If the whole document yields no heading, the
// content is re-emitted under a single synthetic "Content" heading.
func parseProse(lines []string) []Block {
	var blocks []Block
	var buffer []string
	sawHeading := false

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		blocks = append(blocks, Block{Kind: Paragraph, Text: strings.Join(buffer, " ")})
		buffer = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case isBullet(trimmed):
			flush()
			blocks = append(blocks, Block{Kind: Bullet, Text: stripBulletMarker(trimmed)})
		case isSectionHeading(trimmed):
			flush()
			blocks = append(blocks, Block{Kind: SectionHeading, Text: strings.TrimSuffix(trimmed, ":")})
			sawHeading = true
		case isSubheading(trimmed):
			flush()
			blocks = append(blocks, Block{Kind: Subheading, Text: trimmed})
		default:
			buffer = append(buffer, trimmed)
		}
	}
	flush()

	if !sawHeading && len(blocks) > 0 {
		return synthesizeContentSection(lines)
	}
	return blocks
}

// synthesizeContentSection wraps the whole document in one "Content" section
// so no text renders without a heading above it.
func synthesizeContentSection(lines []string) []Block {
	var parts []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return []Block{
		{Kind: SectionHeading, Text: "Content"},
		{Kind: Paragraph, Text: strings.Join(parts, " ")},
	}
}

// isBullet reports whether the line starts with a list marker.
func isBullet(line string) bool {
	for _, prefix := range []string{"- ", "* ", "• ", "– ", "— "} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return isNumberedItem(line)
}

// isNumberedItem matches "1. text", "2) text" style markers.
func isNumberedItem(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return false
	}
	return line[i] == '.' || line[i] == ')'
}

func stripBulletMarker(line string) string {
	for _, prefix := range []string{"- ", "* ", "• ", "– ", "— "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	if isNumberedItem(line) {
		i := 0
		for i < len(line) && line[i] >= '0' && line[i] <= '9' {
			i++
		}
		return strings.TrimSpace(line[i+1:])
	}
	return line
}

// isSectionHeading applies the heading heuristics: known section name,
// all-uppercase run, or a short title-cased line.
func isSectionHeading(line string) bool {
	normalized := strings.ToLower(strings.TrimSuffix(line, ":"))
	if sectionVocabulary[normalized] {
		return true
	}
	if isAllUppercase(line) {
		return true
	}
	return len(line) <= maxShortHeadingLength && isTitleCased(line)
}

// isAllUppercase reports whether the line has at least 4 letters and no
// lowercase ones.
func isAllUppercase(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 4
}

// isTitleCased accepts lines made only of letters and spaces where every
// word starts uppercase. Punctuation and digits disqualify the line, which
// keeps dated role lines out of the heading path.
func isTitleCased(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		runes := []rune(word)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

// isSubheading matches short "Role — Company, 2019-2021" style lines.
func isSubheading(line string) bool {
	if len(line) > maxSubheadingLength {
		return false
	}
	if strings.ContainsAny(line, "—|") {
		return true
	}
	return containsYear(line)
}

// containsYear reports whether the line contains a standalone 4-digit run.
func containsYear(line string) bool {
	run := 0
	for _, r := range line {
		if r >= '0' && r <= '9' {
			run++
			if run == 4 {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
