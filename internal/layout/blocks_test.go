package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindsOf(blocks []Block) []BlockKind {
	kinds := make([]BlockKind, len(blocks))
	for i, b := range blocks {
		kinds[i] = b.Kind
	}
	return kinds
}

func TestParseBlocks_HeadingThenBullets(t *testing.T) {
	text := strings.Join([]string{
		"Experience",
		"- Built Go services",
		"- Led migrations",
		"- Cut latency 40%",
		"- Mentored juniors",
		"- On-call rotation",
	}, "\n")

	blocks := ParseBlocks(text, ModeAuto)
	require.Len(t, blocks, 6)
	assert.Equal(t, []BlockKind{SectionHeading, Bullet, Bullet, Bullet, Bullet, Bullet}, kindsOf(blocks))
	assert.Equal(t, "Experience", blocks[0].Text)
	assert.Equal(t, "Built Go services", blocks[1].Text)
	for _, b := range blocks {
		assert.NotEqual(t, Paragraph, b.Kind)
	}
}

func TestParseBlocks_QADetection(t *testing.T) {
	text := strings.Join([]string{
		"Q: Why this company?",
		"A: Mission alignment.",
		"Q: Biggest strength?",
		"A: Systems thinking.",
		"Q: A weakness?",
		"A: Delegation, improving.",
	}, "\n")

	blocks := ParseBlocks(text, ModeAuto)
	require.Len(t, blocks, 3)
	for _, b := range blocks {
		assert.Equal(t, QAPair, b.Kind)
	}
	assert.Equal(t, "Why this company?", blocks[0].Question)
	assert.Equal(t, "Mission alignment.", blocks[0].Answer)
}

func TestParseBlocks_QAContinuationLinesJoin(t *testing.T) {
	text := strings.Join([]string{
		"Q: Tell me about a hard",
		"production incident?",
		"A: A cascading cache failure",
		"that we traced to a config push.",
		"Q: And the fix?",
		"A: Staged rollouts.",
		"Q: Lesson?",
		"A: Canary everything.",
	}, "\n")

	blocks := ParseBlocks(text, ModeQA)
	require.Len(t, blocks, 3)
	assert.Equal(t, "Tell me about a hard production incident?", blocks[0].Question)
	assert.Equal(t, "A cascading cache failure that we traced to a config push.", blocks[0].Answer)
}

func TestParseBlocks_TrailingOpenQuestionDropped(t *testing.T) {
	text := "Q: First?\nA: Yes.\nQ: Second?\nA: Also yes.\nQ: Third?\nA: Sure.\nQ: Dangling?"

	blocks := ParseBlocks(text, ModeAuto)
	assert.Len(t, blocks, 3)
}

func TestParseBlocks_TwoMarkersStaysProse(t *testing.T) {
	// Below the detection threshold of 3 each.
	text := "Q: One?\nA: Yes.\nQ: Two?\nA: No.\n\nSkills\n- Go"

	blocks := ParseBlocks(text, ModeAuto)
	for _, b := range blocks {
		assert.NotEqual(t, QAPair, b.Kind)
	}
}

func TestParseBlocks_ForcedQAModeBypassesDetection(t *testing.T) {
	text := "Q: Only one?\nA: Yes."

	blocks := ParseBlocks(text, ModeQA)
	require.Len(t, blocks, 1)
	assert.Equal(t, QAPair, blocks[0].Kind)
}

func TestParseBlocks_UnderlineStripped(t *testing.T) {
	text := "Experience\n==========\n- Did things"

	blocks := ParseBlocks(text, ModeAuto)
	require.Len(t, blocks, 2)
	assert.Equal(t, SectionHeading, blocks[0].Kind)
	assert.Equal(t, Bullet, blocks[1].Kind)
}

func TestParseBlocks_SubheadingHeuristics(t *testing.T) {
	cases := []struct {
		line string
		kind BlockKind
	}{
		{"Senior Engineer — Acme Corp", Subheading},
		{"Backend Developer | Globex", Subheading},
		{"Staff Engineer, Initech, 2019", Subheading},
		{"EDUCATION", SectionHeading},
		{"Technical Skills:", SectionHeading},
		{"worked on several internal tools over the years and shipped a queueing system that is still in production today", Paragraph},
	}

	for _, tc := range cases {
		blocks := ParseBlocks("Summary\n\n"+tc.line, ModeProse)
		require.Len(t, blocks, 2, tc.line)
		assert.Equal(t, tc.kind, blocks[1].Kind, tc.line)
	}
}

func TestParseBlocks_HeadingFlushesParagraphBuffer(t *testing.T) {
	text := "Summary\nA seasoned engineer\nwith wide experience.\nSkills\n- Go"

	blocks := ParseBlocks(text, ModeProse)
	require.Len(t, blocks, 4)
	assert.Equal(t, []BlockKind{SectionHeading, Paragraph, SectionHeading, Bullet}, kindsOf(blocks))
	assert.Equal(t, "A seasoned engineer with wide experience.", blocks[1].Text)
}

func TestParseBlocks_SyntheticContentHeading(t *testing.T) {
	text := "just a loose note about things\nand another loose line of it"

	blocks := ParseBlocks(text, ModeAuto)
	require.Len(t, blocks, 2)
	assert.Equal(t, SectionHeading, blocks[0].Kind)
	assert.Equal(t, "Content", blocks[0].Text)
	assert.Equal(t, Paragraph, blocks[1].Kind)
	assert.Equal(t, "just a loose note about things and another loose line of it", blocks[1].Text)
}

func TestParseBlocks_EmptyInput(t *testing.T) {
	assert.Empty(t, ParseBlocks("", ModeAuto))
	assert.Empty(t, ParseBlocks("\n\n  \n", ModeAuto))
}

func TestParseBlocks_NumberedListItems(t *testing.T) {
	text := "Projects\n1. Queueing system\n2) Billing rewrite"

	blocks := ParseBlocks(text, ModeProse)
	require.Len(t, blocks, 3)
	assert.Equal(t, Bullet, blocks[1].Kind)
	assert.Equal(t, "Queueing system", blocks[1].Text)
	assert.Equal(t, Bullet, blocks[2].Kind)
	assert.Equal(t, "Billing rewrite", blocks[2].Text)
}

func TestParseBlocks_CRLFNormalized(t *testing.T) {
	blocks := ParseBlocks("Skills\r\n- Go\r\n- SQL", ModeAuto)
	require.Len(t, blocks, 3)
	assert.Equal(t, "Go", blocks[1].Text)
}
