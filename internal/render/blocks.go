// Package render turns generated brief markdown into HTML and plain-text exports.
//
// Only a small markdown subset is recognised: "#", "##" and "###" headings, "- " list
// items and **bold** spans. Everything else is text; remaining newlines become line breaks.
package render

import "strings"

// Section icons for level-2 headings, matched on the exact heading text
var sectionIcons = map[string]string{
	"Meeting Details":       "📋",
	"Key Talking Points":    "💡",
	"Research Notes":        "🔍",
	"AI-Generated Insights": "🤖",
}

// DefaultSectionIcon is used for level-2 headings without a dedicated icon
const DefaultSectionIcon = "📋"

// BlockKind identifies a parsed block
type BlockKind int

const (
	KindText BlockKind = iota
	KindHeading
	KindList
	KindLineBreak
)

// Block is one parsed unit of a brief
type Block struct {
	Kind  BlockKind
	Level int      // headings only
	Icon  string   // level-2 headings only
	Text  string   // text and headings
	Items []string // lists only
}

// SectionIcon returns the icon shown for a level-2 heading
func SectionIcon(title string) string {
	if icon, ok := sectionIcons[title]; ok {
		return icon
	}
	return DefaultSectionIcon
}

// Parse splits brief markdown into blocks. List items separated only by blank lines
// form one list, and blank lines trailing a list are absorbed by it.
func Parse(content string) []Block {
	var blocks []Block
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	inList := false

	for i, line := range lines {
		if item, ok := strings.CutPrefix(line, "- "); ok {
			if inList {
				last := &blocks[len(blocks)-1]
				last.Items = append(last.Items, item)
			} else {
				blocks = append(blocks, Block{Kind: KindList, Items: []string{item}})
				inList = true
			}
			continue
		}
		if inList && line == "" {
			continue
		}
		inList = false

		if b, ok := parseLine(line); ok {
			blocks = append(blocks, b)
		}
		if i < len(lines)-1 {
			blocks = append(blocks, Block{Kind: KindLineBreak})
		}
	}
	return blocks
}

func parseLine(line string) (Block, bool) {
	switch {
	case strings.HasPrefix(line, "### "):
		return Block{Kind: KindHeading, Level: 3, Text: line[4:]}, true
	case strings.HasPrefix(line, "## "):
		title := line[3:]
		return Block{Kind: KindHeading, Level: 2, Text: title, Icon: SectionIcon(title)}, true
	case strings.HasPrefix(line, "# "):
		return Block{Kind: KindHeading, Level: 1, Text: line[2:]}, true
	case line == "":
		return Block{}, false
	default:
		return Block{Kind: KindText, Text: line}, true
	}
}
