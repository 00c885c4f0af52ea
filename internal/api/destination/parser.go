package destination

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/gezi-ai/internal/types"
)

// maxHeadingTitleRunes bounds the title part of a heading line. Longer lines are prose.
const maxHeadingTitleRunes = 60

// slotKeywords maps each slot to the lower-cased title prefixes that open it.
// Slots are tried in outline order and the first match wins.
var slotKeywords = []struct {
	slot     types.SectionSlot
	keywords []string
}{
	{types.SlotHistory, []string{"tarihçe", "genel bilgi"}},
	{types.SlotBestTimeToVisit, []string{"en iyi ziyaret", "ziyaret zamanı"}},
	{types.SlotAttractions, []string{"önemli turistik", "turistik yerler", "gezilecek"}},
	{types.SlotLocalFood, []string{"yerel"}},
	{types.SlotTransportation, []string{"ulaşım", "konaklama"}},
	{types.SlotFestivals, []string{"festival", "etkinlik"}},
}

// qualifier is an optional leading word the prompt outline puts before some titles.
const qualifier = "önemli "

// heading is a recognized section opener.
type heading struct {
	slot  types.SectionSlot
	title string
	rest  string
}

// ParseNarrative splits a generated narrative into outline sections.
//
//	narrative  := block ( BLANKLINE+ block )*
//	block      := heading? line*
//	heading    := decoration* ordinal? decoration* title [":" rest]
//	ordinal    := DIGIT+ ("." | ")")
//	decoration := emoji | "#" | "*" | "-" | whitespace
//
// A heading line carries a decoration, an ordinal or a colon, or else must not end like a
// sentence. A block whose first line is a heading opens that heading's slot. Any other block
// continues the current section, or the preamble before the first heading. A repeated slot keeps
// its first title and appends the later body. Every slot that never opened is reported in Misses.
func ParseNarrative(text string) types.NarrativeSections {
	out := types.NarrativeSections{Sections: map[types.SectionSlot]types.NarrativeSection{}}

	var preamble []string
	var current types.SectionSlot

	for _, block := range splitBlocks(text) {
		lines := strings.Split(block, "\n")
		if h, ok := parseHeading(lines[0]); ok {
			current = h.slot
			body := lines[1:]
			if h.rest != "" {
				body = append([]string{h.rest}, body...)
			}
			appendToSection(&out, h.slot, h.title, body)
			continue
		}
		if current == "" {
			preamble = append(preamble, cleanBlock(lines))
			continue
		}
		appendToSection(&out, current, "", lines)
	}

	out.Preamble = strings.TrimSpace(strings.Join(preamble, "\n\n"))
	for _, slot := range types.SectionSlots {
		if _, ok := out.Sections[slot]; !ok {
			out.Misses = append(out.Misses, types.ParseHeuristicMiss{Slot: slot})
		}
	}
	return out
}

func appendToSection(out *types.NarrativeSections, slot types.SectionSlot, title string, lines []string) {
	sec, ok := out.Sections[slot]
	if !ok {
		sec = types.NarrativeSection{Slot: slot, Title: title}
	}

	body := cleanBlock(lines)
	if body != "" {
		if sec.Body == "" {
			sec.Body = body
		} else {
			sec.Body += "\n\n" + body
		}
	}
	for _, line := range lines {
		if item, ok := listItem(line); ok {
			sec.Items = append(sec.Items, item)
		}
	}
	out.Sections[slot] = sec
}

// splitBlocks normalizes line endings and splits on runs of blank lines.
func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}

// parseHeading reports whether line opens a section and for which slot.
func parseHeading(line string) (heading, bool) {
	s := strings.TrimSpace(line)
	if isBullet(s) {
		return heading{}, false
	}

	plain := trimDecoration(s)
	marked := plain != s
	s = trimOrdinal(plain)
	marked = marked || s != plain
	s = trimDecoration(s)

	title, rest, hasColon := strings.Cut(s, ":")
	// an unmarked line without a colon is a heading only when it does not read as a sentence
	if !marked && !hasColon && endsSentence(title) {
		return heading{}, false
	}
	title = strings.TrimRightFunc(title, isDecoration)
	rest = strings.TrimSpace(strings.TrimLeft(rest, "* "))

	if title == "" || utf8.RuneCountInString(title) > maxHeadingTitleRunes {
		return heading{}, false
	}

	norm := turkishLower(title)
	for _, sk := range slotKeywords {
		for _, kw := range sk.keywords {
			if strings.HasPrefix(norm, kw) || strings.HasPrefix(strings.TrimPrefix(norm, qualifier), kw) {
				return heading{slot: sk.slot, title: title, rest: stripEmphasis(rest)}, true
			}
		}
	}
	return heading{}, false
}

func endsSentence(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(strings.TrimSpace(s))
	return strings.ContainsRune(".!?…", r)
}

// isBullet reports a single-marker list line such as "- Yerel pazarlar" or "* Ayasofya".
// Bold headings ("**Yerel Mutfak**") are not bullets.
func isBullet(s string) bool {
	return strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "• ") ||
		(strings.HasPrefix(s, "* ") && !strings.HasPrefix(s, "**"))
}

// listItem returns the text of a bullet or numbered line.
func listItem(line string) (string, bool) {
	s := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(s, "**"):
		return "", false
	case strings.HasPrefix(s, "- "), strings.HasPrefix(s, "• "), strings.HasPrefix(s, "* "):
		s = s[strings.IndexByte(s, ' ')+1:]
	default:
		trimmed := trimOrdinal(s)
		if trimmed == s {
			return "", false
		}
		s = trimmed
	}
	s = strings.TrimSpace(stripEmphasis(s))
	if s == "" {
		return "", false
	}
	return s, true
}

func trimDecoration(s string) string {
	return strings.TrimLeftFunc(s, isDecoration)
}

// isDecoration is true for anything that is not a letter or digit: emoji, markdown markers,
// punctuation and whitespace.
func isDecoration(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// trimOrdinal drops a leading "12." or "12)".
func trimOrdinal(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) || (s[i] != '.' && s[i] != ')') {
		return s
	}
	if i+1 < len(s) && s[i+1] != ' ' && s[i+1] != '*' {
		return s
	}
	return strings.TrimSpace(s[i+1:])
}

// cleanBlock joins lines with markdown emphasis and heading markers removed.
func cleanBlock(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		line = stripEmphasis(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func stripEmphasis(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

func turkishLower(s string) string {
	return cases.Lower(language.Turkish).String(s)
}
