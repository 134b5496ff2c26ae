package parse

import (
	"regexp"
	"strings"
)

// Span is a candidate JSON object located in raw model output.
type Span struct {
	// Text is the candidate, from the opening brace to its matching closing
	// brace, or to the end of the search region when the object is unterminated.
	Text string
	// Offset is the byte position of Text within the raw output.
	Offset int
	// Fenced reports whether the span was found inside a code fence.
	Fenced bool
	// Terminated is false when no matching closing brace was found.
	Terminated bool
}

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// fencePattern matches a markdown code fence. A fence that is never closed
// runs to the end of the text, which is what a truncated completion looks like.
var fencePattern = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[^\n]*\n(.*?)(?:```|\\z)")

// SplitReasoning separates <think>...</think> reasoning blocks from the rest
// of the output. A closing tag with no opening tag treats everything before it
// as reasoning; an opening tag with no closing tag runs to the end.
func SplitReasoning(raw string) (reasoning, content string) {
	blocks := reasoningBlocks(raw)
	if len(blocks) == 0 {
		return "", raw
	}
	var thoughts []string
	var rest strings.Builder
	pos := 0
	for _, b := range blocks {
		thoughts = append(thoughts, strings.TrimSpace(raw[b.bodyStart:b.bodyEnd]))
		rest.WriteString(raw[pos:b.start])
		pos = b.end
	}
	rest.WriteString(raw[pos:])
	return strings.Join(thoughts, "\n"), strings.TrimSpace(rest.String())
}

type reasoningBlock struct {
	start, end         int // whole block including tags
	bodyStart, bodyEnd int
}

func reasoningBlocks(raw string) []reasoningBlock {
	if !strings.Contains(raw, thinkOpen) && !strings.Contains(raw, thinkClose) {
		return nil
	}
	var blocks []reasoningBlock
	pos := 0
	// A close tag before any open tag: the provider stripped the opener.
	if open, end := strings.Index(raw, thinkOpen), strings.Index(raw, thinkClose); end >= 0 && (open < 0 || end < open) {
		blocks = append(blocks, reasoningBlock{start: 0, end: end + len(thinkClose), bodyStart: 0, bodyEnd: end})
		pos = end + len(thinkClose)
	}
	for {
		open := strings.Index(raw[pos:], thinkOpen)
		if open < 0 {
			break
		}
		open += pos
		bodyStart := open + len(thinkOpen)
		end := strings.Index(raw[bodyStart:], thinkClose)
		if end < 0 {
			blocks = append(blocks, reasoningBlock{start: open, end: len(raw), bodyStart: bodyStart, bodyEnd: len(raw)})
			break
		}
		end += bodyStart
		blocks = append(blocks, reasoningBlock{start: open, end: end + len(thinkClose), bodyStart: bodyStart, bodyEnd: end})
		pos = end + len(thinkClose)
	}
	return blocks
}

// maskReasoning replaces reasoning blocks with spaces so byte offsets into the
// result are offsets into raw.
func maskReasoning(raw string) string {
	blocks := reasoningBlocks(raw)
	if len(blocks) == 0 {
		return raw
	}
	buf := []byte(raw)
	for _, b := range blocks {
		for i := b.start; i < b.end; i++ {
			if buf[i] != '\n' {
				buf[i] = ' '
			}
		}
	}
	return string(buf)
}

// region is a slice of the masked output that is searched for objects.
// source is the whole masked output the region was cut from.
type region struct {
	text   string
	offset int
	fenced bool
	source string
}

// searchRegions returns the fenced JSON blocks that contain an opening brace,
// or the whole text when there are none.
func searchRegions(masked string, langs ...string) []region {
	var regions []region
	for _, m := range fencePattern.FindAllStringSubmatchIndex(masked, -1) {
		lang := strings.ToLower(masked[m[2]:m[3]])
		if !fenceLanguage(lang, langs) {
			continue
		}
		body := masked[m[4]:m[5]]
		if len(langs) == 0 && !strings.Contains(body, "{") {
			continue
		}
		regions = append(regions, region{text: body, offset: m[4], fenced: true, source: masked})
	}
	if len(regions) == 0 {
		regions = append(regions, region{text: masked, source: masked})
	}
	return regions
}

func fenceLanguage(lang string, langs []string) bool {
	if len(langs) == 0 {
		langs = []string{"json", "jsonc", "json5"}
	}
	if lang == "" {
		return true
	}
	for _, l := range langs {
		if lang == l {
			return true
		}
	}
	return false
}

// Locate finds the candidate JSON object in raw model output.
//
// Reasoning blocks are ignored. When the output has a ```json (or bare ```)
// code fence containing an opening brace, the first such fence is searched;
// otherwise the whole text is. From the first '{' a balanced-brace scanner
// that understands JSON strings finds the matching '}'. Braces before the
// object, after it, or in a second object are ignored. A ``` inside a string
// of the object does not end the search.
//
// It returns ErrNoJSONFound when there is no opening brace to start from.
func Locate(raw string) (Span, error) {
	r := searchRegions(maskReasoning(raw))[0]
	start := strings.IndexByte(r.text, '{')
	if start < 0 {
		return Span{}, ErrNoJSONFound
	}
	return spanAt(r, start), nil
}

// LocateAll finds every top-level JSON object, in order: the objects of every
// fenced JSON block, or of the whole text when there are no fences.
func LocateAll(raw string) ([]Span, error) {
	masked := maskReasoning(raw)
	regions := searchRegions(masked)
	var spans []Span
	for i := 0; i < len(regions); i++ {
		r := regions[i]
		for pos := 0; pos < len(r.text); {
			next := strings.IndexByte(r.text[pos:], '{')
			if next < 0 {
				break
			}
			span := spanAt(r, pos+next)
			spans = append(spans, span)
			end := span.Offset + len(span.Text)
			if end > r.offset+len(r.text) {
				// The object ran past the fence that cut it short, so the
				// fences after it are paired again from its end.
				regions = append(regions[:i+1], fencedAfter(masked, end)...)
				break
			}
			pos = end - r.offset
		}
	}
	if len(spans) == 0 {
		return nil, ErrNoJSONFound
	}
	return spans, nil
}

// fencedAfter returns the fenced regions of masked[end:], skipping the fence
// that closes the block an object ending at end was read from.
func fencedAfter(masked string, end int) []region {
	rest := end
	if fence := strings.Index(masked[end:], "```"); fence >= 0 && strings.TrimSpace(masked[end:end+fence]) == "" {
		rest = end + fence + len("```")
	}
	var out []region
	for _, r := range searchRegions(masked[rest:]) {
		if r.fenced {
			r.offset += rest
			r.source = masked
			out = append(out, r)
		}
	}
	return out
}

// spanAt scans the object opening at r.text[start]. A fence closes at the
// first ``` even inside a JSON string, so an object left open at the end of
// a fence is scanned again over the rest of the output.
func spanAt(r region, start int) Span {
	text, offset := r.text, r.offset
	end, ok := scanObject(text, start)
	if !ok && r.fenced {
		if whole, closed := scanObject(r.source, offset+start); closed {
			text, start, end, ok = r.source, offset+start, whole, true
			offset = 0
		}
	}
	return Span{
		Text:       strings.TrimRight(text[start:end], " \t\r\n"),
		Offset:     offset + start,
		Fenced:     r.fenced,
		Terminated: ok,
	}
}

// scanObject returns the end (exclusive) of the object opening at s[start].
// Braces inside JSON strings, including escaped quotes, are not counted.
// When the object never closes it returns len(s) and false.
func scanObject(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return len(s), false
}
