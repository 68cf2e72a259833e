package plot

import (
	"regexp"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
)

// Stage identifies which extraction strategy produced a request.
type Stage int

const (
	StageNone Stage = iota
	StageTaggedFence
	StageJSONFence
	StageAnyFence
	StageBareObject
	StageKeyScan
)

func (s Stage) String() string {
	switch s {
	case StageTaggedFence:
		return "tagged_fence"
	case StageJSONFence:
		return "json_fence"
	case StageAnyFence:
		return "any_fence"
	case StageBareObject:
		return "bare_object"
	case StageKeyScan:
		return "key_scan"
	default:
		return "none"
	}
}

// Match locates the text a request was extracted from. Start == End when the
// request was assembled from scattered keys and nothing should be stripped.
type Match struct {
	Stage      Stage
	Start, End int
}

type strategy struct {
	stage Stage
	find  func(text string) (*Request, int, int, bool)
}

var strategies = []strategy{
	{StageTaggedFence, taggedFence},
	{StageJSONFence, jsonFence},
	{StageAnyFence, anyFence},
	{StageBareObject, bareObject},
	{StageKeyScan, keyScan},
}

// Extract finds the first plot request embedded in free text. Strategies are
// tried in order and the first one that yields an object with a "type" key
// wins. A nil request means the text carries none.
func Extract(text string) (*Request, Match) {
	for _, s := range strategies {
		if req, start, end, ok := s.find(text); ok {
			return req, Match{Stage: s.stage, Start: start, End: end}
		}
	}
	return nil, Match{}
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Strip removes the matched span from text and tidies the whitespace left
// behind.
func Strip(text string, m Match) string {
	if m.End <= m.Start || m.Start < 0 || m.End > len(text) {
		return strings.TrimSpace(text)
	}
	out := text[:m.Start] + text[m.End:]
	return strings.TrimSpace(blankRuns.ReplaceAllString(out, "\n\n"))
}

var plotTags = map[string]bool{
	"plot":          true,
	"plot_request":  true,
	"plot-request":  true,
	"chart":         true,
	"visualization": true,
}

var jsonTags = map[string]bool{"json": true, "jsonc": true, "json5": true}

type fence struct {
	tag        string
	body       string
	start, end int
}

// fences lists the triple-backtick blocks of text in order. An unterminated
// fence runs to the end of the text.
func fences(text string) []fence {
	var out []fence
	pos := 0
	for pos < len(text) {
		open := strings.Index(text[pos:], "```")
		if open < 0 {
			break
		}
		open += pos
		infoStart := open + 3
		bodyStart := len(text)
		info := text[infoStart:]
		if nl := strings.IndexByte(info, '\n'); nl >= 0 {
			info = info[:nl]
			bodyStart = infoStart + nl + 1
		}
		if close := strings.Index(info, "```"); close >= 0 {
			info = info[:close]
			bodyStart = infoStart + close
		}
		if brace := strings.IndexByte(info, '{'); brace >= 0 {
			bodyStart = infoStart + brace
			info = info[:brace]
		}
		tag := ""
		if f := strings.Fields(info); len(f) > 0 {
			tag = strings.ToLower(f[0])
		}

		end := len(text)
		body := text[bodyStart:]
		if close := strings.Index(text[bodyStart:], "```"); close >= 0 {
			body = text[bodyStart : bodyStart+close]
			end = bodyStart + close + 3
		}
		out = append(out, fence{tag: tag, body: body, start: open, end: end})
		pos = end
	}
	return out
}

func taggedFence(text string) (*Request, int, int, bool) {
	for _, f := range fences(text) {
		if !plotTags[f.tag] {
			continue
		}
		if req, ok := decodeObject(f.body); ok {
			return req, f.start, f.end, true
		}
	}
	return nil, 0, 0, false
}

func jsonFence(text string) (*Request, int, int, bool) {
	for _, f := range fences(text) {
		if !jsonTags[f.tag] {
			continue
		}
		if req, ok := decodeObject(f.body); ok {
			return req, f.start, f.end, true
		}
	}
	return nil, 0, 0, false
}

func anyFence(text string) (*Request, int, int, bool) {
	for _, f := range fences(text) {
		if req, ok := decodeObject(f.body); ok {
			return req, f.start, f.end, true
		}
		if req, _, _, ok := smallestObject(f.body); ok {
			return req, f.start, f.end, true
		}
	}
	return nil, 0, 0, false
}

// bareObject searches outside fenced blocks for the smallest balanced
// {...} span that mentions "type" and decodes to a request.
func bareObject(text string) (*Request, int, int, bool) {
	masked := []byte(text)
	for _, f := range fences(text) {
		for i := f.start; i < f.end; i++ {
			if masked[i] != '\n' {
				masked[i] = ' '
			}
		}
	}
	return smallestObject(string(masked))
}

func smallestObject(text string) (*Request, int, int, bool) {
	type span struct{ start, end int }
	var spans []span
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		if j := closingBrace(text, i); j > i {
			if strings.Contains(text[i:j+1], `"type"`) {
				spans = append(spans, span{i, j + 1})
			}
		}
	}
	sort.SliceStable(spans, func(a, b int) bool {
		return spans[a].end-spans[a].start < spans[b].end-spans[b].start
	})
	for _, s := range spans {
		if req, ok := decodeObject(text[s.start:s.end]); ok {
			return req, s.start, s.end, true
		}
	}
	return nil, 0, 0, false
}

// closingBrace returns the index of the brace closing the one at open, or -1.
// Braces inside double-quoted strings are ignored.
func closingBrace(text string, open int) int {
	depth := 0
	inString, escaped := false, false
	for i := open; i < len(text); i++ {
		c := text[i]
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
				return i
			}
		}
	}
	return -1
}

func keyPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`["']` + key + `["']\s*:\s*["']([^"'\n]+)["']`)
}

var (
	typeKey  = keyPattern("type")
	scanKeys = map[string]*regexp.Regexp{
		"x_column": keyPattern("x_column"),
		"y_column": keyPattern("y_column"),
		"title":    keyPattern("title"),
		"hue":      keyPattern("hue"),
	}
)

// keyScan assembles a request from individually quoted keys when nothing
// parses as an object. "type" is mandatory, and so is a complete x_column
// for every type but heatmap; a cut-off value yields nothing.
func keyScan(text string) (*Request, int, int, bool) {
	m := typeKey.FindStringSubmatch(text)
	if m == nil {
		return nil, 0, 0, false
	}
	obj := map[string]any{"type": m[1]}
	for key, re := range scanKeys {
		if km := re.FindStringSubmatch(text); km != nil {
			obj[key] = km[1]
		}
	}
	if _, ok := obj["x_column"]; !ok && Type(strings.ToLower(strings.TrimSpace(m[1]))) != Heatmap {
		return nil, 0, 0, false
	}
	req, ok := requestFromObject(obj)
	return req, 0, 0, ok
}

func decodeObject(candidate string) (*Request, bool) {
	candidate = normalize(candidate)
	if !strings.HasPrefix(candidate, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := sonic.UnmarshalString(candidate, &obj); err != nil {
		return nil, false
	}
	return requestFromObject(obj)
}

var (
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	smartQuotes   = strings.NewReplacer("“", `"`, "”", `"`)
)

// normalize repairs the near-JSON models tend to emit: comments, raw line
// breaks, curly quotes and trailing commas.
func normalize(s string) string {
	s = smartQuotes.Replace(stripComments(s))
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	s = trailingComma.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

func stripComments(s string) string {
	var b strings.Builder
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
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
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				for i < len(s) && s[i] != '\n' {
					i++
				}
				if i < len(s) {
					b.WriteByte('\n')
				}
				continue
			case '*':
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					return b.String()
				}
				i += end + 3
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
