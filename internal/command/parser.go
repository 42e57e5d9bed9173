package command

import (
	"regexp"
	"strconv"
	"strings"
)

// Type identifies a directive verb.
type Type string

const (
	CmdNewTax    Type = "new_tax"
	CmdNewNormal Type = "new_normal"
	CmdSearch    Type = "search"
	CmdOpen      Type = "open"
	CmdDuplicate Type = "duplicate"
	CmdUnknown   Type = "unknown"
)

// ParsedCommand is a directive after tokenization: the verb, the key/value
// parameter map (values eagerly coerced to int64/float64 when they look
// numeric) and the original text for diagnostics.
type ParsedCommand struct {
	Type   Type
	Params map[string]any
	Raw    string
	Help   string
}

// helpMessage is carried by unrecognized commands.
const helpMessage = "Unknown command. Try: new tax invoice, new normal invoice, search invoice, open invoice, duplicate invoice"

// commandPatterns is the fixed ordered table of verb patterns; first match
// wins against the lower-cased directive.
var commandPatterns = []struct {
	cmdType Type
	pattern *regexp.Regexp
}{
	{CmdNewTax, regexp.MustCompile(`^new\s+tax\s+invoice`)},
	{CmdNewNormal, regexp.MustCompile(`^new\s+normal\s+invoice`)},
	{CmdSearch, regexp.MustCompile(`^search\s+invoice`)},
	{CmdOpen, regexp.MustCompile(`^open\s+invoice`)},
	{CmdDuplicate, regexp.MustCompile(`^duplicate\s+invoice`)},
}

// paramPattern matches key=value and key="quoted value" tokens anywhere in
// the directive. Keys may be in either supported language, so \w is not
// enough; values keep their original case.
var paramPattern = regexp.MustCompile(`([\p{L}\p{N}_]+)=(?:"([^"]*)"|(\S+))`)

// Parse tokenizes a directive string. It never fails: directives that match
// no verb yield the unknown variant carrying a help message.
func Parse(text string) *ParsedCommand {
	raw := strings.TrimSpace(text)

	cmdType := identify(raw)
	if cmdType == CmdUnknown {
		return &ParsedCommand{
			Type:   CmdUnknown,
			Params: map[string]any{},
			Raw:    raw,
			Help:   helpMessage,
		}
	}

	return &ParsedCommand{
		Type:   cmdType,
		Params: parseParams(raw),
		Raw:    raw,
	}
}

func identify(raw string) Type {
	lower := strings.ToLower(raw)
	for _, entry := range commandPatterns {
		if entry.pattern.MatchString(lower) {
			return entry.cmdType
		}
	}
	return CmdUnknown
}

func parseParams(raw string) map[string]any {
	params := map[string]any{}
	for _, match := range paramPattern.FindAllStringSubmatch(raw, -1) {
		key := match[1]
		value := match[2]
		if match[2] == "" && match[3] != "" {
			value = match[3]
		}
		params[key] = coerce(value)
	}
	return params
}

// coerce opportunistically converts numeric-looking values: integer first,
// then real (only when a dot is present), otherwise the text stays as-is.
func coerce(value string) any {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if strings.Contains(value, ".") {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

// suggestionTemplates is the fixed autocomplete list.
var suggestionTemplates = []string{
	`new tax invoice 고객="" 총액=`,
	`new normal invoice 고객="" 통화="USD"`,
	`search invoice 고객="" 월=`,
	`open invoice 번호=""`,
	`duplicate invoice 번호=""`,
}

// Suggest returns autocomplete templates for a partial directive: prefix
// matches first, then keyword-overlap matches, then the full list. Never
// empty.
func Suggest(partial string) []string {
	if strings.TrimSpace(partial) == "" {
		return append([]string(nil), suggestionTemplates...)
	}

	lower := strings.ToLower(partial)

	var prefixed []string
	for _, s := range suggestionTemplates {
		if strings.HasPrefix(strings.ToLower(s), lower) {
			prefixed = append(prefixed, s)
		}
	}
	if len(prefixed) > 0 {
		return prefixed
	}

	words := strings.Fields(lower)
	var overlapped []string
	for _, s := range suggestionTemplates {
		sl := strings.ToLower(s)
		for _, w := range words {
			if strings.Contains(sl, w) {
				overlapped = append(overlapped, s)
				break
			}
		}
	}
	if len(overlapped) > 0 {
		return overlapped
	}

	return append([]string(nil), suggestionTemplates...)
}
