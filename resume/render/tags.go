package render

import (
	"fmt"
	"strings"
)

type tagKind int

const (
	tagText tagKind = iota
	tagField
	tagItem
	tagOpen
	tagClose
)

// tag is one lexical piece of paragraph text: literal text or a {…} placeholder.
type tag struct {
	kind tagKind
	name string
	raw  string
}

// lexTags splits text into literal runs and placeholders. A '{' with no
// closing brace is literal unless it starts a loop tag.
func lexTags(text string) ([]tag, error) {
	var out []tag
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			out = append(out, tag{kind: tagText, raw: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(text); {
		if text[i] != '{' {
			literal.WriteByte(text[i])
			i++
			continue
		}
		end := strings.IndexByte(text[i+1:], '}')
		if end == -1 {
			if rest := text[i+1:]; strings.HasPrefix(rest, "#") || strings.HasPrefix(rest, "/") {
				return nil, fmt.Errorf("%w: unterminated tag %q", ErrTemplateRender, clip(text[i:]))
			}
			literal.WriteString(text[i:])
			break
		}
		raw := text[i : i+end+2]
		t, err := parseTag(raw)
		if err != nil {
			return nil, err
		}
		flush()
		out = append(out, t)
		i += end + 2
	}
	flush()
	return out, nil
}

func parseTag(raw string) (tag, error) {
	body := strings.TrimSpace(raw[1 : len(raw)-1])
	t := tag{raw: raw}
	switch {
	case body == ".":
		t.kind = tagItem
		return t, nil
	case strings.HasPrefix(body, "#"):
		t.kind, t.name = tagOpen, body[1:]
	case strings.HasPrefix(body, "/"):
		t.kind, t.name = tagClose, body[1:]
	default:
		t.kind, t.name = tagField, body
	}
	if !validTagName(t.name) {
		return tag{}, fmt.Errorf("%w: malformed tag %q", ErrTemplateRender, raw)
	}
	return t, nil
}

func validTagName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func hasPlaceholders(tags []tag) bool {
	for _, t := range tags {
		if t.kind != tagText {
			return true
		}
	}
	return false
}

// balance reports the loop tags a paragraph leaves open and the closes it
// consumes from enclosing paragraphs, in order.
func balance(tags []tag) (open []string, unmatched []string, err error) {
	for _, t := range tags {
		switch t.kind {
		case tagOpen:
			open = append(open, t.name)
		case tagClose:
			if len(open) == 0 {
				unmatched = append(unmatched, t.name)
				continue
			}
			top := open[len(open)-1]
			if top != t.name {
				return nil, nil, fmt.Errorf("%w: {/%s} closes {#%s}", ErrTemplateRender, t.name, top)
			}
			open = open[:len(open)-1]
		}
	}
	return open, unmatched, nil
}

func joinRaw(tags []tag) string {
	var b strings.Builder
	for _, t := range tags {
		b.WriteString(t.raw)
	}
	return b.String()
}

func clip(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}
