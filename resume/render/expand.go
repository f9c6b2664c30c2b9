package render

import (
	"fmt"
	"strings"
)

// scope is the binding visible to a placeholder: the template data plus the
// stack of enclosing loop items, innermost last.
type scope struct {
	data  map[string]any
	items []string
}

func (s scope) with(item string) scope {
	items := make([]string, len(s.items), len(s.items)+1)
	copy(items, s.items)
	return scope{data: s.data, items: append(items, item)}
}

func (s scope) field(name string) string {
	switch v := s.data[name].(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, "\n")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (s scope) list(name string) ([]string, error) {
	v, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: loop over unknown field %q", ErrTemplateRender, name)
	}
	switch v := v.(type) {
	case []string:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("%w: field %q is not repeatable", ErrTemplateRender, name)
	}
}

// renderTags evaluates a balanced tag sequence to plain text.
func renderTags(tags []tag, sc scope) (string, error) {
	var b strings.Builder
	for i := 0; i < len(tags); i++ {
		t := tags[i]
		switch t.kind {
		case tagText:
			b.WriteString(t.raw)
		case tagField:
			b.WriteString(sc.field(t.name))
		case tagItem:
			if len(sc.items) == 0 {
				return "", fmt.Errorf("%w: {.} outside a loop", ErrTemplateRender)
			}
			b.WriteString(sc.items[len(sc.items)-1])
		case tagOpen:
			end, err := matchClose(tags, i)
			if err != nil {
				return "", err
			}
			items, err := sc.list(t.name)
			if err != nil {
				return "", err
			}
			for _, item := range items {
				text, err := renderTags(tags[i+1:end], sc.with(item))
				if err != nil {
					return "", err
				}
				b.WriteString(text)
			}
			i = end
		case tagClose:
			return "", fmt.Errorf("%w: {/%s} without {#%s}", ErrTemplateRender, t.name, t.name)
		}
	}
	return b.String(), nil
}

func matchClose(tags []tag, open int) (int, error) {
	depth := 0
	for j := open + 1; j < len(tags); j++ {
		switch tags[j].kind {
		case tagOpen:
			depth++
		case tagClose:
			if depth > 0 {
				depth--
				continue
			}
			if tags[j].name != tags[open].name {
				return -1, fmt.Errorf("%w: {/%s} closes {#%s}", ErrTemplateRender, tags[j].name, tags[open].name)
			}
			return j, nil
		}
	}
	return -1, fmt.Errorf("%w: {#%s} is never closed", ErrTemplateRender, tags[open].name)
}

// wholeLoop reports whether tags are a single loop spanning the paragraph,
// ignoring surrounding whitespace. Such paragraphs repeat once per item.
func wholeLoop(tags []tag) ([]tag, string, bool) {
	first, last := 0, len(tags)-1
	for first <= last && tags[first].kind == tagText && strings.TrimSpace(tags[first].raw) == "" {
		first++
	}
	for last >= first && tags[last].kind == tagText && strings.TrimSpace(tags[last].raw) == "" {
		last--
	}
	if first >= last || tags[first].kind != tagOpen {
		return nil, "", false
	}
	end, err := matchClose(tags, first)
	if err != nil || end != last {
		return nil, "", false
	}
	return tags[first+1 : last], tags[first].name, true
}

func renderParagraph(p *xmlNode, tags []tag, sc scope) ([]*xmlNode, error) {
	if inner, name, ok := wholeLoop(tags); ok {
		items, err := sc.list(name)
		if err != nil {
			return nil, err
		}
		out := make([]*xmlNode, 0, len(items))
		for _, item := range items {
			text, err := renderTags(inner, sc.with(item))
			if err != nil {
				return nil, err
			}
			clone := cloneNode(p)
			setParagraphText(clone, text)
			out = append(out, clone)
		}
		return out, nil
	}
	text, err := renderTags(tags, sc)
	if err != nil {
		return nil, err
	}
	setParagraphText(p, text)
	return []*xmlNode{p}, nil
}

// renderContainer substitutes placeholders in every paragraph below
// container and expands loops whose open and close tags sit in different
// paragraphs of the same container.
func renderContainer(container *xmlNode, sc scope) error {
	children := append([]*xmlNode(nil), container.Children...)
	out := make([]*xmlNode, 0, len(children))

	for i := 0; i < len(children); i++ {
		child := children[i]
		if child.IsText {
			out = append(out, child)
			continue
		}
		if !isElement(child, "p") {
			if err := renderContainer(child, sc); err != nil {
				return err
			}
			out = append(out, child)
			continue
		}

		tags, err := lexTags(paragraphText(child))
		if err != nil {
			return err
		}
		if !hasPlaceholders(tags) {
			out = append(out, child)
			continue
		}
		open, unmatched, err := balance(tags)
		if err != nil {
			return err
		}
		if len(unmatched) > 0 {
			return fmt.Errorf("%w: {/%s} without {#%s}", ErrTemplateRender, unmatched[0], unmatched[0])
		}
		if len(open) == 0 {
			nodes, err := renderParagraph(child, tags, sc)
			if err != nil {
				return err
			}
			out = append(out, nodes...)
			continue
		}

		block, err := splitBlock(children, i, tags)
		if err != nil {
			return err
		}
		if block.head != nil {
			headTags, _ := lexTags(paragraphText(block.head))
			nodes, err := renderParagraph(block.head, headTags, sc)
			if err != nil {
				return err
			}
			out = append(out, nodes...)
		}
		items, err := sc.list(block.name)
		if err != nil {
			return err
		}
		for _, item := range items {
			tmp := &xmlNode{Children: cloneNodes(block.body)}
			if err := renderContainer(tmp, sc.with(item)); err != nil {
				return err
			}
			out = append(out, tmp.Children...)
		}
		// The closing paragraph's remainder may open another block, so it
		// is reprocessed rather than rendered here.
		if block.tail != nil {
			children[block.end] = block.tail
			i = block.end - 1
		} else {
			i = block.end
		}
	}

	container.Children = out
	return nil
}

type loopBlock struct {
	name string
	head *xmlNode
	body []*xmlNode
	tail *xmlNode
	end  int
}

// splitBlock cuts the loop opened in children[start] at its outermost
// unclosed tag and locates the sibling paragraph that closes it.
func splitBlock(children []*xmlNode, start int, tags []tag) (loopBlock, error) {
	openAt := outermostUnclosed(tags)
	block := loopBlock{name: tags[openAt].name}
	startPara := children[start]

	stack := []string{block.name}
	inner, _, _ := balance(tags[openAt+1:])
	stack = append(stack, inner...)

	for j := start + 1; j < len(children); j++ {
		sibling := children[j]
		for _, p := range paragraphs(sibling) {
			ptags, err := lexTags(paragraphText(p))
			if err != nil {
				return block, err
			}
			for k, t := range ptags {
				switch t.kind {
				case tagOpen:
					stack = append(stack, t.name)
				case tagClose:
					top := stack[len(stack)-1]
					if top != t.name {
						return block, fmt.Errorf("%w: {/%s} closes {#%s}", ErrTemplateRender, t.name, top)
					}
					stack = stack[:len(stack)-1]
					if len(stack) > 0 {
						continue
					}
					if p != sibling {
						return block, fmt.Errorf("%w: {#%s} must close in the same block it opens", ErrTemplateRender, block.name)
					}
					block.end = j
					block.head = withText(startPara, tags[:openAt])
					if lead := withText(startPara, tags[openAt+1:]); lead != nil {
						block.body = append(block.body, lead)
					}
					block.body = append(block.body, children[start+1:j]...)
					if trail := withText(p, ptags[:k]); trail != nil {
						block.body = append(block.body, trail)
					}
					block.tail = withText(p, ptags[k+1:])
					return block, nil
				}
			}
		}
	}
	return block, fmt.Errorf("%w: {#%s} is never closed", ErrTemplateRender, block.name)
}

func outermostUnclosed(tags []tag) int {
	for i, t := range tags {
		if t.kind != tagOpen {
			continue
		}
		if _, err := matchClose(tags, i); err != nil {
			return i
		}
	}
	return -1
}

// withText clones p carrying only the raw text of tags, or returns nil when
// that text is blank.
func withText(p *xmlNode, tags []tag) *xmlNode {
	raw := joinRaw(tags)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	clone := cloneNode(p)
	setParagraphText(clone, raw)
	return clone
}
