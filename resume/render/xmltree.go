package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"sort"
	"strings"
)

const (
	wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	relNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	xmlNamespace = "http://www.w3.org/XML/1998/namespace"
)

// xmlNode is a minimal mutable DOM for word/document.xml. The root element
// itself is never re-encoded; its raw start and end tags are kept verbatim so
// namespace declarations and mc:Ignorable lists survive untouched.
type xmlNode struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*xmlNode
	Text     string
	IsText   bool
}

type xmlDocument struct {
	header    string
	rootStart string
	rootEnd   string
	root      *xmlNode
}

var xmlHeaderPattern = regexp.MustCompile(`(?s)^\s*(<\?xml[^>]+\?>)`)

func parseXMLDocument(xmlText string) (*xmlDocument, error) {
	rootStart, rootEnd, err := extractRootTags(xmlText)
	if err != nil {
		return nil, err
	}
	doc := &xmlDocument{rootStart: rootStart, rootEnd: rootEnd}
	if match := xmlHeaderPattern.FindStringSubmatch(xmlText); len(match) > 0 {
		doc.header = match[1]
		xmlText = xmlText[len(match[0]):]
	}

	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	var stack []*xmlNode
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			node := &xmlNode{Name: t.Name, Attr: t.Attr}
			if len(stack) == 0 {
				doc.root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 || len(t) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, &xmlNode{IsText: true, Text: string(t)})
		}
	}
	if doc.root == nil {
		return nil, errors.New("document.xml has no root element")
	}
	return doc, nil
}

func (d *xmlDocument) encode() ([]byte, error) {
	var buf bytes.Buffer
	if d.header != "" {
		buf.WriteString(d.header)
		buf.WriteByte('\n')
	}

	clone := cloneNode(d.root)
	normalizeXMLNSAttrs(clone)
	applyPrefixMap(clone, prefixMapFromRoot(d.root))
	buf.WriteString(ensureRootHasNamespaces(d.rootStart, requiredNamespaceMap(prefixesUsed(clone), d.root)))

	encoder := xml.NewEncoder(&buf)
	for _, child := range clone.Children {
		if err := encodeXMLNode(encoder, child); err != nil {
			return nil, err
		}
	}
	if err := encoder.Flush(); err != nil {
		return nil, err
	}
	buf.WriteString(d.rootEnd)
	return buf.Bytes(), nil
}

func encodeXMLNode(encoder *xml.Encoder, node *xmlNode) error {
	if node.IsText {
		return encoder.EncodeToken(xml.CharData(node.Text))
	}
	start := xml.StartElement{Name: node.Name, Attr: node.Attr}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := encodeXMLNode(encoder, child); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}

func findBodyNode(root *xmlNode) *xmlNode {
	var match *xmlNode
	walkXML(root, func(node *xmlNode) bool {
		if isElement(node, "body") {
			match = node
			return false
		}
		return true
	})
	return match
}

func walkXML(node *xmlNode, visit func(*xmlNode) bool) bool {
	if node == nil {
		return true
	}
	if !visit(node) {
		return false
	}
	for _, child := range node.Children {
		if !walkXML(child, visit) {
			return false
		}
	}
	return true
}

func isElement(node *xmlNode, local string) bool {
	if node == nil || node.IsText || node.Name.Local != local {
		return false
	}
	return node.Name.Space == "" || node.Name.Space == wmlNamespace
}

func wml(local string) xml.Name {
	return xml.Name{Space: wmlNamespace, Local: local}
}

func cloneNode(node *xmlNode) *xmlNode {
	if node == nil {
		return nil
	}
	cloned := &xmlNode{
		Name:   node.Name,
		Attr:   append([]xml.Attr(nil), node.Attr...),
		Text:   node.Text,
		IsText: node.IsText,
	}
	if len(node.Children) > 0 {
		cloned.Children = make([]*xmlNode, 0, len(node.Children))
		for _, child := range node.Children {
			cloned.Children = append(cloned.Children, cloneNode(child))
		}
	}
	return cloned
}

func cloneNodes(nodes []*xmlNode) []*xmlNode {
	out := make([]*xmlNode, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, cloneNode(node))
	}
	return out
}

// paragraphs returns every w:p under node in document order, node included.
func paragraphs(node *xmlNode) []*xmlNode {
	return collectElements(node, "p")
}

func collectTextElements(node *xmlNode) []*xmlNode {
	return collectElements(node, "t")
}

// collectElements gathers matching elements without descending into them.
func collectElements(node *xmlNode, local string) []*xmlNode {
	if node == nil || node.IsText {
		return nil
	}
	if isElement(node, local) {
		return []*xmlNode{node}
	}
	var out []*xmlNode
	for _, child := range node.Children {
		out = append(out, collectElements(child, local)...)
	}
	return out
}

func nodeText(node *xmlNode) string {
	var builder strings.Builder
	for _, child := range node.Children {
		if child.IsText {
			builder.WriteString(child.Text)
		}
	}
	return builder.String()
}

func paragraphText(p *xmlNode) string {
	var builder strings.Builder
	for _, node := range collectTextElements(p) {
		builder.WriteString(nodeText(node))
	}
	return builder.String()
}

// setParagraphText collapses the paragraph's text into its first w:t,
// keeping that run's formatting. Newlines become w:br elements in the run.
func setParagraphText(p *xmlNode, text string) {
	textNodes := collectTextElements(p)
	for _, node := range textNodes {
		node.Children = nil
	}
	if len(textNodes) == 0 {
		if text == "" {
			return
		}
		t := &xmlNode{Name: wml("t")}
		p.Children = append(p.Children, &xmlNode{Name: wml("r"), Children: []*xmlNode{t}})
		textNodes = []*xmlNode{t}
	}

	first := textNodes[0]
	lines := strings.Split(text, "\n")
	fillText(first, lines[0])
	if len(lines) == 1 {
		return
	}

	run, idx := parentOf(p, first)
	if run == nil {
		fillText(first, strings.Join(lines, " "))
		return
	}
	extra := make([]*xmlNode, 0, 2*(len(lines)-1))
	for _, line := range lines[1:] {
		t := &xmlNode{Name: first.Name, Attr: append([]xml.Attr(nil), first.Attr...)}
		fillText(t, line)
		extra = append(extra, &xmlNode{Name: xml.Name{Space: first.Name.Space, Local: "br"}}, t)
	}
	children := make([]*xmlNode, 0, len(run.Children)+len(extra))
	children = append(children, run.Children[:idx+1]...)
	children = append(children, extra...)
	children = append(children, run.Children[idx+1:]...)
	run.Children = children
}

func fillText(t *xmlNode, text string) {
	t.Children = nil
	if text != "" {
		t.Children = []*xmlNode{{IsText: true, Text: text}}
	}
	if strings.TrimSpace(text) != text {
		setAttr(t, xml.Name{Space: xmlNamespace, Local: "space"}, "preserve")
	}
}

func setAttr(node *xmlNode, name xml.Name, value string) {
	for i, attr := range node.Attr {
		if attr.Name == name {
			node.Attr[i].Value = value
			return
		}
	}
	node.Attr = append(node.Attr, xml.Attr{Name: name, Value: value})
}

func parentOf(root, target *xmlNode) (*xmlNode, int) {
	var parent *xmlNode
	index := -1
	walkXML(root, func(n *xmlNode) bool {
		for i, child := range n.Children {
			if child == target {
				parent, index = n, i
				return false
			}
		}
		return true
	})
	return parent, index
}

func prefixMapFromRoot(root *xmlNode) map[string]string {
	out := make(map[string]string)
	for prefix, uri := range namespaceDecls(root) {
		out[uri] = prefix
	}
	return out
}

// namespaceDecls maps prefix to URI for the declarations on node.
func namespaceDecls(node *xmlNode) map[string]string {
	out := make(map[string]string)
	if node == nil {
		return out
	}
	for _, attr := range node.Attr {
		switch {
		case attr.Name.Space == "xmlns":
			out[attr.Name.Local] = attr.Value
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			out[""] = attr.Value
		case attr.Name.Space == "" && strings.HasPrefix(attr.Name.Local, "xmlns:"):
			out[strings.TrimPrefix(attr.Name.Local, "xmlns:")] = attr.Value
		}
	}
	return out
}

func prefixesUsed(node *xmlNode) map[string]struct{} {
	out := make(map[string]struct{})
	walkXML(node, func(n *xmlNode) bool {
		if n.IsText {
			return true
		}
		if prefix := prefixFromName(n.Name.Local); prefix != "" {
			out[prefix] = struct{}{}
		}
		for _, attr := range n.Attr {
			if prefix := prefixFromName(attr.Name.Local); prefix != "" {
				out[prefix] = struct{}{}
			}
		}
		return true
	})
	return out
}

func prefixFromName(name string) string {
	if name == "xmlns" || strings.HasPrefix(name, "xmlns:") {
		return ""
	}
	if idx := strings.IndexByte(name, ':'); idx > 0 {
		return name[:idx]
	}
	return ""
}

var knownNamespaceURIs = map[string]string{
	"w":   wmlNamespace,
	"r":   relNamespace,
	"a":   "http://schemas.openxmlformats.org/drawingml/2006/main",
	"wp":  "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing",
	"pic": "http://schemas.openxmlformats.org/drawingml/2006/picture",
	"mc":  "http://schemas.openxmlformats.org/markup-compatibility/2006",
	"w14": "http://schemas.microsoft.com/office/word/2010/wordml",
	"w15": "http://schemas.microsoft.com/office/word/2012/wordml",
}

func requiredNamespaceMap(prefixes map[string]struct{}, root *xmlNode) map[string]string {
	declared := namespaceDecls(root)
	required := map[string]string{"w": wmlNamespace}
	for prefix := range prefixes {
		if uri, ok := declared[prefix]; ok {
			required[prefix] = uri
		} else if uri, ok := knownNamespaceURIs[prefix]; ok {
			required[prefix] = uri
		}
	}
	return required
}

var xmlnsAttrPattern = regexp.MustCompile(`\s+xmlns(?::([A-Za-z0-9._-]+))?="([^"]+)"`)

// ensureRootHasNamespaces appends declarations for prefixes the encoded body
// uses but the raw root start tag lacks.
func ensureRootHasNamespaces(rootStart string, required map[string]string) string {
	existing := make(map[string]string)
	for _, match := range xmlnsAttrPattern.FindAllStringSubmatch(rootStart, -1) {
		existing[match[1]] = match[2]
	}
	var missing []string
	for prefix, uri := range required {
		if prefix == "" || uri == "" {
			continue
		}
		if _, ok := existing[prefix]; !ok {
			missing = append(missing, prefix)
		}
	}
	if len(missing) == 0 {
		return rootStart
	}
	sort.Strings(missing)
	var builder strings.Builder
	for _, prefix := range missing {
		builder.WriteString(` xmlns:` + prefix + `="` + required[prefix] + `"`)
	}
	insert := builder.String()
	if strings.HasSuffix(rootStart, "/>") {
		return rootStart[:len(rootStart)-2] + insert + "/>"
	}
	return rootStart[:len(rootStart)-1] + insert + ">"
}

func extractRootTags(xmlText string) (string, string, error) {
	start, end, name, err := findRootStartTag(xmlText)
	if err != nil {
		return "", "", err
	}
	endTag := "</" + name + ">"
	endPos := strings.LastIndex(xmlText, endTag)
	if endPos == -1 {
		return "", "", errors.New("root end tag not found")
	}
	return xmlText[start : end+1], endTag, nil
}

func findRootStartTag(xmlText string) (int, int, string, error) {
	i := 0
	for {
		idx := strings.IndexByte(xmlText[i:], '<')
		if idx == -1 {
			return 0, 0, "", errors.New("root start tag not found")
		}
		i += idx
		rest := xmlText[i:]
		var skipTo string
		switch {
		case strings.HasPrefix(rest, "<?"):
			skipTo = "?>"
		case strings.HasPrefix(rest, "<!--"):
			skipTo = "-->"
		case strings.HasPrefix(rest, "<!"):
			skipTo = ">"
		}
		if skipTo == "" {
			break
		}
		end := strings.Index(rest, skipTo)
		if end == -1 {
			return 0, 0, "", errors.New("xml prolog not terminated")
		}
		i += end + len(skipTo)
	}

	start := i
	var quote byte
	for i = start + 1; i < len(xmlText); i++ {
		c := xmlText[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			name := strings.TrimSpace(xmlText[start+1 : i])
			if cut := strings.IndexAny(name, " \t\r\n/"); cut != -1 {
				name = name[:cut]
			}
			if name == "" {
				return 0, 0, "", errors.New("root tag name missing")
			}
			return start, i, name, nil
		}
	}
	return 0, 0, "", errors.New("root start tag not terminated")
}

// applyPrefixMap rewrites resolved namespace URIs back to the root's
// prefixes so the encoder emits w:p rather than re-declaring namespaces.
func applyPrefixMap(node *xmlNode, prefixes map[string]string) {
	if node == nil {
		return
	}
	if !node.IsText {
		if prefix, ok := prefixes[node.Name.Space]; ok && prefix != "" {
			node.Name = xml.Name{Local: prefix + ":" + node.Name.Local}
		}
		for i, attr := range node.Attr {
			if attr.Name.Space == "" || attr.Name.Space == xmlNamespace {
				continue
			}
			if prefix, ok := prefixes[attr.Name.Space]; ok && prefix != "" {
				node.Attr[i].Name = xml.Name{Local: prefix + ":" + attr.Name.Local}
			}
		}
	}
	for _, child := range node.Children {
		applyPrefixMap(child, prefixes)
	}
}

func normalizeXMLNSAttrs(node *xmlNode) {
	if node == nil || node.IsText {
		return
	}
	for i, attr := range node.Attr {
		if attr.Name.Space != "xmlns" {
			continue
		}
		if attr.Name.Local == "" {
			node.Attr[i].Name = xml.Name{Local: "xmlns"}
		} else {
			node.Attr[i].Name = xml.Name{Local: "xmlns:" + attr.Name.Local}
		}
	}
	for _, child := range node.Children {
		normalizeXMLNSAttrs(child)
	}
}
