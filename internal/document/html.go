package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML: Tree поверх golang.org/x/net/html.
type HTML struct {
	doc *html.Node
}

// Parse разбирает HTML-документ.
func Parse(r io.Reader) (*HTML, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &HTML{doc: doc}, nil
}

// ParseString разбирает HTML из строки.
func ParseString(s string) (*HTML, error) {
	return Parse(strings.NewReader(s))
}

// Root возвращает <body>, а если его нет, корень документа.
func (d *HTML) Root() Element {
	if body := findFirst(d.doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	}); body != nil {
		return &htmlElement{n: body}
	}
	return &htmlElement{n: d.doc}
}

// ElementByID ищет элемент по id обходом в глубину.
func (d *HTML) ElementByID(id string) (Element, bool) {
	if id == "" {
		return nil, false
	}
	n := findFirst(d.doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
	if n == nil {
		return nil, false
	}
	return &htmlElement{n: n}, true
}

// Render сериализует документ целиком.
func (d *HTML) Render(w io.Writer) error {
	if err := html.Render(w, d.doc); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

// String возвращает сериализованный документ.
// Ошибки записи в bytes.Buffer невозможны, поэтому игнорируются.
func (d *HTML) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// BodyHTML возвращает содержимое <body> без самого тега (аналог innerHTML).
func (d *HTML) BodyHTML() string {
	root := d.Root().(*htmlElement).n
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

type htmlElement struct {
	n *html.Node
}

func (e *htmlElement) ID() string {
	return attr(e.n, "id")
}

func (e *htmlElement) Clone() Element {
	c := cloneNode(e.n)
	removeAttr(c, "id")
	return &htmlElement{n: c}
}

func (e *htmlElement) InsertBefore(other Element) bool {
	o, ok := other.(*htmlElement)
	if !ok || e.n.Parent == nil {
		return false
	}
	if o.n.Parent != nil {
		o.n.Parent.RemoveChild(o.n)
	}
	e.n.Parent.InsertBefore(o.n, e.n)
	return true
}

func (e *htmlElement) Remove() {
	if e.n.Parent != nil {
		e.n.Parent.RemoveChild(e.n)
	}
}

func (e *htmlElement) Text() string {
	var sb strings.Builder
	walk(e.n, func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
	})
	return sb.String()
}

func (e *htmlElement) Rewrite(fn func(string) string) int {
	changed := 0
	walk(e.n, func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if out := fn(n.Data); out != n.Data {
				n.Data = out
				changed++
			}
		case html.ElementNode:
			for i := range n.Attr {
				if out := fn(n.Attr[i].Val); out != n.Attr[i].Val {
					n.Attr[i].Val = out
					changed++
				}
			}
		}
	})
	return changed
}

// walk обходит поддерево в порядке документа.
// Следующий сосед запоминается до вызова fn, поэтому fn может менять данные узла.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		walk(c, fn)
		c = next
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

// cloneNode копирует узел вместе с потомками; копия не привязана к дереву.
func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}
