// Package quote rebuilds the nested quote structure of a forum post body.
//
// Archived posts mark quoted text with a repeated ": " prefix per level, and
// announce who is being quoted with a reference sentence of the form
// "【 在 <author> 的大作中提到: 】". Reconstruct turns such a body into a tree
// of Leaf and Branch nodes, and Document.String renders that tree in the
// canonical [quote="author"] ... [/quote] form.
package quote

import "strings"

// Node is either a Leaf or a *Branch.
type Node interface {
	render(b *strings.Builder)
}

// Leaf is one line of narrative text.
type Leaf struct {
	Text string
}

func (l Leaf) render(b *strings.Builder) {
	b.WriteString(l.Text)
}

// Branch is one level of "as quoted from Author" nesting.
type Branch struct {
	Author   string
	Children []Node
}

func (br *Branch) render(b *strings.Builder) {
	b.WriteString("\n[quote=\"")
	b.WriteString(br.Author)
	b.WriteString("\"]\n")
	for i, c := range br.Children {
		if i > 0 {
			b.WriteByte('\n')
		}
		c.render(b)
	}
	b.WriteString("\n[/quote]\n")
}

// Excerpt returns the branch's own lines, without nested quotes, trimmed.
func (br *Branch) Excerpt() string {
	var lines []string
	for _, c := range br.Children {
		if l, ok := c.(Leaf); ok {
			lines = append(lines, l.Text)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Depth returns the nesting depth of the branch, counting itself.
func (br *Branch) Depth() int {
	deepest := 0
	for _, c := range br.Children {
		if child, ok := c.(*Branch); ok {
			if d := child.Depth(); d > deepest {
				deepest = d
			}
		}
	}
	return deepest + 1
}

// Document is a reconstructed post body. Top-level Leaf nodes are unquoted
// lines; top-level Branch nodes are quote blocks flushed in source order.
type Document struct {
	Nodes []Node
}

// String renders the canonical text. Each top-level node is followed by a
// newline, so a Branch is separated from what follows by a blank line.
func (d Document) String() string {
	var b strings.Builder
	for _, n := range d.Nodes {
		n.render(&b)
		b.WriteByte('\n')
	}
	return b.String()
}

// Narrative returns the unquoted lines of the document, trimmed.
func (d Document) Narrative() string {
	var lines []string
	for _, n := range d.Nodes {
		if l, ok := n.(Leaf); ok {
			lines = append(lines, l.Text)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// LeadingQuote returns the quote block the document opens with, ignoring
// blank lines before it. It returns nil when the first meaningful node is
// plain text or the document is empty.
func (d Document) LeadingQuote() *Branch {
	for _, n := range d.Nodes {
		switch v := n.(type) {
		case *Branch:
			return v
		case Leaf:
			if strings.TrimSpace(v.Text) != "" {
				return nil
			}
		}
	}
	return nil
}

// Depth returns the deepest quote nesting in the document.
func (d Document) Depth() int {
	deepest := 0
	for _, n := range d.Nodes {
		if br, ok := n.(*Branch); ok {
			if dd := br.Depth(); dd > deepest {
				deepest = dd
			}
		}
	}
	return deepest
}

// Leaves returns the number of Leaf nodes in the whole tree.
func (d Document) Leaves() int {
	return countLeaves(d.Nodes)
}

func countLeaves(nodes []Node) int {
	n := 0
	for _, c := range nodes {
		switch v := c.(type) {
		case Leaf:
			n++
		case *Branch:
			n += countLeaves(v.Children)
		}
	}
	return n
}

// Quoted renders the document back into the archive's indentation form:
// a reference sentence opens every branch and each quoted line carries one
// ": " prefix per level. Every line is newline-terminated.
func (d Document) Quoted() string {
	var b strings.Builder
	for _, n := range d.Nodes {
		writeQuoted(&b, n, 0)
	}
	return b.String()
}

func writeQuoted(b *strings.Builder, n Node, depth int) {
	switch v := n.(type) {
	case Leaf:
		b.WriteString(strings.Repeat(IndentPrefix, depth))
		b.WriteString(v.Text)
		b.WriteByte('\n')
	case *Branch:
		b.WriteString(strings.Repeat(IndentPrefix, depth))
		b.WriteString(ReferenceSentence(v.Author))
		b.WriteByte('\n')
		for _, c := range v.Children {
			writeQuoted(b, c, depth+1)
		}
	}
}
