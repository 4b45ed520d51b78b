package quote

import (
	"regexp"
	"strings"
)

// IndentPrefix marks one level of quoting at the start of a line.
const IndentPrefix = ": "

var refererRe = regexp.MustCompile(`【 在 (.*) 的大作中提到: 】`)

// ReferenceSentence returns the marker line announcing a quote of author.
func ReferenceSentence(author string) string {
	return "【 在 " + author + " 的大作中提到: 】"
}

// automaton holds the open branches and, separately, the author announced
// for each depth. authors[d-1] is the author of depth d; it can be known
// before the stack has grown that deep.
type automaton struct {
	stack   []*Branch
	authors []string
	out     []Node
}

// Reconstruct rebuilds the quote tree of a post body. Malformed nesting is
// clamped to the number of announced authors and never fails.
func Reconstruct(text string) Document {
	a := &automaton{}
	for _, line := range splitLines(text) {
		a.step(line)
	}
	a.popTo(0)
	return Document{Nodes: a.out}
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// parseLine counts leading indentation prefixes and strips them.
func parseLine(line string) (int, string) {
	if len(line) < len(IndentPrefix) {
		return 0, line
	}
	depth := 0
	for strings.HasPrefix(line, IndentPrefix) {
		depth++
		line = line[len(IndentPrefix):]
	}
	return depth, line
}

func (a *automaton) step(raw string) {
	depth, line := parseLine(raw)

	m := refererRe.FindStringSubmatch(line)
	if m != nil {
		depth++
		if depth-1 < len(a.authors) {
			a.authors = a.authors[:depth-1]
		}
		a.authors = append(a.authors, m[1])
	}

	if depth < len(a.stack) {
		a.popTo(depth)
	} else {
		depth = min(depth, len(a.authors))
		for len(a.stack) < depth {
			a.stack = append(a.stack, &Branch{Author: a.authors[len(a.stack)]})
		}
	}

	if m != nil {
		return
	}

	if depth == 0 {
		a.out = append(a.out, Leaf{Text: line})
		return
	}
	top := a.stack[len(a.stack)-1]
	top.Children = append(top.Children, Leaf{Text: line})
}

// popTo closes branches until depth remain open. A closed branch becomes the
// last child of its parent, or a top-level node once the stack is empty.
func (a *automaton) popTo(depth int) {
	for len(a.stack) > depth {
		n := a.stack[len(a.stack)-1]
		a.stack = a.stack[:len(a.stack)-1]
		if len(a.stack) > 0 {
			parent := a.stack[len(a.stack)-1]
			parent.Children = append(parent.Children, n)
		} else {
			a.out = append(a.out, n)
		}
	}
}
