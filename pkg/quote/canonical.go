package quote

import "regexp"

const closeTag = "[/quote]"

var openTagRe = regexp.MustCompile(`^\[quote="(.*)"\]$`)

// ParseCanonical reads text produced by Document.String back into a tree.
// The blank line the renderer puts before and after every quote block is
// consumed; any other whitespace is kept as Leaf nodes.
func ParseCanonical(text string) Document {
	var (
		out   []Node
		stack []*Branch
	)
	children := func() *[]Node {
		if len(stack) == 0 {
			return &out
		}
		return &stack[len(stack)-1].Children
	}

	lines := splitLines(text)
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := openTagRe.FindStringSubmatch(line); m != nil {
			dst := children()
			if n := len(*dst); n > 0 {
				if l, ok := (*dst)[n-1].(Leaf); ok && l.Text == "" {
					*dst = (*dst)[:n-1]
				}
			}
			stack = append(stack, &Branch{Author: m[1]})
			continue
		}

		if line == closeTag && len(stack) > 0 {
			br := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			dst := children()
			*dst = append(*dst, br)
			if i+1 < len(lines) && lines[i+1] == "" {
				i++
			}
			continue
		}

		dst := children()
		*dst = append(*dst, Leaf{Text: line})
	}

	// unterminated blocks still reach the output
	for len(stack) > 0 {
		br := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dst := children()
		*dst = append(*dst, br)
	}
	return Document{Nodes: out}
}
