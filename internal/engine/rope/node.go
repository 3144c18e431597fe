package rope

import (
	"strings"
	"unicode/utf8"
)

// Tree shape constants.
const (
	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MaxChunksPerLeaf is the maximum chunks in a leaf node.
	MaxChunksPerLeaf = 4
)

// node is a B+ tree node. Leaves (height 0) hold chunks, internal nodes hold
// children together with a cached summary per child.
type node struct {
	height  uint8
	summary TextSummary

	children       []*node
	childSummaries []TextSummary

	chunks []Chunk
}

func newLeaf(chunks []Chunk) *node {
	n := &node{chunks: chunks}
	for _, c := range chunks {
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

func newInternal(children []*node) *node {
	if len(children) == 0 {
		return newLeaf(nil)
	}
	n := &node{
		height:         children[0].height + 1,
		children:       children,
		childSummaries: make([]TextSummary, len(children)),
	}
	for i, child := range children {
		n.childSummaries[i] = child.summary
		n.summary = n.summary.Add(child.summary)
	}
	return n
}

func (n *node) isLeaf() bool { return n.height == 0 }

func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		for _, c := range n.chunks {
			sb.WriteString(c.data)
		}
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange appends text in the byte range [start, end) to the builder.
func (n *node) appendRange(sb *strings.Builder, start, end int) {
	if start >= end {
		return
	}

	offset := 0
	if n.isLeaf() {
		for _, c := range n.chunks {
			cEnd := offset + len(c.data)
			if cEnd > start && offset < end {
				sb.WriteString(c.data[max(start-offset, 0):min(end-offset, len(c.data))])
			}
			offset = cEnd
		}
		return
	}

	for i, child := range n.children {
		cEnd := offset + n.childSummaries[i].Bytes
		if cEnd > start && offset < end {
			child.appendRange(sb, max(start-offset, 0), min(end, cEnd)-offset)
		}
		offset = cEnd
	}
}

// split returns nodes holding [0, offset) and [offset, end).
func (n *node) split(offset int) (*node, *node) {
	if offset <= 0 {
		return newLeaf(nil), n
	}
	if offset >= n.summary.Bytes {
		return n, newLeaf(nil)
	}

	if n.isLeaf() {
		var left, right []Chunk
		pos := 0
		for _, c := range n.chunks {
			switch {
			case pos+len(c.data) <= offset:
				left = append(left, c)
			case pos >= offset:
				right = append(right, c)
			default:
				l, r := c.Split(offset - pos)
				left = append(left, l)
				right = append(right, r)
			}
			pos += len(c.data)
		}
		return newLeaf(left), newLeaf(right)
	}

	var left, right []*node
	pos := 0
	for i, child := range n.children {
		size := n.childSummaries[i].Bytes
		switch {
		case pos+size <= offset:
			left = append(left, child)
		case pos >= offset:
			right = append(right, child)
		default:
			l, r := child.split(offset - pos)
			if l.summary.Bytes > 0 {
				left = append(left, l)
			}
			if r.summary.Bytes > 0 {
				right = append(right, r)
			}
		}
		pos += size
	}
	return buildFromChildren(left), buildFromChildren(right)
}

// buildFromChildren creates a tree over children, which may differ in height.
func buildFromChildren(children []*node) *node {
	switch len(children) {
	case 0:
		return newLeaf(nil)
	case 1:
		return children[0]
	}

	result := children[0]
	for _, child := range children[1:] {
		result = concat(result, child)
	}
	return result
}

// concat joins two subtrees, raising the shorter one to the taller one's height.
func concat(left, right *node) *node {
	if left == nil || left.summary.Bytes == 0 {
		if right == nil {
			return newLeaf(nil)
		}
		return right
	}
	if right == nil || right.summary.Bytes == 0 {
		return left
	}

	for left.height < right.height {
		left = newInternal([]*node{left})
	}
	for right.height < left.height {
		right = newInternal([]*node{right})
	}

	if left.isLeaf() {
		if len(left.chunks)+len(right.chunks) <= MaxChunksPerLeaf {
			chunks := make([]Chunk, 0, len(left.chunks)+len(right.chunks))
			chunks = append(chunks, left.chunks...)
			return newLeaf(append(chunks, right.chunks...))
		}
		return newInternal([]*node{left, right})
	}

	all := make([]*node, 0, len(left.children)+len(right.children))
	all = append(all, left.children...)
	all = append(all, right.children...)
	if len(all) <= MaxChildren {
		return newInternal(all)
	}

	var parents []*node
	for i := 0; i < len(all); i += MaxChildren {
		parents = append(parents, newInternal(all[i:min(i+MaxChildren, len(all))]))
	}
	return newInternal(parents)
}

// newlineOffset returns the byte offset of the k-th newline (1-based).
func (n *node) newlineOffset(k int) (int, bool) {
	if k <= 0 || k > n.summary.Lines {
		return 0, false
	}

	base := 0
	cur := n
	for !cur.isLeaf() {
		i := 0
		for ; i < len(cur.children)-1; i++ {
			s := cur.childSummaries[i]
			if k <= s.Lines {
				break
			}
			k -= s.Lines
			base += s.Bytes
		}
		cur = cur.children[i]
	}

	for _, c := range cur.chunks {
		if k <= c.summary.Lines {
			return base + nthNewline(c.data, k), true
		}
		k -= c.summary.Lines
		base += len(c.data)
	}
	return 0, false
}

// newlinesBefore counts newlines in [0, offset).
func (n *node) newlinesBefore(offset int) int {
	count := 0
	cur := n
	for !cur.isLeaf() {
		i := 0
		for ; i < len(cur.children)-1; i++ {
			s := cur.childSummaries[i]
			if offset < s.Bytes {
				break
			}
			offset -= s.Bytes
			count += s.Lines
		}
		cur = cur.children[i]
	}

	for _, c := range cur.chunks {
		if offset < len(c.data) {
			return count + strings.Count(c.data[:offset], "\n")
		}
		offset -= len(c.data)
		count += c.summary.Lines
	}
	return count
}

// byteAt returns the byte at offset, which must be in range.
func (n *node) byteAt(offset int) byte {
	cur := n
	for !cur.isLeaf() {
		i := 0
		for ; i < len(cur.children)-1; i++ {
			if offset < cur.childSummaries[i].Bytes {
				break
			}
			offset -= cur.childSummaries[i].Bytes
		}
		cur = cur.children[i]
	}
	for _, c := range cur.chunks {
		if offset < len(c.data) {
			return c.data[offset]
		}
		offset -= len(c.data)
	}
	return 0
}

func nthNewline(s string, k int) int {
	pos := 0
	for {
		i := strings.IndexByte(s[pos:], '\n')
		if i < 0 {
			return -1
		}
		k--
		if k == 0 {
			return pos + i
		}
		pos += i + 1
	}
}

// runeSizeAt decodes the rune starting at s[i].
func runeSizeAt(s string, i int) int {
	_, size := utf8.DecodeRuneInString(s[i:])
	return size
}
