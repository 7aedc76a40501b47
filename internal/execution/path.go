package execution

// pathNode is one segment of a response path: a field response key or a list
// index. Each completion step creates a new node pointing at its parent, so
// concurrent branches share tails and nothing is ever mutated.
type pathNode struct {
	prev *pathNode
	key  any
}

// child returns a new node extending p with key. p may be nil (root).
func (p *pathNode) child(key any) *pathNode {
	return &pathNode{prev: p, key: key}
}

// slice flattens the path from root to p.
func (p *pathNode) slice() []any {
	if p == nil {
		return nil
	}
	n := 0
	for q := p; q != nil; q = q.prev {
		n++
	}
	out := make([]any, n)
	for q := p; q != nil; q = q.prev {
		n--
		out[n] = q.key
	}
	return out
}
