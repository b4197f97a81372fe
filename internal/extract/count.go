package extract

import "github.com/mvp-joe/rbx-ripper/internal/document"

// Count returns the number of nodes in n's subtree that survive filtering.
func Count(n *document.Node, s *Settings) int {
	if ShouldExclude(n, s) {
		return 0
	}
	total := 1
	for _, child := range n.Items() {
		total += Count(child, s)
	}
	return total
}

// CountAll sums Count over the top-level items.
func CountAll(items []*document.Node, s *Settings) int {
	total := 0
	for _, item := range items {
		total += Count(item, s)
	}
	return total
}

// CountByClass tallies surviving nodes per class name. The values always
// sum to CountAll over the same items.
func CountByClass(items []*document.Node, s *Settings) map[string]int {
	counts := make(map[string]int)
	var walk func(n *document.Node)
	walk = func(n *document.Node) {
		if ShouldExclude(n, s) {
			return
		}
		counts[n.ClassName()]++
		for _, child := range n.Items() {
			walk(child)
		}
	}
	for _, item := range items {
		walk(item)
	}
	return counts
}
