package pipeline

import "sort"

// BuildIndex flattens per-page answer lists into a single name-keyed
// lookup. Pages are merged in ascending page order; when the same field
// name appears on more than one page, the later-processed page's value
// overwrites the earlier one (last-write-wins, not first-write-wins).
func BuildIndex(pages map[int][]Answer) AnswerIndex {
	index := AnswerIndex{}

	pageNums := make([]int, 0, len(pages))
	for p := range pages {
		pageNums = append(pageNums, p)
	}
	sort.Ints(pageNums)

	for _, p := range pageNums {
		for _, a := range pages[p] {
			index[a.Name] = a.Answer
		}
	}
	return index
}
