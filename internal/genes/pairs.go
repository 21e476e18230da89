// Package genes provides pure in-memory helpers over gene lists.
package genes

// Pair is an ordered or unordered gene pair.
type Pair struct {
	Gene1 string
	Gene2 string
}

// Pairs generates gene pairs from a module (a list of gene symbols).
// By default it returns unordered unique combinations, excluding
// self-pairs. With ordered set, both (A,B) and (B,A) are produced.
// Repeated input genes produce repeated pairs only when keepDuplicates is
// set; otherwise duplicate rows are dropped, keeping first occurrence order.
func Pairs(module []string, ordered, keepDuplicates bool) []Pair {
	var pairs []Pair
	if ordered {
		for _, a := range module {
			for _, b := range module {
				if a != b {
					pairs = append(pairs, Pair{Gene1: a, Gene2: b})
				}
			}
		}
	} else {
		for i := 0; i < len(module); i++ {
			for j := i + 1; j < len(module); j++ {
				pairs = append(pairs, Pair{Gene1: module[i], Gene2: module[j]})
			}
		}
	}

	if keepDuplicates {
		return pairs
	}

	seen := make(map[Pair]struct{}, len(pairs))
	unique := pairs[:0]
	for _, p := range pairs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}
