package merge

import "strings"

// Order arranges discovered names by priority. A pattern ending in * admits
// every discovered name with that prefix, in discovery order. Names matched
// by no pattern are appended in discovery order. No name appears twice.
func Order(discovered, priority []string) []string {
	ordered := make([]string, 0, len(discovered))
	seen := make(map[string]struct{}, len(discovered))
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		ordered = append(ordered, name)
	}
	present := make(map[string]struct{}, len(discovered))
	for _, name := range discovered {
		present[name] = struct{}{}
	}

	for _, pattern := range priority {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			for _, name := range discovered {
				if strings.HasPrefix(name, prefix) {
					add(name)
				}
			}
			continue
		}
		if _, ok := present[pattern]; ok {
			add(pattern)
		}
	}
	for _, name := range discovered {
		add(name)
	}
	return ordered
}
