// Package merge consolidates per-pack locale files into one file per locale.
//
// Source directories are ordered by a priority list that may contain prefix
// wildcards ("vanilla_*"); directories the list does not mention follow in
// name order. Mappings are folded in that order with the first definition of
// a key winning, and the merged result is written with keys sorted.
package merge
