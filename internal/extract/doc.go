// Package extract pulls locale files out of package archives.
//
// An extraction pass partitions the entries of a Source into one bucket per
// Rule (first matching rule wins), visits every bucket in rule order and its
// entries in lexicographic order, and for each admitted entry writes the
// sanitized text form plus an indented JSON companion before recording the
// SHA-1 of the raw bytes in the run's HashMap. Entries matched by a rule with
// Inner rules are themselves opened as zip containers and traversed with the
// outer entry's transformed path as a prefix.
//
// A source that cannot be read aborts the whole pass: the caller receives an
// empty Result together with an error marked services.ErrArchiveCorrupt.
package extract
