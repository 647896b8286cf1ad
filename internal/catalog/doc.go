// Package catalog models the version catalogs both editions publish and
// resolves which version a run processes.
//
// A Catalog keeps the order entries appeared in the source document. Resolve
// returns the requested entry or, without one, the entry with the greatest
// release key; on equal keys the entry seen last wins. SelectVariant narrows a
// descriptor to one architecture build that meets the archival threshold.
package catalog
