// Package langfile converts between the line-oriented key=value locale format
// and its indented JSON representation.
//
// Parsing keeps the order keys first appear in, so the JSON companion written
// next to an extracted .lang file mirrors the source layout. Merged output is
// encoded with sorted keys instead.
package langfile
