package java

import (
	"path"
	"strings"

	"mclocale/internal/extract"
	"mclocale/internal/language"
)

const (
	statsEntry = "lang/stats_US.lang"
	oldDir     = "old"
)

// JarRules returns the extraction rules for client.jar. Line-oriented .lang
// files land under old/ with a JSON companion; JSON language files are
// copied verbatim. The stats table is exported regardless of the filter.
func JarRules(filter language.Filter) []extract.Rule {
	return []extract.Rule{
		{
			Name:      "lang",
			Match:     extract.Equals("assets/minecraft/lang/en_US.lang", "assets/minecraft/lang/en_us.lang"),
			Transform: OutputPath,
			Filter:    filter,
		},
		{
			Name:      "json",
			Match:     extract.Equals("assets/minecraft/lang/en_us.json"),
			Transform: OutputPath,
			Filter:    filter,
			Raw:       true,
		},
		{
			Name:      "stats",
			Match:     extract.Equals(statsEntry),
			Transform: OutputPath,
		},
		{
			Name:      "legacy",
			Match:     extract.All(extract.HasPrefix("lang/"), extract.HasSuffix(".lang")),
			Transform: OutputPath,
			Filter:    filter,
		},
	}
}

// OutputPath maps a jar entry or asset key to its output path.
func OutputPath(entry string) string {
	name := path.Base(entry)
	if strings.HasSuffix(name, ".lang") {
		return path.Join(oldDir, name)
	}
	return name
}
