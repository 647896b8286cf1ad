package bedrock

import (
	"path"
	"strings"

	"mclocale/internal/extract"
	"mclocale/internal/language"
)

var (
	packPrefixes   = []string{"data/resource_packs/", "data/resourcepacks/"}
	legacyPrefixes = []string{"data/lang/", "data/loc/"}
	// dataDirNames are the spellings of the data folder seen in unpacked
	// GDK trees, in lookup order.
	dataDirNames = []string{"data", "Data", "DATA"}
)

// PackageRules returns the extraction rules for a UWP package. Rules are
// evaluated in order: resource pack texts, then legacy language folders,
// then nested resource pack archives.
func PackageRules(filter language.Filter) []extract.Rule {
	return []extract.Rule{
		{
			Name: "texts",
			Match: extract.All(
				extract.HasPrefix(packPrefixes...),
				extract.Contains("/texts/"),
				extract.HasSuffix(".lang"),
			),
			Transform: func(entry string) string {
				rel := extract.TrimPrefixes(entry, packPrefixes...)
				rel = strings.ReplaceAll(rel, "/client/", "/")
				return strings.ReplaceAll(rel, "/texts/", "/")
			},
			Filter: filter,
		},
		{
			Name: "legacy",
			Match: extract.All(
				extract.HasPrefix(legacyPrefixes...),
				extract.Not(extract.Contains("/pc-base/")),
				extract.HasSuffix(".lang"),
			),
			Transform: func(entry string) string {
				return path.Join("old", extract.TrimPrefixes(entry, legacyPrefixes...))
			},
			Filter: filter,
		},
		{
			Name: "nested-pack",
			Match: extract.All(
				extract.HasPrefix("data/resource_packs/"),
				extract.HasSuffix(".zip"),
			),
			Transform: func(entry string) string {
				return strings.TrimSuffix(strings.TrimPrefix(entry, "data/resource_packs/"), ".zip")
			},
			Inner: []extract.Rule{
				{
					Name:  "nested-texts",
					Match: extract.HasSuffix(".lang"),
					Transform: func(entry string) string {
						return strings.TrimPrefix(entry, "texts/")
					},
					Filter: filter,
				},
			},
		},
	}
}

// UnpackedRules returns the rules applied to an unpacked GDK resource_packs
// directory, where entries look like "<pack>/texts/<locale>.lang".
func UnpackedRules(filter language.Filter) []extract.Rule {
	return []extract.Rule{
		{
			Name:  "unpacked-texts",
			Match: isPackText,
			Transform: func(entry string) string {
				parts := strings.Split(entry, "/")
				return parts[0] + "/" + parts[2]
			},
			Filter: filter,
		},
	}
}

func isPackText(entry string) bool {
	parts := strings.Split(entry, "/")
	return len(parts) == 3 && parts[0] != "" && parts[1] == "texts" && strings.HasSuffix(parts[2], ".lang")
}
