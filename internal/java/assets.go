package java

import (
	"encoding/json"
	"maps"
	"path"
	"reflect"
	"slices"
	"strings"
)

// AssetIndexRef is the assetIndex member of a client manifest.
type AssetIndexRef struct {
	ID   string `json:"id"`
	SHA1 string `json:"sha1"`
	URL  string `json:"url"`
}

// AssetObject is one entry of an asset index.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// AssetIndex is a decoded asset index document.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

// LanguageAsset is a language file published in the asset store.
type LanguageAsset struct {
	Name string
	Hash string
	Size int64
}

var assetLangPrefixes = []string{"lang/", "minecraft/lang/"}

// Languages lists the language files of the index by file name. A name
// published under both prefixes resolves to the lang/ entry.
func (idx AssetIndex) Languages() []LanguageAsset {
	byName := make(map[string]LanguageAsset)
	for _, prefix := range slices.Backward(assetLangPrefixes) {
		for key, obj := range idx.Objects {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			name := path.Base(key)
			byName[name] = LanguageAsset{Name: name, Hash: obj.Hash, Size: obj.Size}
		}
	}
	out := make([]LanguageAsset, 0, len(byName))
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		out = append(out, byName[name])
	}
	return out
}

// AssetURL returns the download location of an asset hash.
func AssetURL(base, hash string) string {
	if len(hash) < 2 {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + hash[:2] + "/" + hash
}

// SameAssetIndex reports whether two assetIndex documents are equivalent.
// Member order and whitespace are ignored. An empty document matches nothing.
func SameAssetIndex(a, b json.RawMessage) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	var av, bv any
	if json.Unmarshal(a, &av) != nil || json.Unmarshal(b, &bv) != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
