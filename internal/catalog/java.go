package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"mclocale/internal/services"
)

// JavaManifest is the decoded Java version manifest.
type JavaManifest struct {
	// Latest maps a channel (release, snapshot) to its newest version id.
	Latest  map[string]string
	Catalog *Catalog
}

type javaManifestDoc struct {
	Latest   map[string]string `json:"latest"`
	Versions []struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		URL         string `json:"url"`
		ReleaseTime string `json:"releaseTime"`
		SHA1        string `json:"sha1"`
	} `json:"versions"`
}

// ParseJavaManifest decodes a version_manifest_v2 document. Versions keep the
// manifest order, newest first.
func ParseJavaManifest(data []byte) (*JavaManifest, error) {
	var doc javaManifestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode java manifest: %w", err)
	}
	c := New()
	for _, v := range doc.Versions {
		if strings.TrimSpace(v.ID) == "" {
			continue
		}
		c.Add(VersionDescriptor{
			ID:         v.ID,
			Channel:    v.Type,
			ReleaseKey: v.ReleaseTime,
			Reference:  v.URL,
			SHA1:       v.SHA1,
		})
	}
	return &JavaManifest{Latest: doc.Latest, Catalog: c}, nil
}

// Resolve returns the requested version, else the latest version of channel,
// else the entry with the greatest release time.
func (m *JavaManifest) Resolve(requestedID, channel string) (VersionDescriptor, error) {
	if m == nil {
		return VersionDescriptor{}, services.Wrap(services.ErrResolution, "resolve", "", "manifest unavailable", ErrNotFound)
	}
	if strings.TrimSpace(requestedID) == "" {
		if latest := strings.TrimSpace(m.Latest[channel]); latest != "" {
			requestedID = latest
		}
	}
	return Resolve(requestedID, m.Catalog)
}

// BackfillIDs returns every version from oldest up to the newest, oldest
// first. An empty oldest, or one missing from the manifest, covers the whole
// manifest.
func (m *JavaManifest) BackfillIDs(oldest string) []string {
	ids := m.Catalog.IDs()
	if idx := slices.Index(ids, strings.TrimSpace(oldest)); idx >= 0 {
		ids = ids[:idx+1]
	}
	slices.Reverse(ids)
	return ids
}
