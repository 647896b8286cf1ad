package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"mclocale/internal/services"
)

var (
	// ErrNotFound reports an empty catalog or an absent version.
	ErrNotFound = errors.New("version not found in catalog")
	// ErrNoEligibleVariant reports a version without a usable build for the
	// requested architecture.
	ErrNoEligibleVariant = errors.New("no eligible variant")
	// ErrUnsafeID reports a version id that cannot be used as a file name.
	ErrUnsafeID = errors.New("version id is not a plain file name")
)

// BuildVariant distinguishes package container formats.
type BuildVariant string

const (
	// BuildUWP is a plain zip container (.appx).
	BuildUWP BuildVariant = "UWP"
	// BuildGDK is an encrypted container (.msixvc) that needs an external
	// unpack step.
	BuildGDK BuildVariant = "GDK"
)

// Variant is one architecture build of a version.
type Variant struct {
	Arch           string
	ArchivalStatus int
	// Downloads holds the direct download references published for the build.
	Downloads []string
}

// VersionDescriptor identifies one fetchable package.
type VersionDescriptor struct {
	// ID is the catalog key, the human-facing version string.
	ID string
	// PackageID is the publisher's internal build identifier, when distinct.
	PackageID string
	// Channel is the release channel (Release, Beta, Preview, snapshot...).
	Channel string
	Build   BuildVariant
	// ReleaseKey orders versions; catalogs publish sortable date strings.
	ReleaseKey string
	Variants   []Variant
	// Reference locates the version's own metadata document, if any.
	Reference string
	// SHA1 is the checksum of the Reference document, if published.
	SHA1 string
}

// Catalog is an insertion-ordered set of version descriptors.
type Catalog struct {
	order   []string
	entries map[string]VersionDescriptor
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[string]VersionDescriptor)}
}

// Add inserts or replaces desc. Replacing keeps the original position.
func (c *Catalog) Add(desc VersionDescriptor) {
	if c.entries == nil {
		c.entries = make(map[string]VersionDescriptor)
	}
	if _, ok := c.entries[desc.ID]; !ok {
		c.order = append(c.order, desc.ID)
	}
	c.entries[desc.ID] = desc
}

// Get returns the descriptor stored under id.
func (c *Catalog) Get(id string) (VersionDescriptor, bool) {
	if c == nil {
		return VersionDescriptor{}, false
	}
	desc, ok := c.entries[id]
	return desc, ok
}

// Len returns the number of versions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// IDs returns the version ids in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.order)
}

// All returns the descriptors in catalog order.
func (c *Catalog) All() []VersionDescriptor {
	out := make([]VersionDescriptor, 0, c.Len())
	for _, id := range c.IDs() {
		out = append(out, c.entries[id])
	}
	return out
}

// Eligible returns, in catalog order, the versions that have a variant for
// arch meeting minStatus.
func (c *Catalog) Eligible(arch string, minStatus int) []VersionDescriptor {
	var out []VersionDescriptor
	for _, desc := range c.All() {
		if _, err := SelectVariant(desc, arch, minStatus); err == nil {
			out = append(out, desc)
		}
	}
	return out
}

// Resolve picks the version a run processes. A non-empty requestedID must be
// present and is returned verbatim. Otherwise every entry is scanned and the
// one with the greatest ReleaseKey wins; an entry whose key equals the current
// maximum replaces it, so the last of several tied entries is chosen.
func Resolve(requestedID string, c *Catalog) (VersionDescriptor, error) {
	requestedID = strings.TrimSpace(requestedID)
	if c.Len() == 0 {
		return VersionDescriptor{}, services.Wrap(services.ErrResolution, "resolve", "", "catalog is empty", ErrNotFound)
	}
	if requestedID != "" {
		desc, ok := c.Get(requestedID)
		if !ok {
			return VersionDescriptor{}, services.Wrap(services.ErrResolution, "resolve", requestedID, "", ErrNotFound)
		}
		return checkID(desc)
	}

	var (
		best  VersionDescriptor
		found bool
	)
	for _, id := range c.order {
		desc := c.entries[id]
		if !found || desc.ReleaseKey >= best.ReleaseKey {
			best = desc
			found = true
		}
	}
	return checkID(best)
}

// checkID rejects ids that would escape the package cache once joined into a
// file name. Catalog ids come from remote documents.
func checkID(desc VersionDescriptor) (VersionDescriptor, error) {
	if !filepath.IsLocal(desc.ID) || strings.ContainsAny(desc.ID, `/\`) {
		return VersionDescriptor{}, services.Wrap(services.ErrResolution, "resolve", fmt.Sprintf("%q", desc.ID), "", ErrUnsafeID)
	}
	return desc, nil
}

// SelectVariant returns the first variant built for arch. A version whose
// matching variant falls below minStatus is treated as absent.
func SelectVariant(desc VersionDescriptor, arch string, minStatus int) (Variant, error) {
	for _, variant := range desc.Variants {
		if !strings.EqualFold(variant.Arch, arch) {
			continue
		}
		if variant.ArchivalStatus < minStatus {
			return Variant{}, services.Wrap(services.ErrResolution, "resolve", desc.ID,
				fmt.Sprintf("%s archival status %d below %d", arch, variant.ArchivalStatus, minStatus), ErrNoEligibleVariant)
		}
		return variant, nil
	}
	return Variant{}, services.Wrap(services.ErrResolution, "resolve", desc.ID,
		fmt.Sprintf("no %s variant", arch), ErrNoEligibleVariant)
}

// FirstDownload returns the variant's first download reference, or "".
func (v Variant) FirstDownload() string {
	if len(v.Downloads) == 0 {
		return ""
	}
	return v.Downloads[0]
}
