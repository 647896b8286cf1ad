package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type bedrockEntry struct {
	ID         string             `json:"ID"`
	Type       string             `json:"Type"`
	BuildType  string             `json:"BuildType"`
	Date       string             `json:"Date"`
	Variations []bedrockVariation `json:"Variations"`
}

type bedrockVariation struct {
	Arch           string   `json:"Arch"`
	ArchivalStatus int      `json:"ArchivalStatus"`
	MetaData       []string `json:"MetaData"`
}

// ParseBedrock decodes the Bedrock version catalog. When key is non-empty the
// versions live in the object under that top-level key; a missing key yields
// an empty catalog. Entry order follows the document.
func ParseBedrock(data []byte, key string) (*Catalog, error) {
	body := data
	if key = strings.TrimSpace(key); key != "" {
		var top map[string]json.RawMessage
		if err := json.Unmarshal(data, &top); err != nil {
			return nil, fmt.Errorf("decode bedrock catalog: %w", err)
		}
		inner, ok := top[key]
		if !ok {
			return New(), nil
		}
		body = inner
	}

	c := New()
	err := decodeOrderedObject(body, func(id string, raw json.RawMessage) error {
		var entry bedrockEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("decode version %s: %w", id, err)
		}
		desc := VersionDescriptor{
			ID:         id,
			PackageID:  entry.ID,
			Channel:    entry.Type,
			Build:      BuildVariant(strings.ToUpper(strings.TrimSpace(entry.BuildType))),
			ReleaseKey: entry.Date,
		}
		for _, variation := range entry.Variations {
			desc.Variants = append(desc.Variants, Variant{
				Arch:           variation.Arch,
				ArchivalStatus: variation.ArchivalStatus,
				Downloads:      variation.MetaData,
			})
		}
		c.Add(desc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode bedrock catalog: %w", err)
	}
	return c, nil
}

// decodeOrderedObject walks a JSON object and calls fn for every member in
// document order.
func decodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
