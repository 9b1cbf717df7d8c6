package catalog

import (
	"encoding/json"
	"sort"
)

// Metadata is the off-chain record a token uri points at.
// The well-known fields are decoded leniently, every key stays available through Raw.
type Metadata struct {
	Name        string
	Description string
	Image       string
	Attributes  []Attribute
	raw         map[string]json.RawMessage
}

// ParseMetadata decodes a metadata document, which must be a json object
func ParseMetadata(data []byte) (*Metadata, error) {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, ErrInvalidMetadata
	}
	md := &Metadata{raw: raw}
	// wrong types in the wild are common, keep the zero value then
	_ = json.Unmarshal(raw["name"], &md.Name)
	_ = json.Unmarshal(raw["description"], &md.Description)
	_ = json.Unmarshal(raw["image"], &md.Image)
	_ = json.Unmarshal(raw["attributes"], &md.Attributes)
	return md, nil
}

// Keys returns the metadata keys in sorted order
func (m *Metadata) Keys() []string {
	keys := make([]string, 0, len(m.raw))
	for k := range m.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Metadata) Raw(key string) json.RawMessage {
	return m.raw[key]
}

// Bytes re-encodes the document, used as the cache representation
func (m *Metadata) Bytes() ([]byte, error) {
	return json.Marshal(m.raw)
}
