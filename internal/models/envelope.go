package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingData indicates a response that does not follow the JSON:API
// envelope, i.e. it has no top-level "data" member.
var ErrMissingData = errors.New("response missing data envelope")

// Document is the JSON:API envelope returned by the MBTA v3 API. The data
// member is either a single resource object or an array of them.
type Document struct {
	Data json.RawMessage `json:"data"`
}

// Resource is a single JSON:API resource object: an ID, a type, a flat
// attribute map and a map of named relationship links.
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    json.RawMessage         `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships"`
}

// Relationship is a named link to one or many other resources. Data is
// null, a {id,type} object, or an array of such objects.
type Relationship struct {
	Data json.RawMessage `json:"data"`
}

type resourceIdentifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// RelatedID returns the ID of the to-one relationship with the given name,
// or "" when the relationship is absent or null.
func (r Resource) RelatedID(name string) string {
	rel, ok := r.Relationships[name]
	if !ok || len(rel.Data) == 0 || bytes.Equal(rel.Data, []byte("null")) {
		return ""
	}
	var ident resourceIdentifier
	if err := json.Unmarshal(rel.Data, &ident); err != nil {
		return ""
	}
	return ident.ID
}

// RelatedIDs returns the IDs of the to-many relationship with the given
// name, or nil when the relationship is absent or null.
func (r Resource) RelatedIDs(name string) []string {
	rel, ok := r.Relationships[name]
	if !ok || len(rel.Data) == 0 || bytes.Equal(rel.Data, []byte("null")) {
		return nil
	}
	var idents []resourceIdentifier
	if err := json.Unmarshal(rel.Data, &idents); err != nil {
		return nil
	}
	ids := make([]string, 0, len(idents))
	for _, ident := range idents {
		ids = append(ids, ident.ID)
	}
	return ids
}

// ParseDocument decodes a raw response body into the JSON:API envelope.
// A body without a "data" member is a malformed response.
func ParseDocument(body []byte) (Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return Document{}, fmt.Errorf("decoding response envelope: %w", err)
	}
	data, ok := probe["data"]
	if !ok {
		return Document{}, ErrMissingData
	}
	return Document{Data: data}, nil
}

// One decodes the envelope's data member as a single resource object.
func (d Document) One() (Resource, error) {
	var res Resource
	if err := json.Unmarshal(d.Data, &res); err != nil {
		return Resource{}, fmt.Errorf("decoding resource object: %w", err)
	}
	return res, nil
}

// Many decodes the envelope's data member as an array of resource objects.
func (d Document) Many() ([]Resource, error) {
	var resources []Resource
	if err := json.Unmarshal(d.Data, &resources); err != nil {
		return nil, fmt.Errorf("decoding resource array: %w", err)
	}
	return resources, nil
}
