package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentRequiresDataMember(t *testing.T) {
	_, err := ParseDocument([]byte(`{"errors":[{"status":"403"}]}`))
	assert.ErrorIs(t, err, ErrMissingData)

	_, err = ParseDocument([]byte(`not json`))
	assert.Error(t, err)

	doc, err := ParseDocument([]byte(`{"data":[]}`))
	require.NoError(t, err)
	resources, err := doc.Many()
	require.NoError(t, err)
	assert.Empty(t, resources)
}

func TestDocumentOneAndMany(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"data":{"id":"r1","type":"route"}}`))
	require.NoError(t, err)

	res, err := doc.One()
	require.NoError(t, err)
	assert.Equal(t, "r1", res.ID)

	_, err = doc.Many()
	assert.Error(t, err, "a single object is not an array")
}

func TestRelatedIDHandlesNullAndMissing(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"data":{"id":"p1","type":"prediction","relationships":{
		"trip":{"data":{"id":"t1","type":"trip"}},
		"vehicle":{"data":null}
	}}}`))
	require.NoError(t, err)
	res, err := doc.One()
	require.NoError(t, err)

	assert.Equal(t, "t1", res.RelatedID("trip"))
	assert.Equal(t, "", res.RelatedID("vehicle"))
	assert.Equal(t, "", res.RelatedID("route"))
}
