package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHits(t *testing.T) {
	body := `{
	  "hits": {
	    "total": {"value": 2, "relation": "eq"},
	    "hits": [
	      {"_id": "a", "_source": {"id": "7d3f1c1e-8a3c-4a43-9d0a-0a6f5b0c1d11", "name": "Organic Apples", "price": 2.99, "category": "Fruits", "stock": 100}},
	      {"_id": "b", "_source": {"id": "0b0e8a6e-2f6d-4b0a-8f3a-5b8d3c1e2a22", "name": "Apple Juice", "price": 3.5, "category": "Drinks", "stock": 4}}
	    ]
	  }
	}`

	total, prods, err := decodeHits(strings.NewReader(body))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, prods, 2)
	assert.Equal(t, "Organic Apples", prods[0].Name)
	assert.Equal(t, 2.99, prods[0].Price)
	assert.Equal(t, "7d3f1c1e-8a3c-4a43-9d0a-0a6f5b0c1d11", prods[0].ID.String())
}

func TestNormalize(t *testing.T) {
	q, err := Normalize("  apples ")
	require.NoError(t, err)
	assert.Equal(t, "apples", q)

	_, err = Normalize("   ")
	require.ErrorIs(t, err, ErrEmptyQuery)
}
