package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type billDoc struct {
	Bill struct {
		Number string `xml:"number"`
		Title  string `xml:"title"`
	} `xml:"bill"`
}

func TestDecodeXML_Basic(t *testing.T) {
	input := `<?xml version="1.0"?><billStatus><bill><number>1234</number><title>A bill</title></bill></billStatus>`
	doc, err := DecodeXML[billDoc](strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "1234", doc.Bill.Number)
	assert.Equal(t, "A bill", doc.Bill.Title)
}

func TestDecodeXML_DeclaredCharset(t *testing.T) {
	input := `<?xml version="1.0" encoding="ISO-8859-1"?><billStatus><bill><number>1</number><title>caf` + "\xe9" + ` act</title></bill></billStatus>`
	doc, err := DecodeXML[billDoc](strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "café act", doc.Bill.Title)
}

func TestDecodeXML_Malformed(t *testing.T) {
	_, err := DecodeXML[billDoc](strings.NewReader("<billStatus><bill>"))
	require.Error(t, err)
}
