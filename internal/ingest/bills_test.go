package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paper-trail/papertrail/internal/fetcher"
)

const enactedBillXML = `<?xml version="1.0"?>
<billStatus>
  <bill>
    <type>HR</type>
    <number>1234</number>
    <title>An Act to do something</title>
    <introducedDate>2023-02-01</introducedDate>
    <latestAction><text>Became Public Law No: 118-42.</text></latestAction>
    <laws><item><number>118-42</number></item></laws>
    <policyArea><name>Health</name></policyArea>
    <subjects>
      <legislativeSubjects>
        <item><name>Medicare</name></item>
        <item><name>Hospitals</name></item>
      </legislativeSubjects>
    </subjects>
  </bill>
</billStatus>`

const pendingBillXML = `<?xml version="1.0"?>
<billStatus>
  <bill>
    <type>S</type>
    <number>99</number>
    <title>A bill that stalled</title>
    <latestAction><text>Read twice and referred to committee.</text></latestAction>
  </bill>
</billStatus>`

func TestBillStatusDoc_Enacted(t *testing.T) {
	doc, err := fetcher.DecodeXML[billStatusDoc](strings.NewReader(enactedBillXML))
	require.NoError(t, err)
	assert.True(t, doc.enacted())
	assert.Equal(t, "HR", doc.Bill.Type)
	assert.Equal(t, "1234", doc.Bill.Number)
}

func TestBillStatusDoc_EnactedByActionTextOnly(t *testing.T) {
	xml := strings.Replace(enactedBillXML, "<laws><item><number>118-42</number></item></laws>", "", 1)
	doc, err := fetcher.DecodeXML[billStatusDoc](strings.NewReader(xml))
	require.NoError(t, err)
	assert.True(t, doc.enacted())
}

func TestBillStatusDoc_NotEnacted(t *testing.T) {
	doc, err := fetcher.DecodeXML[billStatusDoc](strings.NewReader(pendingBillXML))
	require.NoError(t, err)
	assert.False(t, doc.enacted())
}

func TestIsBillStatusXML(t *testing.T) {
	assert.True(t, isBillStatusXML("BILLSTATUS-118hr1234.xml"))
	assert.True(t, isBillStatusXML("BILLSTATUS-118s99.XML"))

	assert.False(t, isBillStatusXML("README.txt"))
	assert.False(t, isBillStatusXML("manifest.json"))
	assert.False(t, isBillStatusXML("BILLSTATUS-118hr1234"))
}

func TestBillStatusDoc_Subjects(t *testing.T) {
	doc, err := fetcher.DecodeXML[billStatusDoc](strings.NewReader(enactedBillXML))
	require.NoError(t, err)
	assert.Equal(t, []string{"Health", "Medicare", "Hospitals"}, doc.subjects())

	doc, err = fetcher.DecodeXML[billStatusDoc](strings.NewReader(pendingBillXML))
	require.NoError(t, err)
	assert.Empty(t, doc.subjects())
}
