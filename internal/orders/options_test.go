package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrintOptions(t *testing.T) {
	opts := ParsePrintOptions(`{"color":"BW","paper":"A4","copies":2,"stapled":true}`)

	assert.True(t, opts.IsParsed())
	assert.Equal(t, "BW", opts.Get("color"))
	assert.Equal(t, "A4", opts.Get("paper"))
	assert.Equal(t, "2", opts.Get("copies"))
	assert.Equal(t, "true", opts.Get("stapled"))
	assert.Equal(t, "", opts.Get("missing"))
}

func TestParsePrintOptionsEmpty(t *testing.T) {
	opts := ParsePrintOptions("   ")
	assert.False(t, opts.IsParsed())
	assert.Equal(t, "", opts.Summary())
}

func TestParsePrintOptionsMalformed(t *testing.T) {
	opts := ParsePrintOptions("color=BW;paper=A4")

	assert.False(t, opts.IsParsed())
	assert.Equal(t, "", opts.Get("color"))
	// malformed payloads still render verbatim
	assert.Equal(t, "color=BW;paper=A4", opts.Summary())
}

func TestPrintOptionsSummarySorted(t *testing.T) {
	opts := ParsePrintOptions(`{"paper":"A4","binding":"spiral","color":"bw"}`)
	assert.Equal(t, "binding: spiral, color: bw, paper: A4", opts.Summary())
}

func TestPrintOptionsSummarySkipsEmptyValues(t *testing.T) {
	opts := ParsePrintOptions(`{"color":"bw","note":null}`)
	assert.Equal(t, "color: bw", opts.Summary())
}
