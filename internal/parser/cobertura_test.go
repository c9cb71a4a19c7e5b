package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCobertura = `<?xml version="1.0" ?>
<coverage version="7.4.0" timestamp="1700000000000" lines-valid="200" lines-covered="165" line-rate="0.825" branch-rate="0" complexity="0">
	<sources><source>/repo/src</source></sources>
	<packages>
		<package name="." line-rate="0.825" branch-rate="0" complexity="0"></package>
	</packages>
</coverage>`

func TestCoberturaParser_ParseBytes(t *testing.T) {
	p := &CoberturaParser{}
	cov, err := p.ParseBytes([]byte(sampleCobertura))
	require.NoError(t, err)

	assert.InDelta(t, 0.825, cov.LineRate, 0.0001)
	assert.InDelta(t, 82.5, cov.Percent(), 0.0001)
}

func TestCoberturaParser_MissingLineRate(t *testing.T) {
	p := &CoberturaParser{}
	_, err := p.ParseBytes([]byte(`<coverage version="1"></coverage>`))
	assert.Error(t, err)
}

func TestCoberturaParser_OutOfRange(t *testing.T) {
	p := &CoberturaParser{}
	_, err := p.ParseBytes([]byte(`<coverage line-rate="1.5"></coverage>`))
	assert.Error(t, err)
}

func TestCoberturaParser_WrongRoot(t *testing.T) {
	p := &CoberturaParser{}
	_, err := p.ParseBytes([]byte(`<report line-rate="0.5"></report>`))
	assert.Error(t, err)
}

func TestCoberturaParser_Malformed(t *testing.T) {
	p := &CoberturaParser{}
	_, err := p.ParseBytes([]byte(`<coverage line-rate="0.5"`))
	assert.Error(t, err)
}
