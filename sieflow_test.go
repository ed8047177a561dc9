package sieflow

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/sieflow/sieflow/analysis"
	"github.com/sieflow/sieflow/document"
)

const sampleFile = `#FLAGGA 0
#PROGRAM "Visma Administration" 5.1
#FORMAT PC8
#GEN 20240115
#SIETYP 4
#ORGNR 556036-0793
#FNAMN "Testbolaget AB"
#VALUTA SEK
#RAR 0 20230101 20231231
#RAR -1 20220101 20221231
#KONTO 1930 "Foretagskonto"
#KONTO 2440 "Leverantorsskulder"
#KONTO 3010 "Forsaljning"
#KONTO 4010 "Inkop varor"
#UB 0 1930 10000.00
#UB 0 2440 -4000.00
#UB -1 1930 8000.00
#VER A 1 20230315 "Kundbetalning"
{
#TRANS 1930 {} 1000.00
#TRANS 3010 {} -1000.00
}
#VER A 2 20230410 "Inkop"
{
#TRANS 4010 {} 400.00
#TRANS 1930 {} -400.00
}
`

func TestParse(t *testing.T) {
	doc, err := Parse(context.Background(), []byte(sampleFile))
	assert.NoError(t, err)
	assert.Equal(t, "Testbolaget AB", doc.CompanyName)
	assert.Equal(t, 2, len(doc.Verifications))
}

func TestAnalyze(t *testing.T) {
	result, err := Analyze(context.Background(), []byte(sampleFile))
	assert.NoError(t, err)

	assert.Equal(t, 0, result.FiscalYear.Index)
	assert.True(t, result.Ratios.Liquidity != nil)
	assert.True(t, result.Ratios.Liquidity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 12, len(result.Monthly))

	// The flow graph conserves the period's net result at the hub.
	net := result.Flow.NetFlow(analysis.ResultNode)
	assert.True(t, net.Equal(result.Document.NetResult(result.FiscalYear)))
}

func TestAnalyze_SelectsFiscalYear(t *testing.T) {
	result, err := Analyze(context.Background(), []byte(sampleFile), WithFiscalYear(-1))
	assert.NoError(t, err)

	assert.Equal(t, -1, result.FiscalYear.Index)
	assert.True(t, result.Ratios.CurrentAssets.Equal(decimal.NewFromInt(8000)))
	// No liability balances declared for the previous year.
	assert.True(t, result.Ratios.Liquidity == nil)
}

func TestAnalyze_UnknownFiscalYear(t *testing.T) {
	_, err := Analyze(context.Background(), []byte(sampleFile), WithFiscalYear(-5))

	var malformedErr *document.MalformedDocumentError
	assert.True(t, errors.As(err, &malformedErr))
}

func TestAnalyze_ForwardsFlowOptions(t *testing.T) {
	result, err := Analyze(context.Background(), []byte(sampleFile),
		WithFlowOptions(analysis.WithThreshold(decimal.NewFromInt(500))))
	assert.NoError(t, err)

	for _, e := range result.Flow.Edges {
		assert.True(t, e.Weight.GreaterThanOrEqual(decimal.NewFromInt(500)))
	}
}

func TestAnalyze_ParseFailurePropagates(t *testing.T) {
	_, err := Analyze(context.Background(), []byte("#FNAMN \"Acme AB\"\n"))
	assert.Error(t, err)
}
