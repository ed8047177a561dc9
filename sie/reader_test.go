package sie

import (
	"io"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func readAll(t *testing.T, input string) []*Record {
	t.Helper()
	r, err := NewReader([]byte(input))
	assert.NoError(t, err)
	records, errs := r.ReadAll()
	assert.Equal(t, 0, len(errs))
	return records
}

func TestReader_SkipsBlankAndNonRecordLines(t *testing.T) {
	records := readAll(t, "\n   \nthis is not a record\n#FNAMN \"Acme AB\"\n")
	assert.Equal(t, 1, len(records))
	assert.Equal(t, CompanyName, records[0].Kind)
	assert.Equal(t, "Acme AB", records[0].Field(0))
}

func TestReader_QuotedFieldsKeepEmbeddedWhitespace(t *testing.T) {
	records := readAll(t, `#KONTO 1930 "Foretagskonto, bank"`)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, Account, records[0].Kind)
	assert.Equal(t, "1930", records[0].Field(0))
	assert.Equal(t, "Foretagskonto, bank", records[0].Field(1))
}

func TestReader_EscapedQuoteInsideField(t *testing.T) {
	records := readAll(t, `#KONTO 6990 "Ovriga \"diverse\" kostnader"`)
	assert.Equal(t, `Ovriga "diverse" kostnader`, records[0].Field(1))
}

func TestReader_UnterminatedQuoteIsLineScoped(t *testing.T) {
	r, err := NewReader([]byte("#KONTO 1930 \"broken\n#KONTO 2440 \"Leverantorsskulder\"\n"))
	assert.NoError(t, err)

	_, err = r.Next()
	lineErr, ok := err.(*LineError)
	assert.True(t, ok, "expected *LineError, got %T", err)
	assert.Equal(t, 1, lineErr.Line)

	// The reader recovers on the next line.
	rec, err := r.Next()
	assert.NoError(t, err)
	assert.Equal(t, "2440", rec.Field(0))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_UnknownTagSurfaced(t *testing.T) {
	records := readAll(t, "#FRAMTIDA x y z\n")
	assert.Equal(t, 1, len(records))
	assert.Equal(t, Unknown, records[0].Kind)
	assert.Equal(t, "#FRAMTIDA", records[0].Tag)
}

func TestReader_TooFewFieldsBecomesUnknown(t *testing.T) {
	// #KONTO needs code and name.
	records := readAll(t, "#KONTO 1930\n")
	assert.Equal(t, Unknown, records[0].Kind)
}

func TestReader_BlockMarkers(t *testing.T) {
	records := readAll(t, "#VER A 1 20230315 \"Payment\"\n{\n#TRANS 1930 {} 100.00\n}\n")
	assert.Equal(t, 4, len(records))
	assert.Equal(t, Verification, records[0].Kind)
	assert.Equal(t, BlockStart, records[1].Kind)
	assert.Equal(t, Transaction, records[2].Kind)
	assert.Equal(t, BlockEnd, records[3].Kind)
}

func TestReader_InlineObjectListIsOneField(t *testing.T) {
	records := readAll(t, "#TRANS 5010 {1 \"Nord\"} 250.00\n")
	rec := records[0]
	assert.Equal(t, "5010", rec.Field(0))
	assert.Equal(t, `1 "Nord"`, rec.Field(1))
	assert.Equal(t, "250.00", rec.Field(2))
}

func TestReader_EmptyObjectList(t *testing.T) {
	records := readAll(t, "#TRANS 1930 {} 100.00\n")
	assert.Equal(t, "", records[0].Field(1))
	assert.Equal(t, "100.00", records[0].Field(2))
}

func TestReader_CodePage437SwedishCharacters(t *testing.T) {
	// "Försäljning" in code page 437: ö=0x94, ä=0x84.
	raw := append([]byte(`#KONTO 3010 "F`), 0x94, 'r', 's', 0x84, 'l', 'j', 'n', 'i', 'n', 'g', '"')
	r, err := NewReader(raw)
	assert.NoError(t, err)

	rec, err := r.Next()
	assert.NoError(t, err)
	assert.Equal(t, "Försäljning", rec.Field(1))
}

func TestReader_BinaryContentIsDecodeError(t *testing.T) {
	_, err := NewReader([]byte{'P', 'K', 0x03, 0x04, 0x00, 0x01})
	decodeErr, ok := err.(*DecodeError)
	assert.True(t, ok, "expected *DecodeError, got %T", err)
	assert.NotZero(t, decodeErr.Error())
}

func TestReader_ResetRestartsSequence(t *testing.T) {
	r, err := NewReader([]byte("#FNAMN \"Acme AB\"\n#ORGNR 556036-0793\n"))
	assert.NoError(t, err)

	first, _ := r.Next()
	_, _ = r.Next()
	_, eof := r.Next()
	assert.Equal(t, io.EOF, eof)

	r.Reset()
	again, err := r.Next()
	assert.NoError(t, err)
	assert.Equal(t, first.Kind, again.Kind)
	assert.Equal(t, first.Field(0), again.Field(0))
}

func TestReader_LineNumbersAreOneIndexed(t *testing.T) {
	records := readAll(t, "\n#FNAMN \"Acme AB\"\n\n#ORGNR 556036-0793\n")
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, 4, records[1].Line)
}

func TestRecord_FieldOutOfRange(t *testing.T) {
	rec := &Record{Fields: []string{"a"}}
	assert.Equal(t, "a", rec.Field(0))
	assert.Equal(t, "", rec.Field(1))
	assert.Equal(t, "", rec.Field(-1))
}
