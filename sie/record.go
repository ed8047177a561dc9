package sie

// Kind identifies the record type scanned from the input.
type Kind uint8

const (
	// Unknown is any tag not in the known grammar. Unknown records are
	// surfaced to the caller and skipped by the document builder.
	Unknown Kind = iota

	// File-level metadata
	Flag        // #FLAGGA
	Program     // #PROGRAM
	Format      // #FORMAT
	Generated   // #GEN
	SIEType     // #SIETYP
	OrgNumber   // #ORGNR
	CompanyName // #FNAMN
	Address     // #ADRESS
	Currency    // #VALUTA
	ChartType   // #KPTYP

	// Chart of accounts and fiscal years
	FiscalYear  // #RAR
	Account     // #KONTO
	AccountType // #KTYP
	SRU         // #SRU

	// Balances
	OpeningBalance // #IB
	ClosingBalance // #UB
	ResultBalance  // #RES

	// Verifications
	Verification       // #VER
	Transaction        // #TRANS
	AddedTransaction   // #RTRANS
	RemovedTransaction // #BTRANS

	// Block markers around a verification's transaction lines
	BlockStart // {
	BlockEnd   // }
)

var kindNames = map[Kind]string{
	Unknown:            "UNKNOWN",
	Flag:               "#FLAGGA",
	Program:            "#PROGRAM",
	Format:             "#FORMAT",
	Generated:          "#GEN",
	SIEType:            "#SIETYP",
	OrgNumber:          "#ORGNR",
	CompanyName:        "#FNAMN",
	Address:            "#ADRESS",
	Currency:           "#VALUTA",
	ChartType:          "#KPTYP",
	FiscalYear:         "#RAR",
	Account:            "#KONTO",
	AccountType:        "#KTYP",
	SRU:                "#SRU",
	OpeningBalance:     "#IB",
	ClosingBalance:     "#UB",
	ResultBalance:      "#RES",
	Verification:       "#VER",
	Transaction:        "#TRANS",
	AddedTransaction:   "#RTRANS",
	RemovedTransaction: "#BTRANS",
	BlockStart:         "{",
	BlockEnd:           "}",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// tagSpec describes the grammar of one known tag: the record kind and the
// minimum number of fields required for the record to be well formed.
type tagSpec struct {
	kind      Kind
	minFields int
}

// tagTable is the closed set of known record tags. Record kinds are
// dispatched through this table; anything else becomes an Unknown record so
// newer SIE revisions degrade gracefully instead of failing the parse.
var tagTable = map[string]tagSpec{
	"#FLAGGA":  {Flag, 1},
	"#PROGRAM": {Program, 1},
	"#FORMAT":  {Format, 1},
	"#GEN":     {Generated, 1},
	"#SIETYP":  {SIEType, 1},
	"#ORGNR":   {OrgNumber, 1},
	"#FNAMN":   {CompanyName, 1},
	"#ADRESS":  {Address, 1},
	"#VALUTA":  {Currency, 1},
	"#KPTYP":   {ChartType, 1},
	"#RAR":     {FiscalYear, 3},
	"#KONTO":   {Account, 2},
	"#KTYP":    {AccountType, 2},
	"#SRU":     {SRU, 2},
	"#IB":      {OpeningBalance, 3},
	"#UB":      {ClosingBalance, 3},
	"#RES":     {ResultBalance, 3},
	"#VER":     {Verification, 3},
	"#TRANS":   {Transaction, 3},
	"#RTRANS":  {AddedTransaction, 3},
	"#BTRANS":  {RemovedTransaction, 3},
}

// Record is one tagged line of an SIE file, tokenized into positional
// fields. Records are immutable once returned by the reader; the document
// builder consumes them in file order.
type Record struct {
	Kind   Kind
	Tag    string   // Raw tag as written, e.g. "#KONTO"
	Fields []string // Decoded field values in positional order
	Line   int      // Line number in the decoded input (1-indexed)
}

// Field returns the i-th field, or the empty string when the record is
// shorter than that. SIE writers routinely omit trailing optional fields.
func (r *Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}
