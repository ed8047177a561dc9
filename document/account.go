package document

// Class is the financial classification of an account.
type Class int

const (
	ClassUnknown Class = iota
	ClassFixedAsset
	ClassCurrentAsset
	ClassEquity
	ClassNonCurrentLiability
	ClassCurrentLiability
	ClassRevenue
	ClassExpense
)

// String returns the display name of the class.
func (c Class) String() string {
	switch c {
	case ClassFixedAsset:
		return "FixedAssets"
	case ClassCurrentAsset:
		return "CurrentAssets"
	case ClassEquity:
		return "Equity"
	case ClassNonCurrentLiability:
		return "NonCurrentLiabilities"
	case ClassCurrentLiability:
		return "CurrentLiabilities"
	case ClassRevenue:
		return "Revenue"
	case ClassExpense:
		return "Expenses"
	default:
		return "Unknown"
	}
}

// IsAsset reports whether the class sits on the asset side of the balance
// sheet.
func (c Class) IsAsset() bool {
	return c == ClassFixedAsset || c == ClassCurrentAsset
}

// IsLiability reports whether the class is debt (equity excluded).
func (c Class) IsLiability() bool {
	return c == ClassNonCurrentLiability || c == ClassCurrentLiability
}

// IsBalanceSheet reports whether the class belongs to the balance sheet
// rather than the income statement.
func (c Class) IsBalanceSheet() bool {
	return c != ClassRevenue && c != ClassExpense && c != ClassUnknown
}

// ClassifyCode derives an account's class from its code under the BAS chart
// of accounts numbering:
//
//	1000-1399  fixed assets
//	1400-1999  current assets (inventory, receivables, cash)
//	2000-2099  equity
//	2100-2399  non-current liabilities (untaxed reserves, provisions, loans)
//	2400-2999  current liabilities
//	3000-3999  revenue
//	4000-8999  expenses and financial items
//
// Codes outside these ranges classify as ClassUnknown.
func ClassifyCode(code string) Class {
	if len(code) < 4 || code[0] < '1' || code[0] > '9' {
		return ClassUnknown
	}
	for i := 1; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ClassUnknown
		}
	}

	switch code[0] {
	case '1':
		if code[1] < '4' {
			return ClassFixedAsset
		}
		return ClassCurrentAsset
	case '2':
		switch {
		case code[1] == '0':
			return ClassEquity
		case code[1] < '4':
			return ClassNonCurrentLiability
		default:
			return ClassCurrentLiability
		}
	case '3':
		return ClassRevenue
	default:
		return ClassExpense
	}
}

// classFromTypeLetter maps an explicit #KTYP letter to a class. The letter
// only carries the statement side (T tillgång, S skuld, K kostnad,
// I intäkt); the current/non-current split still comes from the code range,
// which #KTYP cannot express.
func classFromTypeLetter(letter, code string) (Class, bool) {
	ranged := ClassifyCode(code)

	switch letter {
	case "T":
		if ranged.IsAsset() {
			return ranged, true
		}
		return ClassCurrentAsset, true
	case "S":
		if ranged == ClassEquity || ranged.IsLiability() {
			return ranged, true
		}
		return ClassCurrentLiability, true
	case "I":
		return ClassRevenue, true
	case "K":
		return ClassExpense, true
	default:
		return ClassUnknown, false
	}
}

// Account is one declared entry in the chart of accounts.
type Account struct {
	Code  string
	Name  string
	Class Class
	SRU   string // Tax-form field reference (#SRU), when declared
}
