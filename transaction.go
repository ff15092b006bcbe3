package holdings

import "strings"

// Column names of the row source. The spreadsheet decoder (or any other row
// source) produces records keyed by exactly these names; every value is a
// string and all coercion happens downstream.
const (
	ColDate          = "date"
	ColAction        = "actionType"
	ColSecurityID    = "securityId"
	ColSecurityName  = "securityName"
	ColQuantity      = "quantity"
	ColPrice         = "executionPrice"
	ColFee           = "transactionFee"
	ColForeignAmount = "foreignAmount"
	ColLocalAmount   = "localAmount"
)

// Columns lists every column name the row source is expected to produce, in
// export order.
var Columns = []string{
	ColDate, ColAction, ColSecurityID, ColSecurityName, ColQuantity,
	ColPrice, ColFee, ColForeignAmount, ColLocalAmount,
}

// Record is one transaction row as produced by the row source. All fields
// are raw strings; a Record is immutable once produced and every derived
// view is a fresh computed structure.
type Record struct {
	Date          string
	Action        string
	SecurityID    string
	SecurityName  string
	Quantity      string
	Price         string
	Fee           string
	ForeignAmount string
	LocalAmount   string
}

// NewRecord builds a Record from a row keyed by the canonical column names.
// Missing columns surface as empty strings.
func NewRecord(row map[string]string) Record {
	return Record{
		Date:          row[ColDate],
		Action:        row[ColAction],
		SecurityID:    row[ColSecurityID],
		SecurityName:  row[ColSecurityName],
		Quantity:      row[ColQuantity],
		Price:         row[ColPrice],
		Fee:           row[ColFee],
		ForeignAmount: row[ColForeignAmount],
		LocalAmount:   row[ColLocalAmount],
	}
}

// When returns the parsed transaction date, the unknown sentinel for dirty
// input.
func (r Record) When() Date { return ParseRowDate(r.Date) }

// Kind classifies the record's free-form action tag.
func (r Record) Kind() Action { return ParseAction(r.Action) }

// Action is the recognized classification of a row's action-type tag.
type Action int

const (
	// ActionUnknown marks rows whose tag is not in the recognized set.
	// They never contribute to any rollup.
	ActionUnknown Action = iota
	ActionBuy
	ActionSell
	// ActionBenefit is a benefit credit: shares granted rather than bought.
	// It adds to the position like a buy.
	ActionBenefit
	// ActionDividend is a dividend deposit.
	ActionDividend
	// ActionTax is a tax withdrawal.
	ActionTax
	// ActionTransfer is a cash transfer into the account.
	ActionTransfer
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	case ActionBenefit:
		return "benefit"
	case ActionDividend:
		return "dividend"
	case ActionTax:
		return "tax"
	case ActionTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// actionLabels is the closed set of recognized action-type tags, keyed by
// the normalized label. The broker export is not consistent about casing or
// wording, hence the synonyms.
var actionLabels = map[string]Action{
	"buy":              ActionBuy,
	"purchase":         ActionBuy,
	"sell":             ActionSell,
	"sale":             ActionSell,
	"benefit":          ActionBenefit,
	"benefit credit":   ActionBenefit,
	"grant":            ActionBenefit,
	"dividend":         ActionDividend,
	"dividend deposit": ActionDividend,
	"tax":              ActionTax,
	"tax withdrawal":   ActionTax,
	"withholding tax":  ActionTax,
	"deposit":          ActionTransfer,
	"transfer":         ActionTransfer,
	"cash transfer":    ActionTransfer,
}

// ParseAction matches a free-form action tag against the closed set of
// recognized labels. Anything else is ActionUnknown and is ignored by the
// aggregation passes.
func ParseAction(s string) Action {
	s = strings.ToLower(strings.TrimSpace(s))
	if a, ok := actionLabels[s]; ok {
		return a
	}
	return ActionUnknown
}

// Pseudo holds the reserved securityId values that do not represent tradable
// securities but ledger categories. The defaults match the broker export's
// numeric codes; they are overridable in configuration since the export
// format is not universal.
type Pseudo struct {
	// Cash is the pseudo-account for cash transfers in.
	Cash string `yaml:"cash"`
	// CapitalGainsTax is the pseudo-account for the capital-gains tax line.
	// Its amounts are recorded negated in the source.
	CapitalGainsTax string `yaml:"capital_gains_tax"`
	// Other is the pseudo-account for benefit and other credits.
	Other string `yaml:"other"`
}

// DefaultPseudo is the reserved identifier set of the broker export this
// system was built against.
var DefaultPseudo = Pseudo{
	Cash:            "66666",
	CapitalGainsTax: "77777",
	Other:           "99999",
}

// orDefault fills unset identifiers from DefaultPseudo.
func (p Pseudo) orDefault() Pseudo {
	if p.Cash == "" {
		p.Cash = DefaultPseudo.Cash
	}
	if p.CapitalGainsTax == "" {
		p.CapitalGainsTax = DefaultPseudo.CapitalGainsTax
	}
	if p.Other == "" {
		p.Other = DefaultPseudo.Other
	}
	return p
}

// IsPseudo reports whether id is one of the reserved identifiers.
func (p Pseudo) IsPseudo(id string) bool {
	return id == p.Cash || id == p.CapitalGainsTax || id == p.Other
}
