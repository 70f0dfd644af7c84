package taxcalc

import "github.com/shopspring/decimal"

// Currency identifies the transaction currency. Orders are always settled in
// US dollars.
type Currency struct {
	IsoCurrencyCodeAlpha string `json:"isoCurrencyCodeAlpha"`
	IsoCurrencyName      string `json:"isoCurrencyName"`
	IsoCurrencyCodeNum   int    `json:"isoCurrencyCodeNum"`
}

// USD is the only currency the pipeline reports in.
func USD() Currency {
	return Currency{
		IsoCurrencyCodeAlpha: "USD",
		IsoCurrencyName:      "US Dollar",
		IsoCurrencyCodeNum:   840,
	}
}

// PhysicalOrigin is the seller's ship-from address used for jurisdiction
// sourcing.
type PhysicalOrigin struct {
	MainDivision   string `json:"mainDivision"`
	City           string `json:"city"`
	PostalCode     string `json:"postalCode"`
	SubDivision    string `json:"subDivision,omitempty"`
	StreetAddress1 string `json:"streetAddress1,omitempty"`
}

// Seller pairs a company code with its physical origin.
type Seller struct {
	Company        string         `json:"company"`
	PhysicalOrigin PhysicalOrigin `json:"physicalOrigin"`
}

// CustomerCode wraps the buyer identifier.
type CustomerCode struct {
	Value string `json:"value"`
}

// Destination is the buyer-side address the supply is sourced to.
type Destination struct {
	MainDivision   string `json:"mainDivision"`
	City           string `json:"city"`
	SubDivision    string `json:"subDivision"`
	PostalCode     string `json:"postalCode"`
	StreetAddress1 string `json:"streetAddress1"`
}

// Customer identifies the buyer and where the order is delivered or picked up.
type Customer struct {
	CustomerCode CustomerCode `json:"customerCode"`
	Destination  Destination  `json:"destination"`
}

// Product carries the driver code classifying a line. Value is only set for
// fee lines attributed to a specific item.
type Product struct {
	ProductClass string `json:"productClass"`
	Value        string `json:"value,omitempty"`
}

// FlexibleCodeField is one keyed attribute attached to a line item.
type FlexibleCodeField struct {
	FieldID int    `json:"fieldId"`
	Value   string `json:"value"`
}

// FlexibleFields groups the flexible code fields of a line item.
type FlexibleFields struct {
	FlexibleCodeFields []FlexibleCodeField `json:"flexibleCodeFields"`
}

// LineItem is one taxable line of the supply request. ExtendedPrice is a
// plain JSON number; amounts are rounded to cents before they reach the wire.
type LineItem struct {
	LineItemID     string         `json:"lineItemId"`
	ExtendedPrice  float64        `json:"extendedPrice"`
	Product        Product        `json:"product"`
	FlexibleFields FlexibleFields `json:"flexibleFields"`
}

// Request is the supply document sent to the tax-computation service.
type Request struct {
	SaleMessageType string     `json:"saleMessageType"`
	TransactionType string     `json:"transactionType"`
	Currency        Currency   `json:"currency"`
	Customer        Customer   `json:"customer"`
	DocumentDate    string     `json:"documentDate"`
	DocumentNumber  string     `json:"documentNumber"`
	LocationCode    string     `json:"locationCode,omitempty"`
	Seller          Seller     `json:"seller"`
	LineItems       []LineItem `json:"lineItems"`
}

// RuleID wraps the numeric rule references the service returns as objects.
type RuleID struct {
	Value int64 `json:"value"`
}

// Tax is one jurisdiction-level tax applied to a line.
type Tax struct {
	CalculatedTax     decimal.Decimal `json:"calculatedTax"`
	EffectiveRate     decimal.Decimal `json:"effectiveRate"`
	Taxable           decimal.Decimal `json:"taxable"`
	InclusionRuleID   *RuleID         `json:"inclusionRuleId,omitempty"`
	CalculationRuleID *RuleID         `json:"calculationRuleId,omitempty"`
}

// ResultLineItem is one computed line of the response.
type ResultLineItem struct {
	LineItemID    string          `json:"lineItemId"`
	ExtendedPrice decimal.Decimal `json:"extendedPrice"`
	Taxes         []Tax           `json:"taxes"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	Product       Product         `json:"product"`
}

// TotalRate sums the effective rates across all jurisdictions of the line.
func (li ResultLineItem) TotalRate() decimal.Decimal {
	rate := decimal.Zero
	for _, tax := range li.Taxes {
		rate = rate.Add(tax.EffectiveRate)
	}
	return rate
}

// Taxable returns the line's taxable base. Positive bases win; when every
// jurisdiction reports a negative base the largest magnitude is returned.
func (li ResultLineItem) Taxable() decimal.Decimal {
	maxPositive := decimal.Zero
	maxAbs := decimal.Zero
	hasPositive := false
	for _, tax := range li.Taxes {
		if tax.Taxable.IsPositive() {
			hasPositive = true
			if tax.Taxable.GreaterThan(maxPositive) {
				maxPositive = tax.Taxable
			}
		}
		if tax.Taxable.Abs().GreaterThan(maxAbs) {
			maxAbs = tax.Taxable.Abs()
		}
	}
	if hasPositive {
		return maxPositive
	}
	return maxAbs
}

// Result is the computed supply document.
type Result struct {
	DocumentDate string           `json:"documentDate"`
	LineItems    []ResultLineItem `json:"lineItems"`
	TotalTax     decimal.Decimal  `json:"totalTax"`
}

type resultEnvelope struct {
	Data Result `json:"data"`
}
