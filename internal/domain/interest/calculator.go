// Package interest computes the statutory interest and fixed compensation a
// creditor may claim on a late payment.  The computation is pure: rates come
// in through Rates, claim facts through the claim snapshot, and nothing is
// read from the environment.  Legal accuracy over convenience: an ambiguous
// basis or an unresolvable due date is an error, never a silent default.
package interest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// RateBasis names the statutory regime the annual rate derives from.
type RateBasis string

const (
	// BasisB2B applies when both parties are companies: the Late Payment of
	// Commercial Debts (Interest) Act 1998, 8% plus the Bank of England
	// base rate.
	BasisB2B RateBasis = "commercial_debts_act"

	// BasisB2C applies to every other known combination: County Courts Act
	// 1984 s.69, 8%.
	BasisB2C RateBasis = "county_courts_act"
)

// String returns the wire representation.
func (b RateBasis) String() string { return string(b) }

// LegalReference returns the statute citation for the basis.
func (b RateBasis) LegalReference() string {
	switch b {
	case BasisB2B:
		return "Late Payment of Commercial Debts (Interest) Act 1998"
	case BasisB2C:
		return "County Courts Act 1984, s.69"
	default:
		return ""
	}
}

// daysPerYear is the divisor for converting an annual rate to a daily rate.
// Statutory simple interest uses 365 regardless of leap years.
var daysPerYear = decimal.NewFromInt(365)

// one hundred, for percent conversion.
var hundred = decimal.NewFromInt(100)

// Compensation bands under the Late Payment of Commercial Debts (Interest)
// Act 1998: a one-off fixed sum keyed to the invoice amount, claimable once
// per invoice and independent of how long payment is overdue.
var (
	compensationSmall  = decimal.NewFromInt(40)  // amount < £1,000
	compensationMedium = decimal.NewFromInt(70)  // £1,000 <= amount < £10,000
	compensationLarge  = decimal.NewFromInt(100) // amount >= £10,000

	bandMediumFloor = decimal.NewFromInt(1000)
	bandLargeFloor  = decimal.NewFromInt(10000)
)

// Rates carries the configurable statutory percentages.  The Bank of England
// base rate moves with monetary policy, so it is an input here and a config
// value upstream rather than a constant.
type Rates struct {
	// StatutoryPercent is the fixed element of the commercial-debts rate.
	StatutoryPercent decimal.Decimal

	// BasePercent is the Bank of England reference base rate.
	BasePercent decimal.Decimal

	// CountyCourtPercent is the County Courts Act 1984 s.69 rate.
	CountyCourtPercent decimal.Decimal
}

// NewRates builds Rates from percentage figures as carried in configuration.
func NewRates(statutoryPercent, basePercent, countyCourtPercent float64) Rates {
	return Rates{
		StatutoryPercent:   decimal.NewFromFloat(statutoryPercent),
		BasePercent:        decimal.NewFromFloat(basePercent),
		CountyCourtPercent: decimal.NewFromFloat(countyCourtPercent),
	}
}

// Result is the outcome of one interest computation.  Compensation is
// reported as its own line item, never folded into TotalInterest; court
// forms and letters itemise the two separately.
type Result struct {
	RateBasis         RateBasis       `json:"rate_basis"`
	LegalReference    string          `json:"legal_reference"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	DaysOverdue       int             `json:"days_overdue"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	Compensation      decimal.Decimal `json:"compensation"`
	AsOfDate          time.Time       `json:"as_of_date"`
}

// TotalPayable returns principal plus interest plus compensation.
func (r Result) TotalPayable(principal decimal.Decimal) decimal.Decimal {
	return principal.Add(r.TotalInterest).Add(r.Compensation).Round(2)
}

// Calculator computes statutory interest under the configured rates.
type Calculator struct {
	rates Rates
}

// NewCalculator constructs a Calculator.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// SelectBasis maps the two party types to the governing statutory regime.
// Company vs company is the commercial-debts regime; every other complete
// combination falls under the County Courts Act.  An unset or invalid type
// on either side yields a CodeIndeterminateBasis error: guessing the regime
// could mis-state the rate on a court document.
func SelectBasis(claimant, defendant claim.PartyType) (RateBasis, error) {
	if !claimant.Valid() || !defendant.Valid() {
		return "", errors.NewIndeterminateBasis(
			"cannot determine the statutory interest basis until both party types are set")
	}
	if claimant == claim.PartyCompany && defendant == claim.PartyCompany {
		return BasisB2B, nil
	}
	return BasisB2C, nil
}

// AnnualRatePercent returns the annual percentage for the basis.
func (c *Calculator) AnnualRatePercent(basis RateBasis) decimal.Decimal {
	if basis == BasisB2B {
		return c.rates.StatutoryPercent.Add(c.rates.BasePercent)
	}
	return c.rates.CountyCourtPercent
}

// Calculate computes simple statutory interest on the claim's invoice as of
// the given date.  Amount and dates are validated first; the basis comes
// from the party types.  Rounding to two decimal places happens on the
// output figures only, never on intermediate values.
func (c *Calculator) Calculate(state claim.State, asOf time.Time) (Result, error) {
	if asOf.IsZero() {
		return Result{}, errors.NewValidation("as-of date is required", "as_of_date")
	}
	if err := state.Invoice.Validate(); err != nil {
		return Result{}, err
	}

	basis, err := SelectBasis(state.Claimant.Type, state.Defendant.Type)
	if err != nil {
		return Result{}, err
	}

	daysOverdue, err := state.Invoice.OverdueDays(asOf)
	if err != nil {
		return Result{}, err
	}

	annual := c.AnnualRatePercent(basis)
	dailyRate := annual.Div(hundred).Div(daysPerYear)
	interest := state.Invoice.Amount.
		Mul(dailyRate).
		Mul(decimal.NewFromInt(int64(daysOverdue))).
		Round(2)

	result := Result{
		RateBasis:         basis,
		LegalReference:    basis.LegalReference(),
		AnnualRatePercent: annual,
		DaysOverdue:       daysOverdue,
		TotalInterest:     interest,
		Compensation:      decimal.Zero,
		AsOfDate:          common.DateOnly(asOf),
	}
	if basis == BasisB2B {
		result.Compensation = compensationFor(state.Invoice.Amount)
	}
	return result, nil
}

// compensationFor returns the fixed-sum band for the invoice amount.
func compensationFor(amount decimal.Decimal) decimal.Decimal {
	switch {
	case amount.GreaterThanOrEqual(bandLargeFloor):
		return compensationLarge
	case amount.GreaterThanOrEqual(bandMediumFloor):
		return compensationMedium
	default:
		return compensationSmall
	}
}
