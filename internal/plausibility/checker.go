package plausibility

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gexlabs/docverify/internal/extract"
)

const (
	defaultQuantityTolerancePct = 5.0
	defaultPriceEpsilon         = 0.01
	defaultValidityDaysPerYear  = 365
	defaultValidity             = "5 Year"
)

type Config struct {
	// QuantityTolerancePct applies when the agreement does not state a
	// monthly tolerance.
	QuantityTolerancePct float64
	PriceEpsilon         float64
	ValidityDaysPerYear  int
}

// Checker runs the cross-document checks. Now is injectable so seal hashes
// and HCS timestamps are reproducible in tests.
type Checker struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewChecker(cfg Config, logger *slog.Logger) *Checker {
	if cfg.QuantityTolerancePct == 0 {
		cfg.QuantityTolerancePct = defaultQuantityTolerancePct
	}
	if cfg.PriceEpsilon == 0 {
		cfg.PriceEpsilon = defaultPriceEpsilon
	}
	if cfg.ValidityDaysPerYear == 0 {
		cfg.ValidityDaysPerYear = defaultValidityDaysPerYear
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{cfg: cfg, logger: logger, now: time.Now}
}

// Documents is one transaction's worth of extracted records.
type Documents struct {
	PoS       *extract.CertificateRecord
	TermSheet *extract.TermSheetRecord
	PPA       *extract.AgreementRecord
	Invoice   *extract.InvoiceRecord
	PlantID   string
}

// Check runs every check regardless of earlier failures, so the verdict
// lists the full picture. The seal and proof are produced only when all
// checks pass.
func (c *Checker) Check(docs Documents) (*Verdict, error) {
	if docs.PoS == nil || docs.TermSheet == nil || docs.PPA == nil || docs.Invoice == nil {
		return nil, fmt.Errorf("plausibility: all four documents are required")
	}
	if docs.PlantID == "" {
		docs.PlantID = "PLANT-001"
	}

	r := &run{cfg: c.cfg, docs: docs}
	partiesOK := r.checkPartiesMatch()
	ciOK := r.checkCICompliance()
	schemeOK := r.checkCertificationScheme()
	quantityOK := r.checkInvoiceQuantity()
	priceOK := r.checkUnitPrice()
	datesOK := r.checkDateValidity()

	isValid := partiesOK && ciOK && schemeOK && quantityOK && priceOK && datesOK

	v := &Verdict{
		IsValid:           isValid,
		InvoiceExpiryDate: docs.Invoice.Identifiers.PaymentDue,
		Checks:            r.checks,
	}
	if isValid {
		now := c.now()
		seal, err := sealHash(docs, now)
		if err != nil {
			return nil, fmt.Errorf("plausibility: seal hash: %w", err)
		}
		proof := r.proofMessage()
		v.SealHash = &seal
		v.Proof = &proof
		v.HCSData = &HCSData{
			SealHash:     seal,
			PlantID:      docs.PlantID,
			ValidityDate: docs.Invoice.Identifiers.PaymentDue,
			Proof:        proof,
			Timestamp:    now.Format(time.RFC3339Nano),
			Documents: HCSDocuments{
				PosID:       docs.PoS.Certificate.PosID,
				InvoiceNo:   docs.Invoice.Identifiers.InvoiceNo,
				PPAProject:  docs.PPA.KeyTerms.ProjectID,
				TermSheetID: docs.TermSheet.Identifiers.TSID,
			},
		}
	}

	c.logger.Info("plausibility check complete",
		"plant_id", docs.PlantID,
		"is_valid", isValid,
		"checks", len(r.checks))
	return v, nil
}

// run accumulates check results for one transaction.
type run struct {
	cfg    Config
	docs   Documents
	checks []CheckResult
}

func (r *run) add(res CheckResult) { r.checks = append(r.checks, res) }

func (r *run) fail(name, details string) bool {
	r.add(CheckResult{CheckName: name, Passed: false, Details: details})
	return false
}

// checkPartiesMatch requires the supplier side and the buyer side to be
// spelled identically across all four documents. The term sheet and PPA
// call the supplier "seller".
func (r *run) checkPartiesMatch() bool {
	posSupplier := deref(r.docs.PoS.Parties.Supplier)
	tsSeller := deref(r.docs.TermSheet.Parties.Seller)
	ppaSupplier := deref(r.docs.PPA.Parties.Seller.Name)
	invSupplier := deref(r.docs.Invoice.Parties.Supplier)

	posRecipient := deref(r.docs.PoS.Parties.Recipient)
	tsBuyer := deref(r.docs.TermSheet.Parties.Buyer)
	ppaBuyer := deref(r.docs.PPA.Parties.Buyer.Name)
	invBuyer := deref(r.docs.Invoice.Parties.Buyer)

	supplierMatch := posSupplier == tsSeller && tsSeller == ppaSupplier && ppaSupplier == invSupplier
	buyerMatch := posRecipient == tsBuyer && tsBuyer == ppaBuyer && ppaBuyer == invBuyer
	passed := supplierMatch && buyerMatch

	r.add(CheckResult{
		CheckName: "Parties Match",
		Passed:    passed,
		Expected:  fmt.Sprintf("Supplier: %s, Buyer: %s", ppaSupplier, ppaBuyer),
		Actual: fmt.Sprintf("PoS: %s/%s, TS: %s/%s, PPA: %s/%s, Invoice: %s/%s",
			posSupplier, posRecipient, tsSeller, tsBuyer, ppaSupplier, ppaBuyer, invSupplier, invBuyer),
		Details: "All parties must match across documents",
	})
	return passed
}

// checkCICompliance verifies the certified carbon intensity against the
// certificate's own limit and the thresholds carried in the term sheet and
// the agreement. More negative is better, so every comparison is <=.
func (r *run) checkCICompliance() bool {
	const name = "CI Compliance"

	posCI, err := parseSigned(deref(r.docs.PoS.GHG.CILCA))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing CI values: %v", err))
	}
	posLimit, err := parseSigned(deref(r.docs.PoS.GHG.CILimit))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing CI values: %v", err))
	}
	tsCI, err := embeddedLimit(deref(r.docs.TermSheet.Sustainability.CITarget))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing CI values: %v", err))
	}
	ppaCI, err := embeddedLimit(deref(r.docs.PPA.Sustainability.CILimit))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing CI values: %v", err))
	}

	passed := posCI <= posLimit && posCI <= tsCI && posCI <= ppaCI
	r.add(CheckResult{
		CheckName: name,
		Passed:    passed,
		Expected:  fmt.Sprintf("CI ≤ %v gCO2e/MJ", posLimit),
		Actual:    fmt.Sprintf("PoS CI: %v, PoS Limit: %v, TS: %v, PPA: %v", posCI, posLimit, tsCI, ppaCI),
		Details:   "Carbon Intensity must meet or exceed limit",
	})
	return passed
}

// checkCertificationScheme starts from what was invoiced and verifies it is
// proven by the certificate. If the invoice product names no scheme, the
// agreement's certification clause stands in for it. The check passes when
// the two sides share at least one scheme.
func (r *run) checkCertificationScheme() bool {
	invoiceSchemes := extractSchemes(deref(r.docs.Invoice.ProductAmount.Product))
	reference := "Invoice product"
	if len(invoiceSchemes) == 0 {
		invoiceSchemes = extractSchemes(deref(r.docs.PPA.Sustainability.Certification))
		reference = "PPA (invoice contract)"
	}
	posSchemes := extractSchemes(deref(r.docs.PoS.Certificate.Scheme))

	common := intersect(invoiceSchemes, posSchemes)
	passed := len(common) > 0 && len(invoiceSchemes) > 0 && len(posSchemes) > 0

	var details string
	switch {
	case passed:
		details = fmt.Sprintf("Match found! Common schemes: %s. Invoice/PPA requires %s, PoS proves %s",
			schemeSet(common), schemeSet(invoiceSchemes), schemeSet(posSchemes))
	case len(invoiceSchemes) == 0:
		details = "No certification scheme found in Invoice or PPA"
	case len(posSchemes) == 0:
		details = "No certification scheme found in PoS"
	default:
		details = fmt.Sprintf("No common schemes. Invoice/PPA has %s, PoS has %s - ZERO overlap",
			schemeSet(invoiceSchemes), schemeSet(posSchemes))
	}

	r.add(CheckResult{
		CheckName: "Certification Scheme",
		Passed:    passed,
		Expected:  fmt.Sprintf("Invoice/PPA schemes (%s) must exist in PoS", schemeSet(invoiceSchemes)),
		Actual: fmt.Sprintf("Invoice/PPA (%s): %s, PoS: %s, Common: %s",
			reference, schemeSet(invoiceSchemes), schemeSet(posSchemes), schemeSet(common)),
		Details: details,
	})
	return passed
}

// checkInvoiceQuantity places the invoiced quantity inside the agreement's
// monthly plan band.
func (r *run) checkInvoiceQuantity() bool {
	const name = "Invoice Quantity"

	invoiceQty, err := parseSigned(deref(r.docs.Invoice.ProductAmount.Quantity))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing quantities: %v", err))
	}
	monthlyPlan, err := parseSigned(deref(r.docs.PPA.KeyTerms.MonthlyPlan))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing quantities: %v", err))
	}

	tolerancePct := r.cfg.QuantityTolerancePct
	if s := deref(r.docs.PPA.KeyTerms.MonthlyTolerance); s != "" {
		s = strings.ReplaceAll(s, "±", "")
		s = strings.ReplaceAll(s, "%", "")
		tolerancePct, err = parseSigned(s)
		if err != nil {
			return r.fail(name, fmt.Sprintf("Error parsing quantities: %v", err))
		}
	}

	toleranceValue := monthlyPlan * (tolerancePct / 100)
	minQty := monthlyPlan - toleranceValue
	maxQty := monthlyPlan + toleranceValue
	passed := minQty <= invoiceQty && invoiceQty <= maxQty

	r.add(CheckResult{
		CheckName: name,
		Passed:    passed,
		Expected:  fmt.Sprintf("%v-%v t (%v t ±%v%%)", minQty, maxQty, monthlyPlan, tolerancePct),
		Actual:    fmt.Sprintf("%v t", invoiceQty),
		Details:   "Invoice quantity must be within PPA monthly plan tolerance",
	})
	return passed
}

// checkUnitPrice compares the invoiced unit price with the agreement's
// Y1-Y5 price, tolerating only floating point jitter.
func (r *run) checkUnitPrice() bool {
	const name = "Unit Price"

	invoicePrice, err := parseSigned(stripThousands(deref(r.docs.Invoice.ProductAmount.UnitPrice)))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing prices: %v", err))
	}
	ppaPrice, err := parseSigned(stripThousands(deref(r.docs.PPA.Pricing.PriceY1Y5)))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing prices: %v", err))
	}

	diff := invoicePrice - ppaPrice
	if diff < 0 {
		diff = -diff
	}
	passed := diff < r.cfg.PriceEpsilon

	r.add(CheckResult{
		CheckName: name,
		Passed:    passed,
		Expected:  fmt.Sprintf("€%v/t", ppaPrice),
		Actual:    fmt.Sprintf("€%v/t", invoicePrice),
		Details:   "Invoice unit price must match PPA Y1-Y5 price",
	})
	return passed
}

// checkDateValidity requires the certificate to be issued by the agreement's
// effective date and to remain valid through the long stop date.
func (r *run) checkDateValidity() bool {
	const name = "Date Validity"

	posIssue, err := parseDate(deref(r.docs.PoS.Certificate.IssueDate))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing dates: %v", err))
	}
	ppaEffective, err := parseDate(deref(r.docs.PPA.KeyTerms.EffectiveDate))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing dates: %v", err))
	}
	longStop, err := parseDate(deref(r.docs.PPA.Commencement.LongStopDate))
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing dates: %v", err))
	}

	validity := deref(r.docs.PoS.Certificate.Validity)
	if validity == "" {
		validity = defaultValidity
	}
	fields := strings.Fields(validity)
	if len(fields) == 0 {
		return r.fail(name, fmt.Sprintf("Error parsing dates: empty validity %q", validity))
	}
	validityYears, err := strconv.Atoi(fields[0])
	if err != nil {
		return r.fail(name, fmt.Sprintf("Error parsing dates: %v", err))
	}
	posExpiry := posIssue.AddDate(0, 0, validityYears*r.cfg.ValidityDaysPerYear)

	issuedBeforePPA := !posIssue.After(ppaEffective)
	validThroughLongStop := !posExpiry.Before(longStop)
	passed := issuedBeforePPA && validThroughLongStop

	r.add(CheckResult{
		CheckName: name,
		Passed:    passed,
		Expected:  fmt.Sprintf("PoS valid through %s", longStop.Format(dateLayout)),
		Actual: fmt.Sprintf("PoS issued: %s, expires: %s",
			posIssue.Format(dateLayout), posExpiry.Format(dateLayout)),
		Details: "PoS must be valid for PPA duration",
	})
	return passed
}
