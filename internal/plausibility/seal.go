package plausibility

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// sealHash binds the key data points of a verified transaction into a
// SHA-256 digest. Map keys marshal in sorted order, so the digest is stable
// for a given timestamp.
func sealHash(docs Documents, now time.Time) (string, error) {
	sealData := map[string]any{
		"pos_id":     docs.PoS.Certificate.PosID,
		"invoice_no": docs.Invoice.Identifiers.InvoiceNo,
		"supplier":   docs.PPA.Parties.Seller.Name,
		"buyer":      docs.PPA.Parties.Buyer.Name,
		"quantity":   docs.Invoice.ProductAmount.Quantity,
		"ci_lca":     docs.PoS.GHG.CILCA,
		"timestamp":  now.Format(time.RFC3339Nano),
	}
	raw, err := json.Marshal(sealData)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// proofMessage narrates the passed checks with the transaction's own
// values, ready for anchoring alongside the seal.
func (r *run) proofMessage() string {
	supplier := deref(r.docs.PPA.Parties.Seller.Name)
	buyer := deref(r.docs.PPA.Parties.Buyer.Name)
	posID := deref(r.docs.PoS.Certificate.PosID)
	invoiceNo := deref(r.docs.Invoice.Identifiers.InvoiceNo)
	ciValue := deref(r.docs.PoS.GHG.CILCA)
	ciLimit := deref(r.docs.PoS.GHG.CILimit)
	quantity := deref(r.docs.Invoice.ProductAmount.Quantity)
	unitPrice := deref(r.docs.Invoice.ProductAmount.UnitPrice)
	monthlyPlan := deref(r.docs.PPA.KeyTerms.MonthlyPlan)
	tolerance := deref(r.docs.PPA.KeyTerms.MonthlyTolerance)
	if tolerance == "" {
		tolerance = fmt.Sprintf("±%v%%", r.cfg.QuantityTolerancePct)
	}
	validity := deref(r.docs.PoS.Certificate.Validity)
	if validity == "" {
		validity = defaultValidity
	}
	issueDate := deref(r.docs.PoS.Certificate.IssueDate)
	longStop := deref(r.docs.PPA.Commencement.LongStopDate)
	scheme := deref(r.docs.PoS.Certificate.Scheme)

	return fmt.Sprintf(`Plausibility Verification Confirmed

This transaction has been verified as plausible based on comprehensive cross-document validation:

✓ Party Verification: %s (supplier) and %s (buyer) are consistently identified across all documents (PoS, Term Sheet, PPA, and Invoice).

✓ Sustainability Compliance: The Proof of Sustainability (PoS ID: %s) demonstrates a Carbon Intensity of %s gCO2e/MJ, which exceeds the required threshold of ≤ %s gCO2e/MJ specified in the contractual agreements.

✓ Quantity Alignment: Invoice %s documents a delivery of %s tonnes, which falls within the acceptable range defined by the PPA monthly plan (%s t %s).

✓ Price Consistency: The invoiced unit price of €%s/t matches the PPA contracted price for years 1-5.

✓ Temporal Validity: The PoS certification period (%s from %s) adequately covers the PPA duration and Long Stop Date (%s).

✓ Certification Scheme: %s certification is consistently maintained across all documentation.

All critical validation checks have passed. This transaction is confirmed as plausible and ready for settlement.
`, supplier, buyer, posID, ciValue, ciLimit, invoiceNo, quantity, monthlyPlan, tolerance, unitPrice, validity, issueDate, longStop, scheme)
}
