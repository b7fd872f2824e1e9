package plausibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gexlabs/docverify/internal/extract"
)

func sp(s string) *string { return &s }

// validDocs builds a transaction that passes every check.
func validDocs() Documents {
	return Documents{
		PoS: &extract.CertificateRecord{
			Certificate: extract.CertificateInfo{
				PosID:     sp("POS-2025-0001"),
				Scheme:    sp("ISCC EU"),
				IssueDate: sp("2025-05-01"),
				Validity:  sp("25 Years"),
			},
			Parties: extract.CertificateParties{
				Supplier:  sp("GreenFuel GmbH"),
				Recipient: sp("Nordic Power AS"),
			},
			GHG: extract.GHGInfo{
				CILCA:   sp("-51.2"),
				CILimit: sp("-49.5"),
				Unit:    "gCO2e/MJ",
			},
		},
		TermSheet: &extract.TermSheetRecord{
			Identifiers: extract.TermSheetIdentifiers{TSID: sp("TS-2025-0042")},
			Parties: extract.TermSheetParties{
				Seller: sp("GreenFuel GmbH"),
				Buyer:  sp("Nordic Power AS"),
			},
			Sustainability: extract.TermSheetSustainability{
				CITarget: sp("≤ -49.5 gCO2/MJ"),
				Scheme:   sp("ISCC EU"),
			},
		},
		PPA: &extract.AgreementRecord{
			Parties: extract.AgreementParties{
				Seller: extract.NamedParty{Name: sp("GreenFuel GmbH")},
				Buyer:  extract.NamedParty{Name: sp("Nordic Power AS")},
			},
			KeyTerms: extract.KeyTerms{
				ProjectID:        sp("PPA-GF-NP-2025"),
				EffectiveDate:    sp("2025-06-01"),
				MonthlyPlan:      sp("300.0"),
				MonthlyTolerance: sp("±5%"),
			},
			Pricing: extract.Pricing{PriceY1Y5: sp("1500")},
			Sustainability: extract.Sustainability{
				CILimit:       sp("≤ -49.5 gCO2/MJ"),
				Certification: sp("ISCC EU or REDcert EU"),
			},
			Commencement: extract.Commencement{LongStopDate: sp("2028-03-30")},
		},
		Invoice: &extract.InvoiceRecord{
			Identifiers: extract.InvoiceIdentifiers{
				InvoiceNo:  sp("INV-2025-014"),
				PaymentDue: sp("2025-07-31"),
			},
			Parties: extract.InvoiceParties{
				Supplier: sp("GreenFuel GmbH"),
				Buyer:    sp("Nordic Power AS"),
			},
			ProductAmount: extract.ProductAmount{
				Product:   sp("HVO (ISCC EU)"),
				Quantity:  sp("298.5"),
				UnitPrice: sp("1500.00"),
			},
		},
		PlantID: "PLANT-007",
	}
}

func checkByName(t *testing.T, v *Verdict, name string) CheckResult {
	t.Helper()
	for _, c := range v.Checks {
		if c.CheckName == name {
			return c
		}
	}
	t.Fatalf("check %q not in verdict", name)
	return CheckResult{}
}

func TestCheckAllPass(t *testing.T) {
	c := NewChecker(Config{}, nil)
	v, err := c.Check(validDocs())
	require.NoError(t, err)

	assert.True(t, v.IsValid)
	require.Len(t, v.Checks, 6)

	wantOrder := []string{
		"Parties Match", "CI Compliance", "Certification Scheme",
		"Invoice Quantity", "Unit Price", "Date Validity",
	}
	for i, name := range wantOrder {
		assert.Equal(t, name, v.Checks[i].CheckName)
		assert.True(t, v.Checks[i].Passed, name)
	}

	require.NotNil(t, v.SealHash)
	assert.Len(t, *v.SealHash, 64)
	require.NotNil(t, v.Proof)
	assert.Contains(t, *v.Proof, "GreenFuel GmbH")
	assert.Contains(t, *v.Proof, "POS-2025-0001")

	require.NotNil(t, v.HCSData)
	assert.Equal(t, "PLANT-007", v.HCSData.PlantID)
	assert.Equal(t, *v.SealHash, v.HCSData.SealHash)
	assert.Equal(t, "TS-2025-0042", *v.HCSData.Documents.TermSheetID)

	require.NotNil(t, v.InvoiceExpiryDate)
	assert.Equal(t, "2025-07-31", *v.InvoiceExpiryDate)
}

func TestCheckSupplierMismatchFailsOnlyParties(t *testing.T) {
	docs := validDocs()
	docs.Invoice.Parties.Supplier = sp("GreenFuel Gmbh") // casing differs

	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)

	assert.False(t, v.IsValid)
	assert.Nil(t, v.SealHash)
	assert.Nil(t, v.Proof)
	assert.Nil(t, v.HCSData)

	assert.False(t, checkByName(t, v, "Parties Match").Passed)
	for _, name := range []string{"CI Compliance", "Certification Scheme", "Invoice Quantity", "Unit Price", "Date Validity"} {
		assert.True(t, checkByName(t, v, name).Passed, name)
	}
}

func TestCertificationSchemeDisjointSetsFail(t *testing.T) {
	docs := validDocs()
	// "ISCC" without the EU suffix is a different scheme, not a superset.
	docs.PoS.Certificate.Scheme = sp("ISCC")

	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)

	res := checkByName(t, v, "Certification Scheme")
	assert.False(t, res.Passed)
	assert.Contains(t, res.Details, "ZERO overlap")
	assert.False(t, v.IsValid)
}

func TestCertificationSchemeFallsBackToAgreement(t *testing.T) {
	docs := validDocs()
	docs.Invoice.ProductAmount.Product = sp("HVO") // no scheme on the invoice

	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)

	res := checkByName(t, v, "Certification Scheme")
	assert.True(t, res.Passed)
	assert.Contains(t, res.Actual, "PPA (invoice contract)")
}

func TestCIComplianceUnicodeMinusAndComma(t *testing.T) {
	docs := validDocs()
	docs.PoS.GHG.CILCA = sp("−51,2")
	docs.PoS.GHG.CILimit = sp("−49,5")

	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)
	assert.True(t, checkByName(t, v, "CI Compliance").Passed)
}

func TestCIComplianceMissingValueFailsCheck(t *testing.T) {
	docs := validDocs()
	docs.PoS.GHG.CILCA = nil

	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)

	res := checkByName(t, v, "CI Compliance")
	assert.False(t, res.Passed)
	assert.Contains(t, res.Details, "Error parsing CI values")
	assert.False(t, v.IsValid)
}

func TestCIAboveContractLimitFails(t *testing.T) {
	docs := validDocs()
	docs.PoS.GHG.CILCA = sp("-49.0") // less negative than every limit

	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)
	assert.False(t, checkByName(t, v, "CI Compliance").Passed)
}

func TestInvoiceQuantityTolerance(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		want     bool
	}{
		{"lower bound inclusive", "285", true},
		{"upper bound inclusive", "315", true},
		{"below band", "284.9", false},
		{"above band", "315.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := validDocs()
			docs.Invoice.ProductAmount.Quantity = sp(tt.quantity)

			c := NewChecker(Config{}, nil)
			v, err := c.Check(docs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, checkByName(t, v, "Invoice Quantity").Passed)
		})
	}
}

func TestInvoiceQuantityDefaultToleranceWhenAgreementSilent(t *testing.T) {
	docs := validDocs()
	docs.PPA.KeyTerms.MonthlyTolerance = nil
	docs.Invoice.ProductAmount.Quantity = sp("314")

	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)
	assert.True(t, checkByName(t, v, "Invoice Quantity").Passed)
}

func TestUnitPriceEpsilon(t *testing.T) {
	docs := validDocs()
	docs.Invoice.ProductAmount.UnitPrice = sp("1500.005")

	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)
	assert.True(t, checkByName(t, v, "Unit Price").Passed)

	docs.Invoice.ProductAmount.UnitPrice = sp("1500.02")
	v, err = c.Check(docs)
	require.NoError(t, err)
	assert.False(t, checkByName(t, v, "Unit Price").Passed)
}

func TestDateValidityDefaultFiveYears(t *testing.T) {
	docs := validDocs()
	docs.PoS.Certificate.Validity = nil
	// 2025-05-01 + 5*365d = 2030-04-30, past the 2028-03-30 long stop.
	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)
	assert.True(t, checkByName(t, v, "Date Validity").Passed)
}

func TestDateValidityIssueAfterEffectiveFails(t *testing.T) {
	docs := validDocs()
	docs.PoS.Certificate.IssueDate = sp("2025-06-02")

	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)
	assert.False(t, checkByName(t, v, "Date Validity").Passed)
}

func TestSealHashDeterministicForFixedTime(t *testing.T) {
	c := NewChecker(Config{}, nil)
	fixed := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	v1, err := c.Check(validDocs())
	require.NoError(t, err)
	v2, err := c.Check(validDocs())
	require.NoError(t, err)

	require.NotNil(t, v1.SealHash)
	require.NotNil(t, v2.SealHash)
	assert.Equal(t, *v1.SealHash, *v2.SealHash)
	assert.Equal(t, fixed.Format(time.RFC3339Nano), v1.HCSData.Timestamp)
}

func TestCheckRequiresAllFourDocuments(t *testing.T) {
	docs := validDocs()
	docs.TermSheet = nil

	c := NewChecker(Config{}, nil)
	_, err := c.Check(docs)
	assert.Error(t, err)
}

func TestDefaultPlantID(t *testing.T) {
	docs := validDocs()
	docs.PlantID = ""

	c := NewChecker(Config{}, nil)
	v, err := c.Check(docs)
	require.NoError(t, err)
	require.NotNil(t, v.HCSData)
	assert.Equal(t, "PLANT-001", v.HCSData.PlantID)
}
