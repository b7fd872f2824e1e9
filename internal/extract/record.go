package extract

// TextView is the text available for one document: the raw acquisition
// output plus, when bounding boxes existed, the layout-reconstructed
// variant. Structured text is preferred whenever present.
type TextView struct {
	Raw        string
	Structured *string
}

// Active returns the text the field rules should run on.
func (v TextView) Active() string {
	if v.Structured != nil && *v.Structured != "" {
		return *v.Structured
	}
	return v.Raw
}

// Provenance travels with every record: the text it was extracted from and
// whether the refinement stage successfully replaced the pattern values.
type Provenance struct {
	RawText        string  `json:"raw_text"`
	StructuredText *string `json:"structured_text"`
	LLMRefined     bool    `json:"llm_refined"`
}

// SetProvenance restamps provenance, e.g. after refinement replaced the
// record body.
func (p *Provenance) SetProvenance(raw string, structured *string, refined bool) {
	p.RawText = raw
	p.StructuredText = structured
	p.LLMRefined = refined
}

// CertificateRecord holds the fields of a Proof of Sustainability (PoS)
// certificate. Every field is present in the marshaled form; unresolved
// fields are null, so consumers only ever need null checks.
type CertificateRecord struct {
	Certificate    CertificateInfo    `json:"certificate"`
	Parties        CertificateParties `json:"parties"`
	Batch          BatchInfo          `json:"batch"`
	GHG            GHGInfo            `json:"ghg"`
	ChainOfCustody ChainOfCustody     `json:"chain_of_custody"`
	Feedstock      FeedstockInfo      `json:"feedstock"`
	FuelProduct    FuelProductInfo    `json:"fuel_product"`
	Provenance
}

type CertificateInfo struct {
	PosID     *string `json:"pos_id"`
	Scheme    *string `json:"scheme"`
	Issuer    *string `json:"issuer"`
	IssueDate *string `json:"issue_date"`
	Validity  *string `json:"validity"`
}

type CertificateParties struct {
	Supplier  *string `json:"supplier"`
	Recipient *string `json:"recipient"`
}

type BatchInfo struct {
	BatchID           *string `json:"batch_id"`
	BatchVolume       *string `json:"batch_volume"`
	BatchVolumeUnit   *string `json:"batch_volume_unit"`
	EnergyContent     *string `json:"energy_content"`
	EnergyContentUnit *string `json:"energy_content_unit"`
}

type GHGInfo struct {
	CILCA   *string `json:"ci_lca"`
	CILimit *string `json:"ci_limit"`
	Unit    string  `json:"unit"`
}

type ChainOfCustody struct {
	Model            *string `json:"model"`
	NoDoubleCounting bool    `json:"no_double_counting"`
}

type FeedstockInfo struct {
	Type            *string `json:"type"`
	CountryOfOrigin *string `json:"country_of_origin"`
	IsWasteResidue  bool    `json:"is_waste_residue"`
}

type FuelProductInfo struct {
	Type            *string `json:"type"`
	Quantity        *string `json:"quantity"`
	Unit            *string `json:"unit"`
	EnergyContentMJ *string `json:"energy_content_mj"`
	EURedCompliant  bool    `json:"eu_red_compliant"`
	ISCCCompliant   bool    `json:"iscc_compliant"`
}

// InvoiceRecord holds the fields of a delivery invoice.
type InvoiceRecord struct {
	Identifiers   InvoiceIdentifiers `json:"identifiers"`
	Parties       InvoiceParties     `json:"parties"`
	BillingPeriod BillingPeriod      `json:"billing_period"`
	ProductAmount ProductAmount      `json:"product_amount"`
	Logistics     Logistics          `json:"logistics"`
	Provenance
}

type InvoiceIdentifiers struct {
	InvoiceNo  *string `json:"invoice_no"`
	IssueDate  *string `json:"issue_date"`
	PaymentDue *string `json:"payment_due"`
}

type InvoiceParties struct {
	Supplier *string `json:"supplier"`
	Buyer    *string `json:"buyer"`
}

type BillingPeriod struct {
	PeriodStart *string `json:"period_start"`
	PeriodEnd   *string `json:"period_end"`
}

type ProductAmount struct {
	Product           *string `json:"product"`
	Quantity          *string `json:"quantity"`
	Unit              *string `json:"unit"`
	UnitPrice         *string `json:"unit_price"`
	UnitPriceCurrency *string `json:"unit_price_currency"`
	AmountExclVAT     *string `json:"amount_excl_vat"`
	AmountCurrency    *string `json:"amount_currency"`
}

type Logistics struct {
	Incoterm *string `json:"incoterm"`
	Customs  *string `json:"customs"`
}

// AgreementRecord holds the fields of a power-purchase agreement (PPA).
type AgreementRecord struct {
	Parties        AgreementParties `json:"parties"`
	KeyTerms       KeyTerms         `json:"key_terms"`
	Pricing        Pricing          `json:"pricing"`
	Sustainability Sustainability   `json:"sustainability_compliance"`
	Commencement   Commencement     `json:"commencement"`
	Provenance
}

type AgreementParties struct {
	Seller NamedParty `json:"seller"`
	Buyer  NamedParty `json:"buyer"`
}

type NamedParty struct {
	Name         *string `json:"name"`
	Registration *string `json:"registration"`
}

type KeyTerms struct {
	ProjectID        *string `json:"project_id"`
	Commodity        *string `json:"commodity"`
	EffectiveDate    *string `json:"effective_date"`
	Duration         *string `json:"duration"`
	ACQ              *string `json:"acq"`
	ACQUnit          *string `json:"acq_unit"`
	MonthlyPlan      *string `json:"monthly_plan"`
	MonthlyTolerance *string `json:"monthly_tolerance"`
	Delivery         *string `json:"delivery"`
	Customs          *string `json:"customs"`
}

type Pricing struct {
	PriceY1Y5 *string `json:"price_y1_y5"`
	Currency  *string `json:"currency"`
}

type Sustainability struct {
	CILimit          *string `json:"ci_limit"`
	Certification    *string `json:"certification"`
	AuditRequired    bool    `json:"audit_required"`
	AuditorSignature *string `json:"auditor_signature"`
}

type Commencement struct {
	CommencementRule *string `json:"commencement_rule"`
	LongStopDate     *string `json:"long_stop_date"`
}

// TermSheetRecord holds the fields of a term sheet.
type TermSheetRecord struct {
	Identifiers    TermSheetIdentifiers   `json:"identifiers"`
	Parties        TermSheetParties       `json:"parties"`
	Commercial     CommercialTerms        `json:"commercial"`
	Sustainability TermSheetSustainability `json:"sustainability"`
	Timing         Timing                 `json:"timing"`
	Provenance
}

type TermSheetIdentifiers struct {
	TSID   *string `json:"ts_id"`
	Date   *string `json:"date"`
	Expiry *string `json:"expiry"`
}

type TermSheetParties struct {
	Seller *string `json:"seller"`
	Buyer  *string `json:"buyer"`
}

type CommercialTerms struct {
	ACQ      *string `json:"acq"`
	ACQUnit  *string `json:"acq_unit"`
	Delivery *string `json:"delivery"`
	Pricing  *string `json:"pricing"`
}

type TermSheetSustainability struct {
	CITarget *string `json:"ci_target"`
	Scheme   *string `json:"scheme"`
}

type Timing struct {
	Commencement *string `json:"commencement"`
	LongStop     *string `json:"long_stop"`
}
