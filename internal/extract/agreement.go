package extract

var agreementRules = []Rule{
	multi(`Seller[\s:]+([^\n(]+)(?:\s*\(([^)]+)\))?`,
		capture("seller_name", 1, trimmed),
		capture("seller_registration", 2, trimmed),
	),
	multi(`Buyer[\s:]+([^\n(]+)(?:\s*\(([^)]+)\))?`,
		capture("buyer_name", 1, trimmed),
		capture("buyer_registration", 2, trimmed),
	),

	rule("project_id", `Project ID[\s:]+([^\n]+)`, trimmed),
	rule("commodity", `Commodity[\s:]+([^\n]+)`, trimmed),
	rule("effective_date", `Effective Date[\s:]+(\d{4}[■\-]\d{2}[■\-]\d{2})`, cleanGlyphs),
	rule("duration", `Duration[\s:]+(\d+)\s*years?`, trimmed, appendYears),
	multi(`ACQ[\s:]+([0-9,]+)\s*(t/yr|tonnes/year)`,
		capture("acq", 1, stripThousands),
		capture("acq_unit", 2, trimmed),
	),
	multi(`Monthly Plan[\s:]+([0-9\.]+)\s*t\s*\(([^)]+)\)`,
		capture("monthly_plan", 1, trimmed),
		capture("monthly_tolerance", 2, trimmed),
	),
	rule("delivery", `Delivery[\s:]+([^\n;]+)`, trimmed),
	rule("customs", `Customs[\s:]+([^\n]+)`, trimmed),

	rule("price_y1_y5", `Price\s*\(Y1[■\-–]Y5\)[\s:]+[€$]([0-9,]+)/t`, stripThousands),
	rule("currency", `Currency[\s:]+([A-Z]{3})`, trimmed),

	rule("ci_limit", `CI Limit[\s:]+([≤<]+\s*[-−]?\s*[\d\.]+\s*gCO[■₂2]?/MJ)`, trimmed),
	rule("certification", `Certification[\s:]+([^\n]+)`, trimmed),
	flag("audit_required", `Third[■\-\s]*party audit required`),
	constant("auditor_signature", `auditor signature.*?on[■\-\s]*chain`, "anchored on-chain"),

	rule("commencement_rule", `Commencement Rule[\s:]+([^\n]+)`, trimmed),
	rule("long_stop_date", `Long[■\-\s]*Stop Date[\s:]+(\d{4}[■\-]\d{2}[■\-]\d{2})`, cleanGlyphs),
}

// Agreement extracts a power-purchase agreement record.
func Agreement(v TextView) *AgreementRecord {
	f := Apply(v.Active(), agreementRules)
	rec := &AgreementRecord{
		Parties: AgreementParties{
			Seller: NamedParty{Name: f.str("seller_name"), Registration: f.str("seller_registration")},
			Buyer:  NamedParty{Name: f.str("buyer_name"), Registration: f.str("buyer_registration")},
		},
		KeyTerms: KeyTerms{
			ProjectID:        f.str("project_id"),
			Commodity:        f.str("commodity"),
			EffectiveDate:    f.str("effective_date"),
			Duration:         f.str("duration"),
			ACQ:              f.str("acq"),
			ACQUnit:          f.str("acq_unit"),
			MonthlyPlan:      f.str("monthly_plan"),
			MonthlyTolerance: f.str("monthly_tolerance"),
			Delivery:         f.str("delivery"),
			Customs:          f.str("customs"),
		},
		Pricing: Pricing{
			PriceY1Y5: f.str("price_y1_y5"),
			Currency:  f.str("currency"),
		},
		Sustainability: Sustainability{
			CILimit:          f.str("ci_limit"),
			Certification:    f.str("certification"),
			AuditRequired:    f.flag("audit_required"),
			AuditorSignature: f.str("auditor_signature"),
		},
		Commencement: Commencement{
			CommencementRule: f.str("commencement_rule"),
			LongStopDate:     f.str("long_stop_date"),
		},
	}
	rec.SetProvenance(v.Raw, v.Structured, false)
	return rec
}
