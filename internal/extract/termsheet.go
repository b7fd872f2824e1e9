package extract

import "regexp"

var termSheetRules = []Rule{
	// TS IDs look like "TS-2025-0042"; whole match, not a capture group.
	PatternRule{
		Pattern:  regexp.MustCompile(`TS[■\-][\w■\-]+`),
		Captures: []Capture{{Field: "ts_id", Group: 0, Post: []func(string) string{cleanGlyphs, trimmed}}},
	},
	rule("date", `Date[\s:]+(\d{4}[■\-]\d{2}[■\-]\d{2})`, cleanGlyphs),
	rule("expiry", `Expiry[\s:]+(\d{4}[■\-]\d{2}[■\-]\d{2})`, cleanGlyphs),

	rule("seller", `Seller[\s:]+([^\n;]+)`, trimmed),
	rule("buyer", `Buyer[\s:]+([^\n;]+)`, trimmed),

	multi(`ACQ.*?(\d+[\s,]*\d*)\s*(t/yr|tonnes/year|MT/year)`,
		capture("acq", 1, stripSpaces, stripThousands),
		capture("acq_unit", 2, trimmed),
	),
	rule("delivery", `Delivery[\s:]+([^\n]+)`, trimmed),
	rule("pricing", `Pricing[\s:]+([^\n]+)`, trimmed),

	rule("ci_target", `CI Target[\s:]+([≤<]+\s*[-−]?\s*[\d\.]+\s*gCO[■₂2]?/MJ)`, trimmed),
	rule("scheme", `Scheme[\s:]+([^\n]+)`, trimmed),
	VocabRule{Field: "scheme", Terms: schemeTerms},

	rule("commencement", `Commencement[\s:]+([^\n;]+)`, trimmed),
	rule("long_stop", `Long[■\-\s]*Stop[\s:]+(\d{4}[■\-]\d{2}[■\-]\d{2})`, cleanGlyphs),
}

// TermSheet extracts a term sheet record.
func TermSheet(v TextView) *TermSheetRecord {
	f := Apply(v.Active(), termSheetRules)
	rec := &TermSheetRecord{
		Identifiers: TermSheetIdentifiers{
			TSID:   f.str("ts_id"),
			Date:   f.str("date"),
			Expiry: f.str("expiry"),
		},
		Parties: TermSheetParties{
			Seller: f.str("seller"),
			Buyer:  f.str("buyer"),
		},
		Commercial: CommercialTerms{
			ACQ:      f.str("acq"),
			ACQUnit:  f.str("acq_unit"),
			Delivery: f.str("delivery"),
			Pricing:  f.str("pricing"),
		},
		Sustainability: TermSheetSustainability{
			CITarget: f.str("ci_target"),
			Scheme:   f.str("scheme"),
		},
		Timing: Timing{
			Commencement: f.str("commencement"),
			LongStop:     f.str("long_stop"),
		},
	}
	rec.SetProvenance(v.Raw, v.Structured, false)
	return rec
}
