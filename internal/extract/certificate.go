package extract

// Vocabularies for keyword fallbacks when the structural pattern misses.
var (
	schemeTerms = []VocabTerm{
		{Match: "ISCC EU"},
		{Match: "REDcert EU"},
		{Match: "ISCC"},
		{Match: "REDcert"},
	}

	feedstockTerms = []VocabTerm{
		{Match: "used cooking oil"},
		{Match: "uco"},
		{Match: "corn starch"},
		{Match: "animal fat"},
		{Match: "wood residues"},
		{Match: "rapeseed"},
		{Match: "soybean"},
		{Match: "palm oil"},
		{Match: "wheat straw"},
		{Match: "forest residues"},
		{Match: "waste"},
		{Match: "residue"},
	}

	fuelTerms = []VocabTerm{
		{Match: "hvo"},
		{Match: "hydrotreated vegetable oil"},
		{Match: "fame"},
		{Match: "biodiesel"},
		{Match: "bioethanol"},
		{Match: "biogas"},
		{Match: "e-methanol"},
		{Match: "rme"},
		{Match: "renewable diesel"},
	}

	custodyTerms = []VocabTerm{
		{Match: "mass balance", Value: "Mass Balance"},
		{Match: "segregat", Value: "Segregated"},
	}
)

var certificateRules = []Rule{
	// Combined CI line first: "CI (LCA): -51.2 gCO2e/MJ (limit ≤ -49.5)".
	// OCR variants render the subscript 2, the 'e' suffix and the slash as
	// placeholder glyphs, and the minus as a Unicode minus.
	multi(`CI\s*\(LCA\)[\s:]+([−\-]?[0-9\.]+)\s*gCO[■₂2]?[■e]*[/■]*MJ\s*\(limit\s*[≤<=]+\s*([−\-]?[0-9\.]+)\)`,
		capture("ci_lca", 1, cleanGlyphs, trimmed),
		capture("ci_limit", 2, cleanGlyphs, trimmed),
	),
	rule("ci_lca", `CI\s*\(LCA\)[\s:]+([−\-]?[0-9\.]+)`, cleanGlyphs, trimmed),
	rule("ci_limit", `limit\s*[≤<=]+\s*([−\-]?[0-9\.]+)`, cleanGlyphs, trimmed),

	rule("pos_id", `PoS ID[\s:]+([A-Z0-9■\-]+)`, cleanGlyphs, trimmed),
	rule("scheme", `Scheme[\s:]+([^\n]+)`, trimmed),
	VocabRule{Field: "scheme", Terms: schemeTerms},
	rule("issuer", `Issuer[\s:]+([^\n]+)`, trimmed),
	rule("issue_date", `Issue Date[\s:]+(\d{4}[■\-]\d{2}[■\-]\d{2})`, cleanGlyphs),
	rule("validity", `Validity\s*[:：]\s*(\d+\s*Years?)`, trimmed),

	rule("supplier", `Supplier[\s:]+([^\n]+)`, trimmed),
	rule("recipient", `Recipient[\s:]+([^\n]+)`, trimmed),

	rule("batch_id", `Batch ID[\s:]+([A-Z0-9■\-]+)`, cleanGlyphs, trimmed),
	multi(`Batch Volume[\s:]+([0-9\.]+)\s*(t|tonnes|MT|kg)?`,
		capture("batch_volume", 1, trimmed),
		capture("batch_volume_unit", 2, trimmed),
	),
	multi(`Energy Content[\s:]+([0-9\.]+)\s*(MWh|kWh|GJ|MJ)?`,
		capture("energy_content", 1, trimmed),
		capture("energy_content_unit", 2, trimmed),
	),

	VocabRule{Field: "custody_model", Terms: custodyTerms},
	flag("no_double_counting",
		`No Double Counting[\s:]*TRUE`,
		`Double Counting[\s:]*(?:No|FALSE)`,
	),

	rule("feedstock_type", `(?:Type of Raw Material|Feedstock)[\s:]+([^\n]+)`, trimmed),
	VocabRule{Field: "feedstock_type", Terms: feedstockTerms},
	rule("feedstock_origin", `Country of Origin[\s:]+([^\n]+)`, trimmed),
	flag("is_waste_residue", `waste|residue`),

	rule("fuel_type", `Type of Product[\s:]+([^\n]+)`, trimmed),
	VocabRule{Field: "fuel_type", Terms: fuelTerms},
	multi(`Quantity[\s:|]+([0-9,\.]+)\s*(m3|metric tons|tonnes|liters)?`,
		capture("fuel_quantity", 1, stripThousands, trimmed),
		capture("fuel_unit", 2, trimmed),
	),
	rule("fuel_energy_mj", `Energy content.*?([0-9][0-9,\s\.]*)\s*MJ`, stripThousands, stripSpaces, trimmed),
	flag("eu_red_compliant", `(?s)EU RED Compliant.*?Yes`),
	flag("iscc_compliant", `(?s)ISCC Compliant.*?Yes`),
}

// Certificate extracts a Proof of Sustainability record. Total: every
// declared field is present in the result for any input, including the empty
// string.
func Certificate(v TextView) *CertificateRecord {
	f := Apply(v.Active(), certificateRules)
	rec := &CertificateRecord{
		Certificate: CertificateInfo{
			PosID:     f.str("pos_id"),
			Scheme:    f.str("scheme"),
			Issuer:    f.str("issuer"),
			IssueDate: f.str("issue_date"),
			Validity:  f.str("validity"),
		},
		Parties: CertificateParties{
			Supplier:  f.str("supplier"),
			Recipient: f.str("recipient"),
		},
		Batch: BatchInfo{
			BatchID:           f.str("batch_id"),
			BatchVolume:       f.str("batch_volume"),
			BatchVolumeUnit:   f.str("batch_volume_unit"),
			EnergyContent:     f.str("energy_content"),
			EnergyContentUnit: f.str("energy_content_unit"),
		},
		GHG: GHGInfo{
			CILCA:   f.str("ci_lca"),
			CILimit: f.str("ci_limit"),
			Unit:    "gCO2e/MJ",
		},
		ChainOfCustody: ChainOfCustody{
			Model:            f.str("custody_model"),
			NoDoubleCounting: f.flag("no_double_counting"),
		},
		Feedstock: FeedstockInfo{
			Type:            f.str("feedstock_type"),
			CountryOfOrigin: f.str("feedstock_origin"),
			IsWasteResidue:  f.flag("is_waste_residue"),
		},
		FuelProduct: FuelProductInfo{
			Type:            f.str("fuel_type"),
			Quantity:        f.str("fuel_quantity"),
			Unit:            f.str("fuel_unit"),
			EnergyContentMJ: f.str("fuel_energy_mj"),
			EURedCompliant:  f.flag("eu_red_compliant"),
			ISCCCompliant:   f.flag("iscc_compliant"),
		},
	}
	rec.SetProvenance(v.Raw, v.Structured, false)
	return rec
}
