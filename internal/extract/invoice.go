package extract

var invoiceRules = []Rule{
	rule("invoice_no", `Invoice No[\s:\.]+([A-Z0-9■\-]+)`, cleanGlyphs, trimmed),
	rule("issue_date", `Issue Date[\s:]+(\d{4}[■\-]\d{2}[■\-]\d{2})`, cleanGlyphs),
	rule("payment_due", `Payment Due[\s:]+(\d{4}[■\-]\d{2}[■\-]\d{2})`, cleanGlyphs),

	rule("supplier", `Supplier[\s:]+([^\n]+)`, trimmed),
	rule("buyer", `Buyer[\s:]+([^\n]+)`, trimmed),

	// Billing period rendered as "start → end"; OCR degrades the arrow.
	multi(`(\d{4}[■\-]\d{2}[■\-]\d{2})\s*[→>■\-]+\s*(\d{4}[■\-]\d{2}[■\-]\d{2})`,
		capture("period_start", 1, cleanGlyphs),
		capture("period_end", 2, cleanGlyphs),
	),

	rule("product", `Product[\s:]+([^\n]+)`, trimmed),
	multi(`Quantity[\s:]+([0-9\.]+)\s*(t|tonnes|MT)`,
		capture("quantity", 1, trimmed),
		capture("unit", 2, trimmed),
	),
	multi(`Unit Price[\s:]+([€$£])([0-9,]+\.\d{2})/t`,
		capture("unit_price_currency", 1),
		capture("unit_price", 2, stripThousands, trimmed),
	),
	multi(`Amount\s*\(excl\.?\s*VAT\)[\s:]+([€$£])([0-9,]+\.\d{2})`,
		capture("amount_currency", 1),
		capture("amount_excl_vat", 2, stripThousands, trimmed),
	),

	rule("incoterm", `Incoterm[\s:]+([^\n]+)`, trimmed),
	rule("customs", `Customs[\s:]+([^\n]+)`, trimmed),
}

// Invoice extracts a delivery invoice record.
func Invoice(v TextView) *InvoiceRecord {
	f := Apply(v.Active(), invoiceRules)
	rec := &InvoiceRecord{
		Identifiers: InvoiceIdentifiers{
			InvoiceNo:  f.str("invoice_no"),
			IssueDate:  f.str("issue_date"),
			PaymentDue: f.str("payment_due"),
		},
		Parties: InvoiceParties{
			Supplier: f.str("supplier"),
			Buyer:    f.str("buyer"),
		},
		BillingPeriod: BillingPeriod{
			PeriodStart: f.str("period_start"),
			PeriodEnd:   f.str("period_end"),
		},
		ProductAmount: ProductAmount{
			Product:           f.str("product"),
			Quantity:          f.str("quantity"),
			Unit:              f.str("unit"),
			UnitPrice:         f.str("unit_price"),
			UnitPriceCurrency: f.str("unit_price_currency"),
			AmountExclVAT:     f.str("amount_excl_vat"),
			AmountCurrency:    f.str("amount_currency"),
		},
		Logistics: Logistics{
			Incoterm: f.str("incoterm"),
			Customs:  f.str("customs"),
		},
	}
	rec.SetProvenance(v.Raw, v.Structured, false)
	return rec
}
