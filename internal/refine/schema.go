package refine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Document names one refinable document type: its prompt wording and the
// schema a refined record must satisfy.
type Document struct {
	Name         string
	Title        string
	Instructions []string
	Schema       map[string]any
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func boolean() map[string]any {
	return map[string]any{"type": "boolean"}
}

func object(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

var CertificateDoc = Document{
	Name:  "certificate",
	Title: "Proof of Sustainability (PoS)",
	Instructions: []string{
		"Extract certificate info (PoS ID, scheme, issuer, issue date)",
		"Extract parties (supplier, recipient)",
		"Extract batch info (batch ID, volume, energy content)",
		"Extract GHG info (CI LCA value, CI limit, both should be negative numbers)",
		"Extract chain of custody (model like \"Mass Balance\", no double counting status)",
		"Handle merged fields and table structures",
		"Clean special characters (■ → -, − → -)",
		"Preserve negative signs in CI values (e.g., -51.2, -49.5)",
		"If a field is missing, keep it as null",
	},
	Schema: object(map[string]any{
		"certificate": object(map[string]any{
			"pos_id":     nullableString(),
			"scheme":     nullableString(),
			"issuer":     nullableString(),
			"issue_date": nullableString(),
			"validity":   nullableString(),
		}),
		"parties": object(map[string]any{
			"supplier":  nullableString(),
			"recipient": nullableString(),
		}),
		"batch": object(map[string]any{
			"batch_id":            nullableString(),
			"batch_volume":        nullableString(),
			"batch_volume_unit":   nullableString(),
			"energy_content":      nullableString(),
			"energy_content_unit": nullableString(),
		}),
		"ghg": object(map[string]any{
			"ci_lca":   nullableString(),
			"ci_limit": nullableString(),
			"unit":     nullableString(),
		}),
		"chain_of_custody": object(map[string]any{
			"model":              nullableString(),
			"no_double_counting": boolean(),
		}),
		"feedstock": object(map[string]any{
			"type":              nullableString(),
			"country_of_origin": nullableString(),
			"is_waste_residue":  boolean(),
		}),
		"fuel_product": object(map[string]any{
			"type":              nullableString(),
			"quantity":          nullableString(),
			"unit":              nullableString(),
			"energy_content_mj": nullableString(),
			"eu_red_compliant":  boolean(),
			"iscc_compliant":    boolean(),
		}),
	}),
}

var InvoiceDoc = Document{
	Name:  "invoice",
	Title: "commodity delivery invoice",
	Instructions: []string{
		"Extract identifiers (invoice number, issue date, payment due date)",
		"Extract parties (supplier, buyer)",
		"Extract billing period (start and end dates in YYYY-MM-DD form)",
		"Extract product, quantity, unit, unit price and total amount",
		"Extract logistics (incoterm, customs status)",
		"Handle merged fields and table structures",
		"Clean special characters (■ → -, − → -)",
		"If a field is missing, keep it as null",
	},
	Schema: object(map[string]any{
		"identifiers": object(map[string]any{
			"invoice_no":  nullableString(),
			"issue_date":  nullableString(),
			"payment_due": nullableString(),
		}),
		"parties": object(map[string]any{
			"supplier": nullableString(),
			"buyer":    nullableString(),
		}),
		"billing_period": object(map[string]any{
			"period_start": nullableString(),
			"period_end":   nullableString(),
		}),
		"product_amount": object(map[string]any{
			"product":             nullableString(),
			"quantity":            nullableString(),
			"unit":                nullableString(),
			"unit_price":          nullableString(),
			"unit_price_currency": nullableString(),
			"amount_excl_vat":     nullableString(),
			"amount_currency":     nullableString(),
		}),
		"logistics": object(map[string]any{
			"incoterm": nullableString(),
			"customs":  nullableString(),
		}),
	}),
}

var AgreementDoc = Document{
	Name:  "ppa",
	Title: "power purchase agreement (PPA)",
	Instructions: []string{
		"Extract parties (seller and buyer with registration numbers)",
		"Extract key terms (project ID, commodity, effective date, duration, ACQ, monthly plan with tolerance, delivery, customs)",
		"Extract pricing (Y1-Y5 price and currency)",
		"Extract sustainability compliance (CI limit clause, certification scheme, audit requirement, auditor signature)",
		"Extract commencement (commencement rule, long stop date)",
		"Handle merged fields and table structures",
		"Clean special characters (■ → -, − → -)",
		"Preserve negative signs and ≤ symbols in CI clauses",
		"If a field is missing, keep it as null",
	},
	Schema: object(map[string]any{
		"parties": object(map[string]any{
			"seller": object(map[string]any{
				"name":         nullableString(),
				"registration": nullableString(),
			}),
			"buyer": object(map[string]any{
				"name":         nullableString(),
				"registration": nullableString(),
			}),
		}),
		"key_terms": object(map[string]any{
			"project_id":        nullableString(),
			"commodity":         nullableString(),
			"effective_date":    nullableString(),
			"duration":          nullableString(),
			"acq":               nullableString(),
			"acq_unit":          nullableString(),
			"monthly_plan":      nullableString(),
			"monthly_tolerance": nullableString(),
			"delivery":          nullableString(),
			"customs":           nullableString(),
		}),
		"pricing": object(map[string]any{
			"price_y1_y5": nullableString(),
			"currency":    nullableString(),
		}),
		"sustainability_compliance": object(map[string]any{
			"ci_limit":          nullableString(),
			"certification":     nullableString(),
			"audit_required":    boolean(),
			"auditor_signature": nullableString(),
		}),
		"commencement": object(map[string]any{
			"commencement_rule": nullableString(),
			"long_stop_date":    nullableString(),
		}),
	}),
}

var TermSheetDoc = Document{
	Name:  "termsheet",
	Title: "commodity term sheet",
	Instructions: []string{
		"Extract identifiers (term sheet ID, date, expiry)",
		"Extract parties (seller, buyer)",
		"Extract commercial terms (ACQ with unit, delivery, pricing)",
		"Extract sustainability (CI target clause, certification scheme)",
		"Extract timing (commencement, long stop date)",
		"Handle merged fields and table structures",
		"Clean special characters (■ → -, − → -)",
		"Preserve negative signs and ≤ symbols in CI clauses",
		"If a field is missing, keep it as null",
	},
	Schema: object(map[string]any{
		"identifiers": object(map[string]any{
			"ts_id":  nullableString(),
			"date":   nullableString(),
			"expiry": nullableString(),
		}),
		"parties": object(map[string]any{
			"seller": nullableString(),
			"buyer":  nullableString(),
		}),
		"commercial": object(map[string]any{
			"acq":      nullableString(),
			"acq_unit": nullableString(),
			"delivery": nullableString(),
			"pricing":  nullableString(),
		}),
		"sustainability": object(map[string]any{
			"ci_target": nullableString(),
			"scheme":    nullableString(),
		}),
		"timing": object(map[string]any{
			"commencement": nullableString(),
			"long_stop":    nullableString(),
		}),
	}),
}

// validateAgainstSchema checks a refined record against its schema before
// it is allowed to replace the pattern extraction.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
