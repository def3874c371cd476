package association

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NameTable maps codes to human-readable display names. It is never mutated
// after construction.
type NameTable struct {
	names map[string]string
}

// NewNameTable copies entries into a new table.
func NewNameTable(entries map[string]string) NameTable {
	names := make(map[string]string, len(entries))
	for code, name := range entries {
		names[code] = name
	}
	return NameTable{names: names}
}

// Lookup returns the display name of code.
func (t NameTable) Lookup(code string) (string, bool) {
	name, ok := t.names[code]
	return name, ok
}

// Has reports whether code has a display name.
func (t NameTable) Has(code string) bool {
	_, ok := t.names[code]
	return ok
}

// Len returns the number of entries.
func (t NameTable) Len() int {
	return len(t.names)
}

// Codes returns every code in the table, sorted.
func (t NameTable) Codes() []string {
	codes := make([]string, 0, len(t.names))
	for code := range t.names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Missing returns the codes that have no display name, sorted and deduplicated.
func (t NameTable) Missing(codes []string) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, code := range codes {
		if t.Has(code) || seen[code] {
			continue
		}
		seen[code] = true
		missing = append(missing, code)
	}
	sort.Strings(missing)
	return missing
}

// Option is one entry of a selector drop-down.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options builds selector options for codes, ordered alphabetically by
// display name. Codes without a display name are skipped.
func (t NameTable) Options(codes []string) []Option {
	options := make([]Option, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		name, ok := t.names[code]
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		options = append(options, Option{Value: code, Label: name})
	}

	cl := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(options, func(i, j int) bool {
		return cl.CompareString(options[i].Label, options[j].Label) < 0
	})
	return options
}

// Names bundles the label and predictor display-name tables.
type Names struct {
	Labels     NameTable
	Predictors NameTable
}

// DefaultNames returns the built-in display names for the donor study.
func DefaultNames() Names {
	return Names{
		Labels:     NewNameTable(labelNames),
		Predictors: NewNameTable(predictorNames),
	}
}

var predictorNames = map[string]string{
	"donorparity":      "Donor parity",
	"idbloodgroupcat":  "ABO identical transfusion",
	"meandonationtime": "Time of donation",
	"meandonorage":     "Age of Donor",
	"meandonorhb":      "Donor Hb",
	"meandonorsex":     "Donor sex",
	"meanstoragetime":  "Storage time (days)",
	"meanweekday":      "Weekday of donation",
	"numdoncat":        "Donors prior number of donations",
	"timesincecat":     "Time since donors previous donation",
}

var labelNames = map[string]string{
	"ALAT":     "ALT",
	"ALB":      "Albumin",
	"ALP":      "ALP",
	"APTT":     "aPTT",
	"ASAT":     "AST",
	"BASOF":    "Basophiles",
	"BE":       "Base Excess",
	"BILI":     "Bilirubin",
	"EVF":      "EVF",
	"BILI_K":   "Conjugated bilirubin",
	"BLAST":    "Blast cells",
	"CA":       "Calcium",
	"CA_F":     "Free Calcium",
	"CL":       "Chloride",
	"CO2":      "Carbon Dioxide",
	"COHB":     "CO-Hb",
	"CRP":      "CRP",
	"EGFR":     "eGFR",
	"EOSINO":   "Eosinophile count",
	"ERYTRO":   "Erythrocyte count",
	"ERYTROBL": "Erythroblasts",
	"FE":       "Iron",
	"FERRITIN": "Ferritin",
	"FIB":      "Fibrinogen",
	"GLUKOS":   "Glucose",
	"GT":       "Glutamyl transferase",
	"HAPTO":    "Haptoglobin",
	"HB":       "Hemoglobin",
	"HBA1C":    "HbA1c",
	"HCT":      "Hematocrit",
	"INR":      "INR",
	"K":        "Potassium",
	"KREA":     "Creatinine",
	"LAKTAT":   "Lactate",
	"LD":       "Lactate dehydrogenase",
	"LPK":      "Leukocyte count",
	"LYMF":     "Lymphocyte count",
	"MCH":      "Mean corpuscular  hemoglobin",
	"MCHC":     "Mean corpuscular  hemoglobin concentration",
	"MCV":      "Mean corpuscular volume",
	"META":     "Metamyelocyte count",
	"METHB":    "Methemoglobin",
	"MONO":     "Monocyte count",
	"MYELO":    "Myelocyte count",
	"NA":       "Sodium",
	"NEUTRO":   "Neutrophile count",
	"NTPROBNP": "NT-ProBNP",
	"OSMO":     "Osmolality",
	"PCO2":     "PaCO2",
	"PH":       "pH",
	"PO2":      "PaO2",
	"RET":      "Reticulocyte count",
	"STDBIK":   "Standard bicarbonate",
	"TPK":      "Platelet count",
	"TRI":      "Triglycerides",
	"TROP_I":   "Troponin I",
	"TROP_T":   "Troponin T",
}
