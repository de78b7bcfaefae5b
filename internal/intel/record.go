// Package intel turns counterpart messages into structured scam intelligence:
// voice-aware normalization, deterministic extraction, heuristic scoring and
// set-union aggregation across turns.
package intel

import (
	"encoding/json"
	"strings"
)

// Category names one kind of extracted intelligence.
type Category string

const (
	ScammerName        Category = "scammerName"
	BankAccounts       Category = "bankAccounts"
	UPIIDs             Category = "upiIds"
	PhishingLinks      Category = "phishingLinks"
	PhoneNumbers       Category = "phoneNumbers"
	JobTitle           Category = "jobTitle"
	CompanyNames       Category = "companyNames"
	Location           Category = "location"
	SuspiciousKeywords Category = "suspiciousKeywords"
)

// Categories lists every canonical category in wire order.
var Categories = []Category{
	ScammerName,
	BankAccounts,
	UPIIDs,
	PhishingLinks,
	PhoneNumbers,
	JobTitle,
	CompanyNames,
	Location,
	SuspiciousKeywords,
}

// categoryAliases folds the reduced key sets some producers emit onto the canonical ones.
var categoryAliases = map[string]Category{
	"urls":            PhishingLinks,
	"links":           PhishingLinks,
	"bank_details":    BankAccounts,
	"bankdetails":     BankAccounts,
	"bank_accounts":   BankAccounts,
	"scammer_name":    ScammerName,
	"name":            ScammerName,
	"upi_ids":         UPIIDs,
	"emailaddresses":  UPIIDs,
	"email_addresses": UPIIDs,
	"phone_numbers":   PhoneNumbers,
	"phones":          PhoneNumbers,
	"job_title":       JobTitle,
	"company_names":   CompanyNames,
	"company":         CompanyNames,
	"locations":       Location,
	"keywords":        SuspiciousKeywords,
}

// ParseCategory resolves a canonical key or a known alias.
func ParseCategory(key string) (Category, bool) {
	trimmed := strings.TrimSpace(key)
	for _, c := range Categories {
		if string(c) == trimmed {
			return c, true
		}
	}
	lower := strings.ToLower(trimmed)
	for _, c := range Categories {
		if strings.ToLower(string(c)) == lower {
			return c, true
		}
	}
	c, ok := categoryAliases[lower]
	return c, ok
}

// Record maps each category to an ordered list of unique values.
// Use NewRecord; a nil Record is readable but not writable.
type Record map[Category][]string

// NewRecord returns a record with every canonical category present and empty.
func NewRecord() Record {
	r := make(Record, len(Categories))
	for _, c := range Categories {
		r[c] = []string{}
	}
	return r
}

// Get returns the values of a category.
func (r Record) Get(c Category) []string {
	return r[c]
}

// Add appends values that are not already present (exact match).
func (r Record) Add(c Category, values ...string) {
	existing := r[c]
	if existing == nil {
		existing = []string{}
	}
	for _, v := range values {
		if v == "" || contains(existing, v) {
			continue
		}
		existing = append(existing, v)
	}
	r[c] = existing
}

// Total counts values across all categories.
func (r Record) Total() int {
	n := 0
	for _, c := range Categories {
		n += len(r[c])
	}
	return n
}

// Clone deep-copies the record, filling in missing categories.
func (r Record) Clone() Record {
	out := NewRecord()
	for _, c := range Categories {
		out[c] = append(out[c], r[c]...)
	}
	return out
}

// Restrict returns a copy holding only the given categories.
func (r Record) Restrict(categories ...Category) map[Category][]string {
	out := make(map[Category][]string, len(categories))
	for _, c := range categories {
		values := append([]string{}, r[c]...)
		out[c] = values
	}
	return out
}

// MarshalJSON always emits every canonical key, with [] for empty categories.
func (r Record) MarshalJSON() ([]byte, error) {
	ordered := make([]byte, 0, 256)
	ordered = append(ordered, '{')
	for i, c := range Categories {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		key, err := json.Marshal(string(c))
		if err != nil {
			return nil, err
		}
		values := r[c]
		if values == nil {
			values = []string{}
		}
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, key...)
		ordered = append(ordered, ':')
		ordered = append(ordered, encoded...)
	}
	ordered = append(ordered, '}')
	return ordered, nil
}

// UnmarshalJSON accepts canonical keys and aliases; unknown keys are ignored.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := NewRecord()
	for key, values := range raw {
		c, ok := ParseCategory(key)
		if !ok {
			continue
		}
		out.Add(c, values...)
	}
	*r = out
	return nil
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
