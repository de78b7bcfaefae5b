package intel

import "regexp"

// suspiciousVocabulary is reported in this order. Hinglish terms follow the
// English ones.
var suspiciousVocabulary = []string{
	"urgent", "verify", "suspended", "blocked", "immediately",
	"account", "security", "update", "confirm", "expire",
	"risk", "unauthorized", "unusual activity", "click here",
	"limited time", "act now", "verify now", "customer care",
	"prize", "winner", "congratulations", "refund", "KYC",
	"turant", "jaldi", "band ho jayega", "khata", "paise bhejo",
}

var jobKeywords = []string{
	"manager", "officer", "department", "division", "supervisor", "agent", "support",
}

// nameStoplist rejects generic nouns captured by the name triggers.
var nameStoplist = map[string]struct{}{
	"scam": {}, "support": {}, "bank": {}, "manager": {},
	"calling": {}, "customer": {}, "officer": {}, "team": {},
	"department": {}, "from": {}, "your": {}, "the": {}, "sir": {}, "madam": {},
}

// locationStoplist rejects "from X" captures that name an organisation rather than a place.
var locationStoplist = map[string]struct{}{
	"bank": {}, "department": {}, "support": {}, "customer": {}, "care": {},
	"team": {}, "services": {}, "ltd": {}, "limited": {}, "insurance": {},
	"police": {}, "court": {}, "cyber": {}, "branch": {}, "office": {},
}

var cityGazetteer = []string{
	"New Delhi", "Delhi", "Mumbai", "Bangalore", "Bengaluru", "Chennai", "Kolkata",
	"Hyderabad", "Pune", "Ahmedabad", "Gurgaon", "Gurugram", "Noida", "Jaipur",
	"Lucknow", "Chandigarh", "Kochi", "Indore", "Bhopal", "Patna", "Nagpur", "Surat",
}

type gazetteerEntry struct {
	pattern   *regexp.Regexp
	canonical string
}

// companyGazetteer covers institutions and payment brands commonly impersonated.
var companyGazetteer = []gazetteerEntry{
	{regexp.MustCompile(`(?i)\b(state bank of india|sbi)\b`), "State Bank of India"},
	{regexp.MustCompile(`(?i)\breserve bank of india\b|\brbi\b`), "Reserve Bank of India"},
	{regexp.MustCompile(`(?i)\bpunjab national bank\b|\bpnb\b`), "Punjab National Bank"},
	{regexp.MustCompile(`(?i)\bbank of baroda\b`), "Bank of Baroda"},
	{regexp.MustCompile(`(?i)\bhdfc\b`), "HDFC Bank"},
	{regexp.MustCompile(`(?i)\bicici\b`), "ICICI Bank"},
	{regexp.MustCompile(`(?i)\baxis bank\b`), "Axis Bank"},
	{regexp.MustCompile(`(?i)\bkotak\b`), "Kotak Mahindra Bank"},
	{regexp.MustCompile(`(?i)\bpaytm\b`), "Paytm"},
	{regexp.MustCompile(`(?i)\bphone\s?pe\b`), "PhonePe"},
	{regexp.MustCompile(`(?i)\bgoogle pay\b|\bgpay\b`), "Google Pay"},
	{regexp.MustCompile(`(?i)\bamazon\b`), "Amazon"},
	{regexp.MustCompile(`(?i)\bflipkart\b`), "Flipkart"},
	{regexp.MustCompile(`(?i)\bairtel\b`), "Airtel"},
	{regexp.MustCompile(`(?i)\bjio\b`), "Jio"},
	{regexp.MustCompile(`(?i)\bincome tax\b`), "Income Tax Department"},
	{regexp.MustCompile(`(?i)\btrai\b`), "TRAI"},
	{regexp.MustCompile(`(?i)\bcbi\b`), "CBI"},
	{regexp.MustCompile(`(?i)\bfedex\b`), "FedEx"},
	{regexp.MustCompile(`(?i)\bmicrosoft\b`), "Microsoft"},
}
