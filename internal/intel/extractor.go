package intel

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Names keep the capitalization of the raw text.
	namePattern       = regexp.MustCompile(`\b(?i:myself|i am|this is|i'm)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	nameLoosePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmy name is\s+([a-z]+)`),
		regexp.MustCompile(`(?i)\bthis is\s+([a-z]+)\s+calling\b`),
		regexp.MustCompile(`(?i)\bspeaking with\s+([a-z]+)`),
	}

	bankRunPattern     = regexp.MustCompile(`\b\d{11,18}\b`)
	bankGroupedPattern = regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)

	upiPattern = regexp.MustCompile(`[\w.\-]+@[a-zA-Z0-9]+`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[\s\-]?\d(?:[\s\-]?\d){8,14}`),
		regexp.MustCompile(`\b[6-9]\d{9}\b`),
		regexp.MustCompile(`\b\d{3}[-\s]\d{3}[-\s]\d{4}\b`),
	}
	spokenPhonePattern = regexp.MustCompile(`\+?\d(?:\s*[\-\.]?\s*\d){9,}`)
	phoneSeparators    = regexp.MustCompile(`[\s\-\.]`)

	urlPattern = regexp.MustCompile(`https?://[^\s<>"'` + "`" + `]+`)

	jobFiller = regexp.MustCompile(`(?i)^(?:(?:i am|myself|this is|is|am|a|an|the|your)\s+)+`)

	cityPatterns      = compileGazetteer(cityGazetteer)
	placePattern      = regexp.MustCompile(`\b(?:at|from|in)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	companyPattern    = regexp.MustCompile(`\b(?:from|of)\s+((?:[A-Z][A-Za-z&]*\s+){0,3}(?:Bank|Ltd|Limited|Pvt|Services|Finance|Insurance|Technologies|Corporation|Corp))\b`)
	jobKeywordRegexes = compileJobKeywords(jobKeywords)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithoutNormalization matches numeric and handle rules against the raw text.
// Typed channels use it; voice transcripts need normalization.
func WithoutNormalization() Option {
	return func(e *Extractor) {
		e.normalize = false
	}
}

// Extractor applies the layered pattern rules to one message. It holds no
// mutable state and is safe for concurrent use.
type Extractor struct {
	normalize bool
}

// NewExtractor returns an extractor with voice normalization enabled.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{normalize: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns every category present, possibly empty. It never fails.
func (e *Extractor) Extract(raw string) Record {
	matchText := raw
	if e.normalize {
		matchText = Normalize(raw)
	}

	names := Dedupe(extractNames(raw))
	banks := Dedupe(extractBankAccounts(matchText))
	phones := Dedupe(excludeBankDigits(extractPhones(matchText), banks))
	jobs := Dedupe(stripNames(Dedupe(extractJobTitles(raw)), names))

	rec := NewRecord()
	rec[ScammerName] = names
	rec[BankAccounts] = banks
	rec[UPIIDs] = Dedupe(upiPattern.FindAllString(matchText, -1))
	rec[PhishingLinks] = Dedupe(extractURLs(raw))
	rec[PhoneNumbers] = phones
	rec[JobTitle] = jobs
	rec[CompanyNames] = Dedupe(extractCompanies(raw))
	rec[Location] = Dedupe(extractLocations(raw))
	rec[SuspiciousKeywords] = Dedupe(extractKeywords(raw))
	return rec
}

func extractNames(raw string) []string {
	var out []string
	for _, m := range namePattern.FindAllStringSubmatch(raw, -1) {
		if name, ok := acceptName(m[1]); ok {
			out = append(out, name)
		}
	}
	for _, p := range nameLoosePatterns {
		for _, m := range p.FindAllStringSubmatch(raw, -1) {
			if name, ok := acceptName(titleCase(m[1])); ok {
				out = append(out, name)
			}
		}
	}
	return out
}

// acceptName rejects any capture containing a stoplisted noun: "State Bank"
// names an institution, not a person.
func acceptName(candidate string) (string, bool) {
	words := strings.Fields(candidate)
	if len(words) == 0 {
		return "", false
	}
	for _, w := range words {
		if _, stop := nameStoplist[strings.ToLower(w)]; stop {
			return "", false
		}
	}
	return strings.Join(words, " "), true
}

func extractBankAccounts(text string) []string {
	var out []string
	for _, loc := range bankRunPattern.FindAllStringIndex(text, -1) {
		// "+91..." is an international phone number, not an account.
		if loc[0] > 0 && text[loc[0]-1] == '+' {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
	}
	out = append(out, bankGroupedPattern.FindAllString(text, -1)...)
	return out
}

func extractPhones(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(match string) {
		value := canonicalPhone(match)
		key := strings.TrimPrefix(value, "+")
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}

	var validated []string
	for _, p := range phonePatterns {
		for _, m := range p.FindAllString(text, -1) {
			add(m)
			validated = append(validated, strings.TrimPrefix(canonicalPhone(m), "+"))
		}
	}
	for _, m := range spokenPhonePattern.FindAllString(text, -1) {
		digits := phoneSeparators.ReplaceAllString(strings.TrimPrefix(m, "+"), "")
		if len(digits) < 10 || len(digits) > 15 {
			continue
		}
		// An unbroken run of 11+ digits without a country prefix is an account number.
		if !strings.HasPrefix(m, "+") && len(digits) > 10 && digits == m {
			continue
		}
		// A run that swallowed a stray digit ("ph1 98765...") around a
		// validated number loses to it.
		if extendsValidated(digits, validated) {
			continue
		}
		add(m)
	}
	return out
}

func extendsValidated(digits string, validated []string) bool {
	for _, v := range validated {
		if len(digits) > len(v) && strings.Contains(digits, v) {
			return true
		}
	}
	return false
}

// canonicalPhone reduces a match to its digits, keeping a leading "+".
func canonicalPhone(match string) string {
	var b strings.Builder
	for i, r := range match {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func excludeBankDigits(phones, banks []string) []string {
	if len(banks) == 0 {
		return phones
	}
	bankDigits := make(map[string]struct{}, len(banks))
	for _, b := range banks {
		bankDigits[canonicalPhone(b)] = struct{}{}
	}
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		if _, clash := bankDigits[strings.TrimPrefix(p, "+")]; clash {
			continue
		}
		out = append(out, p)
	}
	return out
}

func extractURLs(raw string) []string {
	matches := urlPattern.FindAllString(raw, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:!?)]}")
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

func extractJobTitles(raw string) []string {
	var out []string
	for _, re := range jobKeywordRegexes {
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			title := strings.TrimSpace(jobFiller.ReplaceAllString(strings.TrimSpace(m[1]), ""))
			if title == "" {
				continue
			}
			out = append(out, titleCase(title))
		}
	}
	return out
}

// stripNames removes captured name tokens from job titles.
func stripNames(titles, names []string) []string {
	if len(names) == 0 {
		return titles
	}
	var tokens []*regexp.Regexp
	for _, name := range names {
		for _, tok := range strings.Fields(name) {
			tokens = append(tokens, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(tok)+`\b`))
		}
	}
	out := make([]string, 0, len(titles))
	for _, title := range titles {
		for _, tok := range tokens {
			title = tok.ReplaceAllString(title, "")
		}
		title = whitespaceRun.ReplaceAllString(title, " ")
		title = strings.Trim(title, " ,")
		if title != "" {
			out = append(out, title)
		}
	}
	return out
}

func extractLocations(raw string) []string {
	var out []string
	for i, re := range cityPatterns {
		if re.MatchString(raw) {
			out = append(out, cityGazetteer[i])
		}
	}
	for _, m := range placePattern.FindAllStringSubmatch(raw, -1) {
		if isPlace(m[1]) {
			out = append(out, m[1])
		}
	}
	return out
}

func isPlace(candidate string) bool {
	for _, word := range strings.Fields(candidate) {
		if _, stop := locationStoplist[strings.ToLower(word)]; stop {
			return false
		}
	}
	return true
}

func extractCompanies(raw string) []string {
	var out []string
	for _, entry := range companyGazetteer {
		if entry.pattern.MatchString(raw) {
			out = append(out, entry.canonical)
		}
	}
	for _, m := range companyPattern.FindAllStringSubmatch(raw, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

func extractKeywords(raw string) []string {
	lower := strings.ToLower(raw)
	var out []string
	for _, kw := range suspiciousVocabulary {
		if strings.Contains(lower, strings.ToLower(kw)) {
			out = append(out, kw)
		}
	}
	return out
}

// titleCase upper-cases the first letter of every letter run and lower-cases the rest.
func titleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	prevLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if !prevLetter {
				runes[i] = unicode.ToUpper(r)
			}
			prevLetter = true
			continue
		}
		prevLetter = false
	}
	return string(runes)
}

func compileGazetteer(names []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(names))
	for i, name := range names {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	}
	return out
}

func compileJobKeywords(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		out[i] = regexp.MustCompile(`(?i)((?:\w+\W+){0,2}\b` + regexp.QuoteMeta(kw) + `\b)`)
	}
	return out
}
