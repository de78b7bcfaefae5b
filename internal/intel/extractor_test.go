package intel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_NameJobTitleAndLocation(t *testing.T) {
	rec := NewExtractor().Extract("myself Vinod, general manager of state bank of india, delhi branch")

	assert.Contains(t, rec[ScammerName], "Vinod")
	require.NotEmpty(t, rec[JobTitle])
	assert.Contains(t, rec[JobTitle], "General Manager")
	for _, title := range rec[JobTitle] {
		assert.NotContains(t, strings.ToLower(title), "vinod")
	}
	assert.Contains(t, rec[Location], "Delhi")
	assert.Contains(t, rec[CompanyNames], "State Bank of India")
}

func TestExtractor_VoiceSpokenHandleAndPhone(t *testing.T) {
	rec := NewExtractor().Extract("Send to rajesh at paytm. My number is nine eight seven six five four three two one zero.")

	assert.Equal(t, []string{"rajesh@paytm"}, rec[UPIIDs])
	assert.Equal(t, []string{"9876543210"}, rec[PhoneNumbers])
	assert.Empty(t, rec[BankAccounts])
}

func TestExtractor_EighteenDigitsIsBankAccount(t *testing.T) {
	rec := NewExtractor().Extract("123456789012345678")

	assert.Equal(t, []string{"123456789012345678"}, rec[BankAccounts])
	assert.Empty(t, rec[PhoneNumbers])
}

func TestExtractor_GroupedCardIsNotPhone(t *testing.T) {
	rec := NewExtractor().Extract("My card 4111 1111 1111 1111 expires soon")

	assert.Equal(t, []string{"4111 1111 1111 1111"}, rec[BankAccounts])
	assert.Empty(t, rec[PhoneNumbers])
}

func TestExtractor_PhoneDedupByDigits(t *testing.T) {
	rec := NewExtractor().Extract("Call +91 98765 43210 or 9876543210")

	assert.Equal(t, []string{"+919876543210"}, rec[PhoneNumbers])
	assert.Empty(t, rec[BankAccounts])
}

func TestExtractor_NameStoplist(t *testing.T) {
	rec := NewExtractor().Extract("this is support calling about your card")

	assert.Empty(t, rec[ScammerName])
}

func TestExtractor_Names(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"two word capitalized", "I am Rajesh Kumar from SBI", "Rajesh Kumar"},
		{"my name is lowercase", "hello, my name is rahul sharma", "Rahul"},
		{"calling", "this is Amit calling from head office", "Amit"},
		{"speaking with", "you are speaking with priya", "Priya"},
	}

	extractor := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := extractor.Extract(tt.text)
			assert.Contains(t, rec[ScammerName], tt.want)
		})
	}
}

func TestExtractor_ValidatedPhoneBeatsStrayDigitRun(t *testing.T) {
	// Normalization turns "phone" into "ph1"; the stray 1 must not be
	// glued onto the mobile number that follows.
	for _, text := range []string{
		"Call my phone 9876543210 now",
		"it is done 9876543210",
		"anyone 98765 43210 or 9876543210",
	} {
		t.Run(text, func(t *testing.T) {
			rec := NewExtractor().Extract(text)
			assert.Equal(t, []string{"9876543210"}, rec[PhoneNumbers])
		})
	}
}

func TestExtractor_InstitutionIsNotAName(t *testing.T) {
	tests := []string{
		"This is State Bank calling about your card",
		"I am Rajesh Manager",
		"myself Customer Care",
	}
	extractor := NewExtractor()
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			assert.Empty(t, extractor.Extract(text)[ScammerName])
		})
	}
}

func TestExtractor_JobTitleKeepsSpecificMatch(t *testing.T) {
	rec := NewExtractor().Extract("Call our branch manager. The manager is busy.")

	assert.Equal(t, []string{"Our Branch Manager"}, rec[JobTitle])
}

func TestExtractor_LocationPrefersLongerPlace(t *testing.T) {
	rec := NewExtractor().Extract("I am calling from Navi Mumbai")

	assert.Equal(t, []string{"Navi Mumbai"}, rec[Location])
	assert.Empty(t, rec[ScammerName])
}

func TestExtractor_URLsUseRawText(t *testing.T) {
	rec := NewExtractor().Extract("Click http://bit.ly/kyc-one-update.")

	assert.Equal(t, []string{"http://bit.ly/kyc-one-update"}, rec[PhishingLinks])
}

func TestExtractor_KeywordsInVocabularyOrder(t *testing.T) {
	rec := NewExtractor().Extract("Verify now! Your KYC will expire, act now")

	assert.Equal(t, []string{"expire", "act now", "verify now", "KYC"}, rec[SuspiciousKeywords])
}

func TestExtractor_WithoutNormalization(t *testing.T) {
	rec := NewExtractor(WithoutNormalization()).Extract("send to rajesh at paytm, nine eight seven six five four three two one zero")

	assert.Empty(t, rec[UPIIDs])
	assert.Empty(t, rec[PhoneNumbers])
}

func TestExtractor_EmptyInputHasEveryCategory(t *testing.T) {
	rec := NewExtractor().Extract("")

	for _, c := range Categories {
		values, ok := rec[c]
		assert.True(t, ok, "missing category %s", c)
		assert.Empty(t, values)
	}
}

func TestExtractor_NoSubstringDuplicatesWithinCategory(t *testing.T) {
	text := "I am Ravi, senior account manager and the manager of fraud department. " +
		"Pay to ravi@ybl or ravi@ybl now, call 9876543210, +91-9876543210. " +
		"Visit https://sbi-kyc.example/verify or https://sbi-kyc.example/verify/now urgent verify now"
	rec := NewExtractor().Extract(text)

	for _, c := range Categories {
		values := rec[c]
		for i, a := range values {
			for j, b := range values {
				if i == j {
					continue
				}
				assert.False(t, strings.Contains(strings.ToLower(b), strings.ToLower(a)),
					"category %s holds %q inside %q", c, a, b)
			}
		}
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Vinod, General Manager", titleCase("vinod, GENERAL manager"))
	assert.Equal(t, "", titleCase(""))
}
