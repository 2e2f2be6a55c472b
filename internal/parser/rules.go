package parser

import "regexp"

// Defaults applied when a field cannot be extracted.
const (
	DefaultCategory    = "Ngân hàng"
	DefaultInstitution = "Bank"
)

// rawExcerptLimit bounds the body excerpt carried on a record for review.
const rawExcerptLimit = 500

// financialKeywords is the inclusion gate: at least one must appear in the
// normalized content for an email to be considered a candidate transaction.
var financialKeywords = []string{
	"số dư", "giao dịch", "biến động", "biên lai", "thanh toán",
	"chuyển khoản", "nhận tiền", "vừa bị trừ", "vừa nhận được",
	"vietcombank", "techcombank", "mbbank", "acb", "tpb", "bidv", "vpbank",
}

// exclusionMarkers reject an email even when the inclusion gate matched.
// Security alerts, password/OTP notices and promotions mention transaction
// vocabulary without describing a transaction.
var exclusionMarkers = []string{
	"login alert", "mật khẩu", "otp", "security", "quảng cáo",
}

// institutions maps a lowercase token to the display name of the issuing
// bank. Scanned in order; first match wins.
var institutions = []struct {
	token string
	name  string
}{
	{"vietcombank", "Vietcombank"},
	{"techcombank", "Techcombank"},
	{"mbbank", "MBBank"},
	{"tpb", "TPBank"},
	{"acb", "ACB"},
	{"bidv", "BIDV"},
	{"vpbank", "VPBank"},
}

// incomeTerms and expenseTerms drive direction classification over the
// normalized content. The sign patterns catch explicitly signed amounts like
// "+5,000,000" or "-120.000"; a bare "+"/"-" is too common in addresses and
// dates to be a usable signal.
var (
	incomeTerms  = []string{"nhận được", "cộng"}
	expenseTerms = []string{"bị trừ", "thanh toán"}

	incomeSign  = regexp.MustCompile(`\+\s?\d{1,3}[,.]\d{3}`)
	expenseSign = regexp.MustCompile(`-\s?\d{1,3}[,.]\d{3}`)
)

// amountPatterns match a currency-tagged number in the raw body: digits with
// thousands separators immediately followed by the VND currency code. The
// comma-separated form is tried before the dot-separated one.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([\d,]{4,})\s?VND`),
	regexp.MustCompile(`(?i)([\d.]{4,})\s?VND`),
}
