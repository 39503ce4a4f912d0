package config

// Application constants
const (
	AppName = "routecleaner"

	DefaultOutputPrefix  = "ΔΡΟΜΟΛΟΓΙΑ"
	DefaultDateLayout    = "02.01.2006"
	DefaultSheetName     = "Sheet1"
	DefaultSeparatorSize = 6
)

// Column names of the delivery export
const (
	ColumnName    = "Επωνυμία"
	ColumnAddress = "Διεύθυνση"
	ColumnArea    = "Περιοχή"
	ColumnRoute   = "Δρομολόγιο"
	ColumnCarrier = "Μεταφορέας"
	ColumnReason  = "Αιτιολογία"
)

// DefaultCategoryOrder is the dispatch order of route groups. Rows whose
// route is not listed here are left out of the sheet.
var DefaultCategoryOrder = []string{
	"XVAN",
	"ΠΡΑΚΤΟΡΕΙΑ",
	"ΑΝΑΤΟΛΙΚΟ",
	"ΒΟΡΕΙΟ",
	"ΓΕΝΙΚΟ",
	"ΕΞΩΤΕΡΙΚΟ",
	"ΚΕΝΤΡΟΔΥΤΙΚΟ",
	"ΝΟΤΙΟ",
	"ΠΕΛΟΠΟΝΝΗΣΟΣ",
	"ΣΤΕΡΕΑ",
	"ΜΕΤΑΦΟΡΕΑΣ",
	"ΤΑΚΗΣ ΜΕΤΑΦΟΡΙΚΗ",
	"ΤΣΟΥΛΟΣ",
	"ΒΑΓΙΑΣ",
	"ΜΕΛ.ΠΕΡΙΦΕΡΙΑΚΟ",
	"ΜΕΛ.ΑΝΑΤΟΛΙΚΟ",
	"ΜΕΛ.ΑΣΠΡΟΠΥΡΓΟΣ",
	"ΜΕΛΕΤΗΣ 1",
	"ΑΝΔΡΕΟΥ",
	"DIRECT",
	"ΣΤΑΜΠΟΥΛΗ ΜΤΦ",
}
