package bikeval

// Format is an export file type.
type Format string

// Export formats.
const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// Built-in comparables profiles.
const (
	ProfileStandard = "standard"
	ProfileWide     = "wide"
)

// Features is a single model input row.
type Features struct {
	KmsDriven float64
	Age       int
	Power     float64
}

// Request describes the bike to value.
// Year 0 selects DefaultYear; Power 0 selects the catalog power of Name
// (or 150 cc when Name is not in the catalog). KmsDriven is taken as given.
type Request struct {
	Name      string
	KmsDriven float64
	Year      int
	Power     float64
	Profile   string // empty selects the default profile
}

// Range is the display band around an estimate.
type Range struct {
	Lower float64
	Upper float64
}

// Listing is a catalog row.
type Listing struct {
	Name      string
	Brand     string
	City      string
	Power     float64
	KmsDriven float64
	Price     float64
}

// Valuation is the result of Client.Valuate.
type Valuation struct {
	Label       string
	Year        int
	Features    Features
	Category    string
	Estimate    float64
	Range       Range
	Profile     string
	Comparables []Listing
	Logo        string // local file path or fallback URL
	Summary     string
}

// Selection holds the form defaults for a catalog model.
type Selection struct {
	Name         string
	Found        bool
	DefaultPower float64
	Brand        *string
	Logo         string
	Category     string
}

// Report is a rendered export.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}
