package render

const (
	// Display values
	MissingValue = "<none>"
	NAValue      = "n/a"
	UnknownValue = "<unknown>"
	ZeroValue    = "0"
	Blank        = ""
)

// MaxValueWidth caps summary values in the table; the describe view shows them whole.
const MaxValueWidth = 80

// SummaryTimeFmt formats absolute run start times.
const SummaryTimeFmt = "2006-01-02 15:04:05"
