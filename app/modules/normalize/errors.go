package normalize

import "fmt"

// ParseError reports a raw value that does not match any recognized time
// structure after malformed-time correction.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse time %q: %s", e.Raw, e.Reason)
}

// NonFinishError signals that a time-like cell held a non-finish marker
// (DNF, DNS, DSQ). It is not a parse failure: callers map it to the
// corresponding race status instead of reporting an error.
type NonFinishError struct {
	Status RaceStatus
}

func (e *NonFinishError) Error() string {
	return fmt.Sprintf("non-finish marker: %s", e.Status)
}

// ValidationError reports a field value that violates its declared type or
// domain during record construction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RowError is one entry in the strict-mode failure list: the row index
// (zero-based, in input order), the canonical field that failed, and why.
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: field %s: %s", e.Row, e.Field, e.Reason)
}
