package domain

import "time"

// Record is a persisted failure report: the variable dump plus everything
// needed to understand where it came from.
type Record struct {
	ID            string    `json:"id"                       yaml:"id"`
	Label         string    `json:"label"                    yaml:"label"`
	Attempts      int       `json:"attempts"                 yaml:"attempts"`
	CustomMessage string    `json:"custom_message,omitempty" yaml:"custom_message,omitempty"`
	Exception     Exception `json:"exception"                yaml:"exception"`
	Vars          Dump      `json:"vars"                     yaml:"vars"`
	Args          []string  `json:"args,omitempty"           yaml:"args,omitempty"`
	Kwargs        Dump      `json:"kwargs,omitempty"         yaml:"kwargs,omitempty"`
	CreatedAt     time.Time `json:"created_at"               yaml:"created_at"`
}

// RecordFilter narrows down record listings.
type RecordFilter struct {
	Labels []string
	Limit  int
}

// Match reports whether rec passes the label filter.
func (f RecordFilter) Match(rec *Record) bool {
	if len(f.Labels) == 0 {
		return true
	}
	for _, l := range f.Labels {
		if rec.Label == l {
			return true
		}
	}
	return false
}
