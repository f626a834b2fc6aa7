package roster

import (
	"fmt"
)

type OutcomeType int

const (
	OutcomeError OutcomeType = iota
	OutcomeLinked
	OutcomeAlreadyLinkedSame
	OutcomeAlreadyLinkedOther
	OutcomeAmbiguous
	OutcomeUnmatched
)

var outcomeNames = map[OutcomeType]string{
	OutcomeError:              "ERROR",
	OutcomeLinked:             "LINKED",
	OutcomeAlreadyLinkedSame:  "ALREADY_LINKED_SAME",
	OutcomeAlreadyLinkedOther: "ALREADY_LINKED_OTHER",
	OutcomeAmbiguous:          "AMBIGUOUS",
	OutcomeUnmatched:          "UNMATCHED",
}

func (t OutcomeType) String() string {
	if name, ok := outcomeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("OutcomeType(%d)", int(t))
}

func (t OutcomeType) MarshalText() ([]byte, error) {
	if _, ok := outcomeNames[t]; !ok {
		return nil, fmt.Errorf("unknown outcome type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *OutcomeType) UnmarshalText(text []byte) error {
	for typ, name := range outcomeNames {
		if name == string(text) {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown outcome type %q", string(text))
}

const (
	ReasonEmptyName         = "empty name"
	ReasonMissingUserID     = "user id is required"
	ReasonNoMatch           = "no match found by name_key"
	ReasonNoMatchFallback   = "no match found by name_key or line_display_name"
	ReasonMultipleMatches   = "multiple matches found"
	ReasonConcurrentUpdate  = "concurrent update detected"
	ReasonLinkedToOtherUser = "already linked to a different user"
)

// LinkOutcome is the result of a single Link call. NameKey is set once the
// observed name was normalized, MemberID once a single candidate was resolved.
type LinkOutcome struct {
	Type     OutcomeType `json:"type"`
	NameKey  string      `json:"normalized,omitempty"`
	MemberID int64       `json:"member_id,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Err      error       `json:"-"`
}

// Linked reports whether the LINE user now owns the member row.
func (o LinkOutcome) Linked() bool {
	return o.Type == OutcomeLinked || o.Type == OutcomeAlreadyLinkedSame
}

// Retryable is true for storage failures and a lost claim race. A deliberate
// conflict with another user never becomes retryable.
func (o LinkOutcome) Retryable() bool {
	switch o.Type {
	case OutcomeError:
		return true
	case OutcomeAlreadyLinkedOther:
		return o.Reason == ReasonConcurrentUpdate
	}
	return false
}

// NeedsAdmin marks outcomes that only a human can reconcile.
func (o LinkOutcome) NeedsAdmin() bool {
	return o.Type == OutcomeAmbiguous || o.Type == OutcomeUnmatched
}

func (o LinkOutcome) Unwrap() error {
	return o.Err
}

func (o LinkOutcome) String() string {
	s := o.Type.String()
	if o.MemberID != 0 {
		s += fmt.Sprintf(" member=%d", o.MemberID)
	}
	if o.Reason != "" {
		s += " (" + o.Reason + ")"
	}
	return s
}

type UnlinkType int

const (
	UnlinkError UnlinkType = iota
	Unlinked
	UnlinkNotFound
)

func (t UnlinkType) String() string {
	switch t {
	case Unlinked:
		return "UNLINKED"
	case UnlinkNotFound:
		return "NOT_FOUND"
	}
	return "ERROR"
}

func (t UnlinkType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type UnlinkOutcome struct {
	Type       UnlinkType `json:"type"`
	MemberID   int64      `json:"member_id,omitempty"`
	MemberName string     `json:"member_name,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Err        error      `json:"-"`
}
