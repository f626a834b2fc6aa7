package roster

import "fmt"

// Mode selects how a Link call looks up candidates.
type Mode string

const (
	// ModeSilent is used for follow events: no human confirms the match, so a
	// raw line_display_name lookup is attempted when no name_key matches.
	ModeSilent Mode = "silent-lookup-with-fallback"
	// ModeExact is used for self registration with a typed name.
	ModeExact Mode = "exact-lookup-only"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSilent, "silent", "":
		return ModeSilent, nil
	case ModeExact, "exact":
		return ModeExact, nil
	}
	return "", fmt.Errorf("unknown link mode %q", s)
}

func (m Mode) fallback() bool {
	return m == ModeSilent
}

// setsTarget reports whether a first link puts the member into broadcasts.
func (m Mode) setsTarget() bool {
	return m == ModeSilent
}
