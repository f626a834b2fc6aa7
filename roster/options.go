package roster

type LinkOption func(*LinkPayload)

type LinkPayload struct {
	DisplayName string
}

// WithDisplayName stores name as line_display_name instead of the observed name.
func WithDisplayName(name string) LinkOption {
	return func(p *LinkPayload) {
		if name != "" {
			p.DisplayName = name
		}
	}
}
