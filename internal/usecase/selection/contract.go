package selection

// LogoResolver maps a brand to a logo path or URL.
type LogoResolver interface {
	Resolve(brand string) string
}
