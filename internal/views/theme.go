package views

import "strings"

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme accepts only the two known themes.
func ParseTheme(s string) (Theme, bool) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark:
		return t, true
	default:
		return "", false
	}
}

// ResolveTheme picks the saved preference, falling back to the system
// colour-scheme hint ("dark" or "light", possibly quoted) and then to light.
func ResolveTheme(saved, systemHint string) Theme {
	if t, ok := ParseTheme(saved); ok {
		return t
	}
	if t, ok := ParseTheme(strings.Trim(systemHint, `" `)); ok {
		return t
	}
	return Light
}

func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}
