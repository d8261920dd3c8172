package ui

type StyleFunc func(string) string

type Styles struct {
	Header    StyleFunc
	Normal    StyleFunc
	Selected  StyleFunc
	Disabled  StyleFunc
	Secondary StyleFunc
}

func identity(s string) string { return s }

// PlainStyles renders without any decoration, for non-interactive output
// and tests.
func PlainStyles() Styles {
	return Styles{
		Header:    identity,
		Normal:    identity,
		Selected:  identity,
		Disabled:  identity,
		Secondary: identity,
	}
}

// PadOrTrim fits value into width columns, padding with spaces or trimming
// with an ellipsis.
func PadOrTrim(value string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) == width {
		return value
	}
	if len(runes) < width {
		padded := make([]rune, width)
		copy(padded, runes)
		for i := len(runes); i < width; i++ {
			padded[i] = ' '
		}
		return string(padded)
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
