// Package message renders broadcast templates: placeholder substitution and
// translation of '&'-prefixed color codes.
package message

import (
	"strconv"
	"strings"
)

// Placeholders understood by the templates.
const (
	Seconds = "%seconds%"
	Count   = "%count%"
)

const (
	// alternateColorChar prefixes color codes in configuration files.
	alternateColorChar = '&'
	// colorChar prefixes color codes on the wire to game clients.
	colorChar = '§'
	// colorCodes lists every valid code character.
	colorCodes = "0123456789AaBbCcDdEeFfKkLlMmNnOoRr"
)

// WithSeconds renders a warning template.
func WithSeconds(template string, seconds int) string {
	return Format(template, map[string]string{Seconds: strconv.Itoa(seconds)})
}

// WithCount renders an after-clear template.
func WithCount(template string, count int) string {
	return Format(template, map[string]string{Count: strconv.Itoa(count)})
}

// Format substitutes placeholders and translates color codes.
func Format(template string, placeholders map[string]string) string {
	pairs := make([]string, 0, len(placeholders)*2) //nolint:mnd // Old/new pairs.
	for placeholder, value := range placeholders {
		pairs = append(pairs, placeholder, value)
	}

	return TranslateColors(strings.NewReplacer(pairs...).Replace(template))
}

// TranslateColors turns "&c" style codes into the client form "§c".
// An ampersand not followed by a valid code is left as is.
func TranslateColors(s string) string {
	runes := []rune(s)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] == alternateColorChar && strings.ContainsRune(colorCodes, runes[i+1]) {
			runes[i] = colorChar
			runes[i+1] = toLower(runes[i+1])
		}
	}

	return string(runes)
}

// Strip removes translated and untranslated color codes, used for log output.
func Strip(s string) string {
	var (
		b     strings.Builder
		runes = []rune(s)
	)

	b.Grow(len(s))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if (r == colorChar || r == alternateColorChar) && i+1 < len(runes) && strings.ContainsRune(colorCodes, runes[i+1]) {
			i++

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}

	return r
}
