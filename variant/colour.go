package variant

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// FormatColour prints c as #rrggbb, or #rrggbbaa when it is not opaque.
func FormatColour(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColour parses #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(r, g, b),
// rgba(r, g, b, a) and CSS colour names.
func ParseColour(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], 3)
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	if s == "transparent" {
		return color.RGBA{}, true
	}
	return color.RGBA{}, false
}

func parseHex(h string) (color.RGBA, bool) {
	switch len(h) {
	case 3, 4:
		var expanded strings.Builder
		for i := 0; i < len(h); i++ {
			expanded.WriteByte(h[i])
			expanded.WriteByte(h[i])
		}
		h = expanded.String()
	case 6, 8:
	default:
		return color.RGBA{}, false
	}
	if len(h) == 6 {
		h += "ff"
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, true
}

func parseFunc(args string, n int) (color.RGBA, bool) {
	parts := strings.Split(args, ",")
	if len(parts) != n {
		return color.RGBA{}, false
	}
	var ch [4]uint8
	ch[3] = 255
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, false
		}
		ch[i] = uint8(v)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}
