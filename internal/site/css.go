package site

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/Raiwe17/ProektSite/internal/flow"
	"github.com/Raiwe17/ProektSite/internal/project"
)

// scale converts canvas pixels to viewport-relative units. The canvas width
// is the single basis, so every length scales with the browser width.
type scale struct {
	width float64
}

func (s scale) vw(px any) string {
	return flow.FormatNumber(flow.ToNumber(px)/s.width*100) + "vw"
}

var shadowLength = regexp.MustCompile(`(-?\d+(\.\d+)?)px`)

// shadow rewrites every pixel length inside a box-shadow value.
func (s scale) shadow(v string) string {
	return shadowLength.ReplaceAllStringFunc(v, func(m string) string {
		f, err := strconv.ParseFloat(strings.TrimSuffix(m, "px"), 64)
		if err != nil {
			return m
		}
		return s.vw(f)
	})
}

// cssProp is a style key copied through verbatim.
type cssProp struct {
	key  string
	name string
}

var leadingProps = []cssProp{
	{"backgroundColor", "background-color"},
	{"backgroundImage", "background-image"},
	{"color", "color"},
	{"fontWeight", "font-weight"},
}

var layoutProps = []cssProp{
	{"display", "display"},
	{"alignItems", "align-items"},
	{"justifyContent", "justify-content"},
	{"transform", "transform"},
	{"textAlign", "text-align"},
	{"transition", "transition"},
	{"animation", "animation"},
	{"flexDirection", "flex-direction"},
	{"lineHeight", "line-height"},
	{"letterSpacing", "letter-spacing"},
}

// elementCSS renders the inline style of an element's inner tag from its
// effective style.
func (s scale) elementCSS(st flow.Style, width, height float64, content string) string {
	var b strings.Builder
	decl := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("; ")
	}
	set := func(key string) bool { return flow.Truthy(st[key]) }
	str := func(key string) string { return flow.ToString(st[key]) }

	for _, p := range leadingProps {
		if set(p.key) {
			decl(p.name, str(p.key))
		}
	}
	if set("fontFamily") {
		decl("font-family", "'"+str("fontFamily")+"', sans-serif")
	}
	if v, ok := st["opacity"]; ok && v != nil {
		decl("opacity", flow.ToString(v))
	}
	for _, p := range layoutProps {
		if set(p.key) {
			decl(p.name, str(p.key))
		}
	}
	if set("marginTop") {
		decl("margin-top", s.vw(st["marginTop"]))
	}
	if set("marginLeft") {
		decl("margin-left", s.vw(st["marginLeft"]))
	}
	if set("gap") {
		decl("gap", s.vw(st["gap"]))
	}
	if set("textShadow") {
		decl("text-shadow", str("textShadow"))
	}
	if set("objectFit") {
		decl("object-fit", str("objectFit"))
	}
	if set("borderRadius") {
		decl("border-radius", s.vw(st["borderRadius"]))
	}
	if set("padding") {
		decl("padding", s.vw(st["padding"]))
	}

	if set("borderWidth") || set("borderBottomWidth") || set("borderTopWidth") {
		if set("borderWidth") {
			decl("border-width", s.vw(st["borderWidth"]))
		}
		if set("borderBottomWidth") {
			decl("border-bottom-width", s.vw(st["borderBottomWidth"]))
		}
		if set("borderTopWidth") {
			decl("border-top-width", s.vw(st["borderTopWidth"]))
		}
		decl("border-style", "solid")
		if set("borderColor") {
			decl("border-color", str("borderColor"))
		}
	}

	if set("boxShadow") {
		decl("box-shadow", s.shadow(str("boxShadow")))
	}

	fontSize := st["fontSize"]
	if set("autoFontSize") {
		fontSize = autoFontSize(width, height, content)
		decl("line-height", "1")
		decl("white-space", "nowrap")
		decl("text-overflow", "ellipsis")
	}
	if flow.Truthy(fontSize) {
		decl("font-size", s.vw(fontSize))
	}

	return strings.TrimSpace(b.String())
}

// autoFontSize picks a font size that fits content on one line inside the
// element box, never smaller than 10px.
func autoFontSize(width, height float64, content string) float64 {
	byHeight := roundHalfUp(height * 0.6)
	chars := float64(max(1, len(utf16.Encode([]rune(content)))))
	byWidth := roundHalfUp(width / chars * 1.8)
	return math.Max(10, math.Min(byHeight, byWidth))
}

func roundHalfUp(f float64) float64 {
	return math.Floor(f + 0.5)
}

// tailwindClasses returns the utility classes of an element's inner tag.
func tailwindClasses(t project.ElementType, st flow.Style) string {
	switch t {
	case project.TypeButton, project.TypeBadge:
		justify := "justify-center"
		switch st["textAlign"] {
		case "left":
			justify = "justify-start px-4"
		case "right":
			justify = "justify-end px-4"
		}
		return "w-full h-full flex items-center " + justify + " transition-opacity hover:opacity-90 overflow-hidden"
	case project.TypeHeading:
		return "w-full h-full overflow-hidden leading-tight flex flex-col justify-center"
	case project.TypeParagraph:
		return "w-full h-full overflow-hidden leading-relaxed"
	case project.TypeCard:
		return "w-full h-full bg-white"
	case project.TypeInput:
		return "w-full h-full px-3 text-sm rounded focus:outline-none focus:ring-2 focus:ring-blue-500 bg-transparent"
	case project.TypeImagePlaceholder, project.TypeVideoPlaceholder, project.TypeAvatar:
		return "w-full h-full overflow-hidden"
	case project.TypeDivider:
		return "w-full h-full flex items-center"
	default:
		return "w-full h-full"
	}
}

var youtubeURL = regexp.MustCompile(`^.*(youtu.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// youtubeID extracts the 11 character video id from a YouTube URL.
func youtubeID(url string) (string, bool) {
	m := youtubeURL.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return "", false
	}
	return m[2], true
}
