package site

import (
	"strings"

	"github.com/Raiwe17/ProektSite/internal/project"
)

// GoogleFonts lists the font families that are loaded from Google Fonts when
// an element uses them.
var GoogleFonts = []string{
	"Inter",
	"Roboto",
	"Open Sans",
	"Lato",
	"Montserrat",
	"Poppins",
	"Raleway",
	"Oswald",
	"Nunito",
	"Playfair Display",
	"Merriweather",
	"Ubuntu",
	"PT Sans",
	"Roboto Mono",
	"Fira Sans",
	"Work Sans",
	"Rubik",
	"Lobster",
	"Pacifico",
	"Bebas Neue",
}

// fontLink returns a stylesheet link for every known font family used by an
// element, in first-use order.
func fontLink(p *project.Project) string {
	known := make(map[string]bool, len(GoogleFonts))
	for _, f := range GoogleFonts {
		known[f] = true
	}

	seen := map[string]bool{}
	var families []string
	for _, el := range p.Elements {
		f, ok := el.Style["fontFamily"].(string)
		if !ok || !known[f] || seen[f] {
			continue
		}
		seen[f] = true
		families = append(families, "family="+strings.ReplaceAll(f, " ", "+")+":wght@400;700")
	}
	if len(families) == 0 {
		return ""
	}
	href := "https://fonts.googleapis.com/css2?" + strings.Join(families, "&") + "&display=swap"
	return `<link href="` + attr(href) + `" rel="stylesheet">`
}

// pageCSS returns the document stylesheet. heightVW is the canvas height as a
// share of its width.
func pageCSS(heightVW string) string {
	return strings.Replace(baseCSS, "{{height}}", heightVW+"vw", 1) + keyframesCSS
}

const baseCSS = `* { box-sizing: border-box; }
body { margin: 0; padding: 0; overflow-x: hidden; background-color: #ffffff; font-family: sans-serif; }
#app-root { position: relative; width: 100vw; max-width: 100%; height: {{height}}; min-height: 100vh; overflow-x: hidden; overflow-y: auto; }
.hidden { display: none !important; }
@media (max-width: 1024px) and (min-width: 769px) {
  #app-root { height: auto; min-height: 100vh; }
}
@media (max-width: 768px) {
  #app-root { height: auto; min-height: 100vh; width: 100%; }
  button[data-el-id] { min-height: 44px; min-width: 44px; }
}
@media (max-width: 768px) and (orientation: landscape) {
  #app-root { height: auto; min-height: 100vh; }
}
img, video, iframe { max-width: 100%; height: auto; object-fit: contain; }
.page-container { max-width: 100%; overflow-x: hidden; }
`

const keyframesCSS = `@keyframes fadeIn { from { opacity: 0; } to { opacity: 1; } }
@keyframes fadeOut { from { opacity: 1; } to { opacity: 0; } }
@keyframes slideInUp { from { transform: translateY(50px); opacity: 0; } to { transform: translateY(0); opacity: 1; } }
@keyframes slideInDown { from { transform: translateY(-50px); opacity: 0; } to { transform: translateY(0); opacity: 1; } }
@keyframes slideInLeft { from { transform: translateX(-50px); opacity: 0; } to { transform: translateX(0); opacity: 1; } }
@keyframes slideInRight { from { transform: translateX(50px); opacity: 0; } to { transform: translateX(0); opacity: 1; } }
@keyframes zoomIn { from { transform: scale(0.5); opacity: 0; } to { transform: scale(1); opacity: 1; } }
@keyframes zoomOut { from { transform: scale(1); opacity: 1; } to { transform: scale(0.5); opacity: 0; } }
@keyframes bounce {
  0%, 20%, 50%, 80%, 100% { transform: translateY(0); }
  40% { transform: translateY(-20px); }
  60% { transform: translateY(-10px); }
}
@keyframes pulse {
  0% { transform: scale(1); }
  50% { transform: scale(1.05); }
  100% { transform: scale(1); }
}
@keyframes shake {
  0%, 100% { transform: translateX(0); }
  10%, 30%, 50%, 70%, 90% { transform: translateX(-5px); }
  20%, 40%, 60%, 80% { transform: translateX(5px); }
}
@keyframes spin { 100% { transform: rotate(360deg); } }
`

const placeholderBox = `<div style="display:flex; flex-direction:column; align-items:center; justify-content:center; color:#9ca3af; height:100%;">`

const imageIcon = placeholderBox +
	`<svg width="24" height="24" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round">` +
	`<rect x="3" y="3" width="18" height="18" rx="2" ry="2"></rect><circle cx="8.5" cy="8.5" r="1.5"></circle><polyline points="21 15 16 10 5 21"></polyline></svg></div>`

const videoIcon = placeholderBox +
	`<svg width="24" height="24" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round">` +
	`<circle cx="12" cy="12" r="10"></circle><polygon points="10 8 16 12 10 16 10 8"></polygon></svg></div>`

const avatarIcon = `<svg width="50%" height="50%" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" style="opacity:0.5">` +
	`<path d="M20 21v-2a4 4 0 0 0-4-4H8a4 4 0 0 0-4 4v2"></path><circle cx="12" cy="7" r="4"></circle></svg>`
