package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/pipeline"
)

// Terminal colours follow the viridis ramp of the PNG heatmaps, so a bright
// value in the summary reads the same as a bright pixel in an image.
var (
	colorViolet = lipgloss.Color("#440154")
	colorTeal   = lipgloss.Color("#21918c")
	colorGreen  = lipgloss.Color("#5ec962")
	colorYellow = lipgloss.Color("#fde725")
	colorRed    = lipgloss.Color("167")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleHighlight marks record IDs and addresses.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorTeal)

	// StyleDim is for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleNumber is for counts and intensities.
	StyleNumber = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarn    = lipgloss.NewStyle().Foreground(colorYellow)
	styleFail    = lipgloss.NewStyle().Foreground(colorRed)
	styleMuted   = lipgloss.NewStyle().Foreground(colorGray)
	styleSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	styleCommand = lipgloss.NewStyle().Foreground(colorViolet).Bold(true)

	styleCached   = styleOK
	styleComputed = styleMuted
)

const (
	iconCached = "cached"
	iconFresh  = "fresh"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleOK.Render("✓") + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleWarn.Render("!") + " " + styleWarn.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleMuted.Render("›") + " " + fmt.Sprintf(format, args...))
}

func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints one written artifact.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + path)
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + value)
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}

// summaryLine describes one result: pairs per vectorized dimension, the
// image resolution as birth x persistence pixels and whether the images came
// from cache.
//
//	dim0 12 · dim1 4 · 50x50 · cached
func summaryLine(res *pipeline.Result) string {
	parts := make([]string, 0, len(res.Dims)+2)
	for _, d := range res.Dims {
		parts = append(parts, fmt.Sprintf("%s %s", diagram.DimKey(d), StyleNumber.Render(fmt.Sprint(len(res.Arrays.Dim(d))))))
	}
	if len(res.Images) > 0 {
		rows, cols := res.Images[0].Dims()
		parts = append(parts, fmt.Sprintf("%dx%d", cols, rows))
	}
	if res.CacheInfo.ImageHit {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}
