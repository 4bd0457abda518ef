package windows

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// browserTheme is a Material Blue theme with a tinted table header.
type browserTheme struct{}

var _ fyne.Theme = (*browserTheme)(nil)

var lightPalette = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:          color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff},
	theme.ColorNameButton:              color.NRGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff},
	theme.ColorNamePrimary:             color.NRGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff},
	theme.ColorNameHover:               color.NRGBA{R: 0x64, G: 0xb5, B: 0xf6, A: 0xff},
	theme.ColorNameFocus:               color.NRGBA{R: 0x19, G: 0x76, B: 0xd2, A: 0xff},
	theme.ColorNameForeground:          color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff},
	theme.ColorNameInputBackground:     color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	theme.ColorNameSelection:           color.NRGBA{R: 0xbb, G: 0xde, B: 0xfb, A: 0xff},
	theme.ColorNameHeaderBackground:    color.NRGBA{R: 0xe3, G: 0xf2, B: 0xfd, A: 0xff},
	theme.ColorNameForegroundOnPrimary: color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
}

var darkPalette = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:          color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff},
	theme.ColorNameButton:              color.NRGBA{R: 0x42, G: 0xa5, B: 0xf5, A: 0xff},
	theme.ColorNamePrimary:             color.NRGBA{R: 0x42, G: 0xa5, B: 0xf5, A: 0xff},
	theme.ColorNameHover:               color.NRGBA{R: 0x64, G: 0xb5, B: 0xf6, A: 0xff},
	theme.ColorNameFocus:               color.NRGBA{R: 0x90, G: 0xca, B: 0xf9, A: 0xff},
	theme.ColorNameForeground:          color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff},
	theme.ColorNameInputBackground:     color.NRGBA{R: 0x2d, G: 0x2d, B: 0x2d, A: 0xff},
	theme.ColorNameSelection:           color.NRGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff},
	theme.ColorNameHeaderBackground:    color.NRGBA{R: 0x26, G: 0x32, B: 0x38, A: 0xff},
	theme.ColorNameForegroundOnPrimary: color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
}

func (browserTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	palette := darkPalette
	if variant == theme.VariantLight {
		palette = lightPalette
	}
	if c, ok := palette[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (browserTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (browserTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (browserTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 8
	case theme.SizeNameInlineIcon:
		return 24
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameSeparatorThickness:
		return 1
	}
	return theme.DefaultTheme().Size(name)
}
