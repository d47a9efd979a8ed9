// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package design

import (
	"fmt"
	"sort"
	"strings"
)

// DesignSettings is the site-wide palette, typography and spacing.
type DesignSettings struct {
	PrimaryGold   string `json:"primary_gold"`
	PrimaryDark   string `json:"primary_dark"`
	SecondaryBlue string `json:"secondary_blue"`
	AccentPurple  string `json:"accent_purple"`
	BgLight       string `json:"bg_light"`
	BgLavender    string `json:"bg_lavender"`
	White         string `json:"white"`
	TextDark      string `json:"text_dark"`
	TextBody      string `json:"text_body"`
	TextLight     string `json:"text_light"`
	TextMuted     string `json:"text_muted"`

	FontPrimary string `json:"font_primary"`
	FontHeading string `json:"font_heading"`

	HeadingXL   int `json:"heading_xl"`
	HeadingXLLH int `json:"heading_xl_lh"`
	HeadingLG   int `json:"heading_lg"`
	HeadingLGLH int `json:"heading_lg_lh"`
	BodyLG      int `json:"body_lg"`
	BodyLGLH    int `json:"body_lg_lh"`
	Body        int `json:"body"`
	BodyLH      int `json:"body_lh"`
	BodySM      int `json:"body_sm"`
	BodySMLH    int `json:"body_sm_lh"`

	SpacingXS int `json:"spacing_xs"`
	SpacingSM int `json:"spacing_sm"`
	SpacingMD int `json:"spacing_md"`
	SpacingLG int `json:"spacing_lg"`
	SpacingXL int `json:"spacing_xl"`

	HeaderHeight    int `json:"header_height"`
	ButtonMinHeight int `json:"button_min_height"`
	ButtonPaddingH  int `json:"button_padding_h"`
	ButtonPaddingV  int `json:"button_padding_v"`
	BorderRadius    int `json:"border_radius"`
	BorderRadiusLG  int `json:"border_radius_lg"`

	ShadowSM string `json:"shadow_sm"`
	ShadowMD string `json:"shadow_md"`
	ShadowLG string `json:"shadow_lg"`
}

// DefaultDesignSettings returns the stock palette.
func DefaultDesignSettings() DesignSettings {
	return DesignSettings{
		PrimaryGold:   "#D4AF37",
		PrimaryDark:   "#1A1A1A",
		SecondaryBlue: "#0A2540",
		AccentPurple:  "#7C3AED",
		BgLight:       "#F8FAFC",
		BgLavender:    "#F0EFFF",
		White:         "#FFFFFF",
		TextDark:      "#0F172A",
		TextBody:      "#0F172A",
		TextLight:     "#64748B",
		TextMuted:     "#A4A7AE",

		FontPrimary: "Inter, sans-serif",
		FontHeading: "Inter, sans-serif",

		HeadingXL: 44, HeadingXLLH: 52,
		HeadingLG: 24, HeadingLGLH: 28,
		BodyLG: 18, BodyLGLH: 24,
		Body: 16, BodyLH: 22,
		BodySM: 14, BodySMLH: 20,

		SpacingXS: 8, SpacingSM: 16, SpacingMD: 24, SpacingLG: 40, SpacingXL: 64,

		HeaderHeight:    72,
		ButtonMinHeight: 44,
		ButtonPaddingH:  24,
		ButtonPaddingV:  12,
		BorderRadius:    12,
		BorderRadiusLG:  20,

		ShadowSM: "0 2px 8px rgba(0,0,0,0.06)",
		ShadowMD: "0 8px 24px rgba(0,0,0,0.1)",
		ShadowLG: "0 16px 92px -4px rgba(27, 30, 27, 0.10)",
	}
}

type cssVar struct {
	name  string
	value string
}

func px(v int) string { return fmt.Sprintf("%dpx", v) }

func (d DesignSettings) colors() []cssVar {
	return []cssVar{
		{"primary-gold", d.PrimaryGold},
		{"primary-dark", d.PrimaryDark},
		{"secondary-blue", d.SecondaryBlue},
		{"accent-purple", d.AccentPurple},
		{"bg-light", d.BgLight},
		{"bg-lavender", d.BgLavender},
		{"white", d.White},
		{"text-dark", d.TextDark},
		{"text-body", d.TextBody},
		{"text-light", d.TextLight},
		{"text-muted", d.TextMuted},
	}
}

func (d DesignSettings) sizes() []cssVar {
	return []cssVar{
		{"heading-xl", px(d.HeadingXL)},
		{"heading-xl-lh", px(d.HeadingXLLH)},
		{"heading-lg", px(d.HeadingLG)},
		{"heading-lg-lh", px(d.HeadingLGLH)},
		{"body-lg", px(d.BodyLG)},
		{"body-lg-lh", px(d.BodyLGLH)},
		{"body", px(d.Body)},
		{"body-lh", px(d.BodyLH)},
		{"body-sm", px(d.BodySM)},
		{"body-sm-lh", px(d.BodySMLH)},
		{"spacing-xs", px(d.SpacingXS)},
		{"spacing-sm", px(d.SpacingSM)},
		{"spacing-md", px(d.SpacingMD)},
		{"spacing-lg", px(d.SpacingLG)},
		{"spacing-xl", px(d.SpacingXL)},
		{"header-height", px(d.HeaderHeight)},
		{"button-min-height", px(d.ButtonMinHeight)},
		{"button-padding-h", px(d.ButtonPaddingH)},
		{"button-padding-v", px(d.ButtonPaddingV)},
		{"border-radius", px(d.BorderRadius)},
		{"border-radius-lg", px(d.BorderRadiusLG)},
	}
}

// Validate rejects malformed colors and negative sizes.
func (d DesignSettings) Validate() error {
	for _, c := range d.colors() {
		if !hexColor.MatchString(c.value) {
			return fmt.Errorf("%s must be a HEX color", strings.ReplaceAll(c.name, "-", "_"))
		}
	}
	for _, s := range d.sizes() {
		if strings.HasPrefix(s.value, "-") {
			return fmt.Errorf("%s must not be negative", strings.ReplaceAll(s.name, "-", "_"))
		}
	}
	if strings.TrimSpace(d.FontPrimary) == "" || strings.TrimSpace(d.FontHeading) == "" {
		return fmt.Errorf("fonts are required")
	}
	return nil
}

// RootVariables renders the :root block of CSS custom properties.
func (d DesignSettings) RootVariables() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	vars := append(d.colors(), cssVar{"font-primary", d.FontPrimary}, cssVar{"font-heading", d.FontHeading})
	vars = append(vars, d.sizes()...)
	vars = append(vars,
		cssVar{"shadow-sm", d.ShadowSM},
		cssVar{"shadow-md", d.ShadowMD},
		cssVar{"shadow-lg", d.ShadowLG},
	)
	for _, v := range vars {
		fmt.Fprintf(&b, "  --%s: %s;\n", v.name, v.value)
	}
	b.WriteString("}\n")
	return b.String()
}

// SortElements orders overrides by order, then element name.
func SortElements(elements []ElementSettings) {
	sort.SliceStable(elements, func(i, j int) bool {
		if elements[i].Order != elements[j].Order {
			return elements[i].Order < elements[j].Order
		}
		return elements[i].ElementName < elements[j].ElementName
	})
}

// Stylesheet renders the design variables followed by one rule per active
// element override.
func Stylesheet(d DesignSettings, elements []ElementSettings) string {
	sorted := make([]ElementSettings, len(elements))
	copy(sorted, elements)
	SortElements(sorted)

	var b strings.Builder
	b.WriteString(d.RootVariables())
	for _, e := range sorted {
		style := e.CSSStyle()
		if style == "" {
			continue
		}
		fmt.Fprintf(&b, "%s { %s }\n", e.CSSSelector, style)
	}
	return b.String()
}
