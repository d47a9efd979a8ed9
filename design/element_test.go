// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package design

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestCSSStyle_FontSize(t *testing.T) {
	tests := []struct {
		name  string
		props ElementProps
		want  string
	}{
		{"clamp when all three set", ElementProps{FontSize: intp(20), FontSizeMin: intp(16), FontSizeMax: intp(32)}, "font-size: clamp(16px, 5vw, 32px);"},
		{"size only", ElementProps{FontSize: intp(18)}, "font-size: 18px;"},
		{"size wins over min", ElementProps{FontSize: intp(18), FontSizeMin: intp(12)}, "font-size: 18px;"},
		{"min only", ElementProps{FontSizeMin: intp(12)}, "font-size: min(12px, 5vw);"},
		{"max only", ElementProps{FontSizeMax: intp(40)}, "font-size: max(40px, 5vw);"},
		{"min and max without size", ElementProps{FontSizeMin: intp(12), FontSizeMax: intp(40)}, "font-size: min(12px, 5vw);"},
		{"zero size is unset", ElementProps{FontSize: intp(0)}, ""},
		{"zero size falls to min", ElementProps{FontSize: intp(0), FontSizeMin: intp(10), FontSizeMax: intp(20)}, "font-size: min(10px, 5vw);"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ElementSettings{IsActive: true, ElementProps: tt.props}
			assert.Equal(t, tt.want, e.CSSStyle())
		})
	}
}

func TestCSSStyle_Inactive(t *testing.T) {
	e := ElementSettings{IsActive: false, ElementProps: ElementProps{FontSize: intp(18), Color: "#000000"}}
	assert.Equal(t, "", e.CSSStyle())
}

func TestCSSStyle_BoxSides(t *testing.T) {
	e := ElementSettings{IsActive: true, ElementProps: ElementProps{
		MarginTop:    intp(0),
		MarginBottom: intp(-8),
		PaddingLeft:  intp(4),
	}}
	assert.Equal(t, "margin: 0px 0 -8px 0; padding: 0 0 0 4px;", e.CSSStyle())
}

func TestCSSStyle_LineHeightZeroSkipped(t *testing.T) {
	e := ElementSettings{IsActive: true, ElementProps: ElementProps{LineHeight: intp(0), FontWeight: "700"}}
	assert.Equal(t, "font-weight: 700;", e.CSSStyle())
}

func TestCSSStyle_FullOrdering(t *testing.T) {
	e := ElementSettings{IsActive: true, ElementProps: ElementProps{
		FontSize:        intp(24),
		FontWeight:      "600",
		LineHeight:      intp(30),
		LetterSpacing:   "0.02em",
		MarginTop:       intp(8),
		MarginRight:     intp(0),
		PaddingTop:      intp(2),
		Position:        "relative",
		Top:             intp(0),
		Left:            intp(5),
		Right:           intp(-5),
		Bottom:          intp(1),
		ZIndex:          intp(0),
		Width:           "100%",
		MaxWidth:        "800px",
		MinWidth:        "10px",
		Height:          "auto",
		MaxHeight:       "50vh",
		MinHeight:       "1px",
		Color:           "#111111",
		BackgroundColor: "#fff",
		TextAlign:       "center",
		CustomCSS:       "text-transform: uppercase;",
	}}

	want := strings.Join([]string{
		"font-size: 24px;",
		"font-weight: 600;",
		"line-height: 30px;",
		"letter-spacing: 0.02em;",
		"margin: 8px 0px 0 0;",
		"padding: 2px 0 0 0;",
		"position: relative;",
		"top: 0px;",
		"left: 5px;",
		"right: -5px;",
		"bottom: 1px;",
		"z-index: 0;",
		"width: 100%;",
		"max-width: 800px;",
		"min-width: 10px;",
		"height: auto;",
		"max-height: 50vh;",
		"min-height: 1px;",
		"color: #111111;",
		"background-color: #fff;",
		"text-align: center;",
		"text-transform: uppercase;",
	}, " ")
	assert.Equal(t, want, e.CSSStyle())
}

func TestCSSStyle_ActiveButEmpty(t *testing.T) {
	e := ElementSettings{IsActive: true}
	assert.Equal(t, "", e.CSSStyle())
}

func TestElementValidate(t *testing.T) {
	valid := ElementSettings{CSSSelector: ".hero__title", SelectorType: SelectorClass}

	tests := []struct {
		name    string
		mutate  func(*ElementSettings)
		wantErr bool
	}{
		{"valid", func(e *ElementSettings) {}, false},
		{"missing selector", func(e *ElementSettings) { e.CSSSelector = "  " }, true},
		{"bad selector type", func(e *ElementSettings) { e.SelectorType = "xpath" }, true},
		{"bad position", func(e *ElementSettings) { e.Position = "floating" }, true},
		{"bad align", func(e *ElementSettings) { e.TextAlign = "middle" }, true},
		{"bad color", func(e *ElementSettings) { e.Color = "red" }, true},
		{"short hex ok", func(e *ElementSettings) { e.BackgroundColor = "#abc" }, false},
		{"negative padding", func(e *ElementSettings) { e.PaddingTop = intp(-1) }, true},
		{"negative margin ok", func(e *ElementSettings) { e.MarginTop = intp(-10) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	e := ElementSettings{CSSSelector: "  h1 "}
	e.Normalize()
	assert.Equal(t, "h1", e.CSSSelector)
	assert.Equal(t, SelectorClass, e.SelectorType)
}

func TestElementValidate_FirstInvalidFieldWins(t *testing.T) {
	e := ElementSettings{
		CSSSelector:     "h1",
		SelectorType:    SelectorTag,
		Color:           "red",
		BackgroundColor: "blue",
		FontSize:        intp(-1),
		PaddingLeft:     intp(-2),
	}
	for i := 0; i < 20; i++ {
		assert.EqualError(t, e.Validate(), "color must be a HEX color")
	}

	e.Color, e.BackgroundColor = "", ""
	for i := 0; i < 20; i++ {
		assert.EqualError(t, e.Validate(), "font_size must not be negative")
	}
}
