// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package design

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/danielhkuo/bausite/models"
)

// Selector types
const (
	SelectorTag    = "tag"
	SelectorClass  = "class"
	SelectorID     = "id"
	SelectorCustom = "custom"
)

var (
	SelectorTypes  = []string{SelectorTag, SelectorClass, SelectorID, SelectorCustom}
	Positions      = []string{"relative", "absolute", "fixed", "sticky"}
	TextAlignments = []string{"left", "center", "right", "justify"}
)

var hexColor = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ElementProps holds the overridable CSS properties of one element.
// Pixel values are pointers: nil means "not set".
type ElementProps struct {
	FontSize      *int   `json:"font_size"`
	FontSizeMin   *int   `json:"font_size_min"`
	FontSizeMax   *int   `json:"font_size_max"`
	FontWeight    string `json:"font_weight"`
	LineHeight    *int   `json:"line_height"`
	LetterSpacing string `json:"letter_spacing"`

	MarginTop    *int `json:"margin_top"`
	MarginRight  *int `json:"margin_right"`
	MarginBottom *int `json:"margin_bottom"`
	MarginLeft   *int `json:"margin_left"`

	PaddingTop    *int `json:"padding_top"`
	PaddingRight  *int `json:"padding_right"`
	PaddingBottom *int `json:"padding_bottom"`
	PaddingLeft   *int `json:"padding_left"`

	Position string `json:"position"`
	Top      *int   `json:"top"`
	Left     *int   `json:"left"`
	Right    *int   `json:"right"`
	Bottom   *int   `json:"bottom"`
	ZIndex   *int   `json:"z_index"`

	Width     string `json:"width"`
	MaxWidth  string `json:"max_width"`
	MinWidth  string `json:"min_width"`
	Height    string `json:"height"`
	MaxHeight string `json:"max_height"`
	MinHeight string `json:"min_height"`

	Color           string `json:"color"`
	BackgroundColor string `json:"background_color"`
	TextAlign       string `json:"text_align"`
	CustomCSS       string `json:"custom_css"`
}

// ElementSettings overrides the style of a single selector.
type ElementSettings struct {
	ID           int64  `json:"id"`
	ElementName  string `json:"element_name"`
	SelectorType string `json:"selector_type"`
	CSSSelector  string `json:"css_selector"`
	ElementProps
	Order     int       `json:"order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// set treats zero like unset, matching how font sizes and line height
// were always interpreted.
func set(v *int) bool {
	return v != nil && *v != 0
}

func boxShorthand(prop string, top, right, bottom, left *int) string {
	if top == nil && right == nil && bottom == nil && left == nil {
		return ""
	}
	side := func(v *int) string {
		if v == nil {
			return "0"
		}
		return fmt.Sprintf("%dpx", *v)
	}
	return fmt.Sprintf("%s: %s %s %s %s;", prop, side(top), side(right), side(bottom), side(left))
}

// CSSStyle renders the declaration list for the element, or "" when inactive.
func (e ElementSettings) CSSStyle() string {
	if !e.IsActive {
		return ""
	}

	var parts []string
	add := func(format string, args ...any) {
		parts = append(parts, fmt.Sprintf(format, args...))
	}

	switch {
	case set(e.FontSizeMin) && set(e.FontSizeMax) && set(e.FontSize):
		add("font-size: clamp(%dpx, 5vw, %dpx);", *e.FontSizeMin, *e.FontSizeMax)
	case set(e.FontSize):
		add("font-size: %dpx;", *e.FontSize)
	case set(e.FontSizeMin):
		add("font-size: min(%dpx, 5vw);", *e.FontSizeMin)
	case set(e.FontSizeMax):
		add("font-size: max(%dpx, 5vw);", *e.FontSizeMax)
	}

	if e.FontWeight != "" {
		add("font-weight: %s;", e.FontWeight)
	}
	if set(e.LineHeight) {
		add("line-height: %dpx;", *e.LineHeight)
	}
	if e.LetterSpacing != "" {
		add("letter-spacing: %s;", e.LetterSpacing)
	}

	if m := boxShorthand("margin", e.MarginTop, e.MarginRight, e.MarginBottom, e.MarginLeft); m != "" {
		parts = append(parts, m)
	}
	if p := boxShorthand("padding", e.PaddingTop, e.PaddingRight, e.PaddingBottom, e.PaddingLeft); p != "" {
		parts = append(parts, p)
	}

	if e.Position != "" {
		add("position: %s;", e.Position)
	}
	for _, off := range []struct {
		name string
		v    *int
	}{{"top", e.Top}, {"left", e.Left}, {"right", e.Right}, {"bottom", e.Bottom}} {
		if off.v != nil {
			add("%s: %dpx;", off.name, *off.v)
		}
	}
	if e.ZIndex != nil {
		add("z-index: %d;", *e.ZIndex)
	}

	for _, dim := range []struct{ name, v string }{
		{"width", e.Width},
		{"max-width", e.MaxWidth},
		{"min-width", e.MinWidth},
		{"height", e.Height},
		{"max-height", e.MaxHeight},
		{"min-height", e.MinHeight},
	} {
		if dim.v != "" {
			add("%s: %s;", dim.name, dim.v)
		}
	}

	if e.Color != "" {
		add("color: %s;", e.Color)
	}
	if e.BackgroundColor != "" {
		add("background-color: %s;", e.BackgroundColor)
	}
	if e.TextAlign != "" {
		add("text-align: %s;", e.TextAlign)
	}
	if e.CustomCSS != "" {
		parts = append(parts, e.CustomCSS)
	}

	return strings.Join(parts, " ")
}

// Normalize fills defaults for an element created without a selector type.
func (e *ElementSettings) Normalize() {
	e.CSSSelector = strings.TrimSpace(e.CSSSelector)
	if e.SelectorType == "" {
		e.SelectorType = SelectorClass
	}
}

// Validate checks choice fields, colors and sizes.
func (e ElementSettings) Validate() error {
	if strings.TrimSpace(e.CSSSelector) == "" {
		return errors.New("css_selector is required")
	}
	if !models.Contains(SelectorTypes, e.SelectorType) {
		return fmt.Errorf("invalid selector_type %q", e.SelectorType)
	}
	if e.Position != "" && !models.Contains(Positions, e.Position) {
		return fmt.Errorf("invalid position %q", e.Position)
	}
	if e.TextAlign != "" && !models.Contains(TextAlignments, e.TextAlign) {
		return fmt.Errorf("invalid text_align %q", e.TextAlign)
	}
	colors := []struct {
		name, value string
	}{
		{"color", e.Color},
		{"background_color", e.BackgroundColor},
	}
	for _, c := range colors {
		if c.value != "" && !hexColor.MatchString(c.value) {
			return fmt.Errorf("%s must be a HEX color", c.name)
		}
	}
	sizes := []struct {
		name  string
		value *int
	}{
		{"font_size", e.FontSize},
		{"font_size_min", e.FontSizeMin},
		{"font_size_max", e.FontSizeMax},
		{"line_height", e.LineHeight},
		{"padding_top", e.PaddingTop},
		{"padding_right", e.PaddingRight},
		{"padding_bottom", e.PaddingBottom},
		{"padding_left", e.PaddingLeft},
	}
	for _, s := range sizes {
		if s.value != nil && *s.value < 0 {
			return fmt.Errorf("%s must not be negative", s.name)
		}
	}
	return nil
}

// DefaultElement describes one of the stock tag rows.
type DefaultElement struct {
	Name     string `yaml:"name"`
	Selector string `yaml:"selector"`
	Order    int    `yaml:"order"`
}

// NewDefaultElement returns an inactive tag override for d.
func NewDefaultElement(d DefaultElement) ElementSettings {
	return ElementSettings{
		ElementName:  d.Name,
		SelectorType: SelectorTag,
		CSSSelector:  d.Selector,
		Order:        d.Order,
		IsActive:     false,
	}
}
