package graph

import (
	"strings"

	"github.com/ghostlock/console/internal/model"
)

// Style is the visual descriptor the rendering surface applies to a
// node. Color values double as tview color tags in the dashboard.
type Style struct {
	Color string `json:"color"`
	Shape string `json:"shape"`
}

// DefaultStyle is applied to entities with an unknown or missing kind.
var DefaultStyle = Style{Color: "#97a4b1", Shape: "dot"}

// kindStyles is the closed display vocabulary. Kinds outside this
// table fall back to DefaultStyle.
var kindStyles = map[string]Style{
	model.KindIP:           {Color: "#4aa8ff", Shape: "dot"},
	model.KindDomain:       {Color: "#2dd4bf", Shape: "dot"},
	model.KindURL:          {Color: "#87afff", Shape: "box"},
	model.KindThreat:       {Color: "#ef4444", Shape: "triangle"},
	model.KindScreenshot:   {Color: "#eab308", Shape: "square"},
	model.KindPerson:       {Color: "#22c55e", Shape: "ellipse"},
	model.KindOrganization: {Color: "#f59e0b", Shape: "diamond"},
	model.KindEmail:        {Color: "#c084fc", Shape: "box"},
	model.KindHash:         {Color: "#94a3b8", Shape: "hexagon"},
}

// StyleForKind resolves the style descriptor for an entity kind.
// Matching is case-insensitive; unknown kinds get DefaultStyle.
func StyleForKind(kind string) Style {
	if s, ok := kindStyles[strings.ToLower(strings.TrimSpace(kind))]; ok {
		return s
	}
	return DefaultStyle
}
