// Package timeline maps raw activity events into display-ready items:
// an icon tag per action, a color tag per resource type and a
// human-relative time label. Events arrive newest-first from the
// server and are rendered in that order; this package never re-sorts.
package timeline

import (
	"fmt"
	"time"

	"github.com/ghostlock/console/internal/model"
)

// Item is one display-ready timeline entry.
type Item struct {
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	Label     string `json:"label"`
	TimeLabel string `json:"time_label"`

	Event model.TimelineEvent `json:"event"`
}

var actionIcons = map[string]string{
	"created":   "+",
	"deleted":   "x",
	"updated":   "~",
	"transform": "*",
}

const defaultIcon = "."

var resourceColors = map[string]string{
	"case":         "#4aa8ff",
	"entity":       "#22c55e",
	"relationship": "#c084fc",
	"apikey":       "#f59e0b",
}

const defaultColor = "#8a939f"

// Render maps events to display items, preserving input order.
func Render(events []model.TimelineEvent) []Item {
	return renderAt(events, time.Now())
}

func renderAt(events []model.TimelineEvent, now time.Time) []Item {
	items := make([]Item, 0, len(events))
	for _, ev := range events {
		items = append(items, Item{
			Icon:      iconFor(ev.Action),
			Color:     colorFor(ev.ResourceType),
			Label:     labelFor(ev),
			TimeLabel: relativeTime(ev.CreatedAt, now),
			Event:     ev,
		})
	}
	return items
}

func iconFor(action string) string {
	if icon, ok := actionIcons[action]; ok {
		return icon
	}
	return defaultIcon
}

func colorFor(resourceType string) string {
	if color, ok := resourceColors[resourceType]; ok {
		return color
	}
	return defaultColor
}

func labelFor(ev model.TimelineEvent) string {
	name := ev.ResourceName
	if name == "" && ev.ResourceID != 0 {
		name = fmt.Sprintf("%s #%d", ev.ResourceType, ev.ResourceID)
	}
	if name == "" {
		name = ev.ResourceType
	}
	label := fmt.Sprintf("%s %s", ev.Action, name)
	if ev.Details != "" {
		label += ": " + ev.Details
	}
	return label
}

// relativeTime buckets an event age into the display vocabulary:
// "Just now" under a minute, then minutes, hours and days, switching
// to an absolute date after a week.
func relativeTime(t, now time.Time) string {
	age := now.Sub(t)
	switch {
	case age < time.Minute:
		return "Just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	case age < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
