package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
)

const ruleWidth = 50

type styles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).Width(ruleWidth).Align(lipgloss.Center),
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4")),
		success: r.NewStyle().Foreground(lipgloss.Color("#2ECC71")),
		failure: r.NewStyle().Foreground(lipgloss.Color("#E74C3C")),
		muted:   r.NewStyle().Faint(true),
	}
}

func rule(ch string) string { return strings.Repeat(ch, ruleWidth) }

func formatPrice(currency string, v float64) string {
	return fmt.Sprintf("%s%.2f", currency, v)
}

func dietaryList(item *models.MenuItem) string {
	tags := make([]string, len(item.DietaryTags))
	for i, t := range item.DietaryTags {
		tags[i] = string(t)
	}
	return strings.Join(tags, ", ")
}

func availabilityMark(item *models.MenuItem) string {
	if item.IsAvailable {
		return "✓"
	}
	return "✗"
}

// stars draws one star per whole rating point.
func stars(rating float64) string {
	if rating <= 0 {
		return "No ratings"
	}
	return strings.Repeat("⭐", int(rating))
}

// describeItem renders an item the way the full menu listing shows it.
func describeItem(item *models.MenuItem, currency string) string {
	var b strings.Builder
	dietary := ""
	if len(item.DietaryTags) > 0 {
		dietary = " (" + dietaryList(item) + ")"
	}
	fmt.Fprintf(&b, "  [%s] %s%s - %s", availabilityMark(item), item.Name, dietary, formatPrice(currency, item.Price))
	if item.Description != "" {
		fmt.Fprintf(&b, "\n      %s", item.Description)
	}
	if item.ReviewCount > 0 {
		fmt.Fprintf(&b, "\n      Rating: %s (%.1f/5 from %d reviews)", stars(item.Rating), item.Rating, item.ReviewCount)
	}
	return b.String()
}

// entryLine is the one-line form used by numbered selection lists.
func entryLine(e menu.Entry, currency string) string {
	return fmt.Sprintf("[%s] %s - %s", e.Category, e.Item.Name, formatPrice(currency, e.Item.Price))
}

func receipt(order *models.Order, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nORDER %s\n%s\n", rule("="), order.ID, rule("-"))
	fmt.Fprintf(&b, "Customer: %s\n", order.Customer())
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "%dx %s - %s%s\n", line.Quantity, line.Name, currency, line.Subtotal().StringFixed(2))
	}
	if order.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", order.Notes)
	}
	fmt.Fprintf(&b, "%s\nTOTAL: %s%s", rule("-"), currency, order.Total.StringFixed(2))
	return b.String()
}
