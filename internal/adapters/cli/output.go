package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"uniform-store/internal/core"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

func warning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warningStyle.Render("⚠ ")+fmt.Sprintf(format, args...))
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, primaryStyle.Render(title))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// statusCell colors an order status by how far along the lifecycle it is.
func statusCell(s core.OrderStatus) string {
	switch s {
	case core.StatusDelivered:
		return successStyle.Render(s.Label())
	case core.StatusCancelled:
		return mutedStyle.Render(s.Label())
	case core.StatusReadyForDelivery:
		return primaryStyle.Render(s.Label())
	}
	return s.Label()
}

func stockCell(p core.Product) string {
	if p.Stock <= p.MinStock {
		return warningStyle.Render(fmt.Sprintf("%d", p.Stock))
	}
	return fmt.Sprintf("%d", p.Stock)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func printOrders(w io.Writer, orders []core.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No orders found."))
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Client", "School", "Status", "Created", "Qty", "Total"})
	for _, o := range orders {
		t.AppendRow(table.Row{
			o.ID, o.ClientName, o.SchoolName, statusCell(o.Status),
			formatDate(o.CreatedAt), o.QuantityTotal, o.ValueTotal.StringFixed(2),
		})
	}
	t.Render()
}

func printOrder(w io.Writer, o *core.Order) {
	section(w, fmt.Sprintf("Order #%d", o.ID))
	fmt.Fprintf(w, "  Client   : %s\n", o.ClientName)
	if o.SchoolName != "" {
		fmt.Fprintf(w, "  School   : %s\n", o.SchoolName)
	}
	fmt.Fprintf(w, "  Status   : %s\n", statusCell(o.Status))
	fmt.Fprintf(w, "  Created  : %s\n", formatDate(o.CreatedAt))
	if o.ExpectedDeliveryDate != nil {
		fmt.Fprintf(w, "  Expected : %s\n", formatDate(*o.ExpectedDeliveryDate))
	}
	if o.DeliveredAt != nil {
		fmt.Fprintf(w, "  Delivered: %s\n", formatDate(*o.DeliveredAt))
	}
	if o.PaymentMethod != "" {
		fmt.Fprintf(w, "  Payment  : %s\n", o.PaymentMethod)
	}
	if o.Notes != "" {
		fmt.Fprintf(w, "  Notes    : %s\n", o.Notes)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Product", "Size", "Color", "Qty", "Unit price", "Subtotal"})
	for _, l := range o.Lines {
		t.AppendRow(table.Row{l.ProductName, l.Size, l.Color, l.Quantity, l.UnitPrice.StringFixed(2), l.Subtotal.StringFixed(2)})
	}
	t.AppendFooter(table.Row{"", "", "Total", o.QuantityTotal, "", o.ValueTotal.StringFixed(2)})
	t.Render()
}

func printProducts(w io.Writer, products []core.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No products found."))
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Product", "School", "Price", "Stock", "Min"})
	for _, p := range products {
		t.AppendRow(table.Row{p.ID, p.Label(), p.SchoolName, p.UnitPrice.StringFixed(2), stockCell(p), p.MinStock})
	}
	t.Render()
}

func printMovements(w io.Writer, movements []core.StockMovement) {
	if len(movements) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No stock movements recorded."))
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"When", "Kind", "Qty", "Order", "Note"})
	for _, m := range movements {
		order := ""
		if m.OrderID != nil {
			order = fmt.Sprintf("#%d", *m.OrderID)
		}
		t.AppendRow(table.Row{m.CreatedAt.Format("2006-01-02 15:04"), string(m.Kind), fmt.Sprintf("%+d", m.Quantity), order, m.Note})
	}
	t.Render()
}
