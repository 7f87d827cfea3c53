package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"uniform-store/internal/core"
)

func newReportCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"reports"},
		Short:   "Dashboard metrics and catalog reports",
	}
	cmd.AddCommand(
		newReportMetricsCmd(rt),
		newReportStatusCmd(rt),
		newReportMarginsCmd(rt),
	)
	return cmd
}

func newReportMetricsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Order, client and stock totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			m, err := svc.GetMetrics(cmd.Context())
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), m)
			}
			w := cmd.OutOrStdout()
			section(w, "Dashboard")
			t := newTable(w)
			t.AppendRows([]table.Row{
				{"Total orders", m.TotalOrders},
				{"Pending orders", m.PendingOrders},
				{"Clients", m.TotalClients},
				{"Low-stock products", m.LowStockCount},
				{"Delivered sales", m.DeliveredSales.StringFixed(2)},
			})
			t.Render()
			if m.LowStockCount > 0 {
				warning(w, "%d products at or below minimum stock, see `stock low`", m.LowStockCount)
			}
			return nil
		},
	}
}

func newReportStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Order counts per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.GetOrdersByStatus(cmd.Context())
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Status", "Orders"})
			for _, c := range res.Counts {
				t.AppendRow(table.Row{statusCell(c.Status), c.Count})
			}
			t.AppendFooter(table.Row{"Total", res.Total})
			t.Render()
			return nil
		},
	}
}

func newReportMarginsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "margins",
		Short: "Markup of every active product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.GetProductMargins(cmd.Context())
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res.Margins)
			}
			printMargins(cmd, res.Margins)
			return nil
		},
	}
}

func printMargins(cmd *cobra.Command, margins []core.ProductMargin) {
	w := cmd.OutOrStdout()
	if len(margins) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No active products."))
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Product", "Price", "Cost", "Margin %"})
	for _, m := range margins {
		t.AppendRow(table.Row{m.ProductID, m.Label, m.Price.StringFixed(2), m.Cost.StringFixed(2), m.MarginPct.StringFixed(1)})
	}
	t.Render()
}
