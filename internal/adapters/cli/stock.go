package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"uniform-store/internal/app"
	"uniform-store/internal/core"
)

func newStockCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Check and adjust product stock",
	}
	cmd.AddCommand(
		newStockCheckCmd(rt),
		newStockSetCmd(rt),
		newStockLowCmd(rt),
		newStockHistoryCmd(rt),
	)
	return cmd
}

func newStockCheckCmd(rt *runtime) *cobra.Command {
	var items []string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether items could be reserved right now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseItems(items)
			if err != nil {
				return err
			}
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			err = svc.CheckAvailability(cmd.Context(), parsed)
			var short *core.InsufficientStockError
			if errors.As(err, &short) {
				warning(cmd.OutOrStdout(), "product %d: requested %d, only %d available",
					short.ProductID, short.Requested, short.Available)
				return err
			}
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "all items available")
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&items, "item", nil, "Item as PRODUCT_ID:QTY (repeatable)")
	return cmd
}

func newStockSetCmd(rt *runtime) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set a product's stock level after a count",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.SetStock(cmd.Context(), app.SetStockRequest{ProductID: id, Quantity: qty, Note: note})
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res.Product)
			}
			success(cmd.OutOrStdout(), "%s stock set to %d", res.Product.Label(), res.Product.Stock)
			if res.LowStock {
				warning(cmd.OutOrStdout(), "at or below minimum stock (%d)", res.Product.MinStock)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Reason recorded on the stock movement")
	return cmd
}

func newStockLowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "low",
		Short: "List active products at or below their minimum stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.GetLowStock(cmd.Context())
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res.Products)
			}
			printProducts(cmd.OutOrStdout(), res.Products)
			return nil
		},
	}
}

func newStockHistoryCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "history <product-id>",
		Short: "Show the stock movements of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.StockMovements(cmd.Context(), id)
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res.Movements)
			}
			printMovements(cmd.OutOrStdout(), res.Movements)
			return nil
		},
	}
}
