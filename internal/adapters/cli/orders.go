package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"uniform-store/internal/app"
	"uniform-store/internal/core"
)

// parseItems reads repeated --item PRODUCT_ID:QTY flags.
func parseItems(raw []string) ([]core.StockItem, error) {
	items := make([]core.StockItem, 0, len(raw))
	for _, r := range raw {
		id, qty, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf("invalid item %q, expected PRODUCT_ID:QTY", r)
		}
		productID, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Errorf("invalid product id in %q: %w", r, err)
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", r, err)
		}
		items = append(items, core.StockItem{ProductID: productID, Quantity: quantity})
	}
	return items, nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// optionalID turns a zero flag value into nil.
func optionalID(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

func newOrderCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "order",
		Aliases: []string{"orders", "o"},
		Short:   "Place, inspect and progress orders",
	}
	cmd.AddCommand(
		newOrderPlaceCmd(rt),
		newOrderListCmd(rt),
		newOrderShowCmd(rt),
		newOrderStatusCmd(rt),
		newOrderCancelCmd(rt),
		newOrderDeleteCmd(rt),
	)
	return cmd
}

func newOrderPlaceCmd(rt *runtime) *cobra.Command {
	var (
		clientID, schoolID int
		items              []string
		expected, payment  string
		notes              string
	)
	cmd := &cobra.Command{
		Use:     "place",
		Short:   "Place an order and reserve its stock",
		Example: `  uniforms order place --client 1 --school 2 --item 4:2 --item 7:1 --payment PIX`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseItems(items)
			if err != nil {
				return err
			}
			lines := make([]app.OrderLineInput, len(parsed))
			for i, it := range parsed {
				lines[i] = app.OrderLineInput{ProductID: it.ProductID, Quantity: it.Quantity}
			}

			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.PlaceOrder(cmd.Context(), app.PlaceOrderRequest{
				ClientID:             clientID,
				SchoolID:             optionalID(schoolID),
				Lines:                lines,
				ExpectedDeliveryDate: expected,
				PaymentMethod:        payment,
				Notes:                notes,
			})
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res.Order)
			}
			success(cmd.OutOrStdout(), "order #%d placed", res.Order.ID)
			printOrder(cmd.OutOrStdout(), res.Order)
			return nil
		},
	}
	cmd.Flags().IntVar(&clientID, "client", 0, "Client ID (required)")
	cmd.Flags().IntVar(&schoolID, "school", 0, "School ID")
	cmd.Flags().StringArrayVar(&items, "item", nil, "Line as PRODUCT_ID:QTY (repeatable)")
	cmd.Flags().StringVar(&expected, "expected", "", "Expected delivery date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&payment, "payment", "", "Payment method")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newOrderListCmd(rt *runtime) *cobra.Command {
	var (
		clientID, schoolID int
		status             string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.ListOrders(cmd.Context(), app.ListOrdersRequest{
				SchoolID: optionalID(schoolID),
				ClientID: optionalID(clientID),
				Status:   status,
			})
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res.Orders)
			}
			printOrders(cmd.OutOrStdout(), res.Orders)
			return nil
		},
	}
	cmd.Flags().IntVar(&clientID, "client", 0, "Only orders of this client")
	cmd.Flags().IntVar(&schoolID, "school", 0, "Only orders for this school")
	cmd.Flags().StringVar(&status, "status", "", "Only orders in this status")
	return cmd
}

func newOrderShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show an order with its lines",
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
			res, err := svc.GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res.Order)
			}
			printOrder(cmd.OutOrStdout(), res.Order)
			return nil
		},
	}
}

func newOrderStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Move an order along its lifecycle",
		Long: `Move an order along its lifecycle:

  PENDING → IN_PRODUCTION → READY_FOR_DELIVERY → DELIVERED

Any open order may also jump to DELIVERED or CANCELLED. Setting CANCELLED here
only labels the order; use "order cancel" to remove it and restock.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.TransitionStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res.Order)
			}
			success(cmd.OutOrStdout(), "order #%d is now %s", res.Order.ID, res.Order.Status.Label())
			return nil
		},
	}
}

func newOrderCancelCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel an order, returning its stock",
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
			if err := svc.CancelOrder(cmd.Context(), id); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "order #%d cancelled, stock restored", id)
			return nil
		},
	}
}

func newOrderDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <order-id>",
		Short: "Delete an order, returning its stock",
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
			if err := svc.DeleteOrder(cmd.Context(), id); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "order #%d deleted, stock restored", id)
			return nil
		},
	}
}
