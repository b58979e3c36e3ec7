package storefront

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/SigNoz/storefront-go-app/internal/cart"
)

func (a *App) cartCommand(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		a.listCart()
		return nil
	}

	switch args[0] {
	case "add":
		return a.withID(args[1:], func(id int64) error { return a.addToCart(ctx, id) })
	case "remove":
		return a.withID(args[1:], func(id int64) error { return a.removeFromCart(ctx, id) })
	case "update":
		if len(args) != 3 {
			return fmt.Errorf("%w: expected a product id and a quantity", errUsage)
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("%w: invalid quantity %q", errUsage, args[2])
		}
		return a.updateCart(ctx, id, qty)
	case "clear":
		if err := a.cart.Clear(ctx); err != nil {
			return fmt.Errorf("failed to save cart: %w", err)
		}
		fmt.Fprintln(a.out, "Cart cleared.")
		return nil
	default:
		return fmt.Errorf("%w: unknown cart command %q", errUsage, args[0])
	}
}

func (a *App) addToCart(ctx context.Context, id int64) error {
	p, err := a.fetchProduct(ctx, id)
	if err != nil {
		return err
	}
	if !p.InStock() {
		return fmt.Errorf("%s is out of stock", p.Name)
	}

	if err := a.cart.Add(ctx, *p); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	fmt.Fprintf(a.out, "Added %s to cart. Cart: %d items, %s\n", p.Name, a.cart.Count(), FormatINR(a.cart.Total()))
	return nil
}

func (a *App) removeFromCart(ctx context.Context, id int64) error {
	if !a.cart.Contains(id) {
		fmt.Fprintf(a.out, "Product %d is not in your cart.\n", id)
		return nil
	}
	if err := a.cart.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	fmt.Fprintf(a.out, "Removed product %d from cart.\n", id)
	return nil
}

func (a *App) updateCart(ctx context.Context, id int64, qty int) error {
	if !a.cart.Contains(id) {
		return fmt.Errorf("product %d is not in your cart", id)
	}
	if err := a.cart.UpdateQuantity(ctx, id, qty); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	if qty <= 0 {
		fmt.Fprintf(a.out, "Removed product %d from cart.\n", id)
		return nil
	}
	fmt.Fprintf(a.out, "Updated product %d to quantity %d.\n", id, qty)
	return nil
}

func (a *App) listCart() {
	entries := a.cart.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			e.ID, e.Name, FormatPrice(e.Price), e.Quantity, FormatINR(cart.LineTotal(e)))
	}
	w.Flush()

	fmt.Fprintf(a.out, "\nItems: %d\nTotal: %s\n", a.cart.Count(), FormatINR(a.cart.Total()))
}
