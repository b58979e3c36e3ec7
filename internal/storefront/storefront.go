// Package storefront implements the command line shop: browsing, search,
// product detail and the shopping cart, on top of the storefront API.
package storefront

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/SigNoz/storefront-go-app/internal/cart"
	"github.com/SigNoz/storefront-go-app/internal/client"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/query"
)

// Exit codes returned by Run
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const usage = `Usage:
  storefront browse [-page N] [-category C]
  storefront search <query>
  storefront categories
  storefront show <id>
  storefront cart [list]
  storefront cart add <id>
  storefront cart remove <id>
  storefront cart update <id> <qty>
  storefront cart clear
`

var errUsage = errors.New("invalid usage")

// Catalog is the part of the API the storefront reads from
type Catalog interface {
	Products(ctx context.Context, page int, category string) (*models.ProductPage, error)
	Search(ctx context.Context, q string) ([]models.Product, error)
	Product(ctx context.Context, id int64) (*models.Product, error)
	Categories(ctx context.Context) (*models.Categories, error)
}

// App runs storefront commands against a catalog and a cart
type App struct {
	catalog Catalog
	cart    *cart.Cart
	out     io.Writer
	errOut  io.Writer
	logger  *zap.Logger
}

// New creates an App writing command output to out and errors to errOut
func New(catalog Catalog, c *cart.Cart, out, errOut io.Writer, logger *zap.Logger) *App {
	return &App{
		catalog: catalog,
		cart:    c,
		out:     out,
		errOut:  errOut,
		logger:  logger,
	}
}

// Run executes one command (args without the program name) and returns the
// process exit code
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.errOut, usage)
		return ExitUsage
	}

	var err error
	switch args[0] {
	case "browse":
		err = a.browse(ctx, args[1:])
	case "search":
		err = a.search(ctx, strings.Join(args[1:], " "))
	case "categories":
		err = a.categories(ctx)
	case "show":
		err = a.withID(args[1:], func(id int64) error { return a.show(ctx, id) })
	case "cart":
		err = a.cartCommand(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return ExitOK
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(a.errOut, "Error: %v\n\n%s", err, usage)
		return ExitUsage
	default:
		a.logger.Debug("Command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return ExitError
	}
}

func (a *App) browse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	page := fs.Int("page", query.DefaultPage, "page number")
	category := fs.String("category", query.AllCategories, "category to list")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *page < 1 {
		return fmt.Errorf("%w: page must be 1 or greater", errUsage)
	}

	result, err := a.catalog.Products(ctx, *page, *category)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	title := "All products"
	if *category != "" && *category != query.AllCategories {
		title = *category
	}
	fmt.Fprintf(a.out, "%s: %d products\n\n", title, result.Total)

	if len(result.Products) == 0 {
		fmt.Fprintln(a.out, "No products found.")
		return nil
	}
	a.productTable(result.Products)

	fmt.Fprintf(a.out, "\nPage %d of %d\n", result.Page, result.TotalPages)
	if result.Page < result.TotalPages {
		fmt.Fprintf(a.out, "More products available: storefront browse -category %q -page %d\n", *category, result.Page+1)
	}
	return nil
}

func (a *App) search(ctx context.Context, q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		fmt.Fprintln(a.out, "Enter a search term to find products.")
		return nil
	}

	products, err := a.catalog.Search(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to search products: %w", err)
	}
	if len(products) == 0 {
		fmt.Fprintf(a.out, "No products found for %q.\n", q)
		return nil
	}

	fmt.Fprintf(a.out, "%d results for %q\n\n", len(products), q)
	a.productTable(products)
	return nil
}

func (a *App) categories(ctx context.Context) error {
	cats, err := a.catalog.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	fmt.Fprintln(a.out, "Categories:")
	for _, c := range cats.Categories {
		fmt.Fprintf(a.out, "  %s\n", c)
	}
	fmt.Fprintln(a.out, "Subcategories:")
	for _, s := range cats.Subcategories {
		fmt.Fprintf(a.out, "  %s\n", s)
	}
	return nil
}

func (a *App) show(ctx context.Context, id int64) error {
	p, err := a.fetchProduct(ctx, id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\n", p.Name)
	fmt.Fprintf(w, "Brand:\t%s\n", p.Brand)
	fmt.Fprintf(w, "Category:\t%s / %s\n", p.Category, p.Subcategory)
	fmt.Fprintf(w, "Price:\t%s\n", priceLabel(*p))
	fmt.Fprintf(w, "Rating:\t%s\n", ratingLabel(*p))
	fmt.Fprintf(w, "Stock:\t%s\n", stockLabel(*p))
	fmt.Fprintf(w, "In cart:\t%s\n", a.inCartLabel(p.ID))
	w.Flush()

	if p.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", p.Description)
	}
	if len(p.Features) > 0 {
		fmt.Fprintln(a.out, "\nFeatures:")
		for _, f := range p.Features {
			fmt.Fprintf(a.out, "  - %s\n", f)
		}
	}
	if len(p.Specifications) > 0 {
		fmt.Fprintln(a.out, "\nSpecifications:")
		keys := make([]string, 0, len(p.Specifications))
		for k := range p.Specifications {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s:\t%s\n", k, p.Specifications[k])
		}
		w.Flush()
	}
	return nil
}

func (a *App) inCartLabel(id int64) string {
	for _, e := range a.cart.Entries() {
		if e.ID == id {
			return fmt.Sprintf("yes (quantity %d)", e.Quantity)
		}
	}
	return "no"
}

func (a *App) productTable(products []models.Product) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBRAND\tPRICE\tRATING\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\t%s\n",
			p.ID, p.Name, p.Brand, priceLabel(p), p.RatingOrDefault(), stockLabel(p))
	}
	w.Flush()
}

func (a *App) fetchProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := a.catalog.Product(ctx, id)
	if errors.Is(err, client.ErrProductNotFound) {
		return nil, fmt.Errorf("product %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return p, nil
}

func (a *App) withID(args []string, fn func(id int64) error) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected a product id", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return fn(id)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid product id %q", errUsage, s)
	}
	return id, nil
}
