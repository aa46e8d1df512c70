package main

import (
	"bufio"
	"catalog_server/client"
	"catalog_server/lib"
	"catalog_server/store"
	"catalog_server/structs/tables"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	listSearch string
	listPage   int
	listLimit  int

	formSKU    string
	formName   string
	formPrice  string
	formImages []string
	formKeep   []string
	formGenSKU bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage products through the HTTP API",
}

func newAPIClient() *client.Client {
	return client.New(cfg.Client, logger)
}

// catalog products list
var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newAPIClient().ListProducts(cmd.Context(), listSearch, listPage, listLimit)
		if err != nil {
			return err
		}

		printProducts(list.Products)
		fmt.Println(store.PageLabel(store.State{CurrentPage: list.CurrentPage, TotalPages: list.TotalPages}), "-", list.Total, "products")
		return nil
	},
}

// catalog products get <id>
var productsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProductID(args[0])
		if err != nil {
			return err
		}

		product, err := newAPIClient().GetProduct(cmd.Context(), id)
		if err != nil {
			return err
		}
		printProducts([]tables.Product{*product})
		return nil
	},
}

// catalog products add
var productsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product",
	RunE: func(cmd *cobra.Command, args []string) error {
		form := store.NewAddForm(cfg.Client.AssetsURL)
		form.SKU, form.Name, form.Price = formSKU, formName, formPrice
		if formGenSKU && strings.TrimSpace(form.SKU) == "" {
			sku, err := lib.GenerateSKU(form.Name, 5)
			if err != nil {
				return err
			}
			form.SKU = sku
		}

		closeFiles, err := attachFiles(form, formImages)
		if err != nil {
			return err
		}
		defer closeFiles()

		if errs := form.Validate(); errs != nil {
			return formError(errs)
		}

		s := store.New(newAPIClient(), logger)
		product, err := s.AddProduct(cmd.Context(), form.Payload())
		if err != nil {
			return err
		}
		printProducts([]tables.Product{*product})
		return nil
	},
}

// catalog products edit <id>
var productsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a product; unset flags keep the stored values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProductID(args[0])
		if err != nil {
			return err
		}

		apiClient := newAPIClient()
		current, err := apiClient.GetProduct(cmd.Context(), id)
		if err != nil {
			return err
		}

		form := store.NewEditForm(*current, cfg.Client.AssetsURL)
		flags := cmd.Flags()
		if flags.Changed("sku") {
			form.SKU = formSKU
		}
		if flags.Changed("name") {
			form.Name = formName
		}
		if flags.Changed("price") {
			form.Price = formPrice
		}
		if flags.Changed("keep") {
			keepOnly(form, formKeep)
		}

		closeFiles, err := attachFiles(form, formImages)
		if err != nil {
			return err
		}
		defer closeFiles()

		if errs := form.Validate(); errs != nil {
			return formError(errs)
		}

		s := store.New(apiClient, logger)
		product, err := s.EditProduct(cmd.Context(), id, form.Payload())
		if err != nil {
			return err
		}
		printProducts([]tables.Product{*product})
		return nil
	},
}

// catalog products delete <id>
var productsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProductID(args[0])
		if err != nil {
			return err
		}

		if err := store.New(newAPIClient(), logger).DeleteProduct(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Product %d deleted\n", id)
		return nil
	},
}

// catalog products browse
var productsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse products interactively (/text search, n next, p previous, r refresh, q quit)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		s := store.New(newAPIClient(), logger)
		unsubscribe := s.Subscribe(func(st store.State) {
			switch st.Status {
			case store.StatusLoading:
				fmt.Println("Loading...")
			case store.StatusLoaded:
				printProducts(st.Products)
				fmt.Println(store.PageLabel(st), "-", st.Total, "products")
			case store.StatusErrored:
				fmt.Println("Error:", st.Error)
			}
		})
		defer unsubscribe()

		lc := store.NewListController(ctx, s, logger, cfg.Client.PageSize, cfg.Client.SearchDebounce)
		defer lc.Close()

		if err := lc.Refresh(); err != nil {
			logger.Debug("Initial fetch failed")
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "q":
				return nil
			case line == "n":
				lc.NextPage()
			case line == "p":
				lc.PrevPage()
			case line == "r":
				lc.Refresh()
			case strings.HasPrefix(line, "/"):
				lc.SetSearch(strings.TrimPrefix(line, "/"))
			}
		}
		return scanner.Err()
	},
}

func init() {
	productsListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "match sku or name")
	productsListCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number")
	productsListCmd.Flags().IntVarP(&listLimit, "limit", "l", 10, "products per page")

	for _, c := range []*cobra.Command{productsAddCmd, productsEditCmd} {
		c.Flags().StringVar(&formSKU, "sku", "", "product sku")
		c.Flags().StringVar(&formName, "name", "", "product name")
		c.Flags().StringVar(&formPrice, "price", "", "product price")
		c.Flags().StringSliceVar(&formImages, "image", nil, "image file to upload (repeatable)")
	}
	productsAddCmd.Flags().BoolVar(&formGenSKU, "generate-sku", false, "derive a sku from the name when --sku is empty")
	productsEditCmd.Flags().StringSliceVar(&formKeep, "keep", nil, "stored image refs to keep; the others are removed")

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsGetCmd)
	productsCmd.AddCommand(productsAddCmd)
	productsCmd.AddCommand(productsEditCmd)
	productsCmd.AddCommand(productsDeleteCmd)
	productsCmd.AddCommand(productsBrowseCmd)
}

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid product id %q", raw)
	}
	return id, nil
}

// attachFiles opens paths and selects them on form. The returned func closes them.
func attachFiles(form *store.ProductForm, paths []string) (func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	files := make([]client.File, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, err
		}
		opened = append(opened, f)
		files = append(files, client.File{Name: filepath.Base(p), Content: f})
	}

	if err := form.AddFiles(files...); err != nil {
		closeAll()
		return nil, err
	}
	return closeAll, nil
}

// keepOnly drops every retained image not listed in keep.
func keepOnly(form *store.ProductForm, keep []string) {
	wanted := make(map[string]bool, len(keep))
	for _, ref := range keep {
		wanted[strings.TrimSpace(ref)] = true
	}

	existing := form.Existing()
	for i := len(existing) - 1; i >= 0; i-- {
		if !wanted[existing[i]] {
			form.RemoveExisting(i)
		}
	}
}

func formError(errs store.FieldErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, field := range []string{"sku", "name", "price"} {
		if msg, ok := errs[field]; ok {
			msgs = append(msgs, msg)
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func printProducts(products []tables.Product) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "SKU", "Name", "Price", "Images")

	for _, p := range products {
		table.Append(
			strconv.FormatInt(p.ID, 10),
			p.SKU,
			p.Name,
			store.PriceLabel(p.Price),
			strings.Join(p.Images, "\n"),
		)
	}

	table.Render()
}
