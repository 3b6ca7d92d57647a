package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"katalog/internal/client"
	"katalog/internal/codec"
	"katalog/internal/pagination"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listColumns = []string{"id", "name", "sku", "price", "stock", "category"}

func newListCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of products",
		Long: `Fetch one page of products and print it as a table.

Sorting reorders the fetched page only. Sort tokens: ` + strings.Join(pagination.SortOptions, ", ") + `.

Example:
  catalogctl list --page 2 --limit 24 --format xml --sort price:desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")
			rawFormat, _ := cmd.Flags().GetString("format")
			sortToken, _ := cmd.Flags().GetString("sort")

			format, err := client.ParseFormat(rawFormat)
			if err != nil {
				return err
			}

			c := newClient(cmd, v)
			defer c.Close()

			b := client.NewBrowser(c)
			b.SetFormat(format)
			if err := b.SetPageSize(limit); err != nil {
				return err
			}
			if err := b.SetPage(page); err != nil {
				return err
			}
			if err := b.SetSort(sortToken); err != nil {
				return err
			}

			items, err := b.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeTable(cmd.OutOrStdout(), items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\npage %d  prev: %s  next: %s\n", b.Page(), yesNo(b.HasPrev()), yesNo(b.HasNext()))
			return nil
		},
	}
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("limit", client.DefaultPageSize, "page size")
	cmd.Flags().String("format", string(client.FormatJSON), "response format: json or xml")
	cmd.Flags().String("sort", pagination.DefaultSort.String(), "ordering of the fetched page")
	return cmd
}

func writeTable(w io.Writer, items []codec.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(listColumns, "\t")))
	for _, item := range items {
		row := make([]string, len(listColumns))
		for i, col := range listColumns {
			row[i] = item.Get(col)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
