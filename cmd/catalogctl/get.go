package main

import (
	"fmt"

	"katalog/internal/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newGetCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single product",
		Long: `Fetch one product and print it as an indented field tree, or as the
raw response text with --raw.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawFormat, _ := cmd.Flags().GetString("format")
			raw, _ := cmd.Flags().GetBool("raw")

			format, err := client.ParseFormat(rawFormat)
			if err != nil {
				return err
			}

			c := newClient(cmd, v)
			defer c.Close()

			b := client.NewBrowser(c)
			b.SetFormat(format)
			d, err := b.Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if raw {
				d.ToggleRaw()
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.Render())
			return nil
		},
	}
	cmd.Flags().String("format", string(client.FormatJSON), "response format: json or xml")
	cmd.Flags().Bool("raw", false, "print the response text instead of the tree")
	return cmd
}
