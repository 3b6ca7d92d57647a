package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLoginCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Exchange credentials for a signed token",
		Long: `Log in and print the signed token on stdout.

The password is taken from --password or CATALOG_PASSWORD.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := v.GetString(keyPassword)
			if password == "" {
				return errors.New("a password is required")
			}

			c := newClient(cmd, v)
			defer c.Close()

			res, err := c.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "logged in as %s (%s)\n", res.User.Username, res.User.Role)
			return nil
		},
	}
	cmd.Flags().String("password", "", "account password ("+keyPassword+")")
	_ = v.BindPFlag(keyPassword, cmd.Flags().Lookup("password"))
	return cmd
}
