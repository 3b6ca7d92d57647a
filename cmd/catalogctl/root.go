package main

import (
	"katalog/internal/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings read from flags or the environment.
const (
	keyURL         = "CATALOG_URL"
	keyAPIKey      = "CATALOG_API_KEY"
	keyPassword    = "CATALOG_PASSWORD"
	keyRabbitMQURL = "RABBITMQ_URL"
)

func newRootCommand(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Browse the product catalog",
		Long: `catalogctl reads products from a catalog server in JSON or XML.

Configuration:
  Flags override the environment. CATALOG_URL and CATALOG_API_KEY select
  the server and its API key; a .env file in the working directory is
  loaded first.

Commands:
  login    Exchange credentials for a signed token
  list     Show one page of products
  get      Show a single product as a tree or raw text
  events   Follow product events from RabbitMQ`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("url", "http://localhost:8080", "catalog base URL ("+keyURL+")")
	flags.String("api-key", "", "API key sent with every request ("+keyAPIKey+")")
	flags.Bool("verbose", false, "log every request to stderr")
	_ = v.BindPFlag(keyURL, flags.Lookup("url"))
	_ = v.BindPFlag(keyAPIKey, flags.Lookup("api-key"))
	v.AutomaticEnv()

	root.AddCommand(
		newLoginCommand(v),
		newListCommand(v),
		newGetCommand(v),
		newEventsCommand(v),
	)
	return root
}

func newClient(cmd *cobra.Command, v *viper.Viper) *client.Client {
	logger := zap.NewNop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	return client.New(client.Config{
		BaseURL: v.GetString(keyURL),
		APIKey:  v.GetString(keyAPIKey),
		Logger:  logger,
	})
}
