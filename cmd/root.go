package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/storefront/cart/cmd"
	homeCmd "github.com/Alturino/storefront/home/cmd"
	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/log"
)

func Start() {
	logger := log.InitLogger("/var/log/storefront.log").
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "storefront", Short: "Storefront cart zones"}
	commands := []*cobra.Command{
		{
			Use:   "home",
			Short: "Run the home zone: product listing cart actions and hand-off",
			Run: func(cmd *cobra.Command, args []string) {
				homeCmd.RunHomeZone(cmd.Context())
			},
		},
		{
			Use:   "cart",
			Short: "Run the cart zone: basket page state and hand-off import",
			Run: func(cmd *cobra.Command, args []string) {
				cartCmd.RunCartZone(cmd.Context())
			},
		},
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
