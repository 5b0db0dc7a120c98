package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridwise/microgrid/config"
	"github.com/gridwise/microgrid/core/controller"
	"github.com/gridwise/microgrid/infra/logger"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the controller rule precedence order",
	RunE:  printRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func printRules(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// The rule order is fixed; print it with defaults when no config
		// file is present.
		cfg = &config.Config{}
		cfg.SetDefaults()
	}
	ctrl := controller.New(cfg.Controller, logger.NopLogger{})
	for i, name := range ctrl.RuleNames() {
		fmt.Printf("%d. %s\n", i+1, name)
	}
	return nil
}
