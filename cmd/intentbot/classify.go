package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Print the predicted intent and its probability",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sys, err := loadSystem(context.Background())
		if err != nil {
			return err
		}
		defer sys.Close()

		pred, err := sys.Conversation.Predict(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.4f\n", pred.Tag, pred.Probability)
		return nil
	},
}
