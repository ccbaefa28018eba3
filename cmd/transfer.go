package cmd

import (
	"fmt"

	"github.com/habedi/sbanken/pkg/clierr"
	"github.com/habedi/sbanken/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// transferCmd moves money between two of the user's own accounts.
func transferCmd() *cobra.Command {
	var from, to, amount, message string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer money between your own accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseTransfer(from, to, amount)
			if err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}

			c, cfg, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireUserID(cfg); err != nil {
				return err
			}

			log.Info().Str("from", from).Str("to", to).Str("amount", value.String()).Msg("Transferring money")
			if _, err := c.Transfer(cmd.Context(), cfg.UserID, from, to, message, value); err != nil {
				return bankError("Transfer failed", err)
			}

			cmd.Printf("Transferred %s from %s to %s.\n", formatAmount(value), from, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Account number to transfer from (required)")
	cmd.Flags().StringVar(&to, "to", "", "Account number to transfer to (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to transfer, e.g. 1250.50 (required)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message shown on both accounts")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func parseTransfer(from, to, amount string) (decimal.Decimal, error) {
	if err := validation.ValidateAccountNumber(from); err != nil {
		return decimal.Zero, err
	}
	if err := validation.ValidateAccountNumber(to); err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return decimal.Zero, fmt.Errorf("cannot transfer from account %s to itself", from)
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, err
	}
	if err := validation.ValidateAmount(value); err != nil {
		return decimal.Zero, err
	}
	return value, nil
}
