package cmd

import (
	"time"

	"github.com/habedi/sbanken/client"
	"github.com/habedi/sbanken/pkg/clierr"
	"github.com/habedi/sbanken/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// defaultHistoryDays is how far back `transactions list` looks when --from is not given.
const defaultHistoryDays = 30

// transactionsCmd groups the transaction commands.
func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Show account transactions",
	}
	cmd.AddCommand(listTransactionsCmd())
	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var accountNumber, from, to string
	var index, length int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of an account's transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := buildTransactionQuery(accountNumber, from, to, index, length, time.Now())
			if err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			return listTransactions(cmd, query)
		},
	}

	cmd.Flags().StringVarP(&accountNumber, "account", "a", "", "Account number (required)")
	cmd.Flags().StringVar(&from, "from", "", "First day to include, as YYYY-MM-DD (default 30 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "Last day to include, as YYYY-MM-DD (default now)")
	cmd.Flags().IntVarP(&index, "index", "i", 0, "Index of the first transaction to show")
	cmd.Flags().IntVarP(&length, "length", "l", client.DefaultPageLength, "Number of transactions to show")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

// buildTransactionQuery validates the flags; the user ID is filled in later from the settings.
func buildTransactionQuery(accountNumber, from, to string, index, length int, now time.Time) (client.TransactionQuery, error) {
	var q client.TransactionQuery
	if err := validation.ValidateAccountNumber(accountNumber); err != nil {
		return q, err
	}
	if err := validation.ValidatePageIndex(index); err != nil {
		return q, err
	}
	if err := validation.ValidatePageLength(length); err != nil {
		return q, err
	}

	start, err := parseDate(from)
	if err != nil {
		return q, err
	}
	end, err := parseDate(to)
	if err != nil {
		return q, err
	}
	if end.IsZero() {
		end = now
	} else {
		// include the whole last day
		end = end.AddDate(0, 0, 1).Add(-time.Second)
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -defaultHistoryDays)
	}
	if err := validation.ValidateDateRange(start, end); err != nil {
		return q, err
	}

	return client.TransactionQuery{
		AccountNumber: accountNumber,
		StartDate:     start,
		EndDate:       end,
		Index:         index,
		Length:        length,
	}, nil
}

func listTransactions(cmd *cobra.Command, query client.TransactionQuery) error {
	c, cfg, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	if err := requireUserID(cfg); err != nil {
		return err
	}
	query.UserID = cfg.UserID

	log.Info().Str("account", query.AccountNumber).Msg("Listing transactions")
	page, err := c.Transactions(cmd.Context(), query)
	if err != nil {
		return bankError("Failed to list transactions", err)
	}
	if len(page.Items) == 0 {
		cmd.Println("No transactions found in the selected period.")
		return nil
	}

	table := newTable(cmd.OutOrStdout(), []string{"Date", "Amount", "Text", "Type", "Reserved"})
	for _, t := range page.Items {
		table.Append([]string{
			formatDate(t.AccountingDate),
			formatAmount(t.Amount),
			singleLine(t.Text),
			t.TransactionTypeText,
			yesNo(t.IsReservation),
		})
	}
	table.Render()

	cmd.Printf("Showing %d-%d of %d transactions.\n", query.Index+1, query.Index+len(page.Items), page.AvailableItems)
	return nil
}
