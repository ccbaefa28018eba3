package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/habedi/sbanken/client"
	"github.com/habedi/sbanken/config"
	"github.com/habedi/sbanken/db"
	"github.com/habedi/sbanken/pkg/clierr"
	"github.com/habedi/sbanken/pkg/hasher"
	"github.com/habedi/sbanken/pkg/pool"
	"github.com/habedi/sbanken/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// refreshPageLength is the page size used when pulling the full history of an account.
const refreshPageLength = 100

// accountsCmd groups the account commands.
func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Show, snapshot and export bank accounts",
	}

	cmd.AddCommand(
		listAccountsCmd(),
		refreshAccountsCmd(),
		exportAccountsCmd(),
	)

	return cmd
}

// listAccountsCmd shows the accounts, live from the API or from the last snapshot.
func listAccountsCmd() *cobra.Command {
	var cached bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the list of accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cached {
				return listSnapshotAccounts(cmd)
			}
			return listLiveAccounts(cmd)
		},
	}
	cmd.Flags().BoolVarP(&cached, "cached", "c", false, "Show the accounts saved by the last refresh instead of querying the bank")
	return cmd
}

func listLiveAccounts(cmd *cobra.Command) error {
	c, cfg, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	if err := requireUserID(cfg); err != nil {
		return err
	}

	log.Info().Str("user_id", cfg.UserID).Msg("Listing accounts")
	accounts, err := c.Accounts(cmd.Context(), cfg.UserID)
	if err != nil {
		return bankError("Failed to list accounts", err)
	}
	if len(accounts) == 0 {
		cmd.Println("No accounts found.")
		return nil
	}

	table := newTable(cmd.OutOrStdout(), []string{"Account Number", "Name", "Type", "Available", "Balance", "Credit Limit", "Default"})
	for _, a := range accounts {
		table.Append([]string{
			a.AccountNumber,
			singleLine(a.Name),
			a.AccountType,
			formatAmount(a.Available),
			formatAmount(a.Balance),
			formatAmount(a.CreditLimit),
			yesNo(a.DefaultAccount),
		})
	}
	table.Render()

	log.Info().Msgf("Successfully listed %d accounts.", len(accounts))
	return nil
}

func listSnapshotAccounts(cmd *cobra.Command) error {
	accounts, err := db.NewSnapshotRepository(db.GetDB()).ListAccounts(cmd.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read the account snapshot")
		return clierr.New(clierr.Internal, "Unable to list accounts. Please check the logs for details.", err)
	}
	if len(accounts) == 0 {
		cmd.Println("No accounts found in the snapshot. Use `sbanken accounts refresh` to take one.")
		return nil
	}

	table := newTable(cmd.OutOrStdout(), []string{"Account Number", "Name", "Type", "Available", "Balance", "Refreshed"})
	for _, a := range accounts {
		table.Append([]string{
			a.AccountNumber,
			singleLine(a.Name),
			a.AccountType,
			formatAmount(a.Available),
			formatAmount(a.Balance),
			a.RefreshedAt.Local().Format(time.DateTime),
		})
	}
	table.Render()
	return nil
}

// refreshAccountsCmd replaces the local snapshot with the current accounts and their recent transactions.
func refreshAccountsCmd() *cobra.Command {
	var numThreads, days int

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Save the accounts and their recent transactions in the local snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threads") {
				if cfg, err := config.Load(); err == nil && cfg.Threads != 0 {
					numThreads = cfg.Threads
				}
			}
			return refreshSnapshot(cmd, numThreads, days)
		},
	}

	cmd.Flags().IntVarP(&numThreads, "threads", "t", config.DefaultThreads, "Number of threads to use for fetching transactions")
	cmd.Flags().IntVarP(&days, "days", "d", 30, "Number of days of transaction history to fetch")
	return cmd
}

type accountHistory struct {
	account      client.Account
	transactions []client.Transaction
}

func refreshSnapshot(cmd *cobra.Command, numThreads, days int) error {
	log.Info().Msg("Refreshing the account snapshot...")

	if err := validation.ValidateThreadCount(numThreads); err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}
	if days < 1 {
		return clierr.New(clierr.Validation, fmt.Sprintf("days must be positive, got %d", days), nil)
	}

	ctx := cmd.Context()
	c, cfg, err := connect(ctx)
	if err != nil {
		return err
	}
	if err := requireUserID(cfg); err != nil {
		return err
	}

	accounts, err := c.Accounts(ctx, cfg.UserID)
	if err != nil {
		return bankError("Failed to fetch accounts", err)
	}
	log.Info().Msgf("Found %d accounts.", len(accounts))

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	bar := progressbar.NewOptions(len(accounts),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Refreshing accounts..."),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)

	results := pool.Map(ctx, accounts, numThreads, func(ctx context.Context, a client.Account) (accountHistory, error) {
		defer func() { _ = bar.Add(1) }()
		txs, err := fetchHistory(ctx, c, client.TransactionQuery{
			UserID:        cfg.UserID,
			AccountNumber: a.AccountNumber,
			StartDate:     start,
			EndDate:       end,
			Length:        refreshPageLength,
		})
		if err != nil {
			log.Warn().Err(err).Str("account", a.AccountNumber).Msg("Failed to fetch transactions")
		}
		return accountHistory{account: a, transactions: txs}, err
	})
	_ = bar.Finish()

	repo := db.NewSnapshotRepository(db.GetDB())
	current := make([]string, 0, len(accounts))
	for _, a := range accounts {
		current = append(current, a.AccountNumber)
	}
	// accounts whose fetch failed keep their previous snapshot
	if err := repo.Prune(ctx, current); err != nil {
		return clierr.New(clierr.Internal, "Failed to prune the account snapshot.", err)
	}

	var failed []error
	refreshedAt := time.Now()
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Err)
			continue
		}
		if err := saveHistory(ctx, repo, cfg.UserID, r.Value, refreshedAt); err != nil {
			log.Error().Err(err).Str("account", r.Item.AccountNumber).Msg("Failed to save the account snapshot")
			failed = append(failed, err)
		}
	}

	saved := len(accounts) - len(failed)
	cmd.Printf("Refreshing completed. %d of %d accounts saved in the snapshot.\n", saved, len(accounts))
	if len(failed) > 0 {
		return bankError(fmt.Sprintf("Failed to refresh %d accounts", len(failed)), failed[0])
	}
	return nil
}

// fetchHistory pages through an account's transactions until every available item is read.
func fetchHistory(ctx context.Context, c *client.Client, q client.TransactionQuery) ([]client.Transaction, error) {
	var all []client.Transaction
	for {
		page, err := c.Transactions(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(page.Items) == 0 || len(all) >= page.AvailableItems {
			return all, nil
		}
		q.Index += len(page.Items)
	}
}

func saveHistory(ctx context.Context, repo db.SnapshotRepository, userID string, h accountHistory, refreshedAt time.Time) error {
	a := h.account
	if err := repo.PutAccount(ctx, db.Account{
		AccountNumber:  a.AccountNumber,
		UserID:         userID,
		Name:           a.Name,
		AccountType:    a.AccountType,
		Available:      a.Available,
		Balance:        a.Balance,
		CreditLimit:    a.CreditLimit,
		DefaultAccount: a.DefaultAccount,
		RefreshedAt:    refreshedAt,
	}); err != nil {
		return err
	}

	rows := make([]db.Transaction, 0, len(h.transactions))
	for _, t := range h.transactions {
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode transaction %s: %w", t.TransactionID, err)
		}
		rows = append(rows, db.Transaction{
			AccountNumber:  a.AccountNumber,
			TransactionID:  t.TransactionID,
			AccountingDate: t.AccountingDate,
			Amount:         t.Amount,
			Text:           t.Text,
			Data:           string(raw),
		})
	}
	return repo.ReplaceTransactions(ctx, a.AccountNumber, rows)
}

// exportAccountsCmd writes the local snapshot to a file in JSON or CSV format.
func exportAccountsCmd() *cobra.Command {
	exportPath := ""
	exportFormat := ""
	checksum := ""

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the account snapshot to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportSnapshot(cmd, exportPath, exportFormat, checksum)
		},
	}

	cmd.Flags().StringVarP(&exportPath, "dir", "d", "", "Directory to export the file (required)")
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json or csv")
	cmd.Flags().StringVar(&checksum, "checksum", "sha256", "Checksum file to write next to the export: sha256, sha512 or none")

	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

// snapshotAccount is the JSON export shape: an account with its transactions.
type snapshotAccount struct {
	db.Account
	Transactions []db.Transaction `json:"transactions"`
}

func exportSnapshot(cmd *cobra.Command, exportPath, exportFormat, checksum string) error {
	log.Info().Msg("Exporting the account snapshot...")

	if err := validation.ValidateNonEmptyString("export directory", exportPath); err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}
	if err := validation.ValidateExportFormat(exportFormat); err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}
	if checksum != "none" && !hasher.IsValidHashAlgo(checksum) {
		return clierr.New(clierr.Validation, fmt.Sprintf("invalid checksum: %s (must be one of: %s, none)",
			checksum, strings.Join(hasher.HashAlgorithms, ", ")), nil)
	}
	if err := os.MkdirAll(exportPath, 0o755); err != nil {
		log.Error().Err(err).Msg("Failed to create export directory.")
		return clierr.New(clierr.Internal, "Failed to create export directory.", err)
	}

	ctx := cmd.Context()
	repo := db.NewSnapshotRepository(db.GetDB())
	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		return clierr.New(clierr.Internal, "Failed to read the account snapshot.", err)
	}
	if len(accounts) == 0 {
		return clierr.New(clierr.NotFound, "The snapshot is empty. Use `sbanken accounts refresh` to take one.", nil)
	}

	snapshot := make([]snapshotAccount, 0, len(accounts))
	for _, a := range accounts {
		txs, err := repo.ListTransactions(ctx, a.AccountNumber)
		if err != nil {
			return clierr.New(clierr.Internal, "Failed to read the transaction snapshot.", err)
		}
		snapshot = append(snapshot, snapshotAccount{Account: a, Transactions: txs})
	}

	timestamp := time.Now().Format("20060102_150405")
	var filePath string
	if exportFormat == "json" {
		filePath = filepath.Join(exportPath, fmt.Sprintf("sbanken_snapshot_%s.json", timestamp))
		err = writeSnapshotJSON(filePath, snapshot)
	} else {
		filePath = filepath.Join(exportPath, fmt.Sprintf("sbanken_transactions_%s.csv", timestamp))
		err = writeSnapshotCSV(filePath, snapshot)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to export the account snapshot.")
		return clierr.New(clierr.Internal, "Failed to export the account snapshot.", err)
	}

	cmd.Printf("Account snapshot exported to %s\n", filePath)

	if checksum != "none" {
		sumPath, err := hasher.WriteChecksumFile(filePath, checksum)
		if err != nil {
			return clierr.New(clierr.Internal, "Failed to write the checksum file.", err)
		}
		cmd.Printf("Checksum written to %s\n", sumPath)
	}
	return nil
}

func writeSnapshotJSON(path string, snapshot []snapshotAccount) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snapshot)
}

func writeSnapshotCSV(path string, snapshot []snapshotAccount) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"account_number", "account_name", "transaction_id", "accounting_date", "amount", "text"}); err != nil {
		return err
	}
	for _, a := range snapshot {
		for _, t := range a.Transactions {
			record := []string{a.AccountNumber, a.Name, t.TransactionID, formatDate(t.AccountingDate), formatAmount(t.Amount), singleLine(t.Text)}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
