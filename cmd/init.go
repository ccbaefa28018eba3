package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/habedi/sbanken/db"
	"github.com/habedi/sbanken/pkg/clierr"
	"github.com/habedi/sbanken/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// initCmd saves the API client credentials and the default user ID in the internal database.
func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Save the API client credentials for first-time use",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

			cmd.Println("Please enter the client ID and secret of your API client, and your user ID.")
			clientID, err := p.input("Client ID: ")
			if err != nil {
				return clierr.New(clierr.Validation, "Failed to read input.", err)
			}
			secret, err := p.password("Secret: ")
			if err != nil {
				return clierr.New(clierr.Validation, "Failed to read the secret.", err)
			}
			userID, err := p.input("User ID: ")
			if err != nil {
				return clierr.New(clierr.Validation, "Failed to read input.", err)
			}

			creds := &db.Credentials{ClientID: clientID, Secret: secret, UserID: userID}
			if err := validateCredentials(creds); err != nil {
				return clierr.New(clierr.Validation, "Invalid credentials: "+err.Error(), err)
			}

			if err := db.NewCredentialsRepository(db.GetDB()).Upsert(cmd.Context(), creds); err != nil {
				log.Error().Err(err).Msg("Failed to save credentials")
				return clierr.New(clierr.Internal, "Failed to save the credentials.", err)
			}
			cmd.Println("Credentials saved successfully.")
			return nil
		},
	}

	return cmd
}

// prompter reads answers line by line. Secrets are read without echo when in is a terminal.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, reader: bufio.NewReader(in), out: out}
}

// input prompts the user for input and returns the trimmed string.
func (p *prompter) input(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// password prompts for a secret securely and returns the trimmed string.
func (p *prompter) password(prompt string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.input(prompt)
	}
	fmt.Fprint(p.out, prompt)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out) // Print a newline for better formatting
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

func validateCredentials(creds *db.Credentials) error {
	if err := validation.ValidateNonEmptyString("client ID", creds.ClientID); err != nil {
		return err
	}
	if err := validation.ValidateNonEmptyString("secret", creds.Secret); err != nil {
		return err
	}
	return validation.ValidateNonEmptyString("user ID", creds.UserID)
}
