package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	dexerrors "github.com/dexcom-osc-bridge/dexosc-go/internal/errors"
	"github.com/dexcom-osc-bridge/dexosc-go/internal/prompt"
	"github.com/dexcom-osc-bridge/dexosc-go/pkg/vault"
)

func newSetupCmd(a *app) *cobra.Command {
	var region, username string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Store Dexcom credentials encrypted in a local file",
		Long: `Prompt for the Dexcom Share username, password and a master passphrase,
then write the password encrypted under the passphrase to the credential file.

The password and passphrase are only ever read interactively.

Examples:
  dexosc setup
  dexosc setup --region ous --username me@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd); err != nil {
				return err
			}
			return a.runSetup(cmd, region, username)
		},
	}

	cmd.Flags().StringVar(&region, "region", "us", "Share region: us, ous or jp")
	cmd.Flags().StringVar(&username, "username", "", "Dexcom username, email or phone")
	return cmd
}

func (a *app) runSetup(cmd *cobra.Command, regionFlag, username string) error {
	region, err := vault.NormalizeRegion(regionFlag)
	if err != nil {
		return dexerrors.WrapWithCode(err, dexerrors.ErrSetup,
			fmt.Sprintf("Unknown region %q", regionFlag),
			"Use --region us, ous (outside the US) or jp")
	}

	p, err := a.deps.Prompter(a.deps.In, cmd.OutOrStdout())
	if err != nil {
		return dexerrors.WrapWithCode(err, dexerrors.ErrSetup, "Cannot read from the terminal", "")
	}
	defer p.Close()

	if username == "" {
		if username, err = p.Line("Dexcom username/email/phone: "); err != nil {
			return setupInputErr(err)
		}
	}
	if username == "" {
		return dexerrors.New(dexerrors.ErrSetup, "Username is required", "")
	}

	password, err := p.Secret("Dexcom password (hidden): ")
	if err != nil {
		return setupInputErr(err)
	}
	if password == "" {
		return dexerrors.New(dexerrors.ErrSetup, "Dexcom password is required", "")
	}

	master, err := p.Secret("Create master passphrase (hidden): ")
	if err != nil {
		return setupInputErr(err)
	}
	again, err := p.Secret("Re-enter master passphrase: ")
	if err != nil {
		return setupInputErr(err)
	}
	if master == "" {
		return dexerrors.New(dexerrors.ErrSetup, "Master passphrase is required", "")
	}
	if master != again {
		return dexerrors.New(dexerrors.ErrSetup, "Master passphrases did not match",
			"Nothing was written. Run 'dexosc setup' again")
	}

	blob, err := vault.Encrypt(password, master)
	if err != nil {
		return dexerrors.WrapWithCode(err, dexerrors.ErrVault, "Failed to encrypt password", "")
	}

	rec := &vault.CredentialRecord{
		Region:            region,
		Username:          username,
		EncryptedPassword: blob,
	}
	if err := vault.Save(a.cfg.CredentialFile, rec); err != nil {
		return dexerrors.WrapWithCode(err, dexerrors.ErrVault,
			"Failed to save credentials",
			"Check that the directory is writable or pass --cred-file")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved encrypted credentials to: %s\n", a.cfg.CredentialFile)
	return nil
}

func setupInputErr(err error) error {
	if errors.Is(err, prompt.ErrCancelled) {
		return dexerrors.New(dexerrors.ErrSetup, "Setup cancelled", "Nothing was written")
	}
	return dexerrors.WrapWithCode(err, dexerrors.ErrSetup, "Failed to read input", "")
}
