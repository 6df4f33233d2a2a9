package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"igprofile/pkg/auth"
	"igprofile/pkg/ui"
)

var authProfile string

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored Apify API token",
	Long: `Manage the Apify API token used when APIFY_API_TOKEN is not set.

Tokens are stored in:
  - the system keychain (when available)
  - an encrypted file with a PBKDF2-derived key

Never share your token or the credential files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an Apify API token",
	Example: `  # Interactive login
  igprofile auth login

  # Store a token under a named profile
  igprofile auth login --profile work`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove a stored token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored tokens (masked) and where they live",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	authCmd.PersistentFlags().StringVar(&authProfile, "profile", auth.DefaultProfile, "credential profile name")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	auth.WriteTokenGuide(ui.Out)
	fmt.Fprintln(ui.Out)

	if existing, _ := manager.Retrieve(authProfile); existing != nil {
		answer, err := ui.ReadLine(os.Stdin, ui.Out,
			fmt.Sprintf("A token is already stored for '%s'. Replace it? (y/N): ", authProfile))
		if err != nil {
			return err
		}
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	token, err := ui.ReadSecret(os.Stdin, ui.Out, "Apify API token: ")
	if err != nil {
		return err
	}
	if token == "" {
		ui.PrintError("No token entered")
		return nil
	}

	where, err := manager.Store(&auth.Credential{Profile: authProfile, Token: token})
	if err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Token %s saved to %s (profile %s)", auth.MaskToken(token), where, authProfile))
	fmt.Fprintln(ui.Out, "\nRun: igprofile scrape <username>")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if err := manager.Delete(authProfile); err != nil {
		ui.PrintWarning("Nothing to remove", err.Error())
		return nil
	}
	ui.PrintSuccess("Token removed: " + authProfile)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	creds, err := manager.List()
	if err != nil {
		return err
	}
	if len(creds) == 0 {
		ui.PrintWarning("No stored token")
		auth.WriteQuickHint(ui.Out)
		return nil
	}

	for _, c := range creds {
		sources := strings.Join(manager.Sources(c.Profile), ", ")
		ui.PrintInfo(c.Profile, fmt.Sprintf("%s  [%s]", auth.MaskToken(c.Token), sources))
		if !c.LastModified.IsZero() {
			fmt.Fprintf(ui.Out, "  %s\n", ui.Dim("updated "+c.LastModified.Format("2006-01-02 15:04")))
		}
	}
	return nil
}
