package auth

import (
	"fmt"
	"io"
	"strings"

	"igprofile/pkg/config"
)

// ConsoleURL is where Apify users find their API token.
const ConsoleURL = "https://console.apify.com/settings/integrations"

// WriteTokenGuide prints how to obtain and provide an Apify API token.
func WriteTokenGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "APIFY API TOKEN")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Profiles are scraped by the apify/instagram-scraper actor, which")
	fmt.Fprintln(w, "runs on your Apify account and needs an API token.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. Sign in at https://console.apify.com")
	fmt.Fprintf(w, "2. Open %s\n", ConsoleURL)
	fmt.Fprintln(w, "3. Copy the Personal API token")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Then provide it in one of these ways:")
	fmt.Fprintf(w, "   - %s=<token> in a .env file in the working directory\n", config.TokenEnvVar)
	fmt.Fprintf(w, "   - export %s=<token>\n", config.TokenEnvVar)
	fmt.Fprintln(w, "   - igprofile auth login (stores it in the keyring or an encrypted file)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Actor runs consume platform credits on that account.")
	fmt.Fprintln(w, rule)
}

// WriteQuickHint prints a one-line reminder.
func WriteQuickHint(w io.Writer) {
	fmt.Fprintf(w, "Token: %s -> copy the Personal API token (type 'help' for details)\n", ConsoleURL)
}
