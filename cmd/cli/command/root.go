package command

// root.go defines the root command and the global flags.

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"
)

var apiURL string // Global flag for API server URL

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yamdb",
	Short: "yamdb - review aggregation command line interface",
	Long: `yamdb talks to the yamdb API and manages its database.

Client commands (auth, titles, reviews) go through the HTTP API and keep
tokens in the OS keyring. Admin commands (migrate, createsuperuser, set-role,
deactivate, purge-tokens) read the server configuration from the environment
and work on the database directly.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080/api/v1", "API base URL")
}

// newClient returns an API client carrying the stored access token, if any.
func newClient() *client.HTTPClient {
	c := client.NewHTTPClient(apiURL)
	if creds, err := authentication.GetTokens(); err == nil {
		c.SetToken(creds.AccessToken)
	}
	return c
}

func success(format string, args ...any) {
	color.Green("✓ "+format, args...)
}

func warn(format string, args ...any) {
	color.Yellow(format, args...)
}

func printField(label string, value any) {
	fmt.Printf("%s %v\n", color.New(color.Bold).Sprint(label+":"), value)
}
