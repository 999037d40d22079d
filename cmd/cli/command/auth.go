package command

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"
)

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign up with an email confirmation code, log in with the code and manage stored tokens.`,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Request a confirmation code by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		username, _ := cmd.Flags().GetString("username")

		resp, err := client.NewHTTPClient(apiURL).Signup(cmd.Context(), dto.SignupRequest{Email: email, Username: username})
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		success("Confirmation code sent to %s", resp.Email)
		fmt.Printf("Run: yamdb auth login -u %s -c <code>\n", resp.Username)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange a confirmation code for tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		code, _ := cmd.Flags().GetString("code")

		c := client.NewHTTPClient(apiURL)
		resp, err := c.Token(cmd.Context(), dto.TokenRequest{Username: username, ConfirmationCode: code})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		creds := &authentication.StoredCredentials{
			APIURL:       apiURL,
			Username:     username,
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
		}
		if exp, err := tokenExpiry(resp.AccessToken); err == nil {
			creds.ExpiresAt = exp
		}
		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("could not store tokens: %w", err)
		}

		success("Logged in as %s", username)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Get a new access token with the stored refresh token",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if err != nil {
			return err
		}

		resp, err := client.NewHTTPClient(apiURL).Refresh(cmd.Context(), creds.RefreshToken)
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		creds.AccessToken = resp.AccessToken
		creds.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		if err := authentication.StoreTokens(creds); err != nil {
			return err
		}

		success("Access token renewed, valid until %s", creds.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if err != nil {
			return err
		}
		if creds.Expired(time.Now()) {
			warn("Access token expired, run: yamdb auth refresh")
		}

		me, err := newClient().Me(cmd.Context())
		if err != nil {
			return err
		}
		printField("Username", me.Username)
		printField("Email", me.Email)
		printField("Role", me.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the refresh token and forget stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if err == nil {
			if err := client.NewHTTPClient(apiURL).Revoke(cmd.Context(), creds.RefreshToken); err != nil {
				warn("could not revoke refresh token: %v", err)
			}
		}
		if err := authentication.DeleteTokens(); err != nil {
			return err
		}
		success("Logged out")
		return nil
	},
}

// tokenExpiry reads the exp claim without verifying the signature; the CLI
// never holds the server secret.
func tokenExpiry(accessToken string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(signupCmd, loginCmd, refreshCmd, whoamiCmd, logoutCmd)

	signupCmd.Flags().StringP("email", "e", "", "Email address that receives the code")
	signupCmd.Flags().StringP("username", "u", "", "Username for the account")
	signupCmd.MarkFlagRequired("email")
	signupCmd.MarkFlagRequired("username")

	loginCmd.Flags().StringP("username", "u", "", "Username for the account")
	loginCmd.Flags().StringP("code", "c", "", "Confirmation code from the email")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("code")
}
