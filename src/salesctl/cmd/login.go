package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/validator"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session token",
	Long: `Sign in with e-mail and password. The token is stored locally and reused
by later commands until it expires or 'salesctl logout' is run.

When --password is omitted the password is read from the first line of stdin.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().String("email", "", "account e-mail")
	loginCmd.Flags().String("password", "", "account password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.Wrap(err, "reading password")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	payload := validator.LoginPayload{Email: strings.TrimSpace(email), Password: password}
	if err := payload.Validate(); err != nil {
		return validator.ValidationErrorResponse(err)
	}

	return withConsole(cmd, func(c *console) error {
		if err := c.session.SignIn(cmd.Context(), c.api, payload.Email, payload.Password); err != nil {
			return err
		}
		s, _ := c.session.Current()
		c.printer.Success("Logged in as %s (%s)", s.Subject, roleList(s.Roles))
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withConsole(cmd, func(c *console) error {
		if err := c.session.Logout(cmd.Context()); err != nil {
			return err
		}
		c.printer.Success("Logged out")
		return nil
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withConsole(cmd, func(c *console) error {
		if err := c.requireSession(); err != nil {
			return err
		}
		s, _ := c.session.Current()
		c.printer.Print("%s %s", c.printer.Bold("user:"), s.Subject)
		if s.Name != "" {
			c.printer.Print("%s %s", c.printer.Bold("name:"), s.Name)
		}
		c.printer.Print("%s %s", c.printer.Bold("roles:"), roleList(s.Roles))
		if !s.ExpiresAt.IsZero() {
			c.printer.Print("%s %s", c.printer.Bold("until:"), s.ExpiresAt.Format("02/01/2006 15:04"))
		}
		return nil
	})
}

func roleList(roles model.RoleSet) string {
	labels := make([]string, 0, len(roles))
	for _, r := range roles.Slice() {
		labels = append(labels, r.Label())
	}
	return strings.Join(labels, ", ")
}
