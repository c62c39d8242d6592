package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/markb/sareeone/internal/auth"
	"github.com/markb/sareeone/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage staff accounts",
	Long:  `Commands for managing admin and driver accounts.`,
}

var userCreateAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long: `Create an admin account. The password is read from the terminal.

Examples:
  sareeone user create-admin --email ops@saree.one --name "Operations"
  echo "$ADMIN_PASSWORD" | sareeone user create-admin --email ops@saree.one`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		if email == "" {
			return fmt.Errorf("--email is required")
		}

		password, err := promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if term.IsTerminal(int(os.Stdin.Fd())) {
			confirm, err := promptPassword("Confirm password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}
		}

		cfg, database, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		service := auth.NewService(store.New(database), cfg.SessionSecret)
		acc, err := service.CreateAdmin(cmd.Context(), name, email, password)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}

		fmt.Printf("Created admin: %s (ID: %s)\n", acc.Email, acc.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staff accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		accounts, err := store.New(database).ListAccounts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		if len(accounts) == 0 {
			fmt.Println("No accounts found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tNAME\tLOGIN\tACTIVE\tCREATED")
		for _, a := range accounts {
			login := a.Email
			if login == "" {
				login = a.Phone
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n", a.ID, a.UserType, a.Name, login, a.IsActive, a.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

// stdinReader is reused for non-terminal input to avoid losing buffered data
var stdinReader *bufio.Reader

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	if stdinReader == nil {
		stdinReader = bufio.NewReader(os.Stdin)
	}
	password, err := stdinReader.ReadString('\n')
	if err != nil && password == "" {
		return "", err
	}
	return strings.TrimSpace(password), nil
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateAdminCmd)
	userCmd.AddCommand(userListCmd)

	userCreateAdminCmd.Flags().String("email", "", "Admin email (required)")
	userCreateAdminCmd.Flags().String("name", "مدير", "Display name")
}
