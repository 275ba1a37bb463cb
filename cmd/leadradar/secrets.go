package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/leadradar/internal/secrets"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage API keys in the OS keychain",
	Long:  "Stores API keys and the Slack webhook in the OS keychain. Names: " + strings.Join(secrets.Names(), ", ") + ".",
}

var secretsSetCmd = &cobra.Command{
	Use:   "set <name> [value]",
	Short: "Store a secret (reads the value from stdin when omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSecretsSet,
}

var secretsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a secret",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretsDelete,
}

func init() {
	rootCmd.AddCommand(secretsCmd)
	secretsCmd.AddCommand(secretsSetCmd, secretsDeleteCmd)
}

func runSecretsSet(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	value := ""
	if len(args) == 2 {
		value = args[1]
	} else {
		fmt.Fprintf(os.Stderr, "%s: ", args[0])
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logger.Error("reading secret from stdin", "error", err)
			os.Exit(1)
		}
		value = strings.TrimSpace(line)
	}

	if err := secrets.Set(args[0], value); err != nil {
		logger.Error("storing secret failed", "name", args[0], "error", err)
		os.Exit(1)
	}
	logger.Info("secret stored", "name", args[0], "service", secrets.Service)
	return nil
}

func runSecretsDelete(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	if err := secrets.Delete(args[0]); err != nil {
		logger.Error("deleting secret failed", "name", args[0], "error", err)
		os.Exit(1)
	}
	logger.Info("secret deleted", "name", args[0])
	return nil
}
