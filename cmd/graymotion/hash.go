package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-motion-core/internal/auth"
)

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash an operator password read from stdin",
		Long: "Reads one line from stdin and prints its Argon2id hash for " +
			"api.auth.operator_password_hash (or GRAYMOTION_OPERATOR_PASSWORD_HASH).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHashPassword(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runHashPassword(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		return fmt.Errorf("no password on stdin")
	}
	password := strings.TrimRight(scanner.Text(), "\r")

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash) //nolint:errcheck // CLI output
	return nil
}
