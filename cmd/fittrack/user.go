package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (c *cli) newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(c.newUserAddCmd(), c.newUserDeleteCmd())
	return cmd
}

func (c *cli) newUserAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Long: `Create a user. The password is prompted for without echo when stdin is
a terminal, otherwise the first line of stdin is used:

  $ echo 'hunter2' | fittrack user add alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			app, err := c.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Auth.Register(cmd.Context(), args[0], password); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Created user %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user with all of their stats, routes and activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Auth.DeleteAccount(cmd.Context(), args[0]); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Deleted user %s\n", args[0])
			return nil
		},
	}
}

// readPassword prompts twice on a terminal; otherwise it reads one line.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		prompt := func(label string) (string, error) {
			fmt.Fprint(cmd.ErrOrStderr(), label)
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			return string(b), err
		}
		pw, err := prompt("Password: ")
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		again, err := prompt("Repeat password: ")
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		if pw != again {
			return "", errors.New("passwords do not match")
		}
		return pw, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
