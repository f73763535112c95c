package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

const tokenTTLFlag = "token-ttl"

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local users",
	}
	cmd.AddCommand(newUserAddCommand(), newUserTokenCommand(), newUserConnectCommand())
	return cmd
}

func newUserAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Register a local user and print a session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.userUsecase.Register(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printToken(cmd, a, user)
		},
	}
	cmd.Flags().Duration(tokenTTLFlag, 30*24*time.Hour, "lifetime of the printed token")
	return cmd
}

func newUserTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Print a new session token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.userUsecase.GetByUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printToken(cmd, a, user)
		},
	}
	cmd.Flags().Duration(tokenTTLFlag, 30*24*time.Hour, "lifetime of the printed token")
	return cmd
}

func newUserConnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <username> <username>",
		Short: "Make two local users mutual contacts through their default aspects",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			var users [2]domain.User
			var aspects [2]domain.Aspect
			for i, name := range args {
				users[i], err = a.userUsecase.GetByUsername(ctx, name)
				if err != nil {
					return err
				}
				aspects[i], err = a.aspects.FindByName(ctx, users[i].ID, domain.DefaultAspectName)
				if err != nil {
					return err
				}
			}

			return a.relationshipUsecase.Connect(ctx, users[0], aspects[0].ID, users[1], aspects[1].ID)
		},
	}
}

func printToken(cmd *cobra.Command, a *app, user domain.User) error {
	ttl, err := cmd.Flags().GetDuration(tokenTTLFlag)
	if err != nil {
		return err
	}
	token, err := a.auth.Issue(user, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", user.Person.Handle, token)
	return nil
}
