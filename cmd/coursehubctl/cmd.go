package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"time"

	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/retention"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	svc          *service.Service
	out          io.Writer
	migrate      func(ctx context.Context) error
	readPassword func() (string, error) // mockable

	audit     repo.AuditStore
	retention time.Duration // default prune-audit window
	log       *zap.Logger
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  seed                                              - create or refresh the basics course")
	fmt.Fprintln(w, "  create-user -email E [-password P] [-name N] [-role R] - add an account")
	fmt.Fprintln(w, "  set-role -email E -role R                         - change a user's role")
	fmt.Fprintln(w, "  reset-progress -email E                           - delete a user's completions")
	fmt.Fprintln(w, "  migrate                                           - apply indexes, validators or SQL migrations")
	fmt.Fprintln(w, "  prune-audit [-older-than D]                       - delete audit events older than D (default audit_retention)")
}

func readTerminalPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(pwd), err
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printUsage(cli.out)
		return errHelp
	}

	switch args[1] {
	case "seed":
		c, err := cli.svc.SeedBasics(ctx, service.System)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "seeded course %q (%s)\n", c.Slug, c.ID)
		return nil

	case "create-user":
		fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		email := fs.String("email", "", "e-mail address (required)")
		password := fs.String("password", "", "password; prompted when omitted")
		name := fs.String("name", "", "display name")
		role := fs.String("role", "USER", "USER, LEADER or ADMIN")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		if *password == "" && cli.readPassword != nil {
			pwd, err := cli.readPassword()
			if err != nil {
				return err
			}
			*password = pwd
		}
		u, err := cli.svc.CreateUser(ctx, service.System, service.NewUser{
			Name: *name, Email: *email, Password: *password, Role: *role,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created %s %s (%s)\n", u.Role, u.Email, u.ID)
		return nil

	case "set-role":
		fs := flag.NewFlagSet("set-role", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		email := fs.String("email", "", "e-mail address (required)")
		role := fs.String("role", "", "USER, LEADER or ADMIN (required)")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" || *role == "" {
			fs.Usage()
			return errHelp
		}
		u, err := cli.svc.FindUserByEmail(ctx, service.System, *email)
		if err != nil {
			return err
		}
		updated, err := cli.svc.ChangeRole(ctx, service.System, u.ID, *role)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "%s is now %s\n", updated.Email, updated.Role)
		return nil

	case "reset-progress":
		fs := flag.NewFlagSet("reset-progress", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		email := fs.String("email", "", "e-mail address (required)")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		u, err := cli.svc.FindUserByEmail(ctx, service.System, *email)
		if err != nil {
			return err
		}
		n, err := cli.svc.ResetUserProgress(ctx, service.System, u.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "deleted %d completions for %s\n", n, u.Email)
		return nil

	case "migrate":
		if err := cli.migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "schema up to date")
		return nil

	case "prune-audit":
		fs := flag.NewFlagSet("prune-audit", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		olderThan := fs.Duration("older-than", cli.retention, "delete events older than this (e.g., 2160h)")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		p := retention.NewAuditPruner(cli.audit, cli.log, *olderThan)
		n, err := p.Prune(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "deleted %d audit events before %s\n", n, p.Cutoff().Format(time.RFC3339))
		return nil

	default:
		printUsage(cli.out)
		return errHelp
	}
}
