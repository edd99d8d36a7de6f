// Command createuser registers an account directly against the database,
// reading the password from the terminal without echo.
//
// Usage:
//
//	createuser [-username name] [-email address] [server flags]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/kalahboard/internal/flagx"
	"github.com/dmitrijs2005/kalahboard/internal/logging"
	"github.com/dmitrijs2005/kalahboard/internal/prompt"
	"github.com/dmitrijs2005/kalahboard/internal/server"
	"github.com/dmitrijs2005/kalahboard/internal/server/config"
)

type userFlags struct {
	userName string
	email    string
}

func parseUserFlags(args []string) (userFlags, error) {
	var f userFlags

	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.userName, "username", "", "account username")
	fs.StringVar(&f.email, "email", "", "account email")

	err := fs.Parse(flagx.FilterArgs(args, []string{"-username", "-email"}))
	return f, err
}

func main() {

	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	f, err := parseUserFlags(args)
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	if f.userName == "" {
		if f.userName, err = prompt.Line(reader, "Username", os.Stdout); err != nil {
			return fmt.Errorf("read username: %w", err)
		}
	}
	if f.email == "" {
		if f.email, err = prompt.Line(reader, "Email", os.Stdout); err != nil {
			return fmt.Errorf("read email: %w", err)
		}
	}

	password, err := prompt.Password(os.Stdout, "Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer prompt.Wipe(password)

	db, rm, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)
	as, _, err := server.NewAuthService(db, rm, cfg, logger, nil)
	if err != nil {
		return err
	}

	user, err := as.Register(ctx, f.userName, f.email, string(password))
	if err != nil {
		return fmt.Errorf("register %s: %w", f.userName, err)
	}

	fmt.Printf("Created user %s (id=%s)\n", user.UserName, user.ID)
	return nil
}
