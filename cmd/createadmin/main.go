package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/zifybot/internal/models"
	"github.com/nkiryanov/zifybot/internal/service/auth"
	"github.com/nkiryanov/zifybot/internal/service/user"
	"github.com/nkiryanov/zifybot/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional; DATABASE_URI may come from .env in working directory
	_ = godotenv.Load()

	err := run(ctx, os.Getenv, os.Args[1:], os.Stdout)
	switch {
	case errors.Is(err, pflag.ErrHelp):
	case err != nil:
		fmt.Fprintf(os.Stderr, "can't create admin: %v\n", err)
		os.Exit(1)
	}
}

// Create account with admin role. Admins can't be registered through the API
func run(ctx context.Context, getenv func(string) string, args []string, out io.Writer) error {
	var (
		dsn = getenv("DATABASE_URI")
		reg models.Registration
	)

	fs := pflag.NewFlagSet("createadmin", pflag.ContinueOnError)
	fs.StringVarP(&dsn, "database", "d", dsn, "Database connection string (postgres:// or mongodb://)")
	fs.StringVar(&reg.Email, "email", "", "Admin email")
	fs.StringVar(&reg.Password, "password", "", "Admin password")
	fs.StringVar(&reg.FirstName, "first-name", "Admin", "Admin first name")
	fs.StringVar(&reg.LastName, "last-name", "User", "Admin last name")
	fs.StringVar(&reg.PhoneNumber, "phone", "", "Admin phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case dsn == "":
		return errors.New("database dsn is required (DATABASE_URI or --database)")
	case reg.Email == "":
		return errors.New("--email is required")
	case len(reg.Password) < 6:
		return errors.New("--password must be at least 6 characters")
	}

	store, closeStore, err := storage.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer closeStore()

	admin, err := user.NewService(auth.DefaultHasher, store.User()).CreateUser(ctx, reg, models.RoleAdmin)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "Admin created: id=%s email=%s\n", admin.ID, admin.Email)
	return err
}
