// Command adduser creates a user directly in the database.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/models"
	"fintrack/internal/storage"
	"fintrack/internal/util"

	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address")
	firstName := fs.String("first", "", "First name")
	lastName := fs.String("last", "", "Last name")
	currency := fs.String("currency", string(models.DefaultCurrency), "Default currency (NGN, USD, EUR, GBP)")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	configPath := fs.String("config", "", "Path to config.yaml")
	dbPath := fs.String("db", "", "Path to database file (overrides config)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> [-first <name>] [-last <name>] [-currency NGN] [-password <pw>] [-db <path>]")
		fs.PrintDefaults()
		return errors.New("missing required flag: email")
	}
	cur, err := models.ParseCurrency(*currency)
	if err != nil {
		return err
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	if err := database.Migrate(cfg.Database.Path); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close(db)

	hash, err := util.NewPasswordHasher(cfg.Security.BcryptCost).Hash(password)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:           *email,
		FirstName:       *firstName,
		LastName:        *lastName,
		DefaultCurrency: cur,
		Password:        hash,
	}
	store := storage.New(db, storage.Options{})
	if err := store.CreateUser(context.Background(), user); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
