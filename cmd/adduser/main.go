// Command adduser registers a mywallet user from the terminal and can
// optionally issue a session token for it.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/mywallet/mywallet/internal/auth"
	"github.com/mywallet/mywallet/internal/cache"
	"github.com/mywallet/mywallet/internal/config"
	"github.com/mywallet/mywallet/internal/service"
	"github.com/mywallet/mywallet/internal/storage"
)

const defaultDatabaseURL = "sqlite://mywallet.db"

type output struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token,omitempty"`
}

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

	var (
		name        = fs.String("name", "", "Display name")
		email       = fs.String("email", "", "Email address used to sign in")
		password    = fs.String("password", "", "Password (optional, will prompt if omitted)")
		databaseURL = fs.String("database-url", envOr("DATABASE_URL", defaultDatabaseURL), "postgres:// or sqlite:// database URL")
		hasherName  = fs.String("hasher", envOr("PASSWORD_HASHER", "argon2id"), "Password hasher: argon2id or bcrypt")
		bcryptCost  = fs.Int("bcrypt-cost", 10, "bcrypt cost when -hasher=bcrypt")
		issueToken  = fs.Bool("token", false, "Also sign in and print a session token")
		sessionTTL  = fs.Duration("session-ttl", 720*time.Hour, "Lifetime of the issued token (0 = never expires)")
		storeName   = fs.String("session-store", envOr("SESSION_STORE", config.SessionStoreDatabase), "Where -token writes the session: database or redis")
		redisURL    = fs.String("redis-url", os.Getenv("REDIS_URL"), "Redis URL when -session-store=redis")
		redisPrefix = fs.String("redis-key-prefix", envOr("REDIS_KEY_PREFIX", "mywallet:"), "Redis key prefix; must match the server's")
		format      = fs.String("format", "plain", "Output format: plain or json")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> -email <email> [-password <password>] [-database-url <url>] [-token [-session-store database|redis] [-redis-url <url>]]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, email")
	}

	outFormat := strings.ToLower(*format)
	if outFormat != "plain" && outFormat != "json" {
		return fmt.Errorf("invalid format %q; use plain or json", *format)
	}

	switch *storeName {
	case config.SessionStoreDatabase:
	case config.SessionStoreRedis:
		if *redisURL == "" {
			return fmt.Errorf("-redis-url is required when -session-store=%s", config.SessionStoreRedis)
		}
	default:
		return fmt.Errorf("invalid session store %q; use %s or %s", *storeName, config.SessionStoreDatabase, config.SessionStoreRedis)
	}

	hasher, err := auth.NewHasher(*hasherName, *bcryptCost)
	if err != nil {
		return err
	}

	pw, confirm := *password, *password
	if pw == "" {
		reader := bufio.NewReader(stdin)
		if pw, err = prompt(stdin, reader, stdout, "Password: "); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if confirm, err = prompt(stdin, reader, stdout, "Confirm password: "); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := storage.Open(ctx, *databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Tokens must land in the store the server resolves them from.
	// Redis is reached before registering so a failure leaves no user behind.
	var sessionStore service.SessionStore = db
	if *issueToken && *storeName == config.SessionStoreRedis {
		redisClient, err := cache.New(ctx, *redisURL, cache.Options{KeyPrefix: *redisPrefix})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		sessionStore = redisClient
	}

	sessions := service.NewSessionManager(sessionStore, *sessionTTL, nil)
	users := service.NewUserService(db, sessions, hasher, nil)

	user, err := users.Register(ctx, service.RegisterInput{
		Name:            *name,
		Email:           *email,
		Password:        pw,
		PasswordConfirm: confirm,
	})
	if err != nil {
		return describe(err)
	}

	out := output{UserID: user.ID, Name: user.Name, Email: user.Email}

	if *issueToken {
		result, err := users.SignIn(ctx, service.SignInInput{Email: user.Email, Password: pw})
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		out.Token = result.Token
	}

	if outFormat == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(stdout, "User %s <%s> created with ID %s\n", out.Name, out.Email, out.UserID)
	if out.Token != "" {
		fmt.Fprintln(stdout, out.Token)
	}
	return nil
}

// describe turns registration failures into operator-facing errors.
func describe(err error) error {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		return errors.New("passwords do not match")
	case errors.As(err, &verr):
		return fmt.Errorf("invalid input: %s", strings.Join(verr.Messages(), "; "))
	case errors.Is(err, service.ErrEmailExists):
		return errors.New("a user with that email already exists")
	default:
		return fmt.Errorf("failed to create user: %w", err)
	}
}

// prompt reads one line, without echo when stdin is a terminal.
func prompt(stdin io.Reader, reader *bufio.Reader, stdout io.Writer, label string) (string, error) {
	fmt.Fprint(stdout, label)

	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stdout) // Print newline after password input
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
