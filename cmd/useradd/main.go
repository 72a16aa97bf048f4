// Command useradd creates an account from the terminal using the same
// configuration, storage and hashing as the server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"login-portal/internal/app"
	"login-portal/internal/config"
)

// readPassword and isTerminal are replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadStorage()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if err := run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, logger); err != nil {
		logger.Errorf("useradd: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string, stdin *os.File, stdout io.Writer, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.SetOutput(stdout)
	username := fs.String("username", "", "account username")
	email := fs.String("email", "", "account email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reader := bufio.NewReader(stdin)
	if *username == "" {
		v, err := prompt(reader, stdout, "Username: ")
		if err != nil {
			return err
		}
		*username = v
	}
	if *email == "" {
		v, err := prompt(reader, stdout, "Email: ")
		if err != nil {
			return err
		}
		*email = v
	}

	plain, err := readSecret(reader, stdin, stdout)
	if err != nil {
		return err
	}

	deps, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	user, err := deps.Users.Register(ctx, *username, *email, plain)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user created")
	return nil
}

func prompt(reader *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads the password without echo when stdin is a terminal and
// falls back to a plain line for piped input.
func readSecret(reader *bufio.Reader, stdin *os.File, w io.Writer) (string, error) {
	fd := int(stdin.Fd())
	if !isTerminal(fd) {
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(w, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(w, "Confirm password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
