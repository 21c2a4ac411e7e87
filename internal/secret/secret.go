// Package secret keeps the CardDAV password in the operating system keyring.
package secret

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

var (
	// ErrNotFound is returned when the keyring holds no password for a user.
	ErrNotFound = errors.New(config.ErrPasswordNotFound)

	// ErrNoTerminal is returned when a prompt is requested without a TTY.
	ErrNoTerminal = errors.New(config.ErrNoTerminal)
)

// Store saves the password of user under the application's keyring service.
func Store(user, password string) error {
	if password == "" {
		return errors.New(config.ErrPasswordEmpty)
	}
	if err := keyring.Set(config.KeyringService, user, password); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringSet, err)
	}
	slog.Debug(config.MsgPasswordSaved,
		config.LogKeyComponent, config.CompSecret,
		config.LogKeyUser, user)
	return nil
}

// Lookup returns the stored password of user.
func Lookup(user string) (string, error) {
	pass, err := keyring.Get(config.KeyringService, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, user)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyringGet, err)
	}
	return pass, nil
}

// LookupOptional is Lookup for anonymous-friendly callers: a missing or
// unreadable entry yields an empty password.
func LookupOptional(user string) string {
	if user == "" {
		return ""
	}
	pass, err := Lookup(user)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompSecret,
			config.LogKeyUser, user,
			config.LogKeyError, err)
		return ""
	}
	return pass
}

// Prompt reads a password from in with echo disabled, writing the label to out.
func Prompt(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoTerminal
	}

	_, _ = fmt.Fprint(out, config.MsgPasswordLabel)
	raw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrPasswordRead, err)
	}

	pass := strings.TrimRight(string(raw), "\r\n")
	if pass == "" {
		return "", errors.New(config.ErrPasswordEmpty)
	}
	return pass, nil
}

// Login prompts for user's password and stores it.
func Login(user string, in *os.File, out io.Writer) error {
	if user == "" {
		return errors.New(config.ErrUserRequired)
	}
	pass, err := Prompt(in, out)
	if err != nil {
		return err
	}
	return Store(user, pass)
}
