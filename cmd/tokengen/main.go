// Package main provides a CLI tool for minting and checking session tokens
// for local development. Tokens signed with the dev secret will NOT work in
// production.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"inkwell/internal/auth/token"
	"inkwell/internal/platform/config"
	id "inkwell/pkg/domain"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Claims    map[string]string `json:"claims"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, time.Now()))
}

func run(args []string, stdout, stderr io.Writer, now time.Time) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "issue":
		return issue(args[1:], stdout, stderr, now)
	case "verify":
		return verify(args[1:], stdout, stderr, now)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `tokengen - mint session tokens for the inkwell API

WARNING: without -secret or JWT_SECRET the dev secret is used; those tokens
         are rejected by any production deployment.

Usage:
  tokengen <command> [flags]

Commands:
  issue     Sign a token for a subject
  verify    Validate a token and print its claims

Examples:
  tokengen issue -email admin@example.com -role admin
  tokengen issue -user-id "550e8400-e29b-41d4-a716-446655440000" -ttl 1h -json
  tokengen verify -token "<token>"`)
}

func secretFlag(fs *flag.FlagSet) *string {
	def := os.Getenv("JWT_SECRET")
	if def == "" {
		def = config.DefaultJWTSecret
	}
	return fs.String("secret", def, "HS256 signing secret (defaults to JWT_SECRET or the dev secret)")
}

func issue(args []string, stdout, stderr io.Writer, now time.Time) int {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	fs.SetOutput(stderr)
	userID := fs.String("user-id", "", "User ID (UUID). Generated if empty.")
	email := fs.String("email", "dev@example.com", "Email claim")
	role := fs.String("role", string(id.RoleUser), "Role claim: user or admin")
	ttl := fs.Duration("ttl", config.DefaultTokenTTL, "Token time-to-live")
	secret := secretFlag(fs)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	uid := id.NewUserID()
	if *userID != "" {
		parsed, err := id.ParseUserID(*userID)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid -user-id: %v\n", err)
			return 1
		}
		uid = parsed
	}
	r, err := id.ParseRole(*role)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid -role %q: must be user or admin\n", *role)
		return 1
	}

	issuedAt := now.Truncate(time.Second)
	signed, err := token.Issue(token.Claims{UserID: uid, Email: *email, Role: r}, []byte(*secret), *ttl, issuedAt)
	if err != nil {
		fmt.Fprintf(stderr, "Error generating token: %v\n", err)
		return 1
	}
	expiresAt := issuedAt.Add(*ttl)

	if *jsonOut {
		return printJSON(stdout, stderr, tokenOutput{
			Token:     signed,
			ExpiresAt: expiresAt,
			Claims: map[string]string{
				"sub":   uid.String(),
				"email": *email,
				"role":  r.String(),
			},
			Usage: map[string]string{
				"cookie": config.DefaultCookieName + "=<token>",
			},
		})
	}

	fmt.Fprintln(stdout, "Session Token (JWT)")
	fmt.Fprintln(stdout, "===================")
	fmt.Fprintf(stdout, "User ID:     %s\n", uid)
	fmt.Fprintf(stdout, "Email:       %s\n", *email)
	fmt.Fprintf(stdout, "Role:        %s\n", r)
	fmt.Fprintf(stdout, "Expires At:  %s\n", expiresAt.Format(time.RFC3339))
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Token:")
	fmt.Fprintln(stdout, signed)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  curl --cookie \"%s=<token>\" http://localhost:8080/api/auth/me\n", config.DefaultCookieName)
	return 0
}

func verify(args []string, stdout, stderr io.Writer, now time.Time) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	raw := fs.String("token", "", "Token to validate")
	secret := secretFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *raw == "" {
		fmt.Fprintln(stderr, "-token is required")
		return 1
	}

	claims, err := token.Validate(*raw, []byte(*secret), now)
	if err != nil {
		// Print the wrapped reason; servers only ever say "invalid token".
		reason := err
		if inner := errors.Unwrap(err); inner != nil {
			reason = inner
		}
		fmt.Fprintln(stderr, reason)
		return 1
	}
	return printJSON(stdout, stderr, map[string]string{
		"sub":        claims.UserID.String(),
		"email":      claims.Email,
		"role":       claims.Role.String(),
		"issued_at":  claims.IssuedAt.UTC().Format(time.RFC3339),
		"expires_at": claims.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func printJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "Error encoding JSON: %v\n", err)
		return 1
	}
	return 0
}
