// Package main provides the administration CLI.
// Usage: admin migrate [up|down|status|version]
//
//	admin create-user --email a@b.c --name "Jane Doe" --password secret [--role admin]
//	admin list-clubs [--owner <user-uuid>]
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"
	_ "time/tzdata"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"clubledger/db/migrations"
	"clubledger/internal/app"
	"clubledger/internal/config"
	"clubledger/internal/core/id"
	"clubledger/internal/domain/auth"
	"clubledger/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "migrate":
		migrate(ctx)
	case "create-user":
		createUser(ctx)
	case "list-clubs":
		listClubs(ctx)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Club ledger administration CLI

Usage:
  admin <command> [options]

Commands:
  migrate       Apply database migrations (up, down, status, version)
  create-user   Create a user account
  list-clubs    List clubs, optionally for one owner
  help          Show this help

Environment Variables:
  DATABASE_URL   PostgreSQL connection string (required)

Examples:
  admin migrate
  admin migrate status
  admin create-user --email owner@example.com --name "Club Owner" --password secret123
  admin create-user --email root@example.com --name Root --password secret123 --role admin
  admin list-clubs --owner <user-uuid>`)
}

// flags parses "--key value" pairs after the command name.
func flags() map[string]string {
	out := make(map[string]string)
	for i := 2; i < len(os.Args); i++ {
		arg := os.Args[i]
		if len(arg) > 2 && arg[:2] == "--" && i+1 < len(os.Args) {
			out[arg[2:]] = os.Args[i+1]
			i++
		}
	}
	return out
}

func mustConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func mustApp(ctx context.Context) (context.Context, *app.App) {
	log, err := logger.New(logger.Config{Level: "warn"})
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	ctx = logger.WithLogger(ctx, log)

	a, err := app.New(ctx, mustConfig(), log)
	if err != nil {
		fmt.Printf("Error connecting: %v\n", err)
		os.Exit(1)
	}
	return ctx, a
}

func migrate(ctx context.Context) {
	command := "up"
	if len(os.Args) > 2 {
		command = os.Args[2]
	}

	cfg := mustConfig()
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		fmt.Printf("Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "version":
		err = goose.VersionContext(ctx, db, ".")
	default:
		fmt.Printf("Unknown migrate command: %s\n", command)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("✗ Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ migrate %s done\n", command)
}

func createUser(ctx context.Context) {
	f := flags()
	if f["email"] == "" || f["name"] == "" || f["password"] == "" {
		fmt.Println("Error: --email, --name and --password are required")
		fmt.Println("Usage: admin create-user --email <email> --name <name> --password <password> [--role owner|admin]")
		os.Exit(1)
	}
	role := f["role"]
	if role == "" {
		role = auth.RoleOwner
	}
	if role != auth.RoleOwner && role != auth.RoleAdmin {
		fmt.Printf("Error: unknown role %q\n", role)
		os.Exit(1)
	}

	ctx, a := mustApp(ctx)
	defer a.Close()

	u, err := a.Auth.CreateUser(ctx, f["email"], f["name"], f["password"], role)
	if err != nil {
		fmt.Printf("Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ User '%s' created\n", u.Email)
	fmt.Printf("  User ID: %s\n", u.ID)
	fmt.Printf("  Role:    %s\n", u.Role)
}

func listClubs(ctx context.Context) {
	f := flags()

	ctx, a := mustApp(ctx)
	defer a.Close()

	var (
		clubIDs []id.ID
		err     error
	)
	if owner := f["owner"]; owner != "" {
		clubIDs, err = a.Clubs.ListIDsByOwner(ctx, owner)
	} else {
		clubIDs, err = a.Clubs.AllIDs(ctx)
	}
	if err != nil {
		fmt.Printf("Error listing clubs: %v\n", err)
		os.Exit(1)
	}

	clubs, err := a.Clubs.ListByIDs(ctx, clubIDs)
	if err != nil {
		fmt.Printf("Error loading clubs: %v\n", err)
		os.Exit(1)
	}
	if len(clubs) == 0 {
		fmt.Println("No clubs found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tOWNER\tMAIN\tCREATED")
	for _, c := range clubs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", c.ID, c.Name, c.OwnerID, c.IsMain, c.CreatedAt.Format("2006-01-02"))
	}
	_ = w.Flush()
}
