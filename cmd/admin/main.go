package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/admin"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/auth"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/config"
)

const usage = `BCMS Admin CLI

An operations tool for the content API that only requires database access.

USAGE:
  admin <command> [options]

COMMANDS:
  bootstrap     Create the initial admin user
  stats         Show aggregated statistics
  list-users    List users
  list-clients  List clients

ENVIRONMENT VARIABLES:
  DATABASE_URL      PostgreSQL connection string (required for postgres)
  DATABASE_TYPE     Database type: postgres or memory (default: memory)

  Configuration can be loaded from a .env file in the current directory.
  Command line environment variables override .env file values.

EXAMPLES:
  # Create the first admin account
  admin bootstrap --email=admin@example.com --password=changeme123 --name="Site Admin"

  # Aggregated counts across all clients
  admin stats
  admin stats --json

  # Browse users and clients
  admin list-users
  admin list-users --page=2 --per-page=50
  admin list-clients --json

OPTIONS:
  --email=<email>       Bootstrap: admin email (required)
  --password=<secret>   Bootstrap: admin password, 8-72 chars (required)
  --name=<name>         Bootstrap: display name (default: email)
  --page=<n>            List commands: page number (default: 1)
  --per-page=<n>        List commands: page size (default: 15)
  --json                Output as JSON
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	command := os.Args[1]

	// Check for help
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Print(usage + "\n")
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	repo, err := cfg.BuildRepository()
	if err != nil {
		log.Fatalf("Failed to build repository: %v", err)
	}

	ctx := context.Background()
	flags := parseFlags(os.Args[2:])

	switch command {
	case "bootstrap":
		handleBootstrap(ctx, repo, flags)
	case "stats":
		handleStats(ctx, admin.New(repo), flags)
	case "list-users":
		handleListUsers(ctx, repo, flags)
	case "list-clients":
		handleListClients(ctx, repo, flags)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage + "\n")
		os.Exit(1)
	}
}

// cliFlags holds the parsed --key=value options shared by all commands.
type cliFlags struct {
	email    string
	password string
	name     string
	page     int
	perPage  int
	useJSON  bool
}

func parseFlags(args []string) cliFlags {
	flags := cliFlags{page: 1, perPage: bcms.DefaultPerPage}

	for _, arg := range args {
		if arg == "--json" {
			flags.useJSON = true
			continue
		}

		key, value := parseFlag(arg)
		switch key {
		case "email":
			flags.email = value
		case "password":
			flags.password = value
		case "name":
			flags.name = value
		case "page":
			if n, err := strconv.Atoi(value); err == nil {
				flags.page = n
			}
		case "per-page":
			if n, err := strconv.Atoi(value); err == nil {
				flags.perPage = n
			}
		}
	}

	return flags
}

func parseFlag(arg string) (string, string) {
	if len(arg) > 2 && arg[:2] == "--" {
		arg = arg[2:]
		for i, c := range arg {
			if c == '=' {
				return arg[:i], arg[i+1:]
			}
		}
		return arg, "true"
	}
	return "", ""
}

// handleBootstrap creates an admin user directly through the repository.
// It exists because every user-management API route requires an admin
// identity, which a fresh install does not have yet.
func handleBootstrap(ctx context.Context, repo bcms.Repository, flags cliFlags) {
	email := strings.ToLower(strings.TrimSpace(flags.email))
	if email == "" {
		log.Fatalf("--email is required")
	}
	if len(flags.password) < 8 || len(flags.password) > 72 {
		log.Fatalf("--password must be between 8 and 72 characters")
	}
	name := flags.name
	if name == "" {
		name = email
	}

	hash, err := auth.HashPassword(flags.password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &bcms.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Admin:        true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, bcms.ErrEmailTaken) {
			log.Fatalf("A user with email %s already exists", email)
		}
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created\n\n")
	fmt.Printf("  ID:    %s\n", user.ID)
	fmt.Printf("  Name:  %s\n", user.Name)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("\nLog in via POST /auth/login to obtain an API token.\n")
}

func handleStats(ctx context.Context, adminSvc admin.Service, flags cliFlags) {
	stats, err := adminSvc.GetStatistics(ctx)
	if err != nil {
		log.Fatalf("Failed to get statistics: %v", err)
	}

	if flags.useJSON {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Println("=== BCMS Statistics ===")
	fmt.Printf("\nUsers:           %d\n", stats.Users)
	fmt.Printf("Clients:         %d\n", stats.Clients)
	fmt.Printf("Posts:           %d\n", stats.Posts)
	fmt.Printf("Post categories: %d\n", stats.PostCategories)

	if len(stats.PostsByClient) > 0 {
		fmt.Println("\nPosts by client:")
		for clientID, count := range stats.PostsByClient {
			fmt.Printf("  %s: %d\n", clientID[:8]+"...", count)
		}
	}

	fmt.Printf("\nComputed at: %s\n", stats.GeneratedAt.Format(time.RFC3339))
}

func handleListUsers(ctx context.Context, repo bcms.Repository, flags cliFlags) {
	page := bcms.Pagination{Page: flags.page, PerPage: flags.perPage}
	users, total, err := repo.ListUsers(ctx, page)
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}

	if flags.useJSON {
		data, _ := json.MarshalIndent(users, "", "  ")
		fmt.Println(string(data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tEMAIL\tADMIN\tDEFAULT CLIENT\tCREATED\n")
	for _, user := range users {
		defaultClient := "-"
		if user.DefaultClientID != nil {
			defaultClient = user.DefaultClientID.String()[:8] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\n",
			user.ID.String()[:8]+"...",
			truncate(user.Name, 20),
			truncate(user.Email, 30),
			user.Admin,
			defaultClient,
			user.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d\n", total)
}

func handleListClients(ctx context.Context, repo bcms.Repository, flags cliFlags) {
	page := bcms.Pagination{Page: flags.page, PerPage: flags.perPage}
	clients, total, err := repo.ListClients(ctx, page)
	if err != nil {
		log.Fatalf("Failed to list clients: %v", err)
	}

	if flags.useJSON {
		data, _ := json.MarshalIndent(clients, "", "  ")
		fmt.Println(string(data))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tEMAIL\tCITY\tCREATED\n")
	for _, client := range clients {
		email := client.Email
		if email == "" {
			email = "-"
		}
		city := client.City
		if city == "" {
			city = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			client.ID.String()[:8]+"...",
			truncate(client.Name, 20),
			truncate(email, 30),
			truncate(city, 15),
			client.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d\n", total)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
