package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/admin"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/config"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	// Load server configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The shell talks straight to the repository, so it works against
	// the same database the API server uses without going through HTTP.
	repo, err := cfg.BuildRepository()
	if err != nil {
		log.Fatalf("Failed to build repository: %v", err)
	}

	// Start admin shell
	shell := NewAdminShell(repo, admin.New(repo))
	shell.Run()
}

// AdminShell provides an interactive admin interface
type AdminShell struct {
	repo     bcms.Repository
	adminSvc admin.Service
}

// NewAdminShell creates a new admin shell
func NewAdminShell(repo bcms.Repository, adminSvc admin.Service) *AdminShell {
	return &AdminShell{
		repo:     repo,
		adminSvc: adminSvc,
	}
}

// Run starts the interactive admin shell
func (s *AdminShell) Run() {
	reader := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	fmt.Println("=== BCMS Admin Shell ===")
	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()

	for {
		fmt.Print("admin> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		command := parts[0]

		switch command {
		case "help", "h":
			s.showHelp()
		case "exit", "quit", "q":
			fmt.Println("Goodbye!")
			return
		case "users":
			s.handleUsers(ctx, parts[1:])
		case "clients":
			s.handleClients(ctx, parts[1:])
		case "posts":
			s.handlePosts(ctx, parts[1:])
		case "stats":
			s.handleStats(ctx)
		case "get":
			s.handleGet(ctx, parts[1:])
		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", command)
		}
	}
}

func (s *AdminShell) showHelp() {
	help := `
Available Commands:

  users                 List users (first page)
  users <page>          List users at a given page

  clients               List clients (first page)
  clients <page>        List clients at a given page

  posts                 List posts across all clients
  posts <client-id>     List posts belonging to one client

  stats                 Show aggregated statistics

  get user <id>         Show a user as JSON
  get client <id>       Show a client as JSON
  get post <id>         Show a post as JSON

  help, h               Show this help message
  exit, quit, q         Exit admin shell

Examples:
  users
  users 2
  posts 550e8400-e29b-41d4-a716-446655440000
  get post 3f1ce1a2-9bfa-4a55-8c31-2f6f8e1f0a11
`
	fmt.Println(help)
}

func parsePage(args []string) bcms.Pagination {
	page := bcms.Pagination{Page: 1, PerPage: 20}
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			page.Page = n
		}
	}
	return page
}

func (s *AdminShell) handleUsers(ctx context.Context, args []string) {
	page := parsePage(args)
	users, total, err := s.repo.ListUsers(ctx, page)
	if err != nil {
		fmt.Printf("Error listing users: %v\n", err)
		return
	}

	if len(users) == 0 {
		fmt.Println("No users found")
		return
	}

	fmt.Printf("%-36s  %-25s  %-30s  %-5s\n", "ID", "Name", "Email", "Admin")
	fmt.Println(strings.Repeat("-", 102))
	for _, user := range users {
		fmt.Printf("%-36s  %-25s  %-30s  %-5t\n",
			user.ID.String(),
			clip(user.Name, 25),
			clip(user.Email, 30),
			user.Admin,
		)
	}
	fmt.Printf("\nTotal: %d (page %d)\n", total, page.Page)
}

func (s *AdminShell) handleClients(ctx context.Context, args []string) {
	page := parsePage(args)
	clients, total, err := s.repo.ListClients(ctx, page)
	if err != nil {
		fmt.Printf("Error listing clients: %v\n", err)
		return
	}

	if len(clients) == 0 {
		fmt.Println("No clients found")
		return
	}

	fmt.Printf("%-36s  %-25s  %-20s  %-15s\n", "ID", "Name", "City", "Country")
	fmt.Println(strings.Repeat("-", 102))
	for _, client := range clients {
		fmt.Printf("%-36s  %-25s  %-20s  %-15s\n",
			client.ID.String(),
			clip(client.Name, 25),
			clip(client.City, 20),
			clip(client.Country, 15),
		)
	}
	fmt.Printf("\nTotal: %d (page %d)\n", total, page.Page)
}

func (s *AdminShell) handlePosts(ctx context.Context, args []string) {
	filters := bcms.PostFilters{}
	if len(args) > 0 {
		clientID, err := uuid.Parse(args[0])
		if err != nil {
			fmt.Printf("Invalid client ID: %s\n", args[0])
			return
		}
		filters.ClientID = &clientID
	}

	posts, total, err := s.repo.ListPosts(ctx, bcms.Pagination{Page: 1, PerPage: 20}, filters)
	if err != nil {
		fmt.Printf("Error listing posts: %v\n", err)
		return
	}

	if len(posts) == 0 {
		fmt.Println("No posts found")
		return
	}

	fmt.Printf("%-36s  %-30s  %-36s\n", "ID", "Title", "Client")
	fmt.Println(strings.Repeat("-", 106))
	for _, post := range posts {
		fmt.Printf("%-36s  %-30s  %-36s\n",
			post.ID.String(),
			clip(post.Title, 30),
			post.ClientID.String(),
		)
	}
	fmt.Printf("\nTotal: %d", total)
	if total > int64(len(posts)) {
		fmt.Printf(" (showing first %d, use the HTTP API for pagination)", len(posts))
	}
	fmt.Println()
}

func (s *AdminShell) handleStats(ctx context.Context) {
	stats, err := s.adminSvc.GetStatistics(ctx)
	if err != nil {
		fmt.Printf("Error getting statistics: %v\n", err)
		return
	}

	fmt.Printf("\nUsers:           %d\n", stats.Users)
	fmt.Printf("Clients:         %d\n", stats.Clients)
	fmt.Printf("Posts:           %d\n", stats.Posts)
	fmt.Printf("Post categories: %d\n", stats.PostCategories)

	if len(stats.PostsByClient) > 0 {
		fmt.Println("\nPosts by client:")
		for clientID, count := range stats.PostsByClient {
			fmt.Printf("  %s: %d\n", clientID, count)
		}
	}
	fmt.Println()
}

func (s *AdminShell) handleGet(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: get user|client|post <id>")
		return
	}

	id, err := uuid.Parse(args[1])
	if err != nil {
		fmt.Printf("Invalid ID: %s\n", args[1])
		return
	}

	var record interface{}
	switch args[0] {
	case "user":
		record, err = s.repo.GetUser(ctx, id)
	case "client":
		record, err = s.repo.GetClient(ctx, id)
	case "post":
		record, err = s.repo.GetPost(ctx, id)
	default:
		fmt.Printf("Unknown record type: %s (expected user, client or post)\n", args[0])
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	// Pretty print as JSON
	data, _ := json.MarshalIndent(record, "", "  ")
	fmt.Println(string(data))
}

func clip(s string, max int) string {
	if s == "" {
		return "-"
	}
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
