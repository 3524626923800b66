// Package postgres provides a bcms.Repository backed by PostgreSQL via
// pgx. Referential cleanup (cascading deletes, clearing default client
// references) is delegated to the schema's foreign keys.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements bcms.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) bcms.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) bcms.Repository {
	return &Repository{db: pool}
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// handlePostgresError translates SQLSTATE failures into domain errors
// where a constraint identifies the entity involved.
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "users_email") {
				return bcms.ErrEmailTaken
			}
			if strings.Contains(pgErr.ConstraintName, "client_user") {
				return bcms.ErrDuplicateAssociation
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			switch {
			case strings.Contains(pgErr.ConstraintName, "post_category_id"):
				return bcms.ErrCategoryNotFound
			case strings.Contains(pgErr.ConstraintName, "client_id"):
				return bcms.ErrClientNotFound
			case strings.Contains(pgErr.ConstraintName, "user_id"):
				return bcms.ErrUserNotFound
			}
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// User operations

const userColumns = `id, name, email, password_hash, admin, default_client_id, created_at, updated_at`

func scanUser(row rowScanner) (*bcms.User, error) {
	var user bcms.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Admin, &user.DefaultClientID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *bcms.User) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, admin, default_client_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.Admin, user.DefaultClientID, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create user", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*bcms.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bcms.ErrUserNotFound
		}
		return nil, r.handlePostgresError("get user", err)
	}
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*bcms.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bcms.ErrUserNotFound
		}
		return nil, r.handlePostgresError("get user by email", err)
	}
	return user, nil
}

func (r *Repository) ListUsers(ctx context.Context, page bcms.Pagination) ([]*bcms.User, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count users", err)
	}

	n := page.Normalize()
	query := `
		SELECT ` + userColumns + ` FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, n.PerPage, n.Offset())
	if err != nil {
		return nil, 0, r.handlePostgresError("list users", err)
	}
	defer rows.Close()

	var users []*bcms.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("scan user", err)
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func (r *Repository) SearchUsersByEmail(ctx context.Context, email string, limit int) ([]*bcms.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE email ILIKE '%' || $1 || '%'
		ORDER BY email ASC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, email, limit)
	if err != nil {
		return nil, r.handlePostgresError("search users", err)
	}
	defer rows.Close()

	var users []*bcms.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan user", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *Repository) UpdateUser(ctx context.Context, user *bcms.User) error {
	query := `
		UPDATE users SET
			name = $2, email = $3, password_hash = $4, admin = $5,
			default_client_id = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.Admin, user.DefaultClientID, user.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrUserNotFound
	}
	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrUserNotFound
	}
	return nil
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, r.handlePostgresError("count users", err)
	}
	return count, nil
}

// Client operations

const clientColumns = `id, name, email, phone, website, address, city, state, zip_code, country, notes, created_at, updated_at`

func scanClient(row rowScanner) (*bcms.Client, error) {
	var client bcms.Client
	err := row.Scan(
		&client.ID, &client.Name, &client.Email, &client.Phone, &client.Website,
		&client.Address, &client.City, &client.State, &client.ZipCode,
		&client.Country, &client.Notes, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *Repository) CreateClient(ctx context.Context, client *bcms.Client) error {
	query := `
		INSERT INTO clients (
			id, name, email, phone, website, address, city, state,
			zip_code, country, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		client.ID, client.Name, client.Email, client.Phone, client.Website,
		client.Address, client.City, client.State, client.ZipCode,
		client.Country, client.Notes, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create client", err)
	}
	return nil
}

func (r *Repository) GetClient(ctx context.Context, id uuid.UUID) (*bcms.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bcms.ErrClientNotFound
		}
		return nil, r.handlePostgresError("get client", err)
	}
	return client, nil
}

func (r *Repository) ListClients(ctx context.Context, page bcms.Pagination) ([]*bcms.Client, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count clients", err)
	}

	n := page.Normalize()
	query := `
		SELECT ` + clientColumns + ` FROM clients
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, n.PerPage, n.Offset())
	if err != nil {
		return nil, 0, r.handlePostgresError("list clients", err)
	}
	defer rows.Close()

	var clients []*bcms.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("scan client", err)
		}
		clients = append(clients, client)
	}
	return clients, total, rows.Err()
}

func (r *Repository) UpdateClient(ctx context.Context, client *bcms.Client) error {
	query := `
		UPDATE clients SET
			name = $2, email = $3, phone = $4, website = $5, address = $6,
			city = $7, state = $8, zip_code = $9, country = $10, notes = $11,
			updated_at = $12
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		client.ID, client.Name, client.Email, client.Phone, client.Website,
		client.Address, client.City, client.State, client.ZipCode,
		client.Country, client.Notes, client.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update client", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrClientNotFound
	}
	return nil
}

func (r *Repository) DeleteClient(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete client", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrClientNotFound
	}
	return nil
}

func (r *Repository) CountClients(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&count); err != nil {
		return 0, r.handlePostgresError("count clients", err)
	}
	return count, nil
}

// Association operations

func (r *Repository) AttachUserToClient(ctx context.Context, clientID, userID uuid.UUID) (*bcms.Association, error) {
	now := time.Now().UTC()
	query := `INSERT INTO client_user (client_id, user_id, created_at) VALUES ($1, $2, $3)`

	if _, err := r.db.Exec(ctx, query, clientID, userID, now); err != nil {
		return nil, r.handlePostgresError("attach user to client", err)
	}
	return &bcms.Association{ClientID: clientID, UserID: userID, CreatedAt: now}, nil
}

func (r *Repository) DetachUserFromClient(ctx context.Context, clientID, userID uuid.UUID) error {
	query := `DELETE FROM client_user WHERE client_id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, clientID, userID)
	if err != nil {
		return r.handlePostgresError("detach user from client", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrAssociationNotFound
	}
	return nil
}

func (r *Repository) ListClientUsers(ctx context.Context, clientID uuid.UUID) ([]*bcms.User, error) {
	// Association order doubles as attachment order, which scope
	// resolution relies on for the first associated client.
	query := `
		SELECT u.id, u.name, u.email, u.password_hash, u.admin,
		       u.default_client_id, u.created_at, u.updated_at
		FROM users u
		JOIN client_user cu ON cu.user_id = u.id
		WHERE cu.client_id = $1
		ORDER BY cu.created_at ASC`

	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, r.handlePostgresError("list client users", err)
	}
	defer rows.Close()

	var users []*bcms.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan user", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *Repository) ListUserClients(ctx context.Context, userID uuid.UUID) ([]*bcms.Client, error) {
	query := `
		SELECT c.id, c.name, c.email, c.phone, c.website, c.address,
		       c.city, c.state, c.zip_code, c.country, c.notes,
		       c.created_at, c.updated_at
		FROM clients c
		JOIN client_user cu ON cu.client_id = c.id
		WHERE cu.user_id = $1
		ORDER BY cu.created_at ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, r.handlePostgresError("list user clients", err)
	}
	defer rows.Close()

	var clients []*bcms.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan client", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// Post category operations

const categoryColumns = `id, client_id, name, created_at, updated_at`

func scanCategory(row rowScanner) (*bcms.PostCategory, error) {
	var category bcms.PostCategory
	err := row.Scan(
		&category.ID, &category.ClientID, &category.Name,
		&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *bcms.PostCategory) error {
	query := `
		INSERT INTO post_categories (id, client_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		category.ID, category.ClientID, category.Name,
		category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create post category", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*bcms.PostCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM post_categories WHERE id = $1`

	category, err := scanCategory(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bcms.ErrCategoryNotFound
		}
		return nil, r.handlePostgresError("get post category", err)
	}
	return category, nil
}

func (r *Repository) ListCategories(ctx context.Context, page bcms.Pagination, filters bcms.CategoryFilters) ([]*bcms.PostCategory, int64, error) {
	where := ""
	args := []interface{}{}
	if filters.ClientID != nil {
		args = append(args, *filters.ClientID)
		where = ` WHERE client_id = $1`
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM post_categories`+where, args...).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count post categories", err)
	}

	n := page.Normalize()
	query := fmt.Sprintf(`
		SELECT `+categoryColumns+` FROM post_categories%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, n.PerPage, n.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, r.handlePostgresError("list post categories", err)
	}
	defer rows.Close()

	var categories []*bcms.PostCategory
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("scan post category", err)
		}
		categories = append(categories, category)
	}
	return categories, total, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, category *bcms.PostCategory) error {
	query := `
		UPDATE post_categories SET client_id = $2, name = $3, updated_at = $4
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		category.ID, category.ClientID, category.Name, category.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update post category", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM post_categories WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete post category", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM post_categories`).Scan(&count); err != nil {
		return 0, r.handlePostgresError("count post categories", err)
	}
	return count, nil
}

// Post operations

const postColumns = `id, user_id, client_id, post_category_id, title, content, image_url, image_key, created_at, updated_at`

func scanPost(row rowScanner) (*bcms.Post, error) {
	var post bcms.Post
	err := row.Scan(
		&post.ID, &post.UserID, &post.ClientID, &post.PostCategoryID,
		&post.Title, &post.Content, &post.ImageURL, &post.ImageKey,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *Repository) CreatePost(ctx context.Context, post *bcms.Post) error {
	query := `
		INSERT INTO posts (
			id, user_id, client_id, post_category_id, title, content,
			image_url, image_key, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		post.ID, post.UserID, post.ClientID, post.PostCategoryID,
		post.Title, post.Content, post.ImageURL, post.ImageKey,
		post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create post", err)
	}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*bcms.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bcms.ErrPostNotFound
		}
		return nil, r.handlePostgresError("get post", err)
	}
	return post, nil
}

func (r *Repository) ListPosts(ctx context.Context, page bcms.Pagination, filters bcms.PostFilters) ([]*bcms.Post, int64, error) {
	var conds []string
	var args []interface{}
	if filters.ClientID != nil {
		args = append(args, *filters.ClientID)
		conds = append(conds, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filters.UserID != nil {
		args = append(args, *filters.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count posts", err)
	}

	n := page.Normalize()
	query := fmt.Sprintf(`
		SELECT `+postColumns+` FROM posts%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, n.PerPage, n.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, r.handlePostgresError("list posts", err)
	}
	defer rows.Close()

	var posts []*bcms.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("scan post", err)
		}
		posts = append(posts, post)
	}
	return posts, total, rows.Err()
}

func (r *Repository) UpdatePost(ctx context.Context, post *bcms.Post) error {
	query := `
		UPDATE posts SET
			user_id = $2, client_id = $3, post_category_id = $4, title = $5,
			content = $6, image_url = $7, image_key = $8, updated_at = $9
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		post.ID, post.UserID, post.ClientID, post.PostCategoryID,
		post.Title, post.Content, post.ImageURL, post.ImageKey,
		post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update post", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrPostNotFound
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrPostNotFound
	}
	return nil
}

func (r *Repository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count); err != nil {
		return 0, r.handlePostgresError("count posts", err)
	}
	return count, nil
}

func (r *Repository) CountPostsByClient(ctx context.Context) (map[uuid.UUID]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT client_id, COUNT(*) FROM posts GROUP BY client_id`)
	if err != nil {
		return nil, r.handlePostgresError("count posts by client", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var clientID uuid.UUID
		var count int64
		if err := rows.Scan(&clientID, &count); err != nil {
			return nil, r.handlePostgresError("scan post count", err)
		}
		counts[clientID] = count
	}
	return counts, rows.Err()
}

// Token operations

func (r *Repository) CreateToken(ctx context.Context, token *bcms.Token) error {
	query := `
		INSERT INTO tokens (id, user_id, digest, name, last_used_at, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		token.ID, token.UserID, token.Digest, token.Name,
		token.LastUsedAt, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create token", err)
	}
	return nil
}

func (r *Repository) GetTokenByDigest(ctx context.Context, digest string) (*bcms.Token, error) {
	query := `
		SELECT id, user_id, digest, name, last_used_at, expires_at, created_at
		FROM tokens WHERE digest = $1`

	var token bcms.Token
	err := r.db.QueryRow(ctx, query, digest).Scan(
		&token.ID, &token.UserID, &token.Digest, &token.Name,
		&token.LastUsedAt, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bcms.ErrTokenNotFound
		}
		return nil, r.handlePostgresError("get token", err)
	}
	return &token, nil
}

func (r *Repository) DeleteToken(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tokens WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete token", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrTokenNotFound
	}
	return nil
}

func (r *Repository) TouchToken(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE tokens SET last_used_at = $2 WHERE id = $1`, id, usedAt)
	if err != nil {
		return r.handlePostgresError("touch token", err)
	}
	if tag.RowsAffected() == 0 {
		return bcms.ErrTokenNotFound
	}
	return nil
}
