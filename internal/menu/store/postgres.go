package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"menuapi/internal/menu/models"
	"menuapi/pkg/domain"
	"menuapi/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

const selectMenu = `SELECT cod_menu, nome, ordem, COALESCE(icon, '') FROM tb_menu`

// Migrate creates tb_menu if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply menu schema: %w", err)
	}
	return nil
}

// PostgresStore persists menus in tb_menu.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Search(ctx context.Context, name string) ([]*models.Menu, error) {
	where, args := nameFilter(name)
	rows, err := s.db.QueryContext(ctx, selectMenu+where+` ORDER BY nome, cod_menu`, args...)
	if err != nil {
		return nil, fmt.Errorf("search menus: %w", err)
	}
	return scanMenus(rows)
}

// SearchPaged runs the count and the page query concurrently.
func (s *PostgresStore) SearchPaged(ctx context.Context, name string, page, pageSize int) ([]*models.Menu, int, error) {
	where, args := nameFilter(name)

	var (
		total int
		items []*models.Menu
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.db.QueryRowContext(gctx, `SELECT COUNT(*) FROM tb_menu`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("count menus: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		n := len(args)
		query := fmt.Sprintf(`%s%s ORDER BY nome, cod_menu LIMIT $%d OFFSET $%d`, selectMenu, where, n+1, n+2)
		pageArgs := append(slices.Clone(args), pageSize, (page-1)*pageSize)
		rows, err := s.db.QueryContext(gctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("page menus: %w", err)
		}
		items, err = scanMenus(rows)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.MenuID) (*models.Menu, error) {
	row := s.db.QueryRowContext(ctx, selectMenu+` WHERE cod_menu = $1`, id.Int())
	return scanMenu(row, fmt.Sprintf("menu %d", id))
}

func (s *PostgresStore) FindByName(ctx context.Context, name string, exclude domain.MenuID) (*models.Menu, error) {
	row := s.db.QueryRowContext(ctx, selectMenu+` WHERE nome = $1 AND cod_menu <> $2 LIMIT 1`, name, exclude.Int())
	return scanMenu(row, fmt.Sprintf("menu %q", name))
}

func (s *PostgresStore) Create(ctx context.Context, m *models.Menu) error {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tb_menu (nome, ordem, icon) VALUES ($1, $2, $3) RETURNING cod_menu`,
		m.Name, m.Order, m.Icon,
	).Scan(&id)
	if err != nil {
		return translateWriteErr(err, "create menu")
	}
	m.ID = domain.MenuID(id)
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, m *models.Menu) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tb_menu SET nome = $1, ordem = $2, icon = $3 WHERE cod_menu = $4`,
		m.Name, m.Order, m.Icon, m.ID.Int(),
	)
	if err != nil {
		return translateWriteErr(err, "update menu")
	}
	return requireRow(res, fmt.Sprintf("menu %d", m.ID))
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.MenuID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tb_menu WHERE cod_menu = $1`, id.Int())
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	return requireRow(res, fmt.Sprintf("menu %d", id))
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: postgres: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// nameFilter builds a case-insensitive substring match. LIKE wildcards in the
// input are matched literally.
func nameFilter(name string) (string, []any) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(name)
	return ` WHERE nome ILIKE $1 ESCAPE '\'`, []any{"%" + escaped + "%"}
}

func scanMenus(rows *sql.Rows) ([]*models.Menu, error) {
	defer rows.Close()
	var out []*models.Menu
	for rows.Next() {
		var (
			m  models.Menu
			id int
		)
		if err := rows.Scan(&id, &m.Name, &m.Order, &m.Icon); err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		m.ID = domain.MenuID(id)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menus: %w", err)
	}
	return out, nil
}

func scanMenu(row *sql.Row, what string) (*models.Menu, error) {
	var (
		m  models.Menu
		id int
	)
	if err := row.Scan(&id, &m.Name, &m.Order, &m.Icon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", what, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find %s: %w", what, err)
	}
	m.ID = domain.MenuID(id)
	return &m, nil
}

func translateWriteErr(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, sentinel.ErrNotFound)
	}
	return nil
}
