package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"agencyhub.io/internal/crm"
	"agencyhub.io/internal/tenant"
)

// Store bundles the tenant and CRM persistence over one connection pool.
type Store struct {
	db *sql.DB
}

var (
	_ tenant.Store = (*Store)(nil)
	_ crm.Store    = (*Store)(nil)
)

// Open connects to PostgreSQL and tunes the pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection pool.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Tenant store --------------------------------------------------------------

func (s *Store) Find(ctx context.Context, id string) (*tenant.Tenant, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, created_at, updated_at from tenants where id=$1`, id)
	var t tenant.Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tenant.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) List(ctx context.Context) ([]*tenant.Tenant, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, created_at, updated_at from tenants order by created_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (s *Store) Modules(ctx context.Context, tenantID string) ([]tenant.Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`select module from tenant_modules where tenant_id=$1 order by module`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []tenant.Module
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		modules = append(modules, tenant.Module(m))
	}
	return modules, rows.Err()
}

// Contact store -------------------------------------------------------------

func (s *Store) Create(ctx context.Context, c *crm.Contact) error {
	_, err := s.db.ExecContext(ctx,
		`insert into contacts(id, tenant_id, name, email, phone, company) values($1,$2,$3,$4,$5,$6)`,
		c.ID, c.TenantID, c.Name, c.Email, c.Phone, c.Company,
	)
	return err
}

func (s *Store) ListByTenant(ctx context.Context, tenantID string) ([]*crm.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, tenant_id, name, email, phone, company, created_at, updated_at
		 from contacts where tenant_id=$1 order by created_at`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*crm.Contact
	for rows.Next() {
		var c crm.Contact
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

func (s *Store) Delete(ctx context.Context, tenantID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`delete from contacts where id=$1 and tenant_id=$2`, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return crm.ErrNotFound
	}
	return nil
}
