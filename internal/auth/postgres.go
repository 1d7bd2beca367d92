package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Identities(context.Context) IdentityStore { return &identityStore{db: s.db} }
func (s *PGStore) Roles(context.Context) RoleStore          { return &roleStore{db: s.db} }
func (s *PGStore) RefreshTokens(context.Context) RefreshTokenStore {
	return &refreshTokenStore{db: s.db}
}

// ProvisionRegistration creates the tenant, wildcard admin role, founding
// identity and module grants in one transaction.
func (s *PGStore) ProvisionRegistration(ctx context.Context, tenantName string, ident *Identity, role *RoleRecord, modules []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`insert into tenants(id, name) values($1,$2)`,
		ident.TenantID, tenantName,
	); err != nil {
		return err
	}

	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`insert into roles(id, tenant_id, name, permissions) values($1,$2,$3,$4)`,
		role.ID, role.TenantID, role.Name, perms,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`insert into identities(id, tenant_id, email, password_hash, first_name, last_name, role, role_id, is_admin, active)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		ident.ID, ident.TenantID, ident.Email, ident.PasswordHash,
		ident.FirstName, ident.LastName, string(ident.Role), nullString(ident.RoleID),
		ident.IsAdmin, ident.Active,
	); err != nil {
		return err
	}

	for _, module := range modules {
		if _, err := tx.ExecContext(ctx,
			`insert into tenant_modules(tenant_id, module) values($1,$2) on conflict do nothing`,
			ident.TenantID, module,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Identity store ------------------------------------------------------------

type identityStore struct{ db *sql.DB }

const identityColumns = `id, tenant_id, email, password_hash, first_name, last_name, role, coalesce(role_id, ''), is_admin, active, created_at, updated_at`

func (s *identityStore) Create(ctx context.Context, ident *Identity) error {
	_, err := s.db.ExecContext(ctx,
		`insert into identities(id, tenant_id, email, password_hash, first_name, last_name, role, role_id, is_admin, active)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		ident.ID, ident.TenantID, ident.Email, ident.PasswordHash,
		ident.FirstName, ident.LastName, string(ident.Role), nullString(ident.RoleID),
		ident.IsAdmin, ident.Active,
	)
	return err
}

func (s *identityStore) Find(ctx context.Context, id string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+identityColumns+` from identities where id=$1`, id)
	return scanIdentity(row)
}

func (s *identityStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+identityColumns+` from identities where lower(email)=lower($1)`, email)
	return scanIdentity(row)
}

func (s *identityStore) ListByTenant(ctx context.Context, tenantID string) ([]*Identity, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+identityColumns+` from identities where tenant_id=$1 order by created_at`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var idents []*Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		idents = append(idents, ident)
	}
	return idents, rows.Err()
}

func (s *identityStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`update identities set active=$2, updated_at=now() where id=$1`, id, active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *identityStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `delete from identities where id=$1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*Identity, error) {
	var (
		ident Identity
		role  string
	)
	err := row.Scan(
		&ident.ID, &ident.TenantID, &ident.Email, &ident.PasswordHash,
		&ident.FirstName, &ident.LastName, &role, &ident.RoleID,
		&ident.IsAdmin, &ident.Active, &ident.CreatedAt, &ident.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ident.Role = Role(role)
	return &ident, nil
}

// Role store ----------------------------------------------------------------

type roleStore struct{ db *sql.DB }

func (s *roleStore) Create(ctx context.Context, role *RoleRecord) error {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`insert into roles(id, tenant_id, name, permissions) values($1,$2,$3,$4)`,
		role.ID, role.TenantID, role.Name, perms,
	)
	return err
}

func (s *roleStore) Find(ctx context.Context, id string) (*RoleRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, tenant_id, name, permissions, created_at from roles where id=$1`, id)
	return scanRole(row)
}

func (s *roleStore) FindByTenantAndName(ctx context.Context, tenantID, name string) (*RoleRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, tenant_id, name, permissions, created_at from roles where tenant_id=$1 and name=$2`,
		tenantID, name)
	return scanRole(row)
}

func scanRole(row rowScanner) (*RoleRecord, error) {
	var (
		role  RoleRecord
		perms []byte
	)
	if err := row.Scan(&role.ID, &role.TenantID, &role.Name, &perms, &role.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_ = json.Unmarshal(perms, &role.Permissions)
	return &role, nil
}

// Refresh token store -------------------------------------------------------

type refreshTokenStore struct{ db *sql.DB }

func (s *refreshTokenStore) Create(ctx context.Context, rec *RefreshTokenRecord) error {
	_, err := s.db.ExecContext(ctx,
		`insert into refresh_tokens(id, identity_id, token, expires_at) values($1,$2,$3,$4)`,
		rec.ID, rec.IdentityID, rec.Token, rec.ExpiresAt,
	)
	return err
}

func (s *refreshTokenStore) Find(ctx context.Context, token string) (*RefreshTokenRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, identity_id, token, expires_at, created_at from refresh_tokens where token=$1`, token)
	var rec RefreshTokenRecord
	if err := row.Scan(&rec.ID, &rec.IdentityID, &rec.Token, &rec.ExpiresAt, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *refreshTokenStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `delete from refresh_tokens where id=$1`, id)
	return err
}

func (s *refreshTokenStore) DeleteByIdentity(ctx context.Context, identityID string) error {
	_, err := s.db.ExecContext(ctx, `delete from refresh_tokens where identity_id=$1`, identityID)
	return err
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
