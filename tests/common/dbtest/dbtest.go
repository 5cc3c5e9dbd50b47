package dbtest

import (
	"context"
	"fmt"
	"time"

	"openbook/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Fixed ids for the seeded reference rows so tests can address them
// without querying first.
var (
	AdminUserID    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	PremiumUserID  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	StandardUserID = uuid.MustParse("33333333-3333-3333-3333-333333333333")

	ResourceA100ID    = uuid.MustParse("aaaaaaaa-0000-0000-0000-00000000a100")
	ResourceH100ID    = uuid.MustParse("bbbbbbbb-0000-0000-0000-00000000b100")
	ResourceRetiredID = uuid.MustParse("cccccccc-0000-0000-0000-00000000c100")
)

const (
	AdminEmail    = "admin@example.com"
	PremiumEmail  = "premium@example.com"
	StandardEmail = "standard@example.com"

	SeedPassword = "password123"
)

// SeedReferenceData inserts the users and resources every e2e suite
// relies on. Idempotent so reseeding after a reset is safe.
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hash, err := password.HashPassword(SeedPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := []struct {
		id    uuid.UUID
		name  string
		email string
		group string
	}{
		{AdminUserID, "Admin User", AdminEmail, "admin"},
		{PremiumUserID, "Premium User", PremiumEmail, "premium"},
		{StandardUserID, "Standard User", StandardEmail, "standard"},
	}
	for _, u := range users {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, name, email, password_hash, user_group, is_active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			ON CONFLICT (id) DO NOTHING`,
			u.id, u.name, u.email, hash, u.group)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.email, err)
		}
	}

	resources := []struct {
		id       uuid.UUID
		name     string
		memoryGB int32
		active   bool
	}{
		{ResourceA100ID, "gpu-a100", 80, true},
		{ResourceH100ID, "gpu-h100", 96, true},
		{ResourceRetiredID, "gpu-retired", 40, false},
	}
	for _, r := range resources {
		_, err := pool.Exec(ctx, `
			INSERT INTO resources (id, name, description, total_memory_gb, is_active)
			VALUES ($1, $2, '', $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			r.id, r.name, r.memoryGB, r.active)
		if err != nil {
			return fmt.Errorf("failed to seed resource %s: %w", r.name, err)
		}
	}

	return nil
}

// ResetDB clears booking state between tests. Reference data (users,
// resources) stays in place.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, "TRUNCATE booking_logs, bookings RESTART IDENTITY CASCADE")
	if err != nil {
		return fmt.Errorf("failed to reset booking tables: %w", err)
	}
	return nil
}
