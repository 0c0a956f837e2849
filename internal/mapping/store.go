package mapping

import (
    "context"
    "strings"

    "github.com/jackc/pgx/v5/pgxpool"

    "shipvox/internal/rate"
)

// Store persists user-supplied service mapping overrides in Postgres.
// Rows are keyed (carrier, service_name), lowercased, matching the
// normalizer's override keys.
type Store struct {
    db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
    return &Store{db: db}
}

// All returns every stored override in a stable order.
func (s *Store) All(ctx context.Context) ([]rate.Override, error) {
    rows, err := s.db.Query(ctx, `
        SELECT carrier, service_name, normalized_service
        FROM service_mappings
        ORDER BY carrier, service_name
    `)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []rate.Override
    for rows.Next() {
        var o rate.Override
        if err := rows.Scan(&o.Carrier, &o.ServiceName, &o.Tier); err != nil {
            return nil, err
        }
        out = append(out, o)
    }
    return out, rows.Err()
}

// Save upserts one override. Re-saving the same key replaces the tier.
func (s *Store) Save(ctx context.Context, carrier, serviceName, tier string) error {
    _, err := s.db.Exec(ctx, `
        INSERT INTO service_mappings (carrier, service_name, normalized_service, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (carrier, service_name)
        DO UPDATE SET normalized_service = EXCLUDED.normalized_service, updated_at = now()
    `, strings.ToLower(strings.TrimSpace(carrier)), strings.ToLower(strings.TrimSpace(serviceName)), tier)
    return err
}
