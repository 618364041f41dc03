package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gadgetarian/service-tracker/internal/domain"
)

const serviceColumns = `id, code, device_name, category, issue, customer, customer_phone,
               technician, technician_phone, entry_date, estimated_completion, status,
               spare_parts, notes, version, created_at, updated_at`

type sparePartRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type postgresServiceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresServiceRepository instantiates a repository over the
// service_tickets and service_status_history tables.
func NewPostgresServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &postgresServiceRepository{pool: pool}
}

func (r *postgresServiceRepository) Insert(ctx context.Context, ticket *domain.ServiceTicket) error {
	parts, err := encodeParts(ticket.SpareParts)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
        INSERT INTO service_tickets (id, code, device_name, category, issue, customer, customer_phone,
            technician, technician_phone, entry_date, estimated_completion, status, spare_parts, notes, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING created_at, updated_at`
		err := tx.QueryRow(ctx, query,
			ticket.ID,
			ticket.Code,
			ticket.DeviceName,
			ticket.Category,
			ticket.Issue,
			ticket.Customer,
			ticket.CustomerPhone,
			ticket.Technician,
			ticket.TechnicianPhone,
			nullableDate(ticket.EntryDate),
			nullableDate(ticket.EstimatedCompletion),
			ticket.Status,
			parts,
			ticket.Notes,
			ticket.Version,
		).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateID
			}
			return err
		}
		return appendHistory(ctx, tx, ticket.ID, 0, ticket.StatusHistory)
	})
}

func (r *postgresServiceRepository) Save(ctx context.Context, ticket *domain.ServiceTicket, expectedVersion int64) error {
	parts, err := encodeParts(ticket.SpareParts)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
        UPDATE service_tickets SET code=$1, device_name=$2, category=$3, issue=$4, customer=$5,
            customer_phone=$6, technician=$7, technician_phone=$8, entry_date=$9,
            estimated_completion=$10, status=$11, spare_parts=$12, notes=$13,
            version=version+1, updated_at=NOW()
        WHERE id=$14 AND version=$15
        RETURNING version, updated_at`
		err := tx.QueryRow(ctx, query,
			ticket.Code,
			ticket.DeviceName,
			ticket.Category,
			ticket.Issue,
			ticket.Customer,
			ticket.CustomerPhone,
			ticket.Technician,
			ticket.TechnicianPhone,
			nullableDate(ticket.EntryDate),
			nullableDate(ticket.EstimatedCompletion),
			ticket.Status,
			parts,
			ticket.Notes,
			ticket.ID,
			expectedVersion,
		).Scan(&ticket.Version, &ticket.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM service_tickets WHERE id=$1)`, ticket.ID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrVersionConflict
		}
		if err != nil {
			return err
		}

		var stored int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM service_status_history WHERE service_id=$1`, ticket.ID).Scan(&stored); err != nil {
			return err
		}
		if stored > len(ticket.StatusHistory) {
			return fmt.Errorf("status history for %s would shrink from %d to %d entries", ticket.ID, stored, len(ticket.StatusHistory))
		}
		return appendHistory(ctx, tx, ticket.ID, stored, ticket.StatusHistory[stored:])
	})
}

func (r *postgresServiceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM service_tickets WHERE id=$1`, id)
	return err
}

func (r *postgresServiceRepository) GetByID(ctx context.Context, id string) (*domain.ServiceTicket, error) {
	query := `SELECT ` + serviceColumns + ` FROM service_tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *postgresServiceRepository) GetByCode(ctx context.Context, code string) (*domain.ServiceTicket, error) {
	query := `SELECT ` + serviceColumns + ` FROM service_tickets WHERE code=$1 ORDER BY position ASC LIMIT 1`
	return r.fetchSingle(ctx, query, code)
}

func (r *postgresServiceRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ServiceTicket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ticket.StatusHistory, err = r.history(ctx, ticket.ID); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *postgresServiceRepository) List(ctx context.Context, filter ServiceFilter) ([]domain.ServiceTicket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(code) LIKE %s OR LOWER(device_name) LIKE %s OR LOWER(customer) LIKE %s)",
			placeholder, placeholder, placeholder))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM service_tickets WHERE %s ORDER BY position ASC`,
		serviceColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var result []domain.ServiceTicket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, *ticket)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if result[i].StatusHistory, err = r.history(ctx, result[i].ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *postgresServiceRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM service_tickets`).Scan(&count)
	return count, err
}

func (r *postgresServiceRepository) history(ctx context.Context, serviceID string) ([]domain.StatusHistoryEntry, error) {
	const query = `
        SELECT id, status, description, technician, recorded_at
        FROM service_status_history WHERE service_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistoryEntry
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.Status, &entry.Description, &entry.Technician, &entry.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func appendHistory(ctx context.Context, tx pgx.Tx, serviceID string, startSeq int, entries []domain.StatusHistoryEntry) error {
	const query = `
        INSERT INTO service_status_history (id, service_id, seq, status, description, technician, recorded_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	for i, entry := range entries {
		if _, err := tx.Exec(ctx, query,
			entry.ID,
			serviceID,
			startSeq+i,
			entry.Status,
			entry.Description,
			entry.Technician,
			entry.Timestamp,
		); err != nil {
			return err
		}
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.ServiceTicket, error) {
	var (
		ticket     domain.ServiceTicket
		entryDate  *time.Time
		completion *time.Time
		parts      []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Code,
		&ticket.DeviceName,
		&ticket.Category,
		&ticket.Issue,
		&ticket.Customer,
		&ticket.CustomerPhone,
		&ticket.Technician,
		&ticket.TechnicianPhone,
		&entryDate,
		&completion,
		&ticket.Status,
		&parts,
		&ticket.Notes,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if entryDate != nil {
		ticket.EntryDate = *entryDate
	}
	if completion != nil {
		ticket.EstimatedCompletion = *completion
	}
	decoded, err := decodeParts(parts)
	if err != nil {
		return nil, err
	}
	ticket.SpareParts = decoded
	return &ticket, nil
}

func encodeParts(parts []domain.SparePart) ([]byte, error) {
	rows := make([]sparePartRow, 0, len(parts))
	for _, part := range parts {
		rows = append(rows, sparePartRow{ID: part.ID, Name: part.Name, Price: part.Price})
	}
	return json.Marshal(rows)
}

func decodeParts(raw []byte) ([]domain.SparePart, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rows []sparePartRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode spare parts: %w", err)
	}
	parts := make([]domain.SparePart, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, domain.SparePart{ID: row.ID, Name: row.Name, Price: row.Price})
	}
	return parts, nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
