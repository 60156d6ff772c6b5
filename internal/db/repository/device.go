package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"worktime/internal/domain"
)

// DeviceRepo stores access-control device records.
type DeviceRepo struct {
	q DBTX
}

var _ domain.DeviceRepository = (*DeviceRepo)(nil)

func NewDeviceRepo(q DBTX) *DeviceRepo {
	return &DeviceRepo{q: q}
}

func (r *DeviceRepo) Insert(ctx context.Context, d *domain.Device) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO skud_devices (id, name, location, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Location, boolToInt(d.IsActive), fmtTime(d.CreatedAt),
	)
	if err != nil {
		return mapDBError("insert device", err)
	}
	return nil
}

func (r *DeviceRepo) Get(ctx context.Context, id string) (*domain.Device, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, location, is_active, created_at FROM skud_devices WHERE id = ?`, id)

	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("device %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}

func (r *DeviceRepo) List(ctx context.Context) ([]domain.Device, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, location, is_active, created_at FROM skud_devices ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var out []domain.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDevice(sc rowScanner) (*domain.Device, error) {
	var (
		d         domain.Device
		isActive  int
		createdAt string
	)
	if err := sc.Scan(&d.ID, &d.Name, &d.Location, &isActive, &createdAt); err != nil {
		return nil, err
	}
	d.IsActive = isActive != 0

	var err error
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &d, nil
}
