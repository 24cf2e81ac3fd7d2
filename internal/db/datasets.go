package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/accident"
)

// ErrDatasetNotFound is returned when no dataset has the requested id.
var ErrDatasetNotFound = errors.New("dataset not found")

// DatasetInfo describes a stored dataset without its records.
type DatasetInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Columns     []string  `json:"columns"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateDataset stores ds under a fresh id in a single transaction.
// Record order is preserved through each record's Index.
func (db *DB) CreateDataset(ctx context.Context, name string, ds accident.Dataset) (*DatasetInfo, error) {
	columns, err := json.Marshal(ds.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to encode columns: %w", err)
	}

	info := &DatasetInfo{
		ID:          uuid.NewString(),
		Name:        name,
		Columns:     append([]string{}, ds.Columns...),
		RecordCount: len(ds.Records),
		CreatedAt:   db.now().UTC().Truncate(time.Second),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (dataset_id, name, columns, record_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		info.ID, info.Name, string(columns), info.RecordCount, info.CreatedAt.Unix(),
	); err != nil {
		return nil, fmt.Errorf("failed to insert dataset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO accidents (
			dataset_id, idx, latitude, longitude, severity, time_of_day, weather
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare accident insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range ds.Records {
		if _, err := stmt.ExecContext(ctx,
			info.ID, r.Index, nullFloat(r.Latitude), nullFloat(r.Longitude),
			string(r.Severity), string(r.TimeOfDay), string(r.Weather),
		); err != nil {
			return nil, fmt.Errorf("failed to insert record %d: %w", r.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit dataset: %w", err)
	}
	return info, nil
}

// GetDatasetInfo returns the metadata for one dataset.
func (db *DB) GetDatasetInfo(ctx context.Context, id string) (*DatasetInfo, error) {
	row := db.QueryRowContext(ctx,
		`SELECT dataset_id, name, columns, record_count, created_at FROM datasets WHERE dataset_id = ?`, id)
	info, err := scanDatasetInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDatasetNotFound
	}
	return info, err
}

// ListDatasets returns every dataset, newest first.
func (db *DB) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT dataset_id, name, columns, record_count, created_at FROM datasets ORDER BY created_at DESC, dataset_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infos := []DatasetInfo{}
	for rows.Next() {
		info, err := scanDatasetInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// LoadDataset reads a dataset and all of its records in source order.
func (db *DB) LoadDataset(ctx context.Context, id string) (*DatasetInfo, accident.Dataset, error) {
	info, err := db.GetDatasetInfo(ctx, id)
	if err != nil {
		return nil, accident.Dataset{}, err
	}

	rows, err := db.QueryContext(ctx, `SELECT idx, latitude, longitude, severity, time_of_day, weather
		FROM accidents WHERE dataset_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, accident.Dataset{}, err
	}
	defer rows.Close()

	ds := accident.Dataset{Columns: info.Columns, Records: make([]accident.Record, 0, info.RecordCount)}
	for rows.Next() {
		var (
			r                         accident.Record
			lat, lon                  sql.NullFloat64
			severity, tod, conditions string
		)
		if err := rows.Scan(&r.Index, &lat, &lon, &severity, &tod, &conditions); err != nil {
			return nil, accident.Dataset{}, err
		}
		if lat.Valid {
			r.Latitude = accident.Float64(lat.Float64)
		}
		if lon.Valid {
			r.Longitude = accident.Float64(lon.Float64)
		}
		// stored values are already normalised buckets
		r.Severity = accident.Severity(severity)
		r.TimeOfDay = accident.TimeOfDay(tod)
		r.Weather = accident.Weather(conditions)
		ds.Records = append(ds.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, accident.Dataset{}, err
	}
	return info, ds, nil
}

// DeleteDataset removes a dataset and its records.
func (db *DB) DeleteDataset(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM datasets WHERE dataset_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDatasetNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDatasetInfo(row rowScanner) (*DatasetInfo, error) {
	var (
		info      DatasetInfo
		columns   string
		createdAt int64
	)
	if err := row.Scan(&info.ID, &info.Name, &columns, &info.RecordCount, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(columns), &info.Columns); err != nil {
		return nil, fmt.Errorf("dataset %s: bad columns: %w", info.ID, err)
	}
	info.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &info, nil
}

// nullFloat maps a missing or NaN coordinate to SQL NULL.
func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
