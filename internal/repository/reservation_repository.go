package repository

import (
	"context"
	"database/sql"

	"github.com/locaspot/booking-api/internal/model"
)

// ReservationRepo provides CRUD operations for reservations. A reservation
// belongs to exactly one user and one product; both references are enforced
// by foreign keys in the schema. All timestamps are stored in UTC.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

const reservationCols = "id, user_id, product_id, start_date, end_date, total_price, status, " +
	"full_name, phone, address, total_persons, cin_file, passport_file, contract_file, created_at, updated_at"

// Create inserts a reservation with status PENDING and fills in the
// generated ID and timestamps.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	if res.Status == "" {
		res.Status = model.ReservationPending
	}
	result, err := r.DB.ExecContext(ctx,
		`INSERT INTO reservations
		 (user_id, product_id, start_date, end_date, total_price, status,
		  full_name, phone, address, total_persons, cin_file, passport_file, contract_file)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		res.UserID, res.ProductID, res.StartDate, res.EndDate, res.TotalPrice, res.Status,
		res.FullName, res.Phone, res.Address, res.TotalPersons,
		res.CinFile, res.PassportFile, res.ContractFile)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*res = created
	return nil
}

// GetByID returns a single reservation without its product joined.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+reservationCols+" FROM reservations WHERE id = ? LIMIT 1", id)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return res, ErrNotFound
	}
	return res, err
}

// ListByUser returns the reservations of one user, newest first, each with
// its product attached for display.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.list(ctx,
		"SELECT "+reservationCols+" FROM reservations WHERE user_id = ? ORDER BY created_at DESC", userID)
}

// ListAll returns every reservation, newest first. Admin dashboard view.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	return r.list(ctx,
		"SELECT "+reservationCols+" FROM reservations ORDER BY created_at DESC")
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach products in one pass; a reservation keeps a nil product when
	// the join target has been deleted meanwhile.
	products := ProductRepo{DB: r.DB}
	for i := range out {
		p, err := products.GetByID(ctx, out[i].ProductID)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[i].Product = &p
	}
	return out, nil
}

// UpdateStatus patches only the status column, leaving every other field of
// the reservation untouched, and returns the updated record.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status string) (model.Reservation, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reservations SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Reservation{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a reservation. Returns ErrNotFound when it does not exist.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanReservation(row rowScanner) (model.Reservation, error) {
	var res model.Reservation
	var fullName, phone, address, cin, passport, contract sql.NullString
	err := row.Scan(&res.ID, &res.UserID, &res.ProductID, &res.StartDate, &res.EndDate,
		&res.TotalPrice, &res.Status, &fullName, &phone, &address, &res.TotalPersons,
		&cin, &passport, &contract, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return res, err
	}
	res.FullName = nullStr(fullName)
	res.Phone = nullStr(phone)
	res.Address = nullStr(address)
	res.CinFile = nullStr(cin)
	res.PassportFile = nullStr(passport)
	res.ContractFile = nullStr(contract)
	return res, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
