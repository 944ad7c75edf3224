package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/locaspot/booking-api/internal/model"
)

// ProductRepo provides CRUD operations for products and their gallery
// images. A product owns its product_images rows; deleting the product
// removes them through the schema-level cascade.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productCols = "id, title, description, price, city, latitude, longitude, is_active, image, created_at, updated_at"

// CreateWithImages inserts the product and all its gallery rows in a single
// transaction, so a crash cannot leave a product with a partial gallery.
// The generated ID and timestamps are filled into p.
func (r *ProductRepo) CreateWithImages(ctx context.Context, p *model.Product, imageURLs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO products (title, description, price, city, latitude, longitude, image) VALUES (?,?,?,?,?,?,?)",
		p.Title, p.Description, p.Price, p.City, p.Latitude, p.Longitude, p.Image)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	if len(imageURLs) > 0 {
		q := "INSERT INTO product_images (product_id, url) VALUES "
		args := make([]interface{}, 0, len(imageURLs)*2)
		for i, url := range imageURLs {
			if i > 0 {
				q += ","
			}
			q += "(?, ?)"
			args = append(args, p.ID, url)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	created, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = created
	return nil
}

// GetByID returns a product with its gallery images.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	var p model.Product
	var lat, lng sql.NullFloat64
	var image sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id = ? LIMIT 1", id).
		Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.City,
			&lat, &lng, &p.Active, &image, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	assignOptional(&p, lat, lng, image)

	images, err := r.imagesFor(ctx, []uint64{p.ID})
	if err != nil {
		return p, err
	}
	p.Images = images[p.ID]
	if p.Images == nil {
		p.Images = []model.ProductImage{}
	}
	return p, nil
}

// List returns all products, newest first, each with its images.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	ids := []uint64{}
	for rows.Next() {
		var p model.Product
		var lat, lng sql.NullFloat64
		var image sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.City,
			&lat, &lng, &p.Active, &image, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		assignOptional(&p, lat, lng, image)
		p.Images = []model.ProductImage{}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	images, err := r.imagesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if imgs := images[products[i].ID]; imgs != nil {
			products[i].Images = imgs
		}
	}
	return products, nil
}

// ProductUpdate carries the full editable field set for PUT semantics:
// every field is written, so callers must supply all of them.
type ProductUpdate struct {
	Title       string
	Description string
	Price       float64
	City        string
	Latitude    *float64
	Longitude   *float64
	Image       *string
}

// Update replaces all editable fields of a product and returns the updated
// record. Returns ErrNotFound when the product does not exist.
func (r *ProductRepo) Update(ctx context.Context, id uint64, in ProductUpdate) (model.Product, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET title=?, description=?, price=?, city=?, latitude=?, longitude=?, image=? WHERE id=?",
		in.Title, in.Description, in.Price, in.City, in.Latitude, in.Longitude, in.Image, id)
	if err != nil {
		return model.Product{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Product{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// ProductPatch names the fields a moderation update may touch.
type ProductPatch struct {
	Active *bool
}

// Patch applies a partial update (currently the active flag) and returns
// the resulting record.
func (r *ProductRepo) Patch(ctx context.Context, id uint64, p ProductPatch) (model.Product, error) {
	if p.Active != nil {
		res, err := r.DB.ExecContext(ctx,
			"UPDATE products SET is_active=? WHERE id=?", *p.Active, id)
		if err != nil {
			return model.Product{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if _, err := r.GetByID(ctx, id); err != nil {
				return model.Product{}, err
			}
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a product. The product_images rows go with it via the
// ON DELETE CASCADE constraint declared in the schema.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// imagesFor loads gallery images for the given product ids, grouped by
// product.
func (r *ProductRepo) imagesFor(ctx context.Context, ids []uint64) (map[uint64][]model.ProductImage, error) {
	out := map[uint64][]model.ProductImage{}
	if len(ids) == 0 {
		return out, nil
	}
	q := "SELECT id, product_id, url FROM product_images WHERE product_id IN (" +
		strings.Repeat("?,", len(ids)-1) + "?) ORDER BY id"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var img model.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL); err != nil {
			return nil, err
		}
		out[img.ProductID] = append(out[img.ProductID], img)
	}
	return out, rows.Err()
}

func assignOptional(p *model.Product, lat, lng sql.NullFloat64, image sql.NullString) {
	if lat.Valid {
		v := lat.Float64
		p.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		p.Longitude = &v
	}
	if image.Valid {
		v := image.String
		p.Image = &v
	}
}
