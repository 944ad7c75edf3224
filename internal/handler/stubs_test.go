package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/locaspot/booking-api/internal/model"
	"github.com/locaspot/booking-api/internal/repository"
)

// In-memory stores backing the handler tests. They mirror the SQL
// repositories' observable behavior, including the unique-email constraint
// and the product->image cascade the schema enforces.

type memUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{nextID: 1, users: map[uint64]model.User{}}
}

func (s *memUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = s.nextID
	s.nextID++
	u.Active = true
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.User{}
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *memUserStore) Patch(_ context.Context, id uint64, p repository.UserPatch) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Avatar != nil {
		u.Avatar = p.Avatar
	}
	s.users[id] = u
	return u, nil
}

func (s *memUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type memProductStore struct {
	mu       sync.Mutex
	nextID   uint64
	products map[uint64]model.Product
	images   map[uint64][]model.ProductImage // by product id
}

func newMemProductStore() *memProductStore {
	return &memProductStore{
		nextID:   1,
		products: map[uint64]model.Product{},
		images:   map[uint64][]model.ProductImage{},
	}
}

func (s *memProductStore) CreateWithImages(_ context.Context, p *model.Product, imageURLs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	p.Active = true
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	imgs := []model.ProductImage{}
	for i, url := range imageURLs {
		imgs = append(imgs, model.ProductImage{
			ID:        p.ID*100 + uint64(i) + 1,
			ProductID: p.ID,
			URL:       url,
		})
	}
	p.Images = imgs
	s.products[p.ID] = *p
	s.images[p.ID] = imgs
	return nil
}

func (s *memProductStore) GetByID(_ context.Context, id uint64) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	p.Images = append([]model.ProductImage{}, s.images[id]...)
	return p, nil
}

func (s *memProductStore) List(_ context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Product{}
	for id, p := range s.products {
		p.Images = append([]model.ProductImage{}, s.images[id]...)
		out = append(out, p)
	}
	return out, nil
}

func (s *memProductStore) Update(_ context.Context, id uint64, in repository.ProductUpdate) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	p.Title = in.Title
	p.Description = in.Description
	p.Price = in.Price
	p.City = in.City
	p.Latitude = in.Latitude
	p.Longitude = in.Longitude
	p.Image = in.Image
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	p.Images = append([]model.ProductImage{}, s.images[id]...)
	return p, nil
}

func (s *memProductStore) Patch(_ context.Context, id uint64, patch repository.ProductPatch) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	s.products[id] = p
	p.Images = append([]model.ProductImage{}, s.images[id]...)
	return p, nil
}

func (s *memProductStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	delete(s.images, id) // cascade, as the schema declares
	return nil
}

func (s *memProductStore) imageCount(productID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images[productID])
}

func (s *memProductStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

type memReservationStore struct {
	mu           sync.Mutex
	nextID       uint64
	reservations map[uint64]model.Reservation
}

func newMemReservationStore() *memReservationStore {
	return &memReservationStore{nextID: 1, reservations: map[uint64]model.Reservation{}}
}

func (s *memReservationStore) Create(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Status == "" {
		r.Status = model.ReservationPending
	}
	r.ID = s.nextID
	s.nextID++
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	s.reservations[r.ID] = *r
	return nil
}

func (s *memReservationStore) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return r, nil
}

func (s *memReservationStore) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range s.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memReservationStore) ListAll(_ context.Context) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range s.reservations {
		out = append(out, r)
	}
	return out, nil
}

func (s *memReservationStore) UpdateStatus(_ context.Context, id uint64, status string) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	r.Status = status // only the status field changes
	r.UpdatedAt = time.Now().UTC()
	s.reservations[id] = r
	return r, nil
}

func (s *memReservationStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

func (s *memReservationStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}
