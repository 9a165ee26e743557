package customers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) (*Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
}

// InMemoryRepository keeps customers in a map with sequential ids.
type InMemoryRepository struct {
	mu        sync.RWMutex
	nextID    int64
	customers map[int64]*Customer
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{customers: make(map[int64]*Customer)}
}

func (r *InMemoryRepository) Create(ctx context.Context, c *Customer) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *c
	stored.ID = r.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.customers[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	out := *c
	return &out, nil
}

// Len returns the number of stored customers.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores customers in the customers table.
type PostgresRepository struct {
	pool rowQuerier
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("customers: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q rowQuerier) *PostgresRepository {
	if q == nil {
		panic("customers: querier required")
	}
	return &PostgresRepository{pool: q}
}

func (r *PostgresRepository) Create(ctx context.Context, c *Customer) (*Customer, error) {
	query := `
		INSERT INTO customers (name, phone, gender, age, skin_tone, face_shape)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	out := *c
	if err := r.pool.QueryRow(ctx, query,
		c.Name,
		c.Phone,
		c.Gender,
		c.Age,
		c.SkinTone,
		c.FaceShape,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, fmt.Errorf("customers: insert failed: %w", err)
	}
	return &out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Customer, error) {
	query := `
		SELECT id, name, phone, gender, age, skin_tone, face_shape, created_at
		FROM customers
		WHERE id = $1
	`
	var c Customer
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.Gender,
		&c.Age,
		&c.SkinTone,
		&c.FaceShape,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customers: select failed: %w", err)
	}
	return &c, nil
}
