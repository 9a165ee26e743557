package customers

import (
	"context"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStoresProfile(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil)
	age := 24

	c, err := svc.Save(context.Background(), SaveRequest{
		Name: "Priya", Phone: "9123456780", Gender: "female", Age: &age,
		SkinTone: "fair", FaceShape: "oval",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	stored, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "oval", stored.FaceShape)
	assert.Equal(t, "fair", stored.SkinTone)
	assert.Equal(t, 24, *stored.Age)
}

func TestSaveRequiresNameAndPhone(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil)

	_, err := svc.Save(context.Background(), SaveRequest{Phone: "9123456780"})
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = svc.Save(context.Background(), SaveRequest{Name: "Priya"})
	assert.ErrorIs(t, err, ErrMissingPhone)

	assert.Zero(t, repo.Len())
}

func TestPostgresRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)
	created := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("Priya", "9123456780", "female", (*int)(nil), "fair", "oval").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), created))

	c, err := repo.Create(context.Background(), &Customer{
		Name: "Priya", Phone: "9123456780", Gender: "female", SkinTone: "fair", FaceShape: "oval",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.ID)
	assert.Equal(t, created, c.CreatedAt)

	mock.ExpectQuery("SELECT (.+) FROM customers").
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
