package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/admin-console/internal/domain"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	created, err := repo.Create(ctx, UserRecord{User: domain.User{Email: "Admin@Example.com", Role: domain.UserRoleAdmin}, PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	byEmail, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	created.Email = "root@example.com"
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)
	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", got.Email)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)
	_, err = repo.Update(ctx, created)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductRepository_ListByCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	for _, cats := range [][]int{{1}, {1, 2}, {2}, nil} {
		_, err := repo.Create(ctx, domain.Product{Name: "tee", CategoryIDs: cats})
		require.NoError(t, err)
	}

	inOne, err := repo.ListByCategory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, inOne, 2)
	assert.Equal(t, []int{1, 2}, []int{inOne[0].ID, inOne[1].ID})

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestOrderRepository_CountByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	for _, userID := range []int{1, 1, 2} {
		_, err := repo.Create(ctx, domain.Order{UserID: userID, State: domain.OrderStatePending})
		require.NoError(t, err)
	}
	n, err := repo.CountByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReviewRepository_DeleteByProduct(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository()
	for _, productID := range []int{1, 2, 1} {
		_, err := repo.Create(ctx, domain.Review{ProductID: productID, Rating: 4})
		require.NoError(t, err)
	}
	require.NoError(t, repo.DeleteByProduct(ctx, 1))
	left, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, 2, left[0].ProductID)
}
