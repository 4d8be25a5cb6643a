package service

import (
	"context"
	"errors"
	"testing"

	"prepline/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_Menu_GroupsByMenuCategory(t *testing.T) {
	ctx := context.Background()

	products := []model.Product{
		{ID: "P001", Name: "Espresso", MenuCategory: "Drinks", DashboardCategory: "bar"},
		{ID: "P002", Name: "Margherita", MenuCategory: "Pizza", DashboardCategory: "kitchen"},
		{ID: "P003", Name: "Cola", MenuCategory: "Drinks", DashboardCategory: "bar"},
	}

	mockRepo := new(MockProductRepository)
	stats := &countingRefresher{}
	svc := NewProductService(mockRepo, stats, zerolog.Nop())

	mockRepo.On("GetAll", ctx).Return(products, nil)

	menu, err := svc.Menu(ctx)

	require.NoError(t, err)
	// Categories appear in first-seen order and hold their own products.
	assert.Equal(t, []string{"Drinks", "Pizza"}, menu.Categories)
	assert.Len(t, menu.Products["Drinks"], 2)
	assert.Len(t, menu.Products["Pizza"], 1)
}

func TestProductService_Menu_RepositoryError(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	stats := &countingRefresher{}
	svc := NewProductService(mockRepo, stats, zerolog.Nop())

	mockRepo.On("GetAll", ctx).Return(nil, errors.New("database error"))

	menu, err := svc.Menu(ctx)

	require.Error(t, err)
	assert.Nil(t, menu)
}

func TestProductService_Restock(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		qty         int
		expectError bool
	}{
		{name: "Positive quantity", qty: 5, expectError: false},
		{name: "Zero quantity", qty: 0, expectError: true},
		{name: "Negative quantity", qty: -3, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			stats := &countingRefresher{}
			svc := NewProductService(mockRepo, stats, zerolog.Nop())

			if !tt.expectError {
				mockRepo.On("Restock", ctx, "P001", tt.qty).Return(nil)
			}

			err := svc.Restock(ctx, "P001", tt.qty)

			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, model.ErrInvalidQuantity, err)
				assert.Equal(t, 0, stats.count())
				mockRepo.AssertNotCalled(t, "Restock", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, stats.count())
				mockRepo.AssertExpectations(t)
			}
		})
	}
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	valid := func() *model.ProductUpdate {
		return &model.ProductUpdate{
			Name:              "Espresso",
			Price:             1.50,
			DashboardCategory: "Bar",
			Stock:             10,
		}
	}

	t.Run("Success normalizes dashboard category", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		stats := &countingRefresher{}
		svc := NewProductService(mockRepo, stats, zerolog.Nop())

		mockRepo.On("Update", ctx, "P001", mock.MatchedBy(func(u *model.ProductUpdate) bool {
			return u.DashboardCategory == "bar"
		})).Return(nil)

		err := svc.Update(ctx, "P001", valid())

		require.NoError(t, err)
		assert.Equal(t, 1, stats.count())
		mockRepo.AssertExpectations(t)
	})

	t.Run("Rejects invalid payloads", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*model.ProductUpdate)
		}{
			{name: "Empty name", mutate: func(u *model.ProductUpdate) { u.Name = "  " }},
			{name: "Negative price", mutate: func(u *model.ProductUpdate) { u.Price = -1 }},
			{name: "Negative stock", mutate: func(u *model.ProductUpdate) { u.Stock = -1 }},
			{name: "Empty dashboard category", mutate: func(u *model.ProductUpdate) { u.DashboardCategory = "" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockRepo := new(MockProductRepository)
				stats := &countingRefresher{}
				svc := NewProductService(mockRepo, stats, zerolog.Nop())

				upd := valid()
				tt.mutate(upd)

				err := svc.Update(ctx, "P001", upd)

				require.Error(t, err)
				mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockProductRepository)
	stats := &countingRefresher{}
	svc := NewProductService(mockRepo, stats, zerolog.Nop())

	mockRepo.On("Delete", ctx, "P001").Return(nil)

	err := svc.Delete(ctx, "P001")

	require.NoError(t, err)
	assert.Equal(t, 1, stats.count())
	mockRepo.AssertExpectations(t)
}
