package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	domain "github.com/mockshop/mockshop/internal/errors"
	"github.com/mockshop/mockshop/internal/service"
)

// mockCartService is a mock implementation of the CartService interface
type mockCartService struct {
	user   *service.UserDto
	users  []service.UserDto
	result *service.CheckoutResultDto
	error  error
}

func (m *mockCartService) FindAll(_ context.Context) ([]service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.users, nil
}

func (m *mockCartService) FindByID(_ context.Context, _ int64) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func (m *mockCartService) AddItem(_ context.Context, _ int64, _ service.CartAddDto) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func (m *mockCartService) UpdateItem(_ context.Context, _, _, _ int64) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func (m *mockCartService) RemoveItem(_ context.Context, _, _ int64) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func (m *mockCartService) Checkout(_ context.Context, _ int64) (*service.CheckoutResultDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.result, nil
}

func newCartRouter(svc service.CartService) *chi.Mux {
	mux := chi.NewRouter()
	handler := NewCartHandler(svc, testLogger(), false)
	handler.RegisterRoutes(mux)
	return mux
}

func Test_CartHandler_FindByID(t *testing.T) {
	user := &service.UserDto{
		ID:        1,
		CartItems: []service.CartItemDto{{ItemID: 1, Quantity: 2}},
		CartCount: 2,
	}
	testCases := []struct {
		name         string
		mockService  mockCartService
		url          string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - user found",
			mockService:  mockCartService{user: user},
			url:          "/users/1",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, user),
		},
		{
			name:         "Error - user not found",
			mockService:  mockCartService{error: domain.ErrUserNotFound},
			url:          "/users/42",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"User with ID 42 not found"}`,
		},
		{
			name:         "Error - invalid id",
			mockService:  mockCartService{},
			url:          "/users/x",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid id: x"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newCartRouter(&tc.mockService)
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rec := httptest.NewRecorder()
			// when
			router.ServeHTTP(rec, req)
			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func Test_CartHandler_AddItem(t *testing.T) {
	updated := &service.UserDto{
		ID:        1,
		CartItems: []service.CartItemDto{{ItemID: 1, Quantity: 2}},
		CartCount: 2,
	}
	testCases := []struct {
		name         string
		mockService  mockCartService
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - item added",
			mockService:  mockCartService{user: updated},
			body:         `{"itemId":1,"quantity":2}`,
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, updated),
		},
		{
			name:         "Error - zero quantity fails validation",
			mockService:  mockCartService{},
			body:         `{"itemId":1,"quantity":0}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Quantity":"failed on rule: required"}}`,
		},
		{
			name:         "Error - product missing",
			mockService:  mockCartService{error: domain.ErrProductNotFound},
			body:         `{"itemId":9,"quantity":1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Product with ID 9 does not exist"}`,
		},
		{
			name:         "Error - exceeds stock",
			mockService:  mockCartService{error: domain.ErrInsufficientStock},
			body:         `{"itemId":1,"quantity":99}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Requested quantity exceeds stock"}`,
		},
		{
			name:         "Error - cart full",
			mockService:  mockCartService{error: domain.ErrCartFull},
			body:         `{"itemId":1,"quantity":1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Cart item limit reached"}`,
		},
		{
			name:         "Error - user not found",
			mockService:  mockCartService{error: domain.ErrUserNotFound},
			body:         `{"itemId":1,"quantity":1}`,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"User with ID 1 not found"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newCartRouter(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/users/1/cart", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			// when
			router.ServeHTTP(rec, req)
			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func Test_CartHandler_UpdateItem(t *testing.T) {
	emptied := &service.UserDto{ID: 1, CartItems: []service.CartItemDto{}, CartCount: 0}
	testCases := []struct {
		name         string
		mockService  mockCartService
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - zero quantity removes the line",
			mockService:  mockCartService{user: emptied},
			body:         `{"quantity":0}`,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, emptied),
		},
		{
			name:         "Error - negative quantity fails validation",
			mockService:  mockCartService{},
			body:         `{"quantity":-1}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Quantity":"failed on rule: min"}}`,
		},
		{
			name:         "Error - quantity missing",
			mockService:  mockCartService{},
			body:         `{}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Quantity":"failed on rule: required"}}`,
		},
		{
			name:         "Error - line not in cart",
			mockService:  mockCartService{error: domain.ErrCartItemNotFound},
			body:         `{"quantity":2}`,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Item 1 is not in the cart of user 1"}`,
		},
		{
			name:         "Error - exceeds stock",
			mockService:  mockCartService{error: domain.ErrInsufficientStock},
			body:         `{"quantity":99}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Requested quantity exceeds stock"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newCartRouter(&tc.mockService)
			req := httptest.NewRequest(http.MethodPatch, "/users/1/cart/1", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			// when
			router.ServeHTTP(rec, req)
			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func Test_CartHandler_RemoveItem(t *testing.T) {
	emptied := &service.UserDto{ID: 1, CartItems: []service.CartItemDto{}, CartCount: 0}
	testCases := []struct {
		name         string
		mockService  mockCartService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - line removed",
			mockService:  mockCartService{user: emptied},
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, emptied),
		},
		{
			name:         "Error - line not in cart",
			mockService:  mockCartService{error: domain.ErrCartItemNotFound},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Item 2 is not in the cart of user 1"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newCartRouter(&tc.mockService)
			req := httptest.NewRequest(http.MethodDelete, "/users/1/cart/2", nil)
			rec := httptest.NewRecorder()
			// when
			router.ServeHTTP(rec, req)
			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func Test_CartHandler_Checkout(t *testing.T) {
	result := &service.CheckoutResultDto{
		Success: true,
		Products: []service.ProductDto{
			{ID: 1, Title: "Mouse", Stock: 3, Comments: []service.CommentDto{}},
		},
	}
	testCases := []struct {
		name         string
		mockService  mockCartService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - checkout applied",
			mockService:  mockCartService{result: result},
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, result),
		},
		{
			name:         "Error - cart empty",
			mockService:  mockCartService{error: domain.ErrCartEmpty},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Cart is empty"}`,
		},
		{
			name:         "Error - insufficient stock",
			mockService:  mockCartService{error: domain.ErrInsufficientStock},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Insufficient stock for one or more cart items"}`,
		},
		{
			name:         "Error - unknown product in cart",
			mockService:  mockCartService{error: domain.ErrProductNotFound},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Cart references a product that no longer exists"}`,
		},
		{
			name:         "Error - user not found",
			mockService:  mockCartService{error: domain.ErrUserNotFound},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"User with ID 1 not found"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			router := newCartRouter(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/users/1/checkout", nil)
			rec := httptest.NewRecorder()
			// when
			router.ServeHTTP(rec, req)
			// then
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}
