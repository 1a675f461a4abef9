package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"boxmgr/internal/model"
)

// Mock stores for the service and handler tests. They satisfy the
// consumer-side interfaces declared in internal/service.

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, username string, passwordHash string, isAdmin bool) (model.User, error) {
	args := m.Called(ctx, username, passwordHash, isAdmin)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, id int64, upd model.UserUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockUserStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockCategoryStore struct {
	mock.Mock
}

func (m *MockCategoryStore) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryStore) Get(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Category), args.Error(1)
}

func (m *MockCategoryStore) Create(ctx context.Context, name string, color string) (model.Category, error) {
	args := m.Called(ctx, name, color)
	return args.Get(0).(model.Category), args.Error(1)
}

func (m *MockCategoryStore) Update(ctx context.Context, id int64, upd model.UpdateCategoryRequest) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockCategoryStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBoxStore struct {
	mock.Mock
}

func (m *MockBoxStore) List(ctx context.Context, categoryID *int64) ([]model.BoxWithCategory, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]model.BoxWithCategory), args.Error(1)
}

func (m *MockBoxStore) Get(ctx context.Context, id int64) (model.BoxWithCategory, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.BoxWithCategory), args.Error(1)
}

func (m *MockBoxStore) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBoxStore) Create(ctx context.Context, req model.CreateBoxRequest) (model.Box, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.Box), args.Error(1)
}

func (m *MockBoxStore) Update(ctx context.Context, id int64, upd model.UpdateBoxRequest) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockBoxStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockItemStore struct {
	mock.Mock
}

func (m *MockItemStore) ItemsInBox(ctx context.Context, boxID int64) ([]model.BoxItem, error) {
	args := m.Called(ctx, boxID)
	return args.Get(0).([]model.BoxItem), args.Error(1)
}

func (m *MockItemStore) AddToBox(ctx context.Context, boxID int64, name string, quantity int) (model.BoxItem, error) {
	args := m.Called(ctx, boxID, name, quantity)
	return args.Get(0).(model.BoxItem), args.Error(1)
}

func (m *MockItemStore) AddNamesToBox(ctx context.Context, boxID int64, names []string) ([]string, error) {
	args := m.Called(ctx, boxID, names)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockItemStore) RemoveFromBox(ctx context.Context, boxID int64, itemID int64) error {
	args := m.Called(ctx, boxID, itemID)
	return args.Error(0)
}

func (m *MockItemStore) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]model.SearchResult), args.Error(1)
}

type MockSettingStore struct {
	mock.Mock
}

func (m *MockSettingStore) List(ctx context.Context) ([]model.Setting, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Setting), args.Error(1)
}

func (m *MockSettingStore) GetValue(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockSettingStore) Set(ctx context.Context, key string, value string, description string) error {
	args := m.Called(ctx, key, value, description)
	return args.Error(0)
}

type MockVisionClient struct {
	mock.Mock
}

func (m *MockVisionClient) DetectItems(ctx context.Context, apiKey string, imageJPEG []byte) ([]string, error) {
	args := m.Called(ctx, apiKey, imageJPEG)
	return args.Get(0).([]string), args.Error(1)
}
