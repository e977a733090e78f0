package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"taskpulse/internal/auth"
	"taskpulse/internal/handler"
	"taskpulse/internal/model"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users := args.Get(0)
	if users == nil {
		return nil, args.Error(1)
	}
	return users.([]model.User), args.Error(1)
}

func setupTest() (*gin.Engine, *MockUserRepository, *auth.TokenManager) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockUserRepository)
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)
	userHandler := handler.NewUserHandler(mockRepo, tokens)

	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	return r, mockRepo, tokens
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupTest()

	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	// Act
	resp := postJSON(router, "/register", gin.H{
		"email":    "Test@Example.com",
		"name":     "Test User",
		"password": "secret123",
	})

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), "test@example.com")
	mockRepo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupTest()

	existing := &model.User{ID: 1, Email: "test@example.com"}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(existing, nil)

	// Act
	resp := postJSON(router, "/register", gin.H{
		"email":    "test@example.com",
		"name":     "Test User",
		"password": "secret123",
	})

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestRegister_InvalidInput(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupTest()

	// Act
	resp := postJSON(router, "/register", gin.H{
		"email":    "not-an-email",
		"name":     "T",
		"password": "123",
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockRepo.AssertNotCalled(t, "FindByEmail")
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	router, mockRepo, tokens := setupTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	user := &model.User{ID: 7, Email: "test@example.com", Name: "Test User", HashedPassword: string(hash)}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	// Act
	resp := postJSON(router, "/login", gin.H{
		"email":    "test@example.com",
		"password": "secret123",
	})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)

	userID, err := tokens.Parse(body.Token)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestLogin_WrongPassword(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	user := &model.User{ID: 7, Email: "test@example.com", HashedPassword: string(hash)}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	// Act
	resp := postJSON(router, "/login", gin.H{
		"email":    "test@example.com",
		"password": "wrong-password",
	})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupTest()

	mockRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	// Act
	resp := postJSON(router, "/login", gin.H{
		"email":    "ghost@example.com",
		"password": "secret123",
	})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
