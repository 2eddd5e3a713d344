package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/repository"
	"collaborative-pixelart/internal/repository/mocks"
	"collaborative-pixelart/internal/service"
)

// --- Register ---

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.UserRepository)
	authService, err := service.NewAuthService(mockUserRepo, "very-secret-key", 1)
	require.NoError(t, err, "创建 AuthService 不应失败")

	ctx := context.Background()
	username := "newbie"
	password := "StrongPass123"
	email := "newbie@example.com"

	mockUserRepo.On("FindByUsername", ctx, username).Return(nil, repository.ErrUserNotFound).Once()
	mockUserRepo.On("Save", ctx, mock.MatchedBy(func(user *domain.User) bool {
		return user.Username == username &&
			user.Email == email &&
			bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
	})).
		Run(func(args mock.Arguments) {
			userArg := args.Get(1).(*domain.User)
			userArg.ID = 5
			userArg.CreatedAt = time.Now().Add(-time.Second)
			userArg.UpdatedAt = userArg.CreatedAt
		}).
		Return(nil).
		Once()

	// Act
	registeredUser, err := authService.Register(ctx, username, password, email)

	// Assert
	require.NoError(t, err, "成功注册时不应有错误")
	require.NotNil(t, registeredUser)
	assert.Equal(t, uint(5), registeredUser.ID)
	assert.Equal(t, username, registeredUser.Username)
	assert.Empty(t, registeredUser.Password, "返回的用户密码应为空")
	assert.False(t, registeredUser.CreatedAt.IsZero(), "创建时间应被设置")

	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "secret", 1)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "existingUser").
		Return(&domain.User{ID: 10, Username: "existingUser"}, nil).Once()

	_, err := authService.Register(ctx, "existingUser", "password", "email@test.com")

	require.Error(t, err, "用户名已存在时应返回错误")
	assert.True(t, errors.Is(err, service.ErrRegistrationFailed))
	mockUserRepo.AssertExpectations(t)
	mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Register_SaveFails_DuplicateEntry(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "secret", 1)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "racer").Return(nil, repository.ErrUserNotFound).Once()
	mockUserRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrDuplicateEntry).Once()

	_, err := authService.Register(ctx, "racer", "password", "racer@test.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRegistrationFailed), "保存冲突时应返回 ErrRegistrationFailed")
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "secret", 1)

	_, err := authService.Register(context.Background(), "   ", "password", "")

	assert.True(t, errors.Is(err, service.ErrInvalidInput))
	mockUserRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

func TestNewAuthService_EmptySecret(t *testing.T) {
	_, err := service.NewAuthService(new(mocks.UserRepository), "", 1)
	assert.Error(t, err)
}

// --- Login ---

func TestAuthService_Login_Success(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "test-secret", 24)
	ctx := context.Background()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	mockUserRepo.On("FindByUsername", ctx, "testuser").
		Return(&domain.User{ID: 42, Username: "testuser", Password: string(hashedPassword)}, nil).Once()

	tokenString, err := authService.Login(ctx, "testuser", "password123")
	require.NoError(t, err)

	// token 中应带有 user_id，middleware.Auth 依赖它
	token, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "HS256", token.Method.Alg())

	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "test-secret", 24)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "nonexistent").Return(nil, repository.ErrUserNotFound).Once()

	token, err := authService.Login(ctx, "nonexistent", "password")

	require.Error(t, err)
	assert.Empty(t, token)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_IncorrectPassword(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "test-secret", 24)
	ctx := context.Background()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	mockUserRepo.On("FindByUsername", ctx, "testuser").
		Return(&domain.User{ID: 1, Username: "testuser", Password: string(hashedPassword)}, nil).Once()

	token, err := authService.Login(ctx, "testuser", "wrongpassword")

	require.Error(t, err)
	assert.Empty(t, token)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
	mockUserRepo.AssertExpectations(t)
}

// --- FindUserByID ---

func TestAuthService_FindUserByID(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := service.NewAuthService(mockUserRepo, "secret", 1)
	ctx := context.Background()

	mockUserRepo.On("FindByID", ctx, uint(3)).Return(&domain.User{ID: 3, Username: "ann", Password: "hash"}, nil).Once()
	mockUserRepo.On("FindByID", ctx, uint(4)).Return(nil, repository.ErrUserNotFound).Once()

	user, err := authService.FindUserByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Name())
	assert.Empty(t, user.Password, "不应返回密码哈希")

	_, err = authService.FindUserByID(ctx, 4)
	assert.True(t, errors.Is(err, service.ErrUserNotFound))

	mockUserRepo.AssertExpectations(t)
}
