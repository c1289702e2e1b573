package provisioning

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/handlers"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/platform"
	"github.com/FACorreiaa/pos-templui/internal/pkg/cache"
)

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*platform.User, error) {
	args := m.Called(ctx, email, password, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.User), args.Error(1)
}

func (m *MockAccounts) DeleteUser(ctx context.Context, accessToken, userID string) error {
	return m.Called(ctx, accessToken, userID).Error(0)
}

type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) InsertProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(models.Profile), args.Error(1)
}

type MockBranches struct {
	mock.Mock
}

func (m *MockBranches) GetBranch(ctx context.Context, id uuid.UUID) (models.Branch, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Branch), args.Error(1)
}

func (m *MockBranches) ListBranches(ctx context.Context) ([]models.Branch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Branch), args.Error(1)
}

type panickingProfiles struct{}

func (panickingProfiles) InsertProfile(context.Context, models.Profile) (models.Profile, error) {
	panic("nil pool")
}

var operator = &models.Identity{UserID: uuid.NewString(), Role: models.RoleAdmin}

func validForm() Form {
	return Form{
		Email:        " New.Vendor@Farm.test ",
		Password:     "secret1",
		FullName:     "Nora Vendor",
		Role:         "vendor",
		IsVendor:     true,
		BusinessName: "Acme Shop",
		BusinessCode: " AB12CD34EF ",
	}
}

func TestNewBusinessCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := NewBusinessCode()
		require.NoError(t, err)
		assert.True(t, ValidBusinessCode(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)

	assert.False(t, ValidBusinessCode("abc"))
	assert.False(t, ValidBusinessCode("ab12cd34ef"))
	assert.False(t, ValidBusinessCode("AB12CD34E-"))
}

func TestForm_Validate(t *testing.T) {
	assert.NoError(t, validForm().Normalize().Validate())

	f := validForm()
	f.Email, f.Password, f.Role, f.BusinessName = "not-an-email", "123", "superuser", ""
	err := f.Normalize().Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.ErrorIs(t, err, models.ErrVendorName)
	for _, want := range []string{"email is not valid", "password must be at least 6", "role must be one of"} {
		assert.Contains(t, err.Error(), want)
	}

	f = validForm()
	f.IsVendor, f.BusinessName = false, ""
	assert.ErrorIs(t, f.Normalize().Validate(), models.ErrBusinessName)
}

func TestService_Provision(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates account then vendor profile", func(t *testing.T) {
		accounts, profiles := new(MockAccounts), new(MockProfiles)
		accounts.On("SignUp", ctx, "new.vendor@farm.test", "secret1", map[string]any{"role": "vendor", "full_name": "Nora Vendor"}).
			Return(&platform.User{ID: userID.String()}, nil).Once()
		profiles.On("InsertProfile", ctx, mock.MatchedBy(func(p models.Profile) bool {
			return p.UserID == userID && p.IsVendor && models.Deref(p.VendorBusinessName) == "Acme Shop" &&
				p.BusinessName == nil && p.BusinessCode == "AB12CD34EF" && p.Role == models.RoleVendor
		})).Return(models.Profile{ID: uuid.New(), UserID: userID, Email: "new.vendor@farm.test"}, nil).Once()

		res := NewService(accounts, profiles, new(MockBranches), false, nil, zap.NewNop()).Provision(ctx, operator, "tok", validForm())

		require.True(t, res.OK(), res.Err)
		assert.Equal(t, StageDone, res.Stage)
		assert.Equal(t, userID, res.Profile.UserID)
		accounts.AssertExpectations(t)
		profiles.AssertExpectations(t)
	})

	t.Run("profile failure after sign-up is reported not raised", func(t *testing.T) {
		accounts, profiles := new(MockAccounts), new(MockProfiles)
		accounts.On("SignUp", ctx, mock.Anything, mock.Anything, mock.Anything).Return(&platform.User{ID: userID.String()}, nil).Once()
		profiles.On("InsertProfile", ctx, mock.Anything).Return(models.Profile{}, models.ErrConflict).Once()

		var res Result
		assert.NotPanics(t, func() {
			res = NewService(accounts, profiles, new(MockBranches), false, nil, zap.NewNop()).Provision(ctx, operator, "tok", validForm())
		})

		assert.False(t, res.OK())
		assert.ErrorIs(t, res.Err, models.ErrConflict)
		assert.Equal(t, StageProfile, res.Stage)
		assert.True(t, res.Orphaned)
		assert.False(t, res.RolledBack)
		accounts.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rollback removes the orphaned account", func(t *testing.T) {
		accounts, profiles := new(MockAccounts), new(MockProfiles)
		accounts.On("SignUp", ctx, mock.Anything, mock.Anything, mock.Anything).Return(&platform.User{ID: userID.String()}, nil).Once()
		accounts.On("DeleteUser", ctx, "tok", userID.String()).Return(nil).Once()
		profiles.On("InsertProfile", ctx, mock.Anything).Return(models.Profile{}, errors.New("insert failed")).Once()

		res := NewService(accounts, profiles, new(MockBranches), true, nil, zap.NewNop()).Provision(ctx, operator, "tok", validForm())

		assert.Error(t, res.Err)
		assert.True(t, res.RolledBack)
		assert.False(t, res.Orphaned)
		accounts.AssertExpectations(t)
	})

	t.Run("sign-up failure skips the profile", func(t *testing.T) {
		accounts, profiles := new(MockAccounts), new(MockProfiles)
		accounts.On("SignUp", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &platform.APIError{Status: 422, Message: "User already registered"}).Once()

		res := NewService(accounts, profiles, new(MockBranches), false, nil, zap.NewNop()).Provision(ctx, operator, "tok", validForm())

		assert.Equal(t, StageSignUp, res.Stage)
		assert.False(t, res.Orphaned)
		assert.Contains(t, res.Err.Error(), "User already registered")
		profiles.AssertNotCalled(t, "InsertProfile", mock.Anything, mock.Anything)
	})

	t.Run("blank business code is generated", func(t *testing.T) {
		accounts, profiles := new(MockAccounts), new(MockProfiles)
		accounts.On("SignUp", ctx, mock.Anything, mock.Anything, mock.Anything).Return(&platform.User{ID: userID.String()}, nil).Once()
		profiles.On("InsertProfile", ctx, mock.MatchedBy(func(p models.Profile) bool {
			return ValidBusinessCode(p.BusinessCode)
		})).Return(models.Profile{UserID: userID}, nil).Once()

		f := validForm()
		f.BusinessCode = "  "
		res := NewService(accounts, profiles, new(MockBranches), false, nil, zap.NewNop()).Provision(ctx, operator, "tok", f)

		require.True(t, res.OK(), res.Err)
		accounts.AssertExpectations(t)
		profiles.AssertExpectations(t)
	})

	t.Run("edited business code is kept as typed", func(t *testing.T) {
		accounts, profiles := new(MockAccounts), new(MockProfiles)
		accounts.On("SignUp", ctx, mock.Anything, mock.Anything, mock.Anything).Return(&platform.User{ID: userID.String()}, nil).Once()
		profiles.On("InsertProfile", ctx, mock.MatchedBy(func(p models.Profile) bool {
			return p.BusinessCode == "SHOP-01"
		})).Return(models.Profile{UserID: userID}, nil).Once()

		f := validForm()
		f.BusinessCode = "SHOP-01"
		res := NewService(accounts, profiles, new(MockBranches), false, nil, zap.NewNop()).Provision(ctx, operator, "tok", f)

		require.True(t, res.OK(), res.Err)
		assert.Equal(t, StageDone, res.Stage)
		profiles.AssertExpectations(t)
	})

	t.Run("duplicate business code surfaces as a conflict", func(t *testing.T) {
		accounts, profiles := new(MockAccounts), new(MockProfiles)
		accounts.On("SignUp", ctx, mock.Anything, mock.Anything, mock.Anything).Return(&platform.User{ID: userID.String()}, nil).Once()
		profiles.On("InsertProfile", ctx, mock.Anything).Return(models.Profile{}, models.ErrConflict).Once()

		res := NewService(accounts, profiles, new(MockBranches), false, nil, zap.NewNop()).Provision(ctx, operator, "tok", validForm())

		assert.ErrorIs(t, res.Err, models.ErrConflict)
		assert.True(t, res.Orphaned)
	})

	t.Run("invalid form never reaches the platform", func(t *testing.T) {
		accounts := new(MockAccounts)
		f := validForm()
		f.Password = "123"

		res := NewService(accounts, new(MockProfiles), new(MockBranches), false, nil, zap.NewNop()).Provision(ctx, operator, "tok", f)

		assert.ErrorIs(t, res.Err, models.ErrValidation)
		assert.Equal(t, StageValidate, res.Stage)
		accounts.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		res := NewService(new(MockAccounts), new(MockProfiles), new(MockBranches), false, nil, zap.NewNop()).
			Provision(ctx, &models.Identity{UserID: "x", Role: models.RoleManager}, "tok", validForm())
		assert.ErrorIs(t, res.Err, models.ErrForbidden)
	})

	t.Run("branch name is stored on the profile", func(t *testing.T) {
		accounts, profiles, branches := new(MockAccounts), new(MockProfiles), new(MockBranches)
		branchID := uuid.New()
		branches.On("GetBranch", ctx, branchID).Return(models.Branch{ID: branchID, Name: "Harbour"}, nil).Once()
		accounts.On("SignUp", ctx, mock.Anything, mock.Anything, mock.Anything).Return(&platform.User{ID: userID.String()}, nil).Once()
		profiles.On("InsertProfile", ctx, mock.MatchedBy(func(p models.Profile) bool {
			return models.Deref(p.Branch) == "Harbour"
		})).Return(models.Profile{UserID: userID}, nil).Once()

		f := validForm()
		f.BranchID = branchID.String()
		res := NewService(accounts, profiles, branches, false, nil, zap.NewNop()).Provision(ctx, operator, "tok", f)
		require.NoError(t, res.Err)
		profiles.AssertExpectations(t)
	})

	t.Run("panic in a collaborator becomes an error", func(t *testing.T) {
		accounts := new(MockAccounts)
		accounts.On("SignUp", ctx, mock.Anything, mock.Anything, mock.Anything).Return(&platform.User{ID: userID.String()}, nil).Once()

		var res Result
		assert.NotPanics(t, func() {
			res = NewService(accounts, panickingProfiles{}, new(MockBranches), false, nil, zap.NewNop()).Provision(ctx, operator, "tok", validForm())
		})
		assert.Error(t, res.Err)
		assert.Equal(t, StageProfile, res.Stage)
	})
}

func TestHandler_RegenerateCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	branches := new(MockBranches)
	h := NewHandler(handlers.NewBaseHandler(zap.NewNop(), "30s"), nil, branches,
		cache.NewUnifiedCache[[]models.Branch](time.Minute, "branches", zap.NewNop()))
	r := gin.New()
	r.GET("/admin/users/new/code", h.RegenerateCode)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users/new/code", nil))

	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	code, ok := doc.Find("input#business_code").Attr("value")
	require.True(t, ok)
	assert.True(t, ValidBusinessCode(code))
}

func TestFailureMessage(t *testing.T) {
	assert.Contains(t, failureMessage(Result{Err: models.ErrConflict, Orphaned: true}), "has no profile")
	assert.Contains(t, failureMessage(Result{Err: models.ErrConflict, RolledBack: true}), "removed again")
	assert.Equal(t, "A record with these details already exists.", failureMessage(Result{Err: models.ErrConflict}))
}
