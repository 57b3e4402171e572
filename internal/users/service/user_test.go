package service

import (
	"context"
	"testing"
	"time"

	userserrors "hostelbook/internal/users/errors"
	"hostelbook/internal/users/repository"
	"hostelbook/pkg/auth"
	"hostelbook/pkg/config"
	apperrors "hostelbook/pkg/errors"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/model"
	"hostelbook/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byID map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range f.byID {
		if u.Email == user.Email {
			return userserrors.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID().Hex()
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, userserrors.ErrInvalidID
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, id string, c repository.UserChanges) (*model.User, error) {
	u, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.FirstName != nil {
		u.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		u.LastName = *c.LastName
	}
	if c.PhoneNumber != nil {
		u.PhoneNumber = *c.PhoneNumber
	}
	if c.ProfilePicture != nil {
		u.ProfilePicture = *c.ProfilePicture
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	return u, nil
}

func (f *fakeUserRepo) FindAll(context.Context) ([]*model.User, error) {
	users := make([]*model.User, 0, len(f.byID))
	for _, u := range f.byID {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, err := f.FindByID(ctx, id); err != nil {
		return err
	}
	delete(f.byID, id)
	return nil
}

// fakeReleaser records which students had their bookings released.
type fakeReleaser struct {
	released []string
	err      error
}

func (f *fakeReleaser) ReleaseForStudent(_ context.Context, studentID string) error {
	if f.err != nil {
		return f.err
	}
	f.released = append(f.released, studentID)
	return nil
}

type fakeHostels struct {
	ids map[string]bool
}

func (f fakeHostels) GetByID(_ context.Context, id string) (*model.Hostel, error) {
	if !f.ids[id] {
		return nil, apperrors.NotFound("Hostel")
	}
	return &model.Hostel{ID: id, Name: "Unity Hall"}, nil
}

type fixture struct {
	svc      UserService
	repo     *fakeUserRepo
	bookings *fakeReleaser
	tokens   *auth.TokenManager
	hostelID string
}

func newFixture() *fixture {
	log := logger.Discard()
	hostelID := primitive.NewObjectID().Hex()
	repo := newFakeUserRepo()
	bookings := &fakeReleaser{}
	tokens := auth.NewTokenManager("users-test-secret-0123456789abcdef", time.Hour)
	cfg := &config.Config{Log: log, PhoneDefaultRegion: "US"}
	svc := NewUserService(
		repo,
		fakeHostels{ids: map[string]bool{hostelID: true}},
		bookings,
		tokens,
		auth.NewPasswordHasher(bcrypt.MinCost),
		validation.New(log),
		cfg,
	)
	return &fixture{svc: svc, repo: repo, bookings: bookings, tokens: tokens, hostelID: hostelID}
}

func studentSignup() *model.SignupRequest {
	return &model.SignupRequest{
		FirstName:          " Ada ",
		LastName:           "Lovelace",
		Email:              "Ada@Example.com ",
		PhoneNumber:        "(650) 253-0000",
		Password:           "secret123",
		Role:               model.RoleStudent,
		RegistrationNumber: "REG-001",
	}
}

func TestSignup_Student(t *testing.T) {
	f := newFixture()

	user, err := f.svc.Signup(context.Background(), studentSignup())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "+16502530000", user.PhoneNumber)
	assert.True(t, user.IsStudent())
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, studentSignup())
	require.NoError(t, err)

	_, err = f.svc.Signup(ctx, studentSignup())
	require.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "got %v", err)
	assert.Equal(t, "User already exists with this email", apperrors.AsAppError(err).Message)
}

func TestSignup_Admin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := studentSignup()
	req.Role = model.RoleAdmin
	req.RegistrationNumber = ""
	req.HostelID = f.hostelID

	user, err := f.svc.Signup(ctx, req)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, f.hostelID, user.HostelID())

	unknown := studentSignup()
	unknown.Email = "other@example.com"
	unknown.Role = model.RoleAdmin
	unknown.HostelID = primitive.NewObjectID().Hex()
	_, err = f.svc.Signup(ctx, unknown)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
}

func TestSignup_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.SignupRequest)
	}{
		{"missing registration number", func(r *model.SignupRequest) { r.RegistrationNumber = "" }},
		{"bad email", func(r *model.SignupRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *model.SignupRequest) { r.Password = "abc" }},
		{"unknown role", func(r *model.SignupRequest) { r.Role = "warden" }},
		{"unparseable phone", func(r *model.SignupRequest) { r.PhoneNumber = "call me maybe" }},
		{"admin without hostel", func(r *model.SignupRequest) { r.Role = model.RoleAdmin }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := studentSignup()
			tt.mutate(req)

			_, err := f.svc.Signup(context.Background(), req)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
			assert.Empty(t, f.repo.byID)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, studentSignup())
	require.NoError(t, err)

	session, err := f.svc.Login(ctx, &model.LoginRequest{Email: "ADA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)

	principal, err := f.tokens.Verify(session.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, model.RoleStudent, principal.Role)
	assert.Empty(t, principal.HostelID)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, studentSignup())
	require.NoError(t, err)

	wrongPassword, err := f.svc.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "nope-nope"})
	assert.Nil(t, wrongPassword)
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized), "got %v", err)
	passwordMsg := apperrors.AsAppError(err).Message

	_, err = f.svc.Login(ctx, &model.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized), "got %v", err)
	assert.Equal(t, passwordMsg, apperrors.AsAppError(err).Message)

	_, err = f.svc.Login(ctx, &model.LoginRequest{Email: "", Password: ""})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, studentSignup())
	require.NoError(t, err)

	first := "  Augusta  "
	password := "new-secret"
	updated, err := f.svc.UpdateProfile(ctx, user.ID, &model.ProfileUpdate{FirstName: &first, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)

	_, err = f.svc.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "new-secret"})
	assert.NoError(t, err)
}

func TestUpdateProfile_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, studentSignup())
	require.NoError(t, err)

	_, err = f.svc.UpdateProfile(ctx, user.ID, &model.ProfileUpdate{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "got %v", err)

	badPhone := "12"
	_, err = f.svc.UpdateProfile(ctx, user.ID, &model.ProfileUpdate{PhoneNumber: &badPhone})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)

	name := "Grace"
	_, err = f.svc.UpdateProfile(ctx, primitive.NewObjectID().Hex(), &model.ProfileUpdate{FirstName: &name})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "got %v", err)
}

func TestGetProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.svc.Signup(ctx, studentSignup())
	require.NoError(t, err)

	got, err := f.svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = f.svc.GetProfile(ctx, "not-an-id")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "got %v", err)
}

func (f *fixture) signupAdmin(t *testing.T) *model.User {
	t.Helper()
	req := studentSignup()
	req.Email = "warden@example.com"
	req.Role = model.RoleAdmin
	req.RegistrationNumber = ""
	req.HostelID = f.hostelID
	admin, err := f.svc.Signup(context.Background(), req)
	require.NoError(t, err)
	return admin
}

func TestListAndGetUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	student, err := f.svc.Signup(ctx, studentSignup())
	require.NoError(t, err)
	f.signupAdmin(t)

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	got, err := f.svc.GetUser(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	_, err = f.svc.GetUser(ctx, primitive.NewObjectID().Hex())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "got %v", err)
	_, err = f.svc.GetUser(ctx, "not-an-id")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "got %v", err)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	student, err := f.svc.Signup(ctx, studentSignup())
	require.NoError(t, err)

	last := " Byron "
	phone := "+1 650 253 0001"
	updated, err := f.svc.UpdateUser(ctx, student.ID, &model.AdminUserUpdate{LastName: &last, PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "Byron", updated.LastName)
	assert.Equal(t, "+16502530001", updated.PhoneNumber)

	_, err = f.svc.UpdateUser(ctx, student.ID, &model.AdminUserUpdate{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "got %v", err)

	badPhone := "12"
	_, err = f.svc.UpdateUser(ctx, student.ID, &model.AdminUserUpdate{PhoneNumber: &badPhone})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)

	_, err = f.svc.UpdateUser(ctx, primitive.NewObjectID().Hex(), &model.AdminUserUpdate{LastName: &last})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "got %v", err)
}

func TestDeleteUser_StudentReleasesBookingFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	admin := f.signupAdmin(t)
	student, err := f.svc.Signup(ctx, studentSignup())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteUser(ctx, admin.ID, student.ID))

	assert.Equal(t, []string{student.ID}, f.bookings.released)
	_, err = f.svc.GetUser(ctx, student.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "got %v", err)
}

func TestDeleteUser_ReleaseFailureKeepsAccount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	admin := f.signupAdmin(t)
	student, err := f.svc.Signup(ctx, studentSignup())
	require.NoError(t, err)
	f.bookings.err = apperrors.Conflict("Room is being booked by another request. Please try again.")

	err = f.svc.DeleteUser(ctx, admin.ID, student.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "got %v", err)

	_, err = f.svc.GetUser(ctx, student.ID)
	assert.NoError(t, err)
}

func TestDeleteUser_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	admin := f.signupAdmin(t)
	other := studentSignup()
	other.Email = "deputy@example.com"
	other.Role = model.RoleAdmin
	other.RegistrationNumber = ""
	other.HostelID = f.hostelID
	deputy, err := f.svc.Signup(ctx, other)
	require.NoError(t, err)

	err = f.svc.DeleteUser(ctx, admin.ID, admin.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "got %v", err)

	require.NoError(t, f.svc.DeleteUser(ctx, admin.ID, deputy.ID))
	assert.Empty(t, f.bookings.released, "admins hold no bookings")

	err = f.svc.DeleteUser(ctx, admin.ID, deputy.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "got %v", err)
}
