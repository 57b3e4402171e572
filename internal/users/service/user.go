package service

import (
	"context"
	"errors"

	userserrors "hostelbook/internal/users/errors"
	"hostelbook/internal/users/repository"
	"hostelbook/pkg/auth"
	"hostelbook/pkg/config"
	apperrors "hostelbook/pkg/errors"
	"hostelbook/pkg/model"
	"hostelbook/pkg/sanitizer"
	"hostelbook/pkg/validation"
)

const invalidCredentials = "Invalid email or password"

type HostelLookup interface {
	GetByID(ctx context.Context, id string) (*model.Hostel, error)
}

type TokenIssuer interface {
	Issue(p auth.Principal) (auth.Token, error)
}

// BookingReleaser frees whatever a student still holds before the account goes.
type BookingReleaser interface {
	ReleaseForStudent(ctx context.Context, studentID string) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Matches(hash, plain string) bool
}

// Session is the result of a successful login.
type Session struct {
	auth.Token
	User *model.User `json:"user"`
}

type UserService interface {
	Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*Session, error)
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, update *model.AdminUserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, actorID, id string) error
}

type userService struct {
	repo      repository.UserRepository
	hostels   HostelLookup
	bookings  BookingReleaser
	tokens    TokenIssuer
	passwords PasswordHasher
	validator *validation.Validator
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	hostels HostelLookup,
	bookings BookingReleaser,
	tokens TokenIssuer,
	passwords PasswordHasher,
	validator *validation.Validator,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		hostels:   hostels,
		bookings:  bookings,
		tokens:    tokens,
		passwords: passwords,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *userService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	req.FirstName = sanitizer.TrimAndNormalize(req.FirstName)
	req.LastName = sanitizer.TrimAndNormalize(req.LastName)
	req.Email = model.NormalizeEmail(req.Email)
	req.RegistrationNumber = sanitizer.TrimAndNormalize(req.RegistrationNumber)

	if err := s.validator.Check(req, "Invalid signup input"); err != nil {
		s.cfg.Log.Warn("Signup validation failed", "email", req.Email, "error", err)
		return nil, err
	}

	phone := sanitizer.NormalizePhone(req.PhoneNumber, s.cfg.PhoneDefaultRegion)
	if phone == "" {
		return nil, apperrors.Validation("Invalid signup input", map[string]any{
			"phoneNumber": "phoneNumber must be a valid phone number",
		})
	}

	if req.Role == model.RoleAdmin {
		if _, err := s.hostels.GetByID(ctx, req.HostelID); err != nil {
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				return nil, apperrors.Validation("Invalid signup input", map[string]any{
					"hostelId": "hostelId does not reference an existing hostel",
				})
			}
			return nil, err
		}
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		s.cfg.Log.Error("Failed to hash password", "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	identity := model.Identity{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: phone,
	}
	var user *model.User
	if req.Role == model.RoleAdmin {
		user, err = model.NewAdmin(identity, req.HostelID, hash)
	} else {
		user, err = model.NewStudent(identity, req.RegistrationNumber, hash)
	}
	if err != nil {
		return nil, apperrors.Validation("Invalid signup input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("User already exists with this email")
		}
		s.cfg.Log.Error("Failed to create user", "email", user.Email, "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User signed up", "id", user.ID, "role", user.Role)
	return user, nil
}

// Login answers unknown emails and wrong passwords with the same error.
func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*Session, error) {
	req.Email = model.NormalizeEmail(req.Email)
	if err := s.validator.Check(req, "Invalid login input"); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			s.cfg.Log.Warn("Login failed", "reason", "unknown email")
			return nil, apperrors.Unauthorized(invalidCredentials)
		}
		s.cfg.Log.Error("Failed to load user for login", "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if !s.passwords.Matches(user.PasswordHash, req.Password) {
		s.cfg.Log.Warn("Login failed", "reason", "password mismatch", "user_id", user.ID)
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	token, err := s.tokens.Issue(auth.Principal{
		UserID:   user.ID,
		Role:     user.Role,
		HostelID: user.HostelID(),
	})
	if err != nil {
		s.cfg.Log.Error("Failed to issue token", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	s.cfg.Log.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return &Session{Token: token, User: user}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.mapFindError(userID, err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.User, error) {
	if update == nil || update.IsEmpty() {
		return nil, apperrors.InvalidInput("No fields to update")
	}
	if err := s.validator.Check(update, "Invalid profile update"); err != nil {
		return nil, err
	}

	changes := repository.UserChanges{}
	if update.FirstName != nil {
		v := sanitizer.TrimAndNormalize(*update.FirstName)
		changes.FirstName = &v
	}
	if update.LastName != nil {
		v := sanitizer.TrimAndNormalize(*update.LastName)
		changes.LastName = &v
	}
	if update.PhoneNumber != nil {
		v := sanitizer.NormalizePhone(*update.PhoneNumber, s.cfg.PhoneDefaultRegion)
		if v == "" {
			return nil, apperrors.Validation("Invalid profile update", map[string]any{
				"phoneNumber": "phoneNumber must be a valid phone number",
			})
		}
		changes.PhoneNumber = &v
	}
	if update.ProfilePicture != nil {
		v := sanitizer.NormalizeURL(*update.ProfilePicture)
		changes.ProfilePicture = &v
	}
	if update.Password != nil {
		hash, err := s.passwords.Hash(*update.Password)
		if err != nil {
			s.cfg.Log.Error("Failed to hash password", "user_id", userID, "error", err)
			return nil, apperrors.Internal("Failed to update profile", err)
		}
		changes.PasswordHash = &hash
	}

	user, err := s.repo.Update(ctx, userID, changes)
	if err != nil {
		return nil, s.mapFindError(userID, err)
	}

	s.cfg.Log.Info("Profile updated successfully", "user_id", userID)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list users", "error", err)
		return nil, apperrors.Internal("Failed to retrieve users", err)
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapFindError(id, err)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, update *model.AdminUserUpdate) (*model.User, error) {
	if update == nil || update.IsEmpty() {
		return nil, apperrors.InvalidInput("No fields to update")
	}
	if err := s.validator.Check(update, "Invalid user update"); err != nil {
		return nil, err
	}

	changes := repository.UserChanges{}
	if update.FirstName != nil {
		v := sanitizer.TrimAndNormalize(*update.FirstName)
		changes.FirstName = &v
	}
	if update.LastName != nil {
		v := sanitizer.TrimAndNormalize(*update.LastName)
		changes.LastName = &v
	}
	if update.PhoneNumber != nil {
		v := sanitizer.NormalizePhone(*update.PhoneNumber, s.cfg.PhoneDefaultRegion)
		if v == "" {
			return nil, apperrors.Validation("Invalid user update", map[string]any{
				"phoneNumber": "phoneNumber must be a valid phone number",
			})
		}
		changes.PhoneNumber = &v
	}

	user, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, s.mapFindError(id, err)
	}

	s.cfg.Log.Info("User updated by admin", "user_id", id)
	return user, nil
}

// DeleteUser removes the account id on behalf of actorID. A student's active
// booking is released first so the room does not stay occupied.
func (s *userService) DeleteUser(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return apperrors.InvalidInput("You cannot delete your own account")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapFindError(id, err)
	}

	if user.IsStudent() {
		if err := s.bookings.ReleaseForStudent(ctx, id); err != nil {
			s.cfg.Log.Warn("User delete blocked by booking release", "user_id", id, "error", err)
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapFindError(id, err)
	}

	s.cfg.Log.Info("User deleted", "user_id", id, "role", user.Role, "deleted_by", actorID)
	return nil
}

func (s *userService) mapFindError(userID string, err error) error {
	switch {
	case errors.Is(err, userserrors.ErrNotFound):
		return apperrors.NotFound("User")
	case errors.Is(err, userserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid user ID format")
	default:
		s.cfg.Log.Error("Failed to load user", "user_id", userID, "error", err)
		return apperrors.Internal("Failed to load user", err)
	}
}
