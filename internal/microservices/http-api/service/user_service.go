package service

import (
	"context"

	"reviewhub/internal/apperr"
	"reviewhub/internal/config"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/validators"
)

type UserService interface {
	List(ctx context.Context, actor policy.Actor, search string, page, pageSize int) ([]models.User, int64, error)
	Create(ctx context.Context, actor policy.Actor, req dto.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, actor policy.Actor, username string) (*models.User, error)
	Update(ctx context.Context, actor policy.Actor, username string, req dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor policy.Actor, username string) error

	// Me and UpdateMe work on the caller's own profile; role is read-only there.
	Me(ctx context.Context, actor policy.Actor) (*models.User, error)
	UpdateMe(ctx context.Context, actor policy.Actor, req dto.UpdateUserRequest) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	settings config.Settings
}

func NewUserService(userRepo repository.UserRepository, settings config.Settings) UserService {
	return &userService{userRepo: userRepo, settings: settings}
}

func (s *userService) List(ctx context.Context, actor policy.Actor, search string, page, pageSize int) ([]models.User, int64, error) {
	if err := policy.CanPerform(actor, policy.ActionList, policy.On(policy.ResourceUser)).Err(); err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return users, total, nil
}

func (s *userService) Create(ctx context.Context, actor policy.Actor, req dto.CreateUserRequest) (*models.User, error) {
	if err := policy.CanPerform(actor, policy.ActionCreate, policy.On(policy.ResourceUser)).Err(); err != nil {
		return nil, err
	}
	user := req.ToModel()
	if err := s.validate(ctx, &user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict(MsgIdentityTaken)
		}
		return nil, apperr.Internal(err)
	}
	return &user, nil
}

func (s *userService) Get(ctx context.Context, actor policy.Actor, username string) (*models.User, error) {
	if err := policy.CanPerform(actor, policy.ActionRetrieve, policy.On(policy.ResourceUser)).Err(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "User not found.")
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor policy.Actor, username string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := policy.CanPerform(actor, policy.ActionUpdate, policy.On(policy.ResourceUser)).Err(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "User not found.")
	}
	return s.apply(ctx, user, req, policy.CanChangeRole(actor, policy.ResourceUser))
}

func (s *userService) Delete(ctx context.Context, actor policy.Actor, username string) error {
	if err := policy.CanPerform(actor, policy.ActionDelete, policy.On(policy.ResourceUser)).Err(); err != nil {
		return err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return notFoundOr(err, "User not found.")
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return notFoundOr(err, "User not found.")
	}
	return nil
}

func (s *userService) Me(ctx context.Context, actor policy.Actor) (*models.User, error) {
	if err := policy.CanPerform(actor, policy.ActionRetrieve, policy.On(policy.ResourceMe)).Err(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "User not found.")
	}
	return user, nil
}

func (s *userService) UpdateMe(ctx context.Context, actor policy.Actor, req dto.UpdateUserRequest) (*models.User, error) {
	if err := policy.CanPerform(actor, policy.ActionUpdate, policy.On(policy.ResourceMe)).Err(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "User not found.")
	}
	return s.apply(ctx, user, req, policy.CanChangeRole(actor, policy.ResourceMe))
}

func (s *userService) apply(ctx context.Context, user *models.User, req dto.UpdateUserRequest, allowRole bool) (*models.User, error) {
	req.ApplyTo(user, allowRole)
	if err := s.validate(ctx, user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict(MsgIdentityTaken)
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// validate checks the username rules and that username and email are free
// for anyone other than user itself.
func (s *userService) validate(ctx context.Context, user *models.User) error {
	if err := validators.ValidateUsername(user.Username, s.settings.ReservedUsernames); err != nil {
		return err
	}
	if !user.Role.Valid() {
		return apperr.ValidationField("role", "Must be one of: user moderator admin.")
	}

	details := map[string][]string{}
	other, err := s.userRepo.FindByUsername(ctx, user.Username)
	switch {
	case err == nil && other.ID != user.ID:
		details["username"] = []string{"A user with that username already exists."}
	case err != nil && !isNotFound(err):
		return apperr.Internal(err)
	}
	other, err = s.userRepo.FindByEmail(ctx, user.Email)
	switch {
	case err == nil && other.ID != user.ID:
		details["email"] = []string{"A user with that email already exists."}
	case err != nil && !isNotFound(err):
		return apperr.Internal(err)
	}
	if len(details) > 0 {
		return apperr.ValidationDetails(details)
	}
	return nil
}
