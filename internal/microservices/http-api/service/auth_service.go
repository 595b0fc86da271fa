package service

import (
	"context"
	"fmt"
	"log/slog"

	"reviewhub/internal/apperr"
	"reviewhub/internal/config"
	"reviewhub/internal/mailer"
	"reviewhub/internal/middleware/auth"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/validators"
)

const confirmationSubject = "ReviewHub Confirmation Code"

type AuthService interface {
	// Signup finds or creates the (username, email) user and mails a fresh code.
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error)
	// IssueToken exchanges a confirmation code for an access token. Every
	// call spends the outstanding code, whether or not it matched.
	IssueToken(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
	// Authenticate resolves a bearer token to the current user record.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *TokenIssuer
	mail     mailer.Mailer
	settings config.Settings
	log      *slog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *TokenIssuer,
	mail mailer.Mailer,
	settings config.Settings,
	log *slog.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		mail:     mail,
		settings: settings,
		log:      log,
	}
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	if err := validators.ValidateUsername(req.Username, s.settings.ReservedUsernames); err != nil {
		return nil, err
	}

	user, err := s.findOrCreate(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}

	code, err := GenerateCode(s.settings.CodeAlphabet, s.settings.CodeLength)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("generate code: %w", err))
	}
	hash, err := auth.HashCode(code)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash code: %w", err))
	}
	// persisted before sending, so a failed delivery can be retried by signing up again
	if err := s.userRepo.IssueCode(ctx, user.ID, hash); err != nil {
		return nil, apperr.Internal(fmt.Errorf("issue code: %w", err))
	}

	msg := mailer.Message{
		From:    s.settings.FromEmail,
		To:      user.Email,
		Subject: confirmationSubject,
		Body:    fmt.Sprintf("Confirmation code for user %q: %s", user.Username, code),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.ErrorContext(ctx, "failed to send confirmation code",
			slog.String("username", user.Username),
			slog.String("email", user.Email),
			slog.Any("error", err))
		return nil, apperr.Unavailable(MsgMailUndelivered).WithCause(err)
	}

	return &dto.SignupResponse{Username: user.Username, Email: user.Email}, nil
}

func (s *authService) findOrCreate(ctx context.Context, username, email string) (*models.User, error) {
	byName, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !isNotFound(err) {
		return nil, apperr.Internal(err)
	}
	byEmail, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !isNotFound(err) {
		return nil, apperr.Internal(err)
	}

	switch {
	case byName != nil && byEmail != nil && byName.ID == byEmail.ID:
		return byName, nil
	case byName != nil || byEmail != nil:
		return nil, apperr.Conflict(MsgIdentityTaken)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Role:      models.RoleUser,
		CodeState: models.CodeNone,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict(MsgIdentityTaken)
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func (s *authService) IssueToken(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, notFoundOr(err, "User not found.")
	}

	if user.CodeState == models.CodeIssued && auth.VerifyCode(user.CodeHash, req.ConfirmationCode) {
		spent, err := s.userRepo.ConsumeCode(ctx, user.ID, user.CodeHash)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if spent {
			token, err := s.tokens.Issue(user)
			if err != nil {
				return nil, apperr.Internal(fmt.Errorf("sign token: %w", err))
			}
			return &dto.TokenResponse{Token: token}, nil
		}
		// a concurrent attempt consumed it first
	} else if err := s.userRepo.InvalidateCode(ctx, user.ID); err != nil {
		return nil, apperr.Internal(err)
	}

	return nil, apperr.ValidationField("confirmation_code", MsgCodeInvalid)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthenticated("Given token not valid for any token type.").WithCause(err)
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthenticated("Token contained no recognizable user identification.")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthenticated("User not found.")
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}
