package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/notify"
)

type Service interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type service struct {
	repo   Repository
	sender notify.Sender
}

func NewService(repo Repository, sender notify.Sender) Service {
	return &service{repo: repo, sender: sender}
}

func (s *service) Register(ctx context.Context, name, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	u := &User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleCustomer,
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	// Best-effort welcome mail, never fails registration.
	if err := s.sender.SendWelcome(ctx, u.Email, u.Name); err != nil {
		log.Warn().Err(err).Str("email", u.Email).Msg("service: failed to send welcome email")
	}

	log.Info().Stringer("user_id", u.ID).Msg("service: user registered")
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			// Do not reveal whether the email exists.
			return nil, apperr.Unauthorized("invalid credentials")
		}
		log.Error().Err(err).Msg("service: failed to fetch user by email")
		return nil, fmt.Errorf("service: failed to fetch user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if u.Status != StatusActive {
		log.Warn().Stringer("user_id", u.ID).Str("status", string(u.Status)).Msg("service: login attempt on non-active account")
		return nil, apperr.Forbidden("account is " + string(u.Status))
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to fetch user by id")
		return nil, fmt.Errorf("service: failed to fetch user by id: %w", err)
	}
	return u, nil
}
