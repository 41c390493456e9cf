// Package user implements registration and user CRUD, plus the
// best-effort side effects around them: search indexing and domain events.
package user

import (
	"context"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/events"
	"github.com/smarttransit/backend/internal/hash"
	"github.com/smarttransit/backend/internal/logging"
	"github.com/smarttransit/backend/internal/models"
	"github.com/smarttransit/backend/internal/repository"
	"github.com/smarttransit/backend/internal/service/search"
)

type Service struct {
	Users   *repository.UserRepo
	Refresh *repository.RefreshTokenRepo

	ES       *elasticsearch.Client
	ESIndex  string
	Producer *events.Producer
}

type CreateInput struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Email       string
	Password    string
	Age         int
	Role        models.Role
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	if err := s.checkUnique(ctx, in.Email, in.PhoneNumber, uuid.Nil); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	role := in.Role
	if role == "" {
		role = models.RoleCommuter
	}
	user := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Email:        in.Email,
		PasswordHash: pwHash,
		Age:          in.Age,
		Role:         role,
		IsActive:     true,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.indexUser(ctx, user)
	s.publish(ctx, "user_registered", user)
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.Users.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.Users.GetByID(ctx, id)
}

type UpdateInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Email       *string
	Password    *string
	Age         *int
	Role        *models.Role
	IsActive    *bool
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.User, error) {
	user, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	email, phone := user.Email, user.PhoneNumber
	if in.Email != nil {
		email = *in.Email
	}
	if in.PhoneNumber != nil {
		phone = *in.PhoneNumber
	}
	if email != user.Email || phone != user.PhoneNumber {
		if err := s.checkUnique(ctx, email, phone, user.ID); err != nil {
			return nil, err
		}
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	user.Email = email
	user.PhoneNumber = phone
	if in.Age != nil {
		user.Age = *in.Age
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != nil {
		pwHash, err := hash.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		user.PasswordHash = pwHash
	}

	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.indexUser(ctx, user)
	return user, nil
}

// Delete removes the user, their refresh token row and their search doc.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Refresh.DeleteByUser(ctx, id); err != nil {
		return err
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}

	l := logging.FromContext(ctx).With("svc", "user.delete", "user_id", id)
	if err := search.Delete(ctx, s.ES, s.ESIndex, id.String()); err != nil {
		l.Warn("search deindex failed", "error", err)
	}
	s.publish(ctx, "user_deleted", user)
	return nil
}

func (s *Service) checkUnique(ctx context.Context, email, phone string, selfID uuid.UUID) error {
	if existing, err := s.Users.GetByEmail(ctx, email); err != nil {
		return err
	} else if existing != nil && existing.ID != selfID {
		return apperr.Conflict("email already taken")
	}
	if existing, err := s.Users.GetByPhone(ctx, phone); err != nil {
		return err
	} else if existing != nil && existing.ID != selfID {
		return apperr.Conflict("phone number already taken")
	}
	return nil
}

func (s *Service) indexUser(ctx context.Context, u *models.User) {
	if err := search.Index(ctx, s.ES, s.ESIndex, search.DocFromUser(u)); err != nil {
		logging.FromContext(ctx).Warn("search index failed", "user_id", u.ID, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, eventType string, u *models.User) {
	event := map[string]any{
		"type":   eventType,
		"userID": u.ID.String(),
		"email":  u.Email,
	}
	if err := s.Producer.Publish(ctx, u.ID.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "type", eventType, "error", err)
	}
}
