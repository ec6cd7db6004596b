package service

import (
	"context"
	"errors"
	"strings"

	"podapi/internal/model"
	"podapi/internal/repository"
)

// DatabaseConnectionInput describes an external system to register.
type DatabaseConnectionInput struct {
	SystemID    string
	Username    string
	Password    string
	IPAddress   string
	Port        int
	ServiceName string
}

// DatabaseConnectionService registers external database credentials.
type DatabaseConnectionService interface {
	Register(ctx context.Context, in DatabaseConnectionInput) (*model.DatabaseConnection, error)
}

type databaseConnectionService struct {
	repo repository.DatabaseConnectionRepository
}

func NewDatabaseConnectionService(repo repository.DatabaseConnectionRepository) DatabaseConnectionService {
	return &databaseConnectionService{repo: repo}
}

func (s *databaseConnectionService) Register(ctx context.Context, in DatabaseConnectionInput) (*model.DatabaseConnection, error) {
	systemID := strings.TrimSpace(in.SystemID)
	exists, err := s.repo.ExistsBySystemID(ctx, systemID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSystemIDExists
	}

	c, err := s.repo.Create(ctx, &model.DatabaseConnection{
		SystemID:    systemID,
		Username:    in.Username,
		Password:    in.Password,
		IPAddress:   strings.TrimSpace(in.IPAddress),
		Port:        in.Port,
		ServiceName: in.ServiceName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSystemIDExists
		}
		return nil, err
	}
	return c, nil
}
