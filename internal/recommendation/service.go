package recommendation

import (
	"context"
	"fmt"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	engine Engine
	users  UserStore
	logger *logger.Logger
}

// NewService creates a recommendation service backed by the user-similarity engine
func NewService(users UserStore, purchases PurchaseStore, catalog CatalogStore, log *logger.Logger) Service {
	return NewServiceWithEngine(NewUserSimilarityEngine(users, purchases, catalog, log), users, log)
}

// NewServiceWithEngine creates a recommendation service around an existing engine
func NewServiceWithEngine(engine Engine, users UserStore, log *logger.Logger) Service {
	return &service{
		engine: engine,
		users:  users,
		logger: log.WithComponent("recommendation-service"),
	}
}

func (s *service) EngineName() string {
	return s.engine.Name()
}

func (s *service) GetRecommendations(ctx context.Context, userID uuid.UUID) ([]*RecommendedBook, error) {
	s.logger.Info("Getting recommendations for user " + userID.String())

	// The engine cannot tell an unknown user from one without purchases
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to look up user " + userID.String() + ": " + err.Error())
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !exists {
		s.logger.Warn("Recommendations requested for unknown user " + userID.String())
		return nil, ErrUserNotFound
	}

	recommendations, err := s.engine.Recommend(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to generate recommendations for user " + userID.String() + " using engine '" + s.engine.Name() + "': " + err.Error())
		return nil, fmt.Errorf("failed to generate recommendations: %w", err)
	}

	if recommendations == nil {
		recommendations = make([]*RecommendedBook, 0)
	}

	s.logger.Info(fmt.Sprintf("Recommendations generated successfully for user %s: %d recommendations using engine '%s'",
		userID, len(recommendations), s.engine.Name()))

	return recommendations, nil
}
