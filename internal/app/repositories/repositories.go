package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	CommunityRepository  *CommunityRepository
	GameTypeRepository   *GameTypeRepository
	GameEventRepository  *GameEventRepository
	DiscussionRepository *DiscussionRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		TokenRepository:      NewTokenRepository(db),
		CommunityRepository:  NewCommunityRepository(db),
		GameTypeRepository:   NewGameTypeRepository(db),
		GameEventRepository:  NewGameEventRepository(db),
		DiscussionRepository: NewDiscussionRepository(db),
	}
}
