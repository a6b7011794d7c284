// Package seed creates the default game types and London borough
// communities on startup.
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appRepos "github.com/kickabout/kickabout/internal/app/repositories"
)

type gameTypeSeed struct {
	name       string
	slug       string
	maxPlayers int
}

var defaultGameTypes = []gameTypeSeed{
	{name: "5-a-side", slug: "5-a-side", maxPlayers: 10},
	{name: "7-a-side", slug: "7-a-side", maxPlayers: 14},
	{name: "11-a-side", slug: "11-a-side", maxPlayers: 22},
	{name: "Futsal", slug: "futsal", maxPlayers: 10},
	{name: "Casual kickabout", slug: "casual-kickabout", maxPlayers: 20},
}

type boroughSeed struct {
	name      string
	latitude  float64
	longitude float64
}

// Central London boroughs get pre-created so location assignment has
// communities to match against from day one. Anything else is created
// on demand by the geocoder flow.
var defaultBoroughs = []boroughSeed{
	{name: "Westminster", latitude: 51.4975, longitude: -0.1357},
	{name: "Camden", latitude: 51.5290, longitude: -0.1255},
	{name: "Hackney", latitude: 51.5450, longitude: -0.0553},
	{name: "Islington", latitude: 51.5416, longitude: -0.1022},
	{name: "Lambeth", latitude: 51.4607, longitude: -0.1163},
	{name: "Southwark", latitude: 51.5035, longitude: -0.0804},
	{name: "Tower Hamlets", latitude: 51.5203, longitude: -0.0293},
	{name: "Greenwich", latitude: 51.4892, longitude: 0.0648},
	{name: "Wandsworth", latitude: 51.4567, longitude: -0.1910},
	{name: "Haringey", latitude: 51.6000, longitude: -0.1119},
}

// CreateDefaultData creates the default game types and borough
// communities if they don't exist.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	communityRepo := appRepos.NewCommunityRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (game types/communities)...")
	var finalErr error

	for _, gt := range defaultGameTypes {
		_, err := dbPool.Exec(ctx, `
			INSERT INTO game_types (name, slug, default_max_players)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO NOTHING`,
			gt.name, gt.slug, gt.maxPlayers)
		if err != nil {
			lgr.Error().Err(err).Str("slug", gt.slug).Msg("Error creating default game type")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, b := range defaultBoroughs {
		lat := b.latitude
		lon := b.longitude
		_, err := communityRepo.FindOrCreate(ctx, b.name, "London", "England", "United Kingdom", &lat, &lon)
		if err != nil {
			lgr.Error().Err(err).Str("borough", b.name).Msg("Error creating default borough community")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
