//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"triptailor-backend/internal/config"

	"github.com/google/wire"
)

// InitializeContainer creates a fully wired container.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
