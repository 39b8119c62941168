package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/pinshelf/pinshelf-server/internal/auth"
	"github.com/pinshelf/pinshelf-server/internal/config"
	"github.com/pinshelf/pinshelf-server/internal/logger"
)

// AuthKey is the PASETO symmetric key, kept under the data path.
type AuthKey []byte

// ProvideAuthKey reads the token key, creating one on first start.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("auth key: %w", err)
	}
	cfg.Auth.AccessTokenKey = key
	return AuthKey(key), nil
}

// ProvideTokenService mints and verifies owner tokens with the loaded key.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	tokens, err := auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
	if err != nil {
		return nil, err
	}
	do.MustInvoke[*logger.Logger](i).Debug("token service ready", "token_ttl", tokens.Duration())
	return tokens, nil
}
