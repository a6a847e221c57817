package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookradio/bookradio-server/internal/config"
	"github.com/bookradio/bookradio-server/internal/logger"
	"github.com/bookradio/bookradio-server/internal/media/avatars"
)

// AvatarStorage wraps the on-disk avatar storage.
type AvatarStorage struct {
	*avatars.Storage
}

// ProvideAvatarStorage provides the avatar upload storage.
func ProvideAvatarStorage(i do.Injector) (*AvatarStorage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := avatars.NewStorage(cfg.Uploads.AvatarPath)
	if err != nil {
		return nil, err
	}

	log.Info("Avatar storage ready", "path", cfg.Uploads.AvatarPath)

	return &AvatarStorage{Storage: storage}, nil
}
