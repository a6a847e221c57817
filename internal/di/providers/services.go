package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookradio/bookradio-server/internal/auth"
	"github.com/bookradio/bookradio-server/internal/config"
	"github.com/bookradio/bookradio-server/internal/logger"
	"github.com/bookradio/bookradio-server/internal/mailer"
	"github.com/bookradio/bookradio-server/internal/service"
	"github.com/bookradio/bookradio-server/internal/validation"
)

// ProvideMailer provides the outbound mailer. Falls back to a no-op mailer
// when SMTP is not configured so feedback endpoints degrade instead of
// failing at startup.
func ProvideMailer(i do.Injector) (mailer.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.SMTP.Host == "" {
		log.Warn("SMTP not configured, feedback mail delivery disabled")
		return mailer.Noop{}, nil
	}

	return mailer.NewSMTP(cfg.SMTP, log.Logger), nil
}

// ProvideCatalogService provides the catalog query service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, validator, cfg.Catalog, log.Logger), nil
}

// ProvideAuthService provides the account and profile service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	avatarStorage := do.MustInvoke[*AvatarStorage](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, avatarStorage.Storage, validator, log.Logger), nil
}

// ProvideFeedbackService provides the feedback delivery service.
func ProvideFeedbackService(i do.Injector) (*service.FeedbackService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	m := do.MustInvoke[mailer.Mailer](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedbackService(m, validator, cfg.SMTP.FeedbackTo, log.Logger), nil
}
