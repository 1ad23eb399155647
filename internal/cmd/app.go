package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/bingsoohouse/storefront-client/internal/config"
	"github.com/bingsoohouse/storefront-client/internal/core/domain"
	"github.com/bingsoohouse/storefront-client/internal/core/ports"
	"github.com/bingsoohouse/storefront-client/internal/core/service"
	"github.com/bingsoohouse/storefront-client/internal/infrastructure/backend"
	"github.com/bingsoohouse/storefront-client/internal/infrastructure/identity"
	"github.com/bingsoohouse/storefront-client/internal/infrastructure/navigator"
	"github.com/bingsoohouse/storefront-client/internal/infrastructure/store"
	"github.com/bingsoohouse/storefront-client/pkg/logger"
)

// app is the wired dependency graph behind every CLI command.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	session  ports.SessionService
	cart     ports.CartService
	auth     ports.AuthAPI
	provider *identity.CallbackProvider
}

// newApp loads configuration, wires all adapters, and starts the identity
// callback listener.
func newApp(ctx context.Context) (*app, error) {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	var tokenStore ports.TokenStore
	switch cfg.Store.Backend {
	case "redis":
		client, err := store.Connect(ctx, store.RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		tokenStore = store.NewRedisStore(client, cfg.Store.TerminalID, cfg.Store.SessionTTL)
	case "file":
		fs, err := store.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		tokenStore = fs
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	api := backend.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, log)

	provider := identity.New(identity.Config{
		ListenAddr:  cfg.Identity.CallbackAddr,
		SignInURL:   cfg.Identity.SignInURL,
		RevokeURL:   cfg.Identity.RevokeURL,
		OpenBrowser: openBrowser,
	}, log)
	if err := provider.Start(ctx); err != nil {
		return nil, err
	}

	nav := navigator.NewMemory(domain.RouteLanding, log)
	reconciler := service.NewReconciler(api, tokenStore, provider, nav, log,
		service.WithTokenInspector(backend.TokenExpired))
	cart := service.NewCartSynchronizer(api, reconciler, log)

	return &app{
		cfg:      cfg,
		log:      log,
		session:  reconciler,
		cart:     cart,
		auth:     api,
		provider: provider,
	}, nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

func describe(sess domain.Session) string {
	switch sess.Status {
	case domain.StatusAuthenticated:
		return fmt.Sprintf("signed in as %s (%s)", sess.User.Username, sess.User.Role)
	case domain.StatusErrorBackoff:
		return fmt.Sprintf("sign-in unresolved: %s", sess.LastError)
	case domain.StatusPending:
		return "sign-in in progress"
	default:
		if sess.LastError != "" {
			return fmt.Sprintf("signed out (%s)", sess.LastError)
		}
		return "signed out"
	}
}
