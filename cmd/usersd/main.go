package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-users"
	"github.com/goliatone/go-users/config"
	"github.com/goliatone/go-users/middleware/authgate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("usersd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		log.Fatal(err)
	}

	if err := cfg.Raw().Validate(); err != nil {
		log.Fatal(err)
	}

	bunDB, err := setupPersistence(ctx, cfg.Raw(), lgr)
	if err != nil {
		log.Fatal(err)
	}

	repo := users.NewRepositoryManager(bunDB)
	repo.MustValidate()

	provider := users.NewUserProvider(repo).
		WithLogger(lgr.GetLogger("provider"))

	authCfg := cfg.Raw().GetAuth()
	auther, err := users.NewAuthenticator(provider, authCfg)
	if err != nil {
		log.Fatal(err)
	}
	auther.WithLogger(lgr.GetLogger("auth"))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(lgr.GetLogger("router"))

	registerRoutes(srv.Router(), repo, auther, provider, authCfg, lgr)

	go func() {
		if err := srv.Serve(cfg.Raw().GetServer().GetAddr()); err != nil {
			log.Fatal(err)
		}
	}()

	WaitExitSignal()
}

func setupPersistence(ctx context.Context, cfg *config.BaseConfig, lgr *glog.BaseLogger) (*bun.DB, error) {
	db, err := sql.Open(sqliteshim.ShimName, cfg.GetPersistence().GetDSN())
	if err != nil {
		return nil, err
	}

	persistence.RegisterModel((*users.User)(nil))
	persistence.RegisterModel((*users.Role)(nil))
	persistence.RegisterModel((*users.UserRole)(nil))
	persistence.RegisterModel((*users.Profile)(nil))

	client, err := persistence.New(cfg.GetPersistence(), db, sqlitedialect.New())
	if err != nil {
		return nil, err
	}

	client.SetLogger(lgr.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(users.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.Migrate(ctx); err != nil {
		return nil, err
	}

	client.RegisterFixtures(users.GetFixturesFS())

	if err := client.Seed(ctx); err != nil {
		return nil, err
	}

	return client.DB(), nil
}

func registerRoutes(
	r router.Router[*fiber.App],
	repo users.RepositoryManager,
	auther *users.Auther,
	provider *users.UserProvider,
	authCfg config.Auth,
	lgr *glog.BaseLogger,
) {
	guardBase := authgate.Config{
		Validator:   auther.TokenService(),
		Resolver:    provider,
		ContextKey:  authCfg.GetContextKey(),
		TokenLookup: authCfg.GetTokenLookup(),
		AuthScheme:  authCfg.GetAuthScheme(),
		Logger:      lgr.GetLogger("authgate"),
	}

	authenticated := authgate.New(guardBase)
	adminOnly := authgate.RequireRole(guardBase, users.RoleAdmin)
	selfOrAdmin := authgate.RequireSelfOrRole(guardBase, "id", users.RoleAdmin)
	selfOrAdminProfile := authgate.RequireSelfOrRole(guardBase, "userId", users.RoleAdmin)

	authController := users.NewAuthController(
		users.WithAuthRepo(repo),
		users.WithAuthenticator(auther),
		users.WithAuthLogger(lgr.GetLogger("http:auth")),
	)
	authController.RegisterRoutes(r)

	userController := users.NewUserController(repo, lgr.GetLogger("http:users"))
	userController.RegisterRoutes(r, adminOnly, selfOrAdmin)

	profileController := users.NewProfileController(repo, lgr.GetLogger("http:profiles"))
	profileController.ContextKey = authCfg.GetContextKey()
	profileController.RegisterRoutes(r, authenticated, selfOrAdminProfile)
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
