package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	auth "github.com/goliatone/tweeter-auth"
	"github.com/goliatone/tweeter-auth/middleware/tokengate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *Config
	bunDB  *bun.DB
	repo   auth.RepositoryManager
	auther *auth.Auther
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("tweeter-auth"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := LoadConfig(lgr.GetLogger("config"))

	ctx := context.Background()

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(cfg.GetServerAddress())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.config.GetPersistence().GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*auth.User)(nil))

	client, err := persistence.New(app.config.GetPersistence(), db, sqlitedialect.New())
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(auth.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = auth.NewRepositoryManager(client.DB())

	return app.repo.Validate()
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	auther := auth.NewAuthenticator(app.repo.Users(), app.config).
		WithLogger(app.GetLogger("auth"))
	app.auther = auther

	var mailer auth.Mailer
	if smtp := app.config.GetSMTP(); smtp.Host != "" {
		mailer = auth.NewSMTPMailer(smtp)
	}

	controller := auth.NewAuthController(
		auth.WithControllerRepo(app.repo),
		auth.WithControllerAuther(auther),
		auth.WithControllerConfig(app.config),
		auth.WithControllerMailer(mailer),
		auth.WithControllerLogger(app.GetLogger("auth:http")),
		auth.WithControllerDebug(app.config.GetDebug()),
	)

	codec := auther.Codec()

	signatureGate := tokengate.New(tokengate.Config{
		TokenVerifier: tokengate.VerifierFunc(func(token string) (tokengate.AuthClaims, error) {
			return codec.VerifySession(token)
		}),
		ContextKey:   app.config.GetContextKey(),
		TokenLookup:  app.config.GetTokenLookup(),
		AuthScheme:   app.config.GetAuthScheme(),
		AllowedRoles: []string{auth.RoleUser},
	})

	versionGate := tokengate.NewVersionGate(tokengate.VersionGateConfig{
		Store: auther,
		Decoder: tokengate.DecoderFunc(func(token string) (tokengate.AuthClaims, error) {
			return codec.DecodeSession(token)
		}),
		ContextKey:  app.config.GetContextKey(),
		TokenLookup: app.config.GetTokenLookup(),
		AuthScheme:  app.config.GetAuthScheme(),
	})

	r := srv.Router()
	auth.RegisterAuthRoutes(r, controller, signatureGate)
	auth.RegisterProtectedRoutes(r, controller, signatureGate, versionGate)

	app.srv = srv

	return nil
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
