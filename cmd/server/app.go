package main

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/charity/internal/es"
	"github.com/Skotchmaster/charity/internal/httpserver"
	"github.com/Skotchmaster/charity/internal/mailer"
	"github.com/Skotchmaster/charity/internal/metrics"
	"github.com/Skotchmaster/charity/internal/mykafka"
	"github.com/Skotchmaster/charity/internal/repo"
	"github.com/Skotchmaster/charity/internal/service"
	"github.com/Skotchmaster/charity/pkg/config"
	"github.com/Skotchmaster/charity/pkg/db"
	"github.com/Skotchmaster/charity/pkg/hash"
	authmw "github.com/Skotchmaster/charity/pkg/middleware/auth"
	"github.com/Skotchmaster/charity/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/charity/pkg/tokens"
)

// app holds the wired services and the clients that need closing.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	db      *gorm.DB
	metrics *metrics.Metrics

	producer *mykafka.Producer
	redis    *redis.Client
	index    *es.InstitutionIndex

	auth         *service.AuthService
	users        *service.UserService
	recovery     *service.RecoveryService
	categories   *service.CategoryService
	institutions *service.InstitutionService
	donations    *service.DonationService
	admin        *service.AdminService
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("db_connected", "driver", cfg.DBDriver)

	a := &app{
		cfg:     cfg,
		log:     log,
		db:      gdb,
		metrics: metrics.New(cfg.ServiceName),
	}
	r := repo.New(gdb)
	hasher := hash.NewBcrypt()

	var events service.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = mykafka.NewProducer(cfg.KafkaBrokers, a.metrics)
		events = a.producer
		log.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	var index service.InstitutionIndex
	if cfg.ESURL != "" {
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, log)
		if err != nil {
			log.Warn("search_index_disabled", "error", err)
		} else {
			a.index = es.NewInstitutionIndex(client, cfg.ESIndex)
			index = a.index
		}
	}

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	var mail service.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTP(cfg.SMTP, cfg.BaseURL)
	} else {
		log.Warn("smtp_disabled", "reason", "SMTP_HOST is empty")
		mail = mailer.LogMailer{BaseURL: cfg.BaseURL}
	}

	a.auth = &service.AuthService{
		Users:  r,
		Tokens: r,
		Hasher: hasher,
		Issuer: &tokens.Issuer{
			AccessSecret:  cfg.JWTAccessSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.AccessTTL,
			RefreshTTL:    cfg.RefreshTTL,
		},
		Events: events,
	}
	a.users = &service.UserService{Users: r, Roles: r, Hasher: hasher, Mailer: mail, Events: events, Sessions: r}
	a.recovery = &service.RecoveryService{
		Users:                r,
		Recovery:             r,
		Hasher:               hasher,
		Mailer:               mail,
		Events:               events,
		Sessions:             r,
		TTL:                  cfg.RecoveryTTL,
		ConcealUnknownEmails: cfg.ConcealUnknownEmails,
	}
	a.categories = &service.CategoryService{Store: r, Events: events}
	a.institutions = &service.InstitutionService{Store: r, Index: index, Events: events}
	a.donations = &service.DonationService{
		Donations:    r,
		Categories:   r,
		Institutions: r,
		Users:        r,
		Events:       events,
	}
	a.admin = &service.AdminService{
		Users:        r,
		Roles:        r,
		Categories:   r,
		Institutions: r,
		Hasher:       hasher,
		Sessions:     r,
	}
	return a, nil
}

func (a *app) deps() *httpserver.Deps {
	var counter ratelimit.Counter
	if a.redis != nil {
		counter = ratelimit.RedisCounter{Client: a.redis}
	}

	return &httpserver.Deps{
		Auth:         &httpserver.AuthHTTP{Svc: a.auth, Metrics: a.metrics},
		Users:        &httpserver.UsersHTTP{Svc: a.users, Recovery: a.recovery},
		Categories:   &httpserver.CategoriesHTTP{Svc: a.categories},
		Institutions: &httpserver.InstitutionsHTTP{Svc: a.institutions},
		Donations:    &httpserver.DonationsHTTP{Svc: a.donations},
		Admin:        &httpserver.AdminHTTP{Svc: a.admin},
		AuthMW:       authmw.New(a.auth),
		RateLimit: ratelimit.FixedWindow(ratelimit.Config{
			Prefix: a.cfg.ServiceName,
			Limit:  a.cfg.RateLimit,
			Window: a.cfg.RateWindow,
		}, counter),
		Metrics: a.metrics,
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, a.db)
		},
	}
}

// Close releases the database, the kafka writer and the redis client.
func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("db_close_error", "error", err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Error("kafka_close_error", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("redis_close_error", "error", err)
		}
	}
}
