package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/shopauth/internal/otp"
	"github.com/shandysiswandi/shopauth/internal/pkg/clock"
	"github.com/shandysiswandi/shopauth/internal/pkg/config"
	"github.com/shandysiswandi/shopauth/internal/pkg/hash"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"github.com/shandysiswandi/shopauth/internal/pkg/jwt"
	"github.com/shandysiswandi/shopauth/internal/pkg/kvstore"
	"github.com/shandysiswandi/shopauth/internal/pkg/mail"
	"github.com/shandysiswandi/shopauth/internal/pkg/router"
	"github.com/shandysiswandi/shopauth/internal/pkg/storage"
	"github.com/shandysiswandi/shopauth/internal/pkg/uid"
	"github.com/shandysiswandi/shopauth/internal/pkg/validator"
)

func (a *App) initConfig() error {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
	return nil
}

func (a *App) initInstrument() error {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("app.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		return fmt.Errorf("init instrumentation: %w", err)
	}
	a.ins = ins
	return nil
}

func (a *App) initLibraries() error {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()

	if err := config.Require(a.config, "hash.hmac.secret"); err != nil {
		return fmt.Errorf("init hmac: %w", err)
	}
	a.hmac = hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"), a.config.GetArray("hash.hmac.previous_secrets")...)

	validator, err := validator.NewV10Validator()
	if err != nil {
		return fmt.Errorf("init validation v10 validator: %w", err)
	}
	a.validator = validator
	return nil
}

func (a *App) initJWT() error {
	if !a.config.IsSet("jwt.secret") {
		slog.Warn("jwt.secret is not set, access tokens and protected endpoints are disabled")
		return nil
	}

	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetMinute("jwt.ttl_minutes"),
		Leeway:    a.config.GetSecond("jwt.leeway_seconds"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		return fmt.Errorf("init jwt token: %w", err)
	}
	a.jwt = defaultJWT
	return nil
}

// initDatabase connects only when the postgres user directory is selected.
func (a *App) initDatabase() error {
	if a.config.GetString("directory.driver") != otp.DirectoryPostgres {
		return nil
	}

	if err := config.Require(a.config, "database.url"); err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		return fmt.Errorf("create DB connection pool: %w", err)
	}

	if err := a.startupRetry(func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	}); err != nil {
		pool.Close()
		return fmt.Errorf("ping DB: %w", err)
	}

	a.dbConn = pool
	return nil
}

func (a *App) initStore() error {
	driver := strings.TrimSpace(a.config.GetString("store.driver"))

	var required []string
	switch driver {
	case kvstore.DriverREST:
		required = []string{"store.rest.url", "store.rest.token"}
	case kvstore.DriverRedis:
		required = []string{"store.redis.url"}
	}
	if err := config.Require(a.config, required...); err != nil {
		return fmt.Errorf("init store (driver %q): %w", driver, err)
	}

	var kv kvstore.Store
	err := a.startupRetry(func(ctx context.Context) error {
		s, err := kvstore.NewFromDriver(ctx, driver, kvstore.FactoryOptions{
			Redis: kvstore.RedisOptions{URL: a.config.GetString("store.redis.url")},
			REST: kvstore.RESTOptions{
				URL:   a.config.GetString("store.rest.url"),
				Token: a.config.GetString("store.rest.token"),
				HTTPClient: &http.Client{
					Timeout: a.config.GetSecond("store.rest.timeout_seconds"),
				},
			},
			Clock: a.clock,
		})
		if err != nil {
			return err
		}
		kv = s
		return nil
	})
	if err != nil {
		return fmt.Errorf("init store (driver %q): %w", driver, err)
	}

	if driver == kvstore.DriverMemory {
		slog.Warn("otp store is process local, do not run more than one instance")
	}

	a.kv = kv
	return nil
}

func (a *App) initMail() error {
	driver := strings.TrimSpace(a.config.GetString("mail.driver"))
	if driver == mail.DriverSMTP {
		if err := config.Require(a.config, "mail.host", "mail.port", "mail.from"); err != nil {
			return fmt.Errorf("init mail: %w", err)
		}
	}

	m, err := mail.NewFromDriver(driver, mail.SMTPConfig{
		Host:     a.config.GetString("mail.host"),
		Port:     a.config.GetInt("mail.port"),
		Username: a.config.GetString("mail.username"),
		Password: a.config.GetString("mail.password"),
		From:     a.config.GetString("mail.from"),
		Timeout:  a.config.GetSecond("mail.timeout_seconds"),
	})
	if err != nil {
		return fmt.Errorf("init mail (driver %q): %w", driver, err)
	}

	a.mail = m
	return nil
}

// initStorage builds the invoice archive backend. It is skipped unless
// archiving is enabled.
func (a *App) initStorage() error {
	if !a.config.GetBool("modules.invoice.archive.enabled") {
		return nil
	}

	driver := strings.TrimSpace(a.config.GetString("storage.driver"))
	stg, err := storage.NewFromDriver(a.ctx, driver, storage.FactoryOptions{
		Bucket: strings.TrimSpace(a.config.GetString("storage.bucket")),
		S3: storage.S3Options{
			Region:       strings.TrimSpace(a.config.GetString("storage.s3.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.s3.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.s3.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.s3.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.s3.session_token")),
			UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{
			CredentialsFile: strings.TrimSpace(a.config.GetString("storage.gcs.credentials_file")),
			GoogleAccessID:  strings.TrimSpace(a.config.GetString("storage.gcs.signer_access_id")),
			PrivateKey:      a.config.GetBinary("storage.gcs.signer_private_key"),
		},
		MinIO: storage.MinIOOptions{
			Region:       strings.TrimSpace(a.config.GetString("storage.minio.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.minio.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.minio.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.minio.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.minio.session_token")),
			UseSSL:       a.config.GetBool("storage.minio.use_ssl"),
		},
	})
	if err != nil {
		return fmt.Errorf("init storage (driver %q): %w", driver, err)
	}

	a.storage = stg
	return nil
}

func (a *App) initHTTPServer() error {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
	})
	a.router.GET("/health", a.health)

	allowedOrigins := a.config.GetArray("app.server.cors")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:       []string{"*"},
		ExposedHeaders:       []string{"Content-Disposition", "X-Invoice-URL", router.HeaderCorrelationID},
		OptionsSuccessStatus: http.StatusOK,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}

	return nil
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Store",
			fn: func(context.Context) error {
				return a.kv.Close()
			},
		},
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				if a.dbConn != nil {
					a.dbConn.Close()
				}

				return nil
			},
		},
		{
			name: "Storage",
			fn: func(context.Context) error {
				if a.storage == nil {
					return nil
				}
				return a.storage.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}

// startupRetry retries fn with exponential backoff while collaborators come up.
// Request handling never retries.
func (a *App) startupRetry(fn func(ctx context.Context) error) error {
	attempts := a.config.GetInt("app.startup.max_attempts")
	if attempts < 1 {
		attempts = 1
	}

	b := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(500*time.Millisecond))
	b = retry.WithCappedDuration(5*time.Second, b)

	return retry.Do(a.ctx, b, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			slog.WarnContext(ctx, "startup dependency not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}
