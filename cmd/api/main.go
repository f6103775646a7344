package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awssesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"folio-api/handler"
	"folio-api/internal/auth"
	"folio-api/internal/config"
	"folio-api/internal/integrations/mailer"
	"folio-api/internal/integrations/paramstore"
	"folio-api/internal/markdown"
	"folio-api/internal/objectstore"
	"folio-api/internal/repository"
	"folio-api/internal/sectionindex"
	"folio-api/internal/usecase"
	"folio-api/internal/validation"
)

// contentStore is what the services need from the object store.
type contentStore interface {
	usecase.ContentStore
	usecase.Presigner
	sectionindex.Store
}

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Fatal("failed to load AWS config", zap.Error(err))
	}

	if cfg.ParamPrefix != "" {
		params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			logger.Fatal("failed to create SSM client", zap.Error(err))
		}
		if err := cfg.ApplyOverrides(ctx, params); err != nil {
			logger.Fatal("failed to apply parameter overrides", zap.Error(err))
		}
	}

	router, err := buildRouter(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	if cfg.Lambda {
		h, err := handler.NewHandler(router)
		if err != nil {
			logger.Fatal("failed to create handler", zap.Error(err))
		}
		lambda.Start(h.Handle)
		return
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

func buildRouter(ctx context.Context, cfg config.Config, awsCfg aws.Config, logger *zap.Logger) (*chi.Mux, error) {
	// ---- Clients ----
	var store contentStore
	if cfg.ContentBucket != "" {
		s3Client := awss3.NewFromConfig(awsCfg)
		s, err := objectstore.New(s3Client, awss3.NewPresignClient(s3Client), cfg.ContentBucket)
		if err != nil {
			return nil, err
		}
		store = s
	} else {
		logger.Warn("CONTENT_BUCKET not set, using in-memory content store")
		store = objectstore.NewMemory()
	}

	var messages usecase.MessageStore
	if cfg.ContactTable != "" {
		m, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.ContactTable)
		if err != nil {
			return nil, err
		}
		messages = m
	} else {
		logger.Warn("CONTACT_TABLE not set, using in-memory message store")
		messages = repository.NewMemory()
	}

	var notifier usecase.Notifier
	if cfg.EmailConfigured() {
		m, err := mailer.New(awssesv2.NewFromConfig(awsCfg), cfg.ContactEmailFrom, cfg.ContactEmailTo)
		if err != nil {
			return nil, err
		}
		notifier = m
	}

	var verifier auth.Verifier
	if cfg.CognitoConfigured() {
		issuer := auth.Issuer(cfg.CognitoRegion, cfg.CognitoUserPoolID)
		keys, err := keyfunc.NewDefaultCtx(ctx, []string{auth.JWKSURL(issuer)})
		if err != nil {
			return nil, fmt.Errorf("jwks: %w", err)
		}
		v, err := auth.NewCognitoVerifier(issuer, cfg.CognitoClientID, keys.Keyfunc)
		if err != nil {
			return nil, err
		}
		verifier = v
	}
	gate := auth.NewGate(verifier, auth.Policy{
		AdminGroups:      cfg.AdminGroups,
		AllowEmptyGroups: cfg.AdminAllowEmptyGroups,
	}, cfg.AuthDevBypass, logger)

	// ---- Services ----
	v := validation.New()
	index, err := sectionindex.New(store)
	if err != nil {
		return nil, err
	}
	content, err := usecase.NewContentService(store, index, v, markdown.New(), logger)
	if err != nil {
		return nil, err
	}
	contact, err := usecase.NewContactService(messages, notifier, v, logger)
	if err != nil {
		return nil, err
	}
	upload, err := usecase.NewUploadService(store, v, logger)
	if err != nil {
		return nil, err
	}

	return handler.NewRouter(handler.Deps{
		Content:       content,
		Contact:       contact,
		Upload:        upload,
		Auth:          gate,
		Logger:        logger,
		AllowedOrigin: cfg.CORSAllowedOrigin,
	})
}
