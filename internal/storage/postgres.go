package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"i-hire-go/internal/config"
	"i-hire-go/internal/storage/models"
	"i-hire-go/internal/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var pgTracer = otel.Tracer("i-hire-go/storage/postgres")

// ErrSessionNotFound is returned when a proctoring session row does not exist.
var ErrSessionNotFound = errors.New("proctoring session not found")

// GormTracingPlugin adds OpenTelemetry spans around GORM operations.
type GormTracingPlugin struct {
	tracer         trace.Tracer
	dbName         string
	disableErrSkip bool
}

// Name returns the plugin name.
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize registers the GORM callbacks that open and close spans.
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}

	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}

	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}

	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}

	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after()); err != nil {
		return err
	}

	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after()); err != nil {
		return err
	}

	return nil
}

func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if p.disableErrSkip && db.Statement.SkipHooks {
			return
		}

		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		spanName := fmt.Sprintf("%s %s", operation, tableName)
		opts := []trace.SpanStartOption{
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemPostgreSQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		}

		sqlStatement := db.Statement.SQL.String()
		if sqlStatement != "" {
			opts = append(opts, trace.WithAttributes(
				attribute.String("db.statement", tracing.TruncateSQL(sqlStatement)),
			))
		}

		newCtx, span := p.tracer.Start(ctx, spanName, opts...)
		db.Statement.Context = context.WithValue(newCtx, spanContextKey{}, span)
	}
}

type spanContextKey struct{}

func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(spanContextKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		if db.Error != nil {
			if errors.Is(db.Error, gorm.ErrRecordNotFound) {
				// Not-found is a normal business outcome, not a failure.
				span.SetAttributes(attribute.String("error.type", "record_not_found"))
				span.SetStatus(codes.Ok, "record not found")
			} else {
				tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// NewGormTracingPlugin creates the tracing plugin for the given database.
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer:         pgTracer,
		dbName:         dbName,
		disableErrSkip: true,
	}
}

// WithDisableErrSkip toggles span suppression for hook-skipped statements.
func (p *GormTracingPlugin) WithDisableErrSkip(disable bool) *GormTracingPlugin {
	p.disableErrSkip = disable
	return p
}

// Database is the relational database interface.
type Database interface {
	// DB returns the underlying GORM handle.
	DB() *gorm.DB

	// Close closes the database connection.
	Close() error
}

var _ Database = (*Postgres)(nil)

// Postgres provides relational persistence over GORM.
type Postgres struct {
	db  *gorm.DB
	cfg *config.PostgresConfig
}

// NewPostgres opens a connection pool, registers tracing, and migrates the schema.
func NewPostgres(cfg *config.PostgresConfig) (*Postgres, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgres config is required")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s connect_timeout=%d",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database,
		cfg.SSLMode, cfg.TimeZone, cfg.ConnectTimeoutSeconds)

	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 2:
		logLevel = logger.Error
	case 3:
		logLevel = logger.Warn
	case 4:
		logLevel = logger.Info
	default:
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	p := &Postgres{
		db:  db,
		cfg: cfg,
	}

	tracingPlugin := NewGormTracingPlugin(cfg.Database).WithDisableErrSkip(true)
	if err := db.Use(tracingPlugin); err != nil {
		return nil, fmt.Errorf("registering tracing plugin: %w", err)
	}

	if err := p.autoMigrateSchema(); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("auto-migrating schema: %w", err)
	}

	log.Println("connected to postgres and migrated schema")
	return p, nil
}

// autoMigrateSchema migrates all models with SQL logging silenced.
func (p *Postgres) autoMigrateSchema() error {
	silentLogger := logger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	silentDB := p.db.Session(&gorm.Session{Logger: silentLogger})

	err := silentDB.AutoMigrate(
		&models.MockInterview{},
		&models.UserAnswer{},
		&models.ProctoringSession{},
		&models.JobPosting{},
		&models.UserProfile{},
		&models.OutboxMessage{},
	)
	if err != nil {
		return fmt.Errorf("gorm auto-migrate: %w", err)
	}
	return nil
}

// DB returns the underlying GORM handle.
func (p *Postgres) DB() *gorm.DB {
	return p.db
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// GetSessionForUpdate loads a proctoring session row with a row-level lock.
// Must be called inside a transaction; concurrent aggregation updates for the
// same session serialize on this lock.
func (p *Postgres) GetSessionForUpdate(tx *gorm.DB, sessionID, mockID string) (*models.ProctoringSession, error) {
	var session models.ProctoringSession
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ? AND mock_id = ?", sessionID, mockID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session for update: %w", err)
	}
	return &session, nil
}

// FindSessionsByMockID returns all sessions recorded for a mock interview.
func (p *Postgres) FindSessionsByMockID(ctx context.Context, mockID string) ([]models.ProctoringSession, error) {
	var sessions []models.ProctoringSession
	err := p.db.WithContext(ctx).
		Where("mock_id = ?", mockID).
		Order("started_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// FindActiveJobPostings returns all postings eligible for matching.
func (p *Postgres) FindActiveJobPostings(ctx context.Context) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	err := p.db.WithContext(ctx).
		Where("status = ?", "ACTIVE").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("listing job postings: %w", err)
	}
	return jobs, nil
}

// GetUserProfile fetches a profile by user ID. Returns gorm.ErrRecordNotFound
// when absent.
func (p *Postgres) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	ctx, span := pgTracer.Start(ctx, "Postgres.GetUserProfile", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	var profile models.UserProfile
	if err := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	return &profile, nil
}

// UpsertUserProfile inserts or updates a profile keyed by user ID.
func (p *Postgres) UpsertUserProfile(ctx context.Context, profile *models.UserProfile) error {
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "skills", "experience", "education",
			"current_position", "location", "cv_object_key", "cv_text_key",
			"cv_text", "updated_at",
		}),
	}).Create(profile).Error
}
