package catalog

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/filmoteka/filmoteka/internal/config"
)

// NewDB opens the catalog database, configures the connection pool and runs
// migrations. The returned cleanup closes the underlying connection.
func NewDB(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := gorm.Open(openDialector(cfg.DSN), &gorm.Config{
		Logger: newGormLogger(log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	cleanup := func() {
		sqlDB.Close()
	}

	return db, cleanup, nil
}

// openDialector picks the driver from the DSN shape: postgres URLs and
// key/value DSNs go to the postgres driver, anything else is a SQLite path.
func openDialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// Migrate creates or updates the catalog schema. The join table is set up
// explicitly so its composite-key uniqueness lives in the schema rather than
// only in GORM's object graph.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Movie{}, "Genres", &MovieGenre{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&Movie{},
		&Genre{},
		&WatchedMovie{},
	)
}

// gormLogger adapts zap to GORM's logger interface.
type gormLogger struct {
	logger *zap.Logger
}

func newGormLogger(logger *zap.Logger) gormlogger.Interface {
	return &gormLogger{logger: logger.Named("gorm")}
}

func (l *gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Sugar().Infof(msg, data...)
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Sugar().Warnf(msg, data...)
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Sugar().Errorf(msg, data...)
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && err != gorm.ErrRecordNotFound {
		l.logger.Error("sql error",
			zap.Error(err),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed),
		)
		return
	}

	if elapsed > 200*time.Millisecond {
		l.logger.Warn("slow sql query",
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed),
		)
	}
}
