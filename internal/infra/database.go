package infra

import (
	"fmt"

	"github.com/andres1jh8/Registro-Back/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the schema
// up to date. Duplicate-key violations surface as gorm.ErrDuplicatedKey.
func NewDatabase(dsn string, debug bool) (*gorm.DB, error) {
	logMode := logger.Silent
	if debug {
		logMode = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logMode),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the pre-migration patches, AutoMigrate and the post-migration
// patches. Every step is idempotent.
func Migrate(db *gorm.DB) error {
	if err := applyPatches(db, preMigrationPatches); err != nil {
		return fmt.Errorf("pre-migration patches: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Entrada{},
		&model.Salida{},
		&model.ContadorMensual{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applyPatches(db, schemaPatches); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

type patch struct{ descr, sql string }

// preMigrationPatches prepare tables created before periodo existed so that
// AutoMigrate can add the NOT NULL column and its unique index.
var preMigrationPatches = []patch{
	{"backfill entradas.periodo", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'entradas') THEN
    ALTER TABLE entradas ADD COLUMN IF NOT EXISTS periodo char(7);
    UPDATE entradas SET periodo = to_char(fecha, 'YYYY-MM') WHERE periodo IS NULL;
  END IF;
END $$`},
}

var schemaPatches = []patch{
	{"index entradas (fecha, numero)",
		`CREATE INDEX IF NOT EXISTS idx_entradas_fecha_numero ON entradas (fecha, numero)`},
	{"seed contadores_mensuales from existing entradas", `
INSERT INTO contadores_mensuales (periodo, ultimo)
SELECT periodo, MAX(numero) FROM entradas GROUP BY periodo
ON CONFLICT (periodo) DO UPDATE
   SET ultimo = GREATEST(contadores_mensuales.ultimo, EXCLUDED.ultimo)`},
}

func applyPatches(db *gorm.DB, patches []patch) error {
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
