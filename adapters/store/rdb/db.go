package rdb

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenFromURL opens a GORM DB based on a simple db-url string.
// Supported:
//   - sqlite:<dsn>   e.g., sqlite:./workloads.db, sqlite://workloads.db
//     or sqlite::memory:
//   - sqlite3:<dsn>  alias of sqlite
func OpenFromURL(dbURL string) (*gorm.DB, error) {
	switch {
	case strings.HasPrefix(dbURL, "sqlite:"):
		return openSQLite(strings.TrimPrefix(dbURL, "sqlite:"))
	case strings.HasPrefix(dbURL, "sqlite3:"):
		return openSQLite(strings.TrimPrefix(dbURL, "sqlite3:"))
	default:
		return nil, fmt.Errorf("unsupported db scheme: %s", dbURL)
	}
}

func openSQLite(dsn string) (*gorm.DB, error) {
	// Accept the URL-style sqlite://name.db form; the dsn itself is a
	// plain file path.
	if rest, ok := strings.CutPrefix(dsn, "//"); ok && !strings.HasPrefix(rest, "/") {
		dsn = rest
	}
	if dsn == "" {
		dsn = "./workloads.db"
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

// AutoMigrate applies schema migrations for all RDB models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ClusterRecord{},
		&PolicyRecord{},
		&WlAppRecord{},
		&ConfigRecord{},
		&ReleaseRecord{},
		&BuildRecord{},
		&BuildProcessRecord{},
		&ProcessSpecRecord{},
		&DeploymentRecord{},
		&AppDomainRecord{},
		&AppSubpathRecord{},
		&CustomDomainRecord{},
		&CertRecord{},
		&SharedCertRecord{},
		&AppModelResourceRecord{},
		&AppModelRevisionRecord{},
		&AppModelDeployRecord{},
		&MountRecord{},
		&ConfigVarRecord{},
		&ImageCredentialRecord{},
	)
}
