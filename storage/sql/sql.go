package sql

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/tursodatabase/go-libsql"
	_ "modernc.org/sqlite"
)

const ProviderKey = "sql"

type Provider struct {
	PrimaryDSN        string `json:"primaryDsn"` // user:password@tcp(hostname:port) or file:/path/rclink.db
	Database          string `json:"database"`
	SqlLite           bool   `json:"sqlLite"`
	UseTurso          bool   `json:"useTurso"`
	TursoToken        string `json:"tursoToken"`
	primaryConnection *sql.DB
	tursoDir          string
	tursoConnector    *libsql.Connector
	afterUpdate       []func()
}

func (p *Provider) Close() error {
	var errs []error
	if p.primaryConnection != nil {
		errs = append(errs, p.primaryConnection.Close())
	}
	if p.tursoConnector != nil {
		errs = append(errs, p.tursoConnector.Close())
	}
	if p.tursoDir != "" {
		errs = append(errs, os.RemoveAll(p.tursoDir))
	}
	return errors.Join(errs...)
}

func (p *Provider) Sync() error {
	if p.tursoConnector != nil {
		return p.tursoConnector.Sync()
	}
	return nil
}

func (p *Provider) Connect() error {
	if p.primaryConnection == nil {
		var err error
		switch {
		case p.UseTurso:
			primaryUrl := "libsql://" + p.Database + ".turso.io"

			p.tursoDir, err = os.MkdirTemp("", "libsql-*")
			if err != nil {
				return fmt.Errorf("error creating temporary directory: %s", err)
			}

			dbPath := filepath.Join(p.tursoDir, "rclink.db")
			p.tursoConnector, err = libsql.NewEmbeddedReplicaConnector(dbPath, primaryUrl, libsql.WithAuthToken(p.TursoToken))
			if err != nil {
				return err
			}
			p.primaryConnection = sql.OpenDB(p.tursoConnector)
		case p.SqlLite:
			p.primaryConnection, err = sql.Open("sqlite", sqliteDSN(p.PrimaryDSN))
			if err != nil {
				return fmt.Errorf("failed to open db %s", err)
			}
		default:
			p.primaryConnection, err = sql.Open("mysql", p.PrimaryDSN+"/"+p.Database+"?parseTime=true")
		}

		// Handle any errors that may occur during connection
		if err != nil {
			return err
		}
	}

	// Ping the database to ensure a successful connection
	return p.primaryConnection.Ping()
}

// sqliteDSN makes concurrent writers wait on the database lock instead of
// failing with SQLITE_BUSY.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func (p *Provider) dialect() string {
	if p.SqlLite || p.UseTurso {
		return dialectSQLite
	}
	return dialectMySQL
}

func (p *Provider) Initialize() error {
	if err := p.Connect(); err != nil {
		return err
	}

	if err := p.Sync(); err != nil {
		return err
	}

	if _, err := p.primaryConnection.Exec("create table if not exists rclink_migrations (migration varchar(255) not null primary key, applied int not null)"); err != nil {
		return err
	}

	processed := make(map[string]bool)
	rows, err := p.primaryConnection.Query("SELECT migration, applied FROM rclink_migrations;")
	if err != nil {
		return err
	}
	for rows.Next() {
		var migKey string
		var applied int
		if scanErr := rows.Scan(&migKey, &applied); scanErr != nil {
			rows.Close()
			return scanErr
		}
		processed[migKey] = applied == 1
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, query := range migrations(p.dialect()) {
		if !processed[query.key] {
			if _, migErr := p.primaryConnection.Exec(query.query); migErr != nil {
				return fmt.Errorf("migration %s: %w", query.key, migErr)
			}
			if _, migErr := p.primaryConnection.Exec("INSERT INTO rclink_migrations (migration, applied) VALUES (?, 1);", query.key); migErr != nil {
				return migErr
			}
		}
	}

	return nil
}

// AfterUpdate registers a callback run after every write that changed a link.
func (p *Provider) AfterUpdate(exec func()) error {
	p.afterUpdate = append(p.afterUpdate, exec)
	return nil
}

func (p *Provider) update() {
	for _, exec := range p.afterUpdate {
		exec()
	}
}

func FromJson(data []byte) (*Provider, error) {
	p := &Provider{}
	if err := json.Unmarshal(data, &p); err == nil {
		return p, nil
	} else {
		return nil, err
	}
}

// FromDB wraps an already open connection, mainly for tests.
func FromDB(db *sql.DB, sqlLite bool) *Provider {
	return &Provider{primaryConnection: db, SqlLite: sqlLite}
}
