package repository

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

type keyStore interface {
	Upsert(ctx context.Context, entry *ticketDomain.KeyStoreEntry) error
	Get(ctx context.Context, printerID string) (*ticketDomain.KeyStoreEntry, error)
	Count(ctx context.Context) (int64, error)
}

type historyStore interface {
	Add(ctx context.Context, record *ticketDomain.RedemptionRecord) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*ticketDomain.RedemptionRecord, error)
	Count(ctx context.Context) (int64, error)
}

type sqlmockDB struct {
	*sql.DB
	mock sqlmock.Sqlmock
}

func newSQLMock(t *testing.T) *sqlmockDB {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return &sqlmockDB{DB: db, mock: mock}
}

// notContaining matches a []byte argument that does not embed needle.
type notContaining []byte

func (n notContaining) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	return ok && len(b) > 0 && !bytes.Contains(b, n)
}
