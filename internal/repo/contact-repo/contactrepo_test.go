package contactrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

var contactCols = []string{"id", "name", "email", "subject", "message", "status", "priority", "reply", "created_at", "updated_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	query := regexp.QuoteMeta(`INSERT INTO contact_messages (name, email, subject, message, status, priority) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Saved",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("Sita", "sita@example.com", "Refund", "Please help", domain.ContactUnread, domain.PriorityNormal).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("Sita", "sita@example.com", "Refund", "Please help", domain.ContactUnread, domain.PriorityNormal).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			c, err := repo.Create(context.Background(), &domain.ContactMessage{
				Name: "Sita", Email: "sita@example.com", Subject: "Refund", Message: "Please help",
				Status: domain.ContactUnread, Priority: domain.PriorityNormal,
			})
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 3, c.ID)
		})
	}
}

func TestRepository_FindUpdateDelete(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, subject, message, status, priority, reply, created_at, updated_at FROM contact_messages WHERE id = $1`)).
		WithArgs(3).
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow(3, "Sita", "sita@example.com", "Refund", "Please help", domain.ContactUnread, domain.PriorityHigh, "", now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM contact_messages WHERE id = $1`)).
		WithArgs(4).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE contact_messages SET status = $1, priority = $2, reply = $3, updated_at = NOW() WHERE id = $4`)).
		WithArgs(domain.ContactRead, domain.PriorityHigh, "", 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM contact_messages WHERE id = $1`)).
		WithArgs(3).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	c, err := repo.FindByID(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, c.Priority)

	missing, err := repo.FindByID(context.Background(), 4)
	assert.NoError(t, err)
	assert.Nil(t, missing)

	c.MarkRead()
	assert.NoError(t, repo.Update(context.Background(), c))

	deleted, err := repo.Delete(context.Background(), 3)
	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM contact_messages WHERE (name ILIKE $1 OR email ILIKE $1 OR subject ILIKE $1) AND status = $2 AND priority = $3`)).
		WithArgs("%refund%", "unread", "high").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5`)).
		WithArgs("%refund%", "unread", "high", 10, 0).
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow(3, "Sita", "sita@example.com", "Refund", "Please help", domain.ContactUnread, domain.PriorityHigh, "", now, now))

	items, total, err := repo.List(context.Background(), paging.Query{
		Search:  "refund",
		Filters: map[string]string{"status": "unread", "priority": "high"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
