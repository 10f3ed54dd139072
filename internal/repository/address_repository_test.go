package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

func addressRows(as ...model.Address) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "label", "line1", "line2", "city", "state",
		"postal_code", "country", "is_default", "created_at", "updated_at",
	})
	for _, a := range as {
		rows.AddRow(a.ID, a.UserID, a.Label, a.Line1, a.Line2, a.City, a.State,
			a.PostalCode, a.Country, a.IsDefault, a.CreatedAt, a.UpdatedAt)
	}
	return rows
}

var home = model.Address{
	ID: 3, UserID: 7, Label: "home", Line1: "1 Main St", City: "Springfield",
	PostalCode: "12345", Country: "US", IsDefault: true,
	CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
}

func TestAddressCreateFirstBecomesDefault(t *testing.T) {
	db, mock := newMock(t)
	r := NewAddressRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM addresses WHERE user_id=\?`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(uint64(7), "home", "1 Main St", nil, "Springfield", nil, "12345", "US", true).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	a := model.Address{
		UserID: 7, Label: "home", Line1: "1 Main St", City: "Springfield",
		PostalCode: "12345", Country: "US", IsDefault: false,
	}
	require.NoError(t, r.Create(context.Background(), &a))
	assert.Equal(t, uint64(3), a.ID)
	assert.True(t, a.IsDefault, "first address is forced default")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressCreateExplicitDefaultDemotesOthers(t *testing.T) {
	db, mock := newMock(t)
	r := NewAddressRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM addresses WHERE user_id=\?`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`UPDATE addresses SET is_default=0 WHERE user_id=\?`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(uint64(7), "office", "9 Work Rd", nil, "Springfield", nil, "12345", "US", true).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	a := model.Address{
		UserID: 7, Label: "office", Line1: "9 Work Rd", City: "Springfield",
		PostalCode: "12345", Country: "US", IsDefault: true,
	}
	require.NoError(t, r.Create(context.Background(), &a))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressCreateLaterNonDefaultLeavesFlagAlone(t *testing.T) {
	db, mock := newMock(t)
	r := NewAddressRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM addresses WHERE user_id=\?`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(uint64(7), "office", "9 Work Rd", nil, "Springfield", nil, "12345", "US", false).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	a := model.Address{
		UserID: 7, Label: "office", Line1: "9 Work Rd", City: "Springfield",
		PostalCode: "12345", Country: "US",
	}
	require.NoError(t, r.Create(context.Background(), &a))
	assert.False(t, a.IsDefault)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressListByUser(t *testing.T) {
	db, mock := newMock(t)
	r := NewAddressRepo(db)

	second := home
	second.ID = 4
	second.Label = "office"
	second.IsDefault = false
	mock.ExpectQuery("SELECT (.+) FROM addresses WHERE user_id=").
		WithArgs(uint64(7)).
		WillReturnRows(addressRows(home, second))

	out, err := r.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].IsDefault)
	assert.Equal(t, "office", out[1].Label)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressSetDefault(t *testing.T) {
	db, mock := newMock(t)
	r := NewAddressRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM addresses WHERE id=\? AND user_id=\?`).
		WithArgs(uint64(4), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec(`UPDATE addresses SET is_default=0 WHERE user_id=\? AND id<>\?`).
		WithArgs(uint64(7), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE addresses SET is_default=1 WHERE id=\?`).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.SetDefault(context.Background(), 7, 4))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressSetDefaultNotFoundRollsBack(t *testing.T) {
	db, mock := newMock(t)
	r := NewAddressRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM addresses WHERE id=\? AND user_id=\?`).
		WithArgs(uint64(99), uint64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := r.SetDefault(context.Background(), 7, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressDeleteDefaultPromotesNewest(t *testing.T) {
	db, mock := newMock(t)
	r := NewAddressRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT is_default FROM addresses WHERE id=\? AND user_id=\?`).
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(true))
	mock.ExpectExec(`DELETE FROM addresses WHERE id=\? AND user_id=\?`).
		WithArgs(uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE addresses SET is_default=1 WHERE user_id=\? ORDER BY created_at DESC LIMIT 1`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.Delete(context.Background(), 7, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressDeleteNonDefaultSkipsPromotion(t *testing.T) {
	db, mock := newMock(t)
	r := NewAddressRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT is_default FROM addresses WHERE id=\? AND user_id=\?`).
		WithArgs(uint64(4), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(false))
	mock.ExpectExec(`DELETE FROM addresses WHERE id=\? AND user_id=\?`).
		WithArgs(uint64(4), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.Delete(context.Background(), 7, 4))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressUpdatePartial(t *testing.T) {
	db, mock := newMock(t)
	r := NewAddressRepo(db)

	label := "work"
	line2 := ""
	mock.ExpectExec(`UPDATE addresses SET label=\?, line2=\? WHERE id=\? AND user_id=\?`).
		WithArgs("work", nil, uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	updated := home
	updated.Label = "work"
	mock.ExpectQuery("SELECT (.+) FROM addresses WHERE id=").
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(addressRows(updated))

	a, err := r.Update(context.Background(), 7, 3, AddressUpdate{Label: &label, Line2: &line2})
	require.NoError(t, err)
	assert.Equal(t, "work", a.Label)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsGetCreatesDefaultsOnFirstRead(t *testing.T) {
	db, mock := newMock(t)
	r := NewSettingsRepo(db)

	mock.ExpectQuery("SELECT user_id, newsletter").
		WithArgs(uint64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO account_settings").
		WithArgs(uint64(7), false, true, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT user_id, newsletter").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "newsletter", "order_notifications", "promo_emails", "updated_at",
		}).AddRow(7, false, true, false, time.Now().UTC()))

	s, err := r.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, s.OrderNotifications)
	assert.False(t, s.Newsletter)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsUpdate(t *testing.T) {
	db, mock := newMock(t)
	r := NewSettingsRepo(db)

	now := time.Now().UTC()
	existing := sqlmock.NewRows([]string{
		"user_id", "newsletter", "order_notifications", "promo_emails", "updated_at",
	}).AddRow(7, false, true, false, now)
	mock.ExpectQuery("SELECT user_id, newsletter").
		WithArgs(uint64(7)).
		WillReturnRows(existing)
	mock.ExpectExec(`UPDATE account_settings SET newsletter=\? WHERE user_id=\?`).
		WithArgs(true, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT user_id, newsletter").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "newsletter", "order_notifications", "promo_emails", "updated_at",
		}).AddRow(7, true, true, false, now))

	on := true
	s, err := r.Update(context.Background(), 7, SettingsUpdate{Newsletter: &on})
	require.NoError(t, err)
	assert.True(t, s.Newsletter)
	require.NoError(t, mock.ExpectationsWereMet())
}
