package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type store struct {
	bookings BookingRepository
	cars     CarRepository
}

// NewStore binds the repositories to db, which may be a transaction.
func NewStore(db sqlx.ExtContext) Store {
	return &store{
		bookings: NewBookingRepository(db),
		cars:     NewCarRepository(db),
	}
}

func (s *store) Bookings() BookingRepository { return s.bookings }
func (s *store) Cars() CarRepository         { return s.cars }

type sqlTransactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(store Store) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(NewStore(tx)); err != nil {
		return err
	}

	return tx.Commit()
}
