package repository

import (
	"database/sql"
	"errors"
	"os"

	"github.com/ilinovom/fido5011-bot/internal/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(row rowScanner) (*model.UserState, error) {
	var s model.UserState
	var addr, descr sql.NullString
	if err := row.Scan(&s.UserID, &addr, &descr, &s.LastSeen, &s.ShortCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, os.ErrNotExist
		}
		return nil, err
	}
	if addr.Valid {
		s.Addr = &addr.String
	}
	if descr.Valid {
		s.Descr = &descr.String
	}
	return &s, nil
}

func scanStates(rows *sql.Rows) ([]*model.UserState, error) {
	defer rows.Close()
	var result []*model.UserState
	for rows.Next() {
		s, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func nullable(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// expectOne maps an UPDATE that touched no rows to os.ErrNotExist.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return os.ErrNotExist
	}
	return nil
}

func scanInterval(row rowScanner) (int64, error) {
	var v sql.NullInt64
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, os.ErrNotExist
		}
		return 0, err
	}
	if !v.Valid {
		return 0, os.ErrNotExist
	}
	return v.Int64, nil
}
