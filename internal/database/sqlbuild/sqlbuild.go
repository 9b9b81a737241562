// Package sqlbuild renders the few statements whose SQL text depends on the
// input: the genre IN-list and the partial user update.
//
// Statements are built with goqu's default dialect in prepared mode, so every
// value becomes a "?" placeholder and gorm rebinds them for the active
// driver. Only the placeholder count and allow-listed column names vary.
//
//	query, args, err := sqlbuild.BooksByGenres([]string{"Fantasy", "Horror"})
//	err = db.WithContext(ctx).Raw(query, args...).Scan(&books).Error
package sqlbuild

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

var (
	ErrNoValues         = errors.New("at least one value is required")
	ErrNoColumns        = errors.New("at least one column is required")
	ErrColumnNotAllowed = errors.New("column not allowed")
)

const (
	booksTable = "books"
	usersTable = "users"
)

// UserUpdatableColumns lists the users columns a partial update may touch.
var UserUpdatableColumns = map[string]struct{}{
	"name":     {},
	"surname":  {},
	"username": {},
	"email":    {},
	"password": {},
}

func genreValues(genres []string) ([]interface{}, error) {
	if len(genres) == 0 {
		return nil, ErrNoValues
	}
	values := make([]interface{}, len(genres))
	for i, g := range genres {
		values[i] = g
	}
	return values, nil
}

// BooksByGenres selects every book whose genres column equals one of genres,
// ordered by id.
func BooksByGenres(genres []string) (string, []interface{}, error) {
	values, err := genreValues(genres)
	if err != nil {
		return "", nil, err
	}
	return goqu.From(booksTable).
		Where(goqu.C("genres").In(values...)).
		Order(goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
}

// CountBooksByGenres counts the rows BooksByGenres would return.
func CountBooksByGenres(genres []string) (string, []interface{}, error) {
	values, err := genreValues(genres)
	if err != nil {
		return "", nil, err
	}
	return goqu.From(booksTable).
		Select(goqu.COUNT(goqu.Star()).As("count")).
		Where(goqu.C("genres").In(values...)).
		Prepared(true).
		ToSQL()
}

// UpdateUser renders an UPDATE of the given columns for one user. Column
// names must come from UserUpdatableColumns.
func UpdateUser(id int64, fields map[string]interface{}) (string, []interface{}, error) {
	if len(fields) == 0 {
		return "", nil, ErrNoColumns
	}
	record := goqu.Record{}
	for col, val := range fields {
		if _, ok := UserUpdatableColumns[col]; !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrColumnNotAllowed, col)
		}
		record[col] = val
	}
	return goqu.Update(usersTable).
		Set(record).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
}
