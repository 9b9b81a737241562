// Package rating keeps Book.rating equal to the mean of the book's comment
// ratings, or 0 when it has none.
//
// Recompute is called inside the transaction that inserts or deletes a
// comment, so the aggregate and the mutation commit together. The update is a
// single statement, leaving no read-modify-write window between writers.
package rating

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"
)

const recomputeOneSQL = `UPDATE books
SET rating = COALESCE((SELECT AVG(cr.rating) FROM comment_ratings cr WHERE cr.book_id = ?), 0)
WHERE id = ?`

const recomputeAllSQL = `UPDATE books
SET rating = COALESCE((SELECT AVG(cr.rating) FROM comment_ratings cr WHERE cr.book_id = books.id), 0)`

// Recompute refreshes the rating of one book using tx.
func Recompute(tx *gorm.DB, bookID int64) error {
	if err := tx.Exec(recomputeOneSQL, bookID, bookID).Error; err != nil {
		return fmt.Errorf("failed to recompute rating for book %d: %w", bookID, err)
	}
	return nil
}

// Reconciler repairs ratings for the whole catalogue.
type Reconciler struct {
	db *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{db: db}
}

// RecomputeAll rewrites every book's rating from its comments and returns
// the number of books touched.
func (r *Reconciler) RecomputeAll(ctx context.Context) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(recomputeAllSQL)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to recompute ratings: %w", err)
	}
	log.Printf("[RATING] Recomputed ratings for %d books", affected)
	return affected, nil
}
