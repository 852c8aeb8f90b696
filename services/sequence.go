package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockRow takes a row lock on the parent so concurrent creators serialize on
// it. Dialects without row locks (sqlite) drop the FOR UPDATE clause and rely
// on the database-wide write lock instead.
func lockRow(tx *gorm.DB, dest interface{}, id uint) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(dest, id).Error
}

// nextNumber returns the next dense per-parent sequence number, starting at 0.
func nextNumber(tx *gorm.DB, model interface{}, parentColumn string, parentID uint) (int, error) {
	var next int
	err := tx.Model(model).
		Where(parentColumn+" = ?", parentID).
		Select("COALESCE(MAX(number), -1) + 1").
		Scan(&next).Error
	return next, err
}
