package repository

import (
	"context"
	"errors"

	"otkup-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceRepository interface {
	// Next performs the atomic read-increment-write on the order counter and
	// returns the newly issued number. Must be called inside a transaction;
	// the row lock is what keeps concurrent creators from observing the same
	// value.
	Next(ctx context.Context) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context) (int64, error) {
	db := GetDB(ctx, r.db)

	var seq model.OrderSequence
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = model.OrderSequence{LastIssuedNumber: 1}
		if err := db.Create(&seq).Error; err != nil {
			return 0, err
		}
		return seq.LastIssuedNumber, nil
	}
	if err != nil {
		return 0, err
	}

	seq.LastIssuedNumber++
	if err := db.Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.LastIssuedNumber, nil
}
