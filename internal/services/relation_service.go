package services

import (
	"context"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationLedger keeps unique (user, target) pairs of one relation table.
// Favorites and shopping carts target recipes, follows target users.
type RelationLedger[T any] interface {
	// Add records the pair. Fails with a conflict when it already exists and
	// with not found when the target does not exist.
	Add(ctx context.Context, userID, targetID uint) (*T, error)
	// Remove deletes the pair. Removing a pair that is not there is an error.
	Remove(ctx context.Context, userID, targetID uint) error
	// Exists reports whether the pair is recorded. Storage errors read as false.
	Exists(ctx context.Context, userID, targetID uint) bool
	// Members returns which of targetIDs are paired with userID
	Members(ctx context.Context, userID uint, targetIDs []uint) (map[uint]bool, error)
	// TargetIDs lists every target paired with userID, most recent first
	TargetIDs(ctx context.Context, userID uint) ([]uint, error)
}

// Ledgers groups the three relations a recipe view is computed against
type Ledgers struct {
	Favorites RelationLedger[models.Favorite]
	Carts     RelationLedger[models.Cart]
	Follows   RelationLedger[models.Follow]
}

// NewLedgers creates the favorite, cart and follow ledgers over db
func NewLedgers(db *gorm.DB) Ledgers {
	return Ledgers{
		Favorites: NewFavoriteLedger(db),
		Carts:     NewCartLedger(db),
		Follows:   NewFollowLedger(db),
	}
}

type ledger[T any] struct {
	db           *gorm.DB
	name         string
	targetName   string
	targetTable  string
	targetColumn string
	build        func(userID, targetID uint) *T
	guard        func(userID, targetID uint) error
}

// NewFavoriteLedger creates the ledger of favorited recipes
func NewFavoriteLedger(db *gorm.DB) RelationLedger[models.Favorite] {
	return &ledger[models.Favorite]{
		db:           db,
		name:         "favorite",
		targetName:   "recipe",
		targetTable:  "recipes",
		targetColumn: "recipe_id",
		build: func(userID, recipeID uint) *models.Favorite {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}
}

// NewCartLedger creates the ledger of recipes in shopping carts
func NewCartLedger(db *gorm.DB) RelationLedger[models.Cart] {
	return &ledger[models.Cart]{
		db:           db,
		name:         "shopping cart entry",
		targetName:   "recipe",
		targetTable:  "recipes",
		targetColumn: "recipe_id",
		build: func(userID, recipeID uint) *models.Cart {
			return &models.Cart{UserID: userID, RecipeID: recipeID}
		},
	}
}

// NewFollowLedger creates the ledger of author subscriptions
func NewFollowLedger(db *gorm.DB) RelationLedger[models.Follow] {
	return &ledger[models.Follow]{
		db:           db,
		name:         "subscription",
		targetName:   "user",
		targetTable:  "users",
		targetColumn: "author_id",
		build: func(userID, authorID uint) *models.Follow {
			return &models.Follow{UserID: userID, AuthorID: authorID}
		},
		guard: func(userID, authorID uint) error {
			if userID == authorID {
				return apperror.ValidationFailed("author", "you cannot subscribe to yourself")
			}
			return nil
		},
	}
}

func (l *ledger[T]) Add(ctx context.Context, userID, targetID uint) (*T, error) {
	if l.guard != nil {
		if err := l.guard(userID, targetID); err != nil {
			return nil, err
		}
	}

	record := l.build(userID, targetID)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.requireTarget(tx, targetID); err != nil {
			return err
		}
		// fast path; the unique index is what actually guards concurrent adds
		exists, err := l.exists(tx, userID, targetID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.Conflict(l.name, "already exists")
		}
		if err := tx.Omit(clause.Associations).Create(record).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict(l.name, "already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"relation":  l.name,
		"user_id":   userID,
		"target_id": targetID,
	}).Info("Relation added")
	return record, nil
}

func (l *ledger[T]) Remove(ctx context.Context, userID, targetID uint) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.requireTarget(tx, targetID); err != nil {
			return err
		}
		result := tx.Where("user_id = ? AND "+l.targetColumn+" = ?", userID, targetID).Delete(new(T))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.DoesNotExist(l.name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"relation":  l.name,
		"user_id":   userID,
		"target_id": targetID,
	}).Info("Relation removed")
	return nil
}

func (l *ledger[T]) Exists(ctx context.Context, userID, targetID uint) bool {
	if userID == 0 {
		return false
	}
	exists, err := l.exists(l.db.WithContext(ctx), userID, targetID)
	if err != nil {
		log.WithError(err).WithField("relation", l.name).Error("Membership query failed")
		return false
	}
	return exists
}

func (l *ledger[T]) Members(ctx context.Context, userID uint, targetIDs []uint) (map[uint]bool, error) {
	members := make(map[uint]bool)
	if userID == 0 || len(targetIDs) == 0 {
		return members, nil
	}

	var ids []uint
	err := l.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND "+l.targetColumn+" IN ?", userID, targetIDs).
		Pluck(l.targetColumn, &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		members[id] = true
	}
	return members, nil
}

func (l *ledger[T]) TargetIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := l.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ?", userID).
		Order("id DESC").
		Pluck(l.targetColumn, &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (l *ledger[T]) requireTarget(tx *gorm.DB, targetID uint) error {
	var count int64
	if err := tx.Table(l.targetTable).Where("id = ?", targetID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperror.NotFound(l.targetName, targetID)
	}
	return nil
}

func (l *ledger[T]) exists(tx *gorm.DB, userID, targetID uint) (bool, error) {
	var count int64
	err := tx.Model(new(T)).
		Where("user_id = ? AND "+l.targetColumn+" = ?", userID, targetID).
		Count(&count).Error
	return count > 0, err
}
