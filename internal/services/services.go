package services

import (
	"errors"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the service logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Identity is the caller as resolved by the authentication layer.
// The zero value is an anonymous caller.
type Identity struct {
	UserID uint
	Role   string
}

// Anonymous returns the identity of an unauthenticated caller
func Anonymous() Identity {
	return Identity{}
}

// Authenticated reports whether the caller is a known user
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// IsAdmin reports whether the caller has administrator capability
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// isUniqueViolation recognises a uniqueness constraint failure from either
// driver, translated or not
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// notFoundOr maps gorm.ErrRecordNotFound to an apperror for resource/id and passes anything else through
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(resource, id)
	}
	return err
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
