// internal/app/store/mongoutil/errors.go
package mongoutil

import (
	"errors"

	"github.com/dalemusser/coursehub/internal/domain/errs"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
)

// Wrap maps a driver error onto the errs taxonomy. msg is the caller-facing
// text used for not-found and conflict errors.
func Wrap(op, msg string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return &errs.Error{Op: op, Kind: errs.ErrNotFound, Message: msg, Err: err}
	case wafflemongo.IsDup(err):
		return &errs.Error{Op: op, Kind: errs.ErrConflict, Message: msg, Err: err}
	}
	return errs.Unavailable(op, err)
}
