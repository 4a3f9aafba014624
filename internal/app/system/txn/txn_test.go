package txn

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil":                   {nil, false},
		"unrelated":             {errors.New("connection reset by peer"), false},
		"illegal operation":     {mongo.CommandError{Code: 20, Message: "standalone"}, true},
		"legacy illegal op":     {mongo.CommandError{Code: 51}, true},
		"not in transaction":    {mongo.CommandError{Code: 263}, true},
		"duplicate key":         {mongo.CommandError{Code: 11000, Message: "E11000"}, false},
		"wrapped command error": {fmt.Errorf("enroll: %w", mongo.CommandError{Code: 20}), true},
		"replica set message":   {errors.New("Transaction numbers are only allowed on a Replica Set member"), true},
		"sessions unsupported":  {errors.New("SESSIONS ARE NOT SUPPORTED by this deployment"), true},
		"transaction alone":     {errors.New("transaction aborted"), false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsNotSupported(tc.err))
		})
	}
}
