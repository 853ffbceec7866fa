package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

var SqBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var ErrBadQuery = errors.New("bad query")

// UniqueViolation is the postgres error code for duplicate keys.
const UniqueViolation = "23505"
