package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, translate(nil))
	})

	t.Run("record not found", func(t *testing.T) {
		err := translate(fmt.Errorf("first: %w", gorm.ErrRecordNotFound))
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("postgres unique violation", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", Detail: "Key (sku)=(SKU-1) already exists."}
		err := translate(fmt.Errorf("insert product: %w", pgErr))

		var dup *DuplicateKeyError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "Key (sku)=(SKU-1) already exists.", dup.Detail)
		assert.ErrorIs(t, err, ErrDuplicateKey)
		assert.Equal(t, "duplicate key: Key (sku)=(SKU-1) already exists.", err.Error())

		var cause *pgconn.PgError
		require.True(t, errors.As(err, &cause))
		assert.Same(t, pgErr, cause)
	})

	t.Run("other postgres error", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503", Detail: "foreign key"}
		err := translate(pgErr)
		assert.Same(t, pgErr, err)
		assert.NotErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("gorm duplicated key", func(t *testing.T) {
		err := translate(gorm.ErrDuplicatedKey)

		var dup *DuplicateKeyError
		require.True(t, errors.As(err, &dup))
		assert.Empty(t, dup.Detail)
		assert.ErrorIs(t, err, ErrDuplicateKey)
		assert.Equal(t, "duplicate key", err.Error())
	})

	t.Run("unrelated error is unchanged", func(t *testing.T) {
		cause := errors.New("connection reset")
		assert.Same(t, cause, translate(cause))
	})
}
