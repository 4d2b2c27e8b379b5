package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("kayıt yok (ID: %d)", 7)))
	assert.Equal(t, KindValidation, KindOf(Validation("geçersiz")))
	assert.Equal(t, KindConflict, KindOf(Conflict("çakışma")))
	assert.Equal(t, KindFatal, KindOf(Fatal("store hatası", errors.New("bağlantı koptu"))))

	// apperr dışı hatalar Fatal sayılır
	assert.Equal(t, KindFatal, KindOf(errors.New("bilinmeyen")))
	assert.Equal(t, KindFatal, KindOf(nil))
}

func TestKindOfWrapped(t *testing.T) {
	inner := NotFound("kayıt yok")
	wrapped := fmt.Errorf("işlem başarısız: %w", inner)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestErrorMessage(t *testing.T) {
	e := NotFound("Restoran bulunamadı (ID: %d)", 3)
	assert.Equal(t, "Restoran bulunamadı (ID: 3)", e.Error())

	cause := errors.New("connection refused")
	f := Fatal("stok sorgulanamadı", cause)
	assert.Equal(t, "stok sorgulanamadı: connection refused", f.Error())
	assert.ErrorIs(t, f, cause)
}
