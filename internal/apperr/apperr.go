package apperr

import (
	"errors"
	"fmt"
)

// Kind: iş kuralı hatalarının türü. Handler katmanı bu türe göre
// HTTP status kodu seçer, alt tip hiyerarşisi yok.
type Kind int

const (
	KindNotFound Kind = iota + 1 // kayıt yok -> 404
	KindValidation               // geçersiz girdi / iş kuralı ihlali -> 400
	KindConflict                 // unique key çakışması -> 409
	KindFatal                    // beklenmeyen store hatası -> 500
)

type Error struct {
	Kind    Kind
	Message string
	Err     error // sarmalanan orijinal hata (opsiyonel)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Fatal: store'dan gelen hata olduğu gibi sarmalanır, maskelenmez.
func Fatal(message string, err error) *Error {
	return &Error{Kind: KindFatal, Message: message, Err: err}
}

// KindOf: hata zincirinden Kind'ı çıkarır. apperr dışı hatalar Fatal sayılır.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindFatal
}
