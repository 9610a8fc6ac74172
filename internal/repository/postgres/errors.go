package postgres

import (
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"github.com/Kerhoff/dibs/internal/apperr"
)

// constraintFields maps named constraints to the field error a client sees
// when a write violates them.
var constraintFields = map[string]apperr.FieldError{
	"users_email_key":              {Field: "email", Message: "is already registered"},
	"users_facebook_id_key":        {Field: "facebookId", Message: "is already linked"},
	"users_telegram_chat_id_key":   {Field: "telegramChatId", Message: "is already linked to another account"},
	"friendships_user_friend_key":  {Field: "friendId", Message: "is already followed"},
	"friendships_no_self_follow":   {Field: "friendId", Message: "cannot follow yourself"},
	"dibs_gift_user_key":           {Field: "giftId", Message: "has already been dibbed by you"},
	"gifts_quantity_check":         {Field: "quantity", Message: "must be at least 1"},
	"dibs_quantity_check":          {Field: "quantity", Message: "must be at least 1"},
	"users_telegram_link_code_key": {Field: "code", Message: "is already in use"},
}

// constraintError turns unique and check violations into validation errors.
// It returns nil for any other error.
func constraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code.Name() {
	case "unique_violation", "check_violation":
	default:
		return nil
	}
	if field, ok := constraintFields[pqErr.Constraint]; ok {
		return apperr.Validation(field)
	}
	return apperr.Validationf("duplicate or invalid value: %s", pqErr.Message)
}

// jsonParam encodes v for a JSONB parameter. lib/pq sends []byte as bytea,
// so the document travels as text.
func jsonParam(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// nullableJSONParam is jsonParam for optional documents; nil becomes NULL.
func nullableJSONParam[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	return jsonParam(v)
}

// scanJSON decodes a JSONB column read as bytes. NULL leaves dst untouched.
func scanJSON(src []byte, dst any) error {
	if len(src) == 0 || string(src) == "null" {
		return nil
	}
	return json.Unmarshal(src, dst)
}

// scanNullableJSON decodes an optional JSONB document.
func scanNullableJSON[T any](src []byte) (*T, error) {
	if len(src) == 0 || string(src) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(src, v); err != nil {
		return nil, err
	}
	return v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
