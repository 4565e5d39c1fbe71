// Package encoding maps a raw transaction submission onto the fixed
// 13-dimensional feature vector the fraud model was trained against.
//
// The encoding is deterministic and pure: categorical strings go through
// a stable SHA-256 bucket hash, numeric fields are coerced with hard
// failures, and the slot order is part of the model contract. Changing
// the order (or the hash) silently breaks inference correctness.
package encoding

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names as they appear on the wire, in validation order.
// ContactAvaliabilityID is misspelled on purpose: it is the field name
// the upstream clients and the trained model both use.
const (
	FieldGender                  = "Gender"
	FieldAge                     = "Age"
	FieldHouseTypeID             = "HouseTypeID"
	FieldContactAvailabilityID   = "ContactAvaliabilityID"
	FieldHomeCountry             = "HomeCountry"
	FieldAccountNo               = "AccountNo"
	FieldCardExpiryDate          = "CardExpiryDate"
	FieldTransactionAmount       = "TransactionAmount"
	FieldTransactionCountry      = "TransactionCountry"
	FieldLargePurchase           = "LargePurchase"
	FieldProductID               = "ProductID"
	FieldCIF                     = "CIF"
	FieldTransactionCurrencyCode = "TransactionCurrencyCode"
)

// RequiredFields lists every field a submission must carry, in the fixed
// order used both for presence validation (first missing wins) and for
// the feature vector slots.
var RequiredFields = []string{
	FieldGender,
	FieldAge,
	FieldHouseTypeID,
	FieldContactAvailabilityID,
	FieldHomeCountry,
	FieldAccountNo,
	FieldCardExpiryDate,
	FieldTransactionAmount,
	FieldTransactionCountry,
	FieldLargePurchase,
	FieldProductID,
	FieldCIF,
	FieldTransactionCurrencyCode,
}

// VectorSize is the dimensionality of the model input.
const VectorSize = 13

// FeatureVector is the ordered numeric input handed to the scaler and
// classifier. Built fresh per request, never mutated afterwards.
type FeatureVector [VectorSize]float64

// Values returns the vector as a slice for collaborators that take []float64.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, VectorSize)
	copy(out, v[:])
	return out
}

// MissingFieldError reports the first required field that was absent,
// null, or the empty string. Zero and false are valid values, not gaps.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing or empty field: %s", e.Field)
}

// InvalidFieldError reports a field that was present but could not be
// coerced to the numeric type the model expects.
type InvalidFieldError struct {
	Field string
	Value any
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid value for field %s: %v", e.Field, e.Value)
}

// ValidateRequired checks that all 13 required fields are present and
// non-empty, failing on the first gap in RequiredFields order. A key is
// missing when absent from the map, JSON null, or the empty string.
func ValidateRequired(raw map[string]any) error {
	for _, field := range RequiredFields {
		v, ok := raw[field]
		if !ok || v == nil || v == "" {
			return &MissingFieldError{Field: field}
		}
	}
	return nil
}

// maleSynonyms is the closed set of values that encode Gender as 1.
// Everything else, recognized or not, encodes as 0.
var maleSynonyms = map[string]bool{
	"M":     true,
	"MALE":  true,
	"HOMME": true,
}

// TransactionInput is the coerced submission retained for persistence.
// AccountNo, CardExpiryDate, and CIF keep their original textual form:
// the vector wants integers but the store keeps what the client sent.
type TransactionInput struct {
	Gender                  string
	Age                     float64
	HouseTypeID             int64
	ContactAvailabilityID   int64
	HomeCountry             string
	AccountNo               string
	CardExpiryDate          string
	TransactionAmount       float64
	TransactionCountry      string
	LargePurchase           int64
	ProductID               int64
	CIF                     string
	TransactionCurrencyCode string
}

// Encoded bundles the feature vector with the retained input fields.
type Encoded struct {
	Vector FeatureVector
	Input  TransactionInput
}

// Encode builds the feature vector from a validated raw submission.
// Each field is coerced independently; there is no cross-field logic.
// Callers should run ValidateRequired first; Encode assumes presence.
func Encode(raw map[string]any) (*Encoded, error) {
	var (
		enc Encoded
		err error
	)

	gender := stringify(raw[FieldGender])
	enc.Input.Gender = gender
	if maleSynonyms[strings.ToUpper(gender)] {
		enc.Vector[0] = 1
	}

	if enc.Input.Age, err = toFloat(FieldAge, raw[FieldAge]); err != nil {
		return nil, err
	}
	enc.Vector[1] = enc.Input.Age

	if enc.Input.HouseTypeID, err = toInt(FieldHouseTypeID, raw[FieldHouseTypeID]); err != nil {
		return nil, err
	}
	enc.Vector[2] = float64(enc.Input.HouseTypeID)

	if enc.Input.ContactAvailabilityID, err = toInt(FieldContactAvailabilityID, raw[FieldContactAvailabilityID]); err != nil {
		return nil, err
	}
	enc.Vector[3] = float64(enc.Input.ContactAvailabilityID)

	enc.Input.HomeCountry = stringify(raw[FieldHomeCountry])
	enc.Vector[4] = float64(hashSlot(raw[FieldHomeCountry]))

	accountNo, err := toInt(FieldAccountNo, raw[FieldAccountNo])
	if err != nil {
		return nil, err
	}
	enc.Input.AccountNo = stringify(raw[FieldAccountNo])
	enc.Vector[5] = float64(accountNo)

	expiry, err := toInt(FieldCardExpiryDate, raw[FieldCardExpiryDate])
	if err != nil {
		return nil, err
	}
	enc.Input.CardExpiryDate = stringify(raw[FieldCardExpiryDate])
	enc.Vector[6] = float64(expiry)

	if enc.Input.TransactionAmount, err = toFloat(FieldTransactionAmount, raw[FieldTransactionAmount]); err != nil {
		return nil, err
	}
	enc.Vector[7] = enc.Input.TransactionAmount

	enc.Input.TransactionCountry = stringify(raw[FieldTransactionCountry])
	enc.Vector[8] = float64(hashSlot(raw[FieldTransactionCountry]))

	if enc.Input.LargePurchase, err = toInt(FieldLargePurchase, raw[FieldLargePurchase]); err != nil {
		return nil, err
	}
	enc.Vector[9] = float64(enc.Input.LargePurchase)

	if enc.Input.ProductID, err = toInt(FieldProductID, raw[FieldProductID]); err != nil {
		return nil, err
	}
	enc.Vector[10] = float64(enc.Input.ProductID)

	cif, err := toInt(FieldCIF, raw[FieldCIF])
	if err != nil {
		return nil, err
	}
	enc.Input.CIF = stringify(raw[FieldCIF])
	enc.Vector[11] = float64(cif)

	enc.Input.TransactionCurrencyCode = stringify(raw[FieldTransactionCurrencyCode])
	enc.Vector[12] = float64(hashSlot(raw[FieldTransactionCurrencyCode]))

	return &enc, nil
}

// hashSlot buckets a categorical value. Only genuine strings are hashed;
// anything else maps to bucket 0.
func hashSlot(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	return StableHash(s)
}

// toFloat coerces a JSON value to float64.
func toFloat(field string, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, &InvalidFieldError{Field: field, Value: v}
		}
		return f, nil
	default:
		return 0, &InvalidFieldError{Field: field, Value: v}
	}
}

// toInt coerces a JSON value to int64. Fractional numbers truncate
// toward zero; fractional strings are rejected.
func toInt(field string, v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		return int64(x), nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, &InvalidFieldError{Field: field, Value: v}
		}
		return i, nil
	default:
		return 0, &InvalidFieldError{Field: field, Value: v}
	}
}

// stringify keeps the client's textual form for storage. Numbers that
// arrived as JSON numbers are rendered without a trailing ".0" when
// they are integral.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
