package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValidationError reports a remote payload that failed strict parsing.
// Upstream corruption must surface here instead of being silently defaulted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateIDPresent rejects empty identifiers before they reach the wire.
func ValidateIDPresent(id, name string) error {
	if id == "" {
		return &ValidationError{Field: name, Reason: "must not be empty"}
	}
	return nil
}

// rawVehicle tolerates the loose shapes the remote store emits (numeric or
// string IDs, missing optionals) so ParseVehicle can normalize explicitly.
type rawVehicle struct {
	ID           json.RawMessage `json:"vehicleId"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         *int            `json:"year"`
	Price        *int            `json:"price"`
	Category     string          `json:"category"`
	FuelType     string          `json:"fuelType"`
	Transmission string          `json:"transmission"`
	Location     string          `json:"location"`
}

// ParseVehicle is a total parsing function for remote vehicle payloads.
// It normalizes numeric-or-string IDs and rejects anything else, returning a
// ValidationError rather than defaulting a corrupt field.
func ParseVehicle(data []byte) (*Vehicle, error) {
	var raw rawVehicle
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, &ValidationError{Field: "vehicle", Reason: err.Error()}
	}

	id, err := normalizeID(raw.ID)
	if err != nil {
		return nil, err
	}
	if raw.Make == "" {
		return nil, &ValidationError{Field: "make", Reason: "must not be empty"}
	}
	if raw.Price == nil {
		return nil, &ValidationError{Field: "price", Reason: "missing"}
	}
	if *raw.Price < 0 {
		return nil, &ValidationError{Field: "price", Reason: "must be >= 0"}
	}
	if raw.Year != nil && *raw.Year < 0 {
		return nil, &ValidationError{Field: "year", Reason: "must be >= 0"}
	}

	v := &Vehicle{
		ID:           id,
		Make:         raw.Make,
		Model:        raw.Model,
		Price:        *raw.Price,
		Category:     raw.Category,
		FuelType:     raw.FuelType,
		Transmission: raw.Transmission,
		Location:     raw.Location,
	}
	if raw.Year != nil {
		v.Year = *raw.Year
	}
	return v, nil
}

// normalizeID accepts a JSON string or a non-negative JSON integer and
// returns its canonical string form.
func normalizeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", &ValidationError{Field: "vehicleId", Reason: "missing"}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", &ValidationError{Field: "vehicleId", Reason: "must not be empty"}
		}
		return s, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 0 {
			return "", &ValidationError{Field: "vehicleId", Reason: "must be >= 0"}
		}
		return strconv.FormatInt(n, 10), nil
	}
	return "", &ValidationError{Field: "vehicleId", Reason: "must be a string or integer"}
}
