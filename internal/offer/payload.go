package offer

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"hiring-pipeline/internal/domain"
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

// DecimalHook decodes strings and numbers into decimal.Decimal.
func DecimalHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != decimalType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(v)
		case json.Number:
			return decimal.NewFromString(v.String())
		case float64:
			return decimal.NewFromFloat(v), nil
		case float32:
			return decimal.NewFromFloat32(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case decimal.Decimal:
			return v, nil
		}
		return nil, fmt.Errorf("cannot decode %T as a decimal", data)
	}
}

// DateHook accepts RFC 3339 timestamps and plain dates.
func DateHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != timeType {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), nil
		}
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", s)
		}
		return t, nil
	}
}

// DecodeChange reads a transition payload. Unknown keys are rejected.
func DecodeChange(payload map[string]any) (Change, error) {
	var ch Change
	if len(payload) == 0 {
		return ch, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(DecimalHook(), DateHook()),
		ErrorUnused: true,
		Result:      &ch,
	})
	if err != nil {
		return ch, err
	}
	if err := dec.Decode(payload); err != nil {
		return Change{}, domain.Invalid("payload", "%v", err)
	}
	return ch, nil
}
