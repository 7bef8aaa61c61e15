package msgpack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// ============================================================
// Native Go Bridge
// ============================================================
//
// Converts between plain Go values (the shapes encoding/json,
// yaml.Unmarshal, and friends produce) and Value trees. The bridge is
// an explicit type switch, not reflection: the codec core stays
// value-model pure and the supported set stays auditable.

// Extension is the native-Go carrier for extension values the bridge
// cannot interpret. Timestamps convert to time.Time instead.
type Extension struct {
	Type int8
	Data []byte
}

// FromGo converts a native Go value to a Value.
//
// Go maps are unordered, so their entries are sorted (string-keyed
// maps by key, mixed-key maps by a fixed kind-then-value order) to
// keep encoding deterministic. map[string]any becomes a Map;
// map[any]any becomes a Table, leaving its array-vs-map wire identity
// to the encode-time array mode.
func FromGo(v any) (*Value, error) {
	if v == nil {
		return Nil(), nil
	}

	switch val := v.(type) {
	case *Value:
		return val, nil

	case bool:
		return Bool(val), nil

	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil

	case uint:
		return Uint(uint64(val)), nil
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case uint64:
		return Uint(val), nil

	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil

	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("msgpack: bad number %q: %w", val.String(), err)
		}
		return Float(f), nil

	case string:
		return Str(val), nil

	case []byte:
		return Bin(val), nil

	case time.Time:
		return Timestamp(val), nil

	case Extension:
		return Ext(val.Type, val.Data), nil

	case []*Value:
		return Array(val...), nil

	case []any:
		elems := make([]*Value, 0, len(val))
		for i, e := range val {
			mv, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			elems = append(elems, mv)
		}
		return Array(elems...), nil

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]MapEntry, 0, len(keys))
		for _, k := range keys {
			mv, err := FromGo(val[k])
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			entries = append(entries, Field(k, mv))
		}
		return Map(entries...), nil

	case map[any]any:
		entries := make([]MapEntry, 0, len(val))
		for k, e := range val {
			mk, err := FromGo(k)
			if err != nil {
				return nil, fmt.Errorf("table key: %w", err)
			}
			mv, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("table[%v]: %w", k, err)
			}
			entries = append(entries, MapEntry{Key: mk, Value: mv})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return valueLess(entries[i].Key, entries[j].Key)
		})
		return Table(entries...), nil

	default:
		return nil, fmt.Errorf("msgpack: cannot convert %T", v)
	}
}

// Go converts a Value back to a native Go value. Integers come back
// as int64 (uint64 above the int64 range), maps with all-string keys
// as map[string]any and otherwise as map[any]any, timestamps as
// time.Time, and other extensions as Extension. Container-kind map
// keys have no hashable Go form and fail.
func (v *Value) Go() (any, error) {
	if v == nil {
		return nil, nil
	}

	switch v.kind {
	case KindNil:
		return nil, nil

	case KindBool:
		return v.boolVal, nil

	case KindInt:
		return v.intVal, nil

	case KindUint:
		return v.uintVal, nil

	case KindFloat:
		return v.floatVal, nil

	case KindString:
		return v.strVal, nil

	case KindBinary:
		return v.binVal, nil

	case KindArray:
		elems := make([]any, 0, len(v.arrayVal))
		for i, e := range v.arrayVal {
			gv, err := e.Go()
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			elems = append(elems, gv)
		}
		return elems, nil

	case KindMap, KindTable:
		if stringKeyed(v.mapVal) {
			obj := make(map[string]any, len(v.mapVal))
			for _, e := range v.mapVal {
				gv, err := e.Value.Go()
				if err != nil {
					return nil, fmt.Errorf("map[%q]: %w", e.Key.strVal, err)
				}
				obj[e.Key.strVal] = gv
			}
			return obj, nil
		}
		obj := make(map[any]any, len(v.mapVal))
		for _, e := range v.mapVal {
			switch e.Key.Kind() {
			case KindNil, KindBool, KindInt, KindUint, KindFloat, KindString:
			default:
				return nil, fmt.Errorf("msgpack: %s map key has no native Go form", e.Key.Kind())
			}
			gk, err := e.Key.Go()
			if err != nil {
				return nil, err
			}
			gv, err := e.Value.Go()
			if err != nil {
				return nil, fmt.Errorf("map[%v]: %w", gk, err)
			}
			obj[gk] = gv
		}
		return obj, nil

	case KindExt:
		if v.IsTimestamp() {
			return v.AsTimestamp()
		}
		return Extension{Type: v.extType, Data: v.extData}, nil

	default:
		return nil, fmt.Errorf("%w (kind %d)", ErrUnsupportedKind, uint8(v.kind))
	}
}

func stringKeyed(entries []MapEntry) bool {
	for _, e := range entries {
		if e.Key.Kind() != KindString {
			return false
		}
	}
	return true
}

// valueLess is the fixed ordering used to make mixed-key Go maps
// deterministic: kind rank first, then value. Only scalar kinds occur
// here, since Go map keys are hashable.
func valueLess(a, b *Value) bool {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return ra < rb
	}
	switch {
	case a.IsNumeric():
		an, _ := a.Number()
		bn, _ := b.Number()
		if an != bn {
			return an < bn
		}
		// Full-precision tiebreak for integers the float compare
		// cannot separate.
		if a.Kind() == KindInt && b.Kind() == KindInt {
			return a.intVal < b.intVal
		}
		if a.Kind() == KindUint && b.Kind() == KindUint {
			return a.uintVal < b.uintVal
		}
		return false
	case a.Kind() == KindBool:
		return !a.boolVal && b.boolVal
	case a.Kind() == KindString:
		return a.strVal < b.strVal
	case a.Kind() == KindBinary:
		return bytes.Compare(a.binVal, b.binVal) < 0
	default:
		return false
	}
}

func kindRank(v *Value) int {
	switch v.Kind() {
	case KindNil:
		return 0
	case KindBool:
		return 1
	case KindInt, KindUint, KindFloat:
		return 2
	case KindString:
		return 3
	case KindBinary:
		return 4
	default:
		return 5
	}
}
