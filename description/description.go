// Package description builds and validates the AgentDescription an Agent reports
// to the Server.
package description

import (
	"errors"
	"fmt"
	"sort"

	"github.com/observiq/opamp-client-go/protobufs"
)

var (
	ErrDescriptionMissing      = errors.New("agent description is nil")
	ErrNoIdentifyingAttributes = errors.New("agent description has no identifying attributes")
	ErrInvalidAttribute        = errors.New("invalid attribute")
	ErrUnsupportedValue        = errors.New("unsupported attribute value")
)

// Attribute keys of the OpenTelemetry semantic conventions commonly used in
// descriptions.
const (
	KeyServiceName       = "service.name"
	KeyServiceVersion    = "service.version"
	KeyServiceInstanceID = "service.instance.id"
	KeyHostName          = "host.name"
	KeyHostID            = "host.id"
	KeyHostArch          = "host.arch"
	KeyOSType            = "os.type"
	KeyOSDescription     = "os.description"
)

// New builds an AgentDescription from plain Go values. Attributes are ordered by key.
func New(identifying, nonIdentifying map[string]interface{}) (*protobufs.AgentDescription, error) {
	ident, err := keyValues(identifying)
	if err != nil {
		return nil, err
	}
	nonIdent, err := keyValues(nonIdentifying)
	if err != nil {
		return nil, err
	}
	desc := &protobufs.AgentDescription{
		IdentifyingAttributes:    ident,
		NonIdentifyingAttributes: nonIdent,
	}
	if err := Validate(desc); err != nil {
		return nil, err
	}
	return desc, nil
}

func keyValues(attrs map[string]interface{}) ([]*protobufs.KeyValue, error) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kvs := make([]*protobufs.KeyValue, 0, len(keys))
	for _, k := range keys {
		v, err := AnyValue(attrs[k])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		kvs = append(kvs, &protobufs.KeyValue{Key: k, Value: v})
	}
	return kvs, nil
}

// AnyValue converts a Go value into an AnyValue. Slices of interface{} become arrays
// and map[string]interface{} becomes a key-value list.
func AnyValue(v interface{}) (*protobufs.AnyValue, error) {
	switch val := v.(type) {
	case string:
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_StringValue{StringValue: val}}, nil
	case bool:
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_BoolValue{BoolValue: val}}, nil
	case int:
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_IntValue{IntValue: int64(val)}}, nil
	case int32:
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_IntValue{IntValue: int64(val)}}, nil
	case int64:
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_IntValue{IntValue: val}}, nil
	case float64:
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_DoubleValue{DoubleValue: val}}, nil
	case []byte:
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_BytesValue{BytesValue: val}}, nil
	case []string:
		values := make([]*protobufs.AnyValue, 0, len(val))
		for _, s := range val {
			values = append(values, &protobufs.AnyValue{Value: &protobufs.AnyValue_StringValue{StringValue: s}})
		}
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_ArrayValue{ArrayValue: &protobufs.ArrayValue{Values: values}}}, nil
	case []interface{}:
		values := make([]*protobufs.AnyValue, 0, len(val))
		for i, item := range val {
			av, err := AnyValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			values = append(values, av)
		}
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_ArrayValue{ArrayValue: &protobufs.ArrayValue{Values: values}}}, nil
	case map[string]interface{}:
		kvs, err := keyValues(val)
		if err != nil {
			return nil, err
		}
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_KvlistValue{KvlistValue: &protobufs.KeyValueList{Values: kvs}}}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

// Validate checks that desc has at least one identifying attribute and that every
// attribute has a non-empty key, unique within its list, and a value.
func Validate(desc *protobufs.AgentDescription) error {
	if desc == nil {
		return ErrDescriptionMissing
	}
	if len(desc.IdentifyingAttributes) == 0 {
		return ErrNoIdentifyingAttributes
	}
	if err := validateAttributes(desc.IdentifyingAttributes); err != nil {
		return fmt.Errorf("identifying attributes: %w", err)
	}
	if err := validateAttributes(desc.NonIdentifyingAttributes); err != nil {
		return fmt.Errorf("non-identifying attributes: %w", err)
	}
	return nil
}

func validateAttributes(kvs []*protobufs.KeyValue) error {
	seen := make(map[string]struct{}, len(kvs))
	for i, kv := range kvs {
		if kv == nil {
			return fmt.Errorf("%w: entry %d is nil", ErrInvalidAttribute, i)
		}
		if kv.Key == "" {
			return fmt.Errorf("%w: entry %d has an empty key", ErrInvalidAttribute, i)
		}
		if _, ok := seen[kv.Key]; ok {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidAttribute, kv.Key)
		}
		seen[kv.Key] = struct{}{}
		if kv.Value == nil || kv.Value.Value == nil {
			return fmt.Errorf("%w: key %q has no value", ErrInvalidAttribute, kv.Key)
		}
	}
	return nil
}
