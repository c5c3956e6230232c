package description

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observiq/opamp-client-go/protobufs"
)

func TestNewOrdersAttributes(t *testing.T) {
	desc, err := New(
		map[string]interface{}{KeyServiceName: "collector", KeyServiceVersion: "1.2.3"},
		map[string]interface{}{"tags": []string{"a", "b"}, "pid": 42, "ratio": 0.5, "debug": false},
	)
	require.NoError(t, err)

	require.Len(t, desc.IdentifyingAttributes, 2)
	assert.Equal(t, KeyServiceName, desc.IdentifyingAttributes[0].Key)
	assert.Equal(t, KeyServiceVersion, desc.IdentifyingAttributes[1].Key)

	keys := []string{}
	for _, kv := range desc.NonIdentifyingAttributes {
		keys = append(keys, kv.Key)
	}
	assert.Equal(t, []string{"debug", "pid", "ratio", "tags"}, keys)
	assert.Equal(t, &protobufs.AnyValue_IntValue{IntValue: 42}, desc.NonIdentifyingAttributes[1].Value.Value)
}

func TestNewRequiresIdentifyingAttributes(t *testing.T) {
	_, err := New(nil, map[string]interface{}{"a": "b"})
	assert.ErrorIs(t, err, ErrNoIdentifyingAttributes)
}

func TestAnyValueUnsupported(t *testing.T) {
	_, err := AnyValue(struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = AnyValue([]interface{}{"ok", make(chan int)})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestAnyValueNested(t *testing.T) {
	v, err := AnyValue(map[string]interface{}{"inner": []interface{}{int64(1), "two"}})
	require.NoError(t, err)
	kvlist := v.Value.(*protobufs.AnyValue_KvlistValue).KvlistValue
	require.Len(t, kvlist.Values, 1)
	arr := kvlist.Values[0].Value.Value.(*protobufs.AnyValue_ArrayValue).ArrayValue
	assert.Len(t, arr.Values, 2)
}

func TestValidate(t *testing.T) {
	str := func(s string) *protobufs.AnyValue {
		return &protobufs.AnyValue{Value: &protobufs.AnyValue_StringValue{StringValue: s}}
	}
	tests := []struct {
		name string
		desc *protobufs.AgentDescription
		err  error
	}{
		{name: "nil", desc: nil, err: ErrDescriptionMissing},
		{name: "empty", desc: &protobufs.AgentDescription{}, err: ErrNoIdentifyingAttributes},
		{
			name: "empty key",
			desc: &protobufs.AgentDescription{IdentifyingAttributes: []*protobufs.KeyValue{{Key: "", Value: str("x")}}},
			err:  ErrInvalidAttribute,
		},
		{
			name: "duplicate key",
			desc: &protobufs.AgentDescription{IdentifyingAttributes: []*protobufs.KeyValue{
				{Key: "a", Value: str("x")}, {Key: "a", Value: str("y")},
			}},
			err: ErrInvalidAttribute,
		},
		{
			name: "missing value",
			desc: &protobufs.AgentDescription{
				IdentifyingAttributes:    []*protobufs.KeyValue{{Key: "a", Value: str("x")}},
				NonIdentifyingAttributes: []*protobufs.KeyValue{{Key: "b", Value: &protobufs.AnyValue{}}},
			},
			err: ErrInvalidAttribute,
		},
		{
			name: "valid",
			desc: &protobufs.AgentDescription{IdentifyingAttributes: []*protobufs.KeyValue{{Key: "a", Value: str("x")}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.desc)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestHostAttributes(t *testing.T) {
	attrs, err := HostAttributes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runtime.GOOS, attrs[KeyOSType])
	assert.NotEmpty(t, attrs[KeyHostName])
}
