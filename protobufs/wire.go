package protobufs

import (
	"errors"
	"math"
	"sort"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes the message in the Protocol Buffers binary format. Map entries are
// written in key order so the output is deterministic.
func (m *AgentToServer) Marshal() ([]byte, error) {
	return m.appendWire(nil), nil
}

// Unmarshal replaces the content of m with the decoded message.
func (m *AgentToServer) Unmarshal(b []byte) error {
	*m = AgentToServer{}
	return m.unmarshalWire(b)
}

// Marshal encodes the message in the Protocol Buffers binary format.
func (m *ServerToAgent) Marshal() ([]byte, error) {
	return m.appendWire(nil), nil
}

// Unmarshal replaces the content of m with the decoded message. Unknown fields are
// skipped and recorded in UnknownFields.
func (m *ServerToAgent) Unmarshal(b []byte) error {
	*m = ServerToAgent{}
	return m.unmarshalWire(b)
}

type unmarshaler interface {
	unmarshalWire(b []byte) error
}

// Encoding helpers. Scalars equal to their zero value are omitted as proto3 does.

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

func appendFixed64(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendMessage writes an embedded message. Callers only invoke it for set messages,
// so an empty inner encoding still marks the field as present.
func appendMessage(b []byte, num protowire.Number, inner []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decoding helpers. They return the number of bytes consumed or a negative
// protowire error code.

type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func walk(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	return protowire.ConsumeFieldValue(num, typ, b), nil
}

func consumeUint64(b []byte, dst *uint64) int {
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = v
	}
	return n
}

func consumeInt32(b []byte, dst *int32) int {
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = int32(v)
	}
	return n
}

func consumeBool(b []byte, dst *bool) int {
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = protowire.DecodeBool(v)
	}
	return n
}

func consumeFixed64(b []byte, dst *uint64) int {
	v, n := protowire.ConsumeFixed64(b)
	if n >= 0 {
		*dst = v
	}
	return n
}

// errInvalidUTF8 is returned for string fields that proto3 requires to be valid UTF-8.
var errInvalidUTF8 = errors.New("proto: string field contains invalid UTF-8")

func consumeString(b []byte, dst *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return n, nil
	}
	if !utf8.ValidString(v) {
		return n, errInvalidUTF8
	}
	*dst = v
	return n, nil
}

// consumeBytes copies the value so decoded messages never alias the input buffer.
func consumeBytes(b []byte, dst *[]byte) int {
	v, n := protowire.ConsumeBytes(b)
	if n >= 0 {
		*dst = append([]byte(nil), v...)
	}
	return n
}

func consumeMessage(b []byte, m unmarshaler) (int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	return n, m.unmarshalWire(v)
}

func consumeMapEntry(b []byte, value unmarshaler) (string, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return "", n, nil
	}
	var key string
	err := walk(v, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &key)
		case num == 2 && typ == protowire.BytesType:
			return consumeMessage(b, value)
		}
		return skipField(num, typ, b)
	})
	return key, n, err
}

func consumeStringMapEntry(b []byte) (string, string, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return "", "", n, nil
	}
	var key, value string
	err := walk(v, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &key)
		case num == 2 && typ == protowire.BytesType:
			return consumeString(b, &value)
		}
		return skipField(num, typ, b)
	})
	return key, value, n, err
}

// AgentToServer

func (m *AgentToServer) appendWire(b []byte) []byte {
	b = appendBytes(b, 1, m.InstanceUid)
	b = appendVarint(b, 2, m.SequenceNum)
	if m.AgentDescription != nil {
		b = appendMessage(b, 3, m.AgentDescription.appendWire(nil))
	}
	b = appendVarint(b, 4, m.Capabilities)
	if m.Health != nil {
		b = appendMessage(b, 5, m.Health.appendWire(nil))
	}
	if m.EffectiveConfig != nil {
		b = appendMessage(b, 6, m.EffectiveConfig.appendWire(nil))
	}
	if m.RemoteConfigStatus != nil {
		b = appendMessage(b, 7, m.RemoteConfigStatus.appendWire(nil))
	}
	if m.PackageStatuses != nil {
		b = appendMessage(b, 8, m.PackageStatuses.appendWire(nil))
	}
	if m.AgentDisconnect != nil {
		b = appendMessage(b, 9, nil)
	}
	b = appendVarint(b, 10, m.Flags)
	if m.CustomCapabilities != nil {
		b = appendMessage(b, 12, m.CustomCapabilities.appendWire(nil))
	}
	if m.CustomMessage != nil {
		b = appendMessage(b, 13, m.CustomMessage.appendWire(nil))
	}
	return b
}

func (m *AgentToServer) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeBytes(b, &m.InstanceUid), nil
		case num == 2 && typ == protowire.VarintType:
			return consumeUint64(b, &m.SequenceNum), nil
		case num == 3 && typ == protowire.BytesType:
			m.AgentDescription = &AgentDescription{}
			return consumeMessage(b, m.AgentDescription)
		case num == 4 && typ == protowire.VarintType:
			return consumeUint64(b, &m.Capabilities), nil
		case num == 5 && typ == protowire.BytesType:
			m.Health = &ComponentHealth{}
			return consumeMessage(b, m.Health)
		case num == 6 && typ == protowire.BytesType:
			m.EffectiveConfig = &EffectiveConfig{}
			return consumeMessage(b, m.EffectiveConfig)
		case num == 7 && typ == protowire.BytesType:
			m.RemoteConfigStatus = &RemoteConfigStatus{}
			return consumeMessage(b, m.RemoteConfigStatus)
		case num == 8 && typ == protowire.BytesType:
			m.PackageStatuses = &PackageStatuses{}
			return consumeMessage(b, m.PackageStatuses)
		case num == 9 && typ == protowire.BytesType:
			m.AgentDisconnect = &AgentDisconnect{}
			return protowire.ConsumeFieldValue(num, typ, b), nil
		case num == 10 && typ == protowire.VarintType:
			return consumeUint64(b, &m.Flags), nil
		case num == 12 && typ == protowire.BytesType:
			m.CustomCapabilities = &CustomCapabilities{}
			return consumeMessage(b, m.CustomCapabilities)
		case num == 13 && typ == protowire.BytesType:
			m.CustomMessage = &CustomMessage{}
			return consumeMessage(b, m.CustomMessage)
		}
		return skipField(num, typ, b)
	})
}

// ServerToAgent

func (m *ServerToAgent) appendWire(b []byte) []byte {
	b = appendBytes(b, 1, m.InstanceUid)
	if m.ErrorResponse != nil {
		b = appendMessage(b, 2, m.ErrorResponse.appendWire(nil))
	}
	if m.RemoteConfig != nil {
		b = appendMessage(b, 3, m.RemoteConfig.appendWire(nil))
	}
	if m.ConnectionSettings != nil {
		b = appendMessage(b, 4, m.ConnectionSettings.appendWire(nil))
	}
	if m.PackagesAvailable != nil {
		b = appendMessage(b, 5, m.PackagesAvailable.appendWire(nil))
	}
	b = appendVarint(b, 6, m.Flags)
	b = appendVarint(b, 7, m.Capabilities)
	if m.AgentIdentification != nil {
		b = appendMessage(b, 8, m.AgentIdentification.appendWire(nil))
	}
	if m.Command != nil {
		b = appendMessage(b, 9, m.Command.appendWire(nil))
	}
	if m.CustomCapabilities != nil {
		b = appendMessage(b, 10, m.CustomCapabilities.appendWire(nil))
	}
	if m.CustomMessage != nil {
		b = appendMessage(b, 11, m.CustomMessage.appendWire(nil))
	}
	return b
}

func (m *ServerToAgent) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeBytes(b, &m.InstanceUid), nil
		case num == 2 && typ == protowire.BytesType:
			m.ErrorResponse = &ServerErrorResponse{}
			return consumeMessage(b, m.ErrorResponse)
		case num == 3 && typ == protowire.BytesType:
			m.RemoteConfig = &AgentRemoteConfig{}
			return consumeMessage(b, m.RemoteConfig)
		case num == 4 && typ == protowire.BytesType:
			m.ConnectionSettings = &ConnectionSettingsOffers{}
			return consumeMessage(b, m.ConnectionSettings)
		case num == 5 && typ == protowire.BytesType:
			m.PackagesAvailable = &PackagesAvailable{}
			return consumeMessage(b, m.PackagesAvailable)
		case num == 6 && typ == protowire.VarintType:
			return consumeUint64(b, &m.Flags), nil
		case num == 7 && typ == protowire.VarintType:
			return consumeUint64(b, &m.Capabilities), nil
		case num == 8 && typ == protowire.BytesType:
			m.AgentIdentification = &AgentIdentification{}
			return consumeMessage(b, m.AgentIdentification)
		case num == 9 && typ == protowire.BytesType:
			m.Command = &ServerToAgentCommand{}
			return consumeMessage(b, m.Command)
		case num == 10 && typ == protowire.BytesType:
			m.CustomCapabilities = &CustomCapabilities{}
			return consumeMessage(b, m.CustomCapabilities)
		case num == 11 && typ == protowire.BytesType:
			m.CustomMessage = &CustomMessage{}
			return consumeMessage(b, m.CustomMessage)
		}
		m.UnknownFields = append(m.UnknownFields, num)
		return skipField(num, typ, b)
	})
}

// Connection settings

func appendEndpointSettings(b []byte, endpoint string, headers *Headers, cert *TLSCertificate) []byte {
	b = appendString(b, 1, endpoint)
	if headers != nil {
		b = appendMessage(b, 2, headers.appendWire(nil))
	}
	if cert != nil {
		b = appendMessage(b, 3, cert.appendWire(nil))
	}
	return b
}

func (m *OpAMPConnectionSettings) appendWire(b []byte) []byte {
	b = appendEndpointSettings(b, m.DestinationEndpoint, m.Headers, m.Certificate)
	return appendVarint(b, 4, m.HeartbeatIntervalSeconds)
}

func (m *OpAMPConnectionSettings) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.DestinationEndpoint)
		case num == 2 && typ == protowire.BytesType:
			m.Headers = &Headers{}
			return consumeMessage(b, m.Headers)
		case num == 3 && typ == protowire.BytesType:
			m.Certificate = &TLSCertificate{}
			return consumeMessage(b, m.Certificate)
		case num == 4 && typ == protowire.VarintType:
			return consumeUint64(b, &m.HeartbeatIntervalSeconds), nil
		}
		return skipField(num, typ, b)
	})
}

func (m *TelemetryConnectionSettings) appendWire(b []byte) []byte {
	return appendEndpointSettings(b, m.DestinationEndpoint, m.Headers, m.Certificate)
}

func (m *TelemetryConnectionSettings) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.DestinationEndpoint)
		case num == 2 && typ == protowire.BytesType:
			m.Headers = &Headers{}
			return consumeMessage(b, m.Headers)
		case num == 3 && typ == protowire.BytesType:
			m.Certificate = &TLSCertificate{}
			return consumeMessage(b, m.Certificate)
		}
		return skipField(num, typ, b)
	})
}

func (m *OtherConnectionSettings) appendWire(b []byte) []byte {
	b = appendEndpointSettings(b, m.DestinationEndpoint, m.Headers, m.Certificate)
	for _, k := range sortedKeys(m.OtherSettings) {
		entry := appendString(nil, 1, k)
		entry = appendString(entry, 2, m.OtherSettings[k])
		b = appendMessage(b, 4, entry)
	}
	return b
}

func (m *OtherConnectionSettings) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.DestinationEndpoint)
		case num == 2 && typ == protowire.BytesType:
			m.Headers = &Headers{}
			return consumeMessage(b, m.Headers)
		case num == 3 && typ == protowire.BytesType:
			m.Certificate = &TLSCertificate{}
			return consumeMessage(b, m.Certificate)
		case num == 4 && typ == protowire.BytesType:
			key, value, n, err := consumeStringMapEntry(b)
			if n < 0 || err != nil {
				return n, err
			}
			if m.OtherSettings == nil {
				m.OtherSettings = map[string]string{}
			}
			m.OtherSettings[key] = value
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

func (m *Headers) appendWire(b []byte) []byte {
	for _, h := range m.Headers {
		if h == nil {
			continue
		}
		b = appendMessage(b, 1, h.appendWire(nil))
	}
	return b
}

func (m *Headers) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			h := &Header{}
			m.Headers = append(m.Headers, h)
			return consumeMessage(b, h)
		}
		return skipField(num, typ, b)
	})
}

func (m *Header) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Key)
	return appendString(b, 2, m.Value)
}

func (m *Header) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.Key)
		case num == 2 && typ == protowire.BytesType:
			return consumeString(b, &m.Value)
		}
		return skipField(num, typ, b)
	})
}

func (m *TLSCertificate) appendWire(b []byte) []byte {
	b = appendBytes(b, 1, m.PublicKey)
	b = appendBytes(b, 2, m.PrivateKey)
	return appendBytes(b, 3, m.CaPublicKey)
}

func (m *TLSCertificate) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeBytes(b, &m.PublicKey), nil
		case num == 2 && typ == protowire.BytesType:
			return consumeBytes(b, &m.PrivateKey), nil
		case num == 3 && typ == protowire.BytesType:
			return consumeBytes(b, &m.CaPublicKey), nil
		}
		return skipField(num, typ, b)
	})
}

func (m *ConnectionSettingsOffers) appendWire(b []byte) []byte {
	b = appendBytes(b, 1, m.Hash)
	if m.Opamp != nil {
		b = appendMessage(b, 2, m.Opamp.appendWire(nil))
	}
	if m.OwnMetrics != nil {
		b = appendMessage(b, 3, m.OwnMetrics.appendWire(nil))
	}
	if m.OwnTraces != nil {
		b = appendMessage(b, 4, m.OwnTraces.appendWire(nil))
	}
	if m.OwnLogs != nil {
		b = appendMessage(b, 5, m.OwnLogs.appendWire(nil))
	}
	for _, k := range sortedKeys(m.OtherConnections) {
		entry := appendString(nil, 1, k)
		if v := m.OtherConnections[k]; v != nil {
			entry = appendMessage(entry, 2, v.appendWire(nil))
		}
		b = appendMessage(b, 6, entry)
	}
	return b
}

func (m *ConnectionSettingsOffers) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeBytes(b, &m.Hash), nil
		case num == 2 && typ == protowire.BytesType:
			m.Opamp = &OpAMPConnectionSettings{}
			return consumeMessage(b, m.Opamp)
		case num == 3 && typ == protowire.BytesType:
			m.OwnMetrics = &TelemetryConnectionSettings{}
			return consumeMessage(b, m.OwnMetrics)
		case num == 4 && typ == protowire.BytesType:
			m.OwnTraces = &TelemetryConnectionSettings{}
			return consumeMessage(b, m.OwnTraces)
		case num == 5 && typ == protowire.BytesType:
			m.OwnLogs = &TelemetryConnectionSettings{}
			return consumeMessage(b, m.OwnLogs)
		case num == 6 && typ == protowire.BytesType:
			value := &OtherConnectionSettings{}
			key, n, err := consumeMapEntry(b, value)
			if n < 0 || err != nil {
				return n, err
			}
			if m.OtherConnections == nil {
				m.OtherConnections = map[string]*OtherConnectionSettings{}
			}
			m.OtherConnections[key] = value
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

// Packages

func (m *PackagesAvailable) appendWire(b []byte) []byte {
	for _, k := range sortedKeys(m.Packages) {
		entry := appendString(nil, 1, k)
		if v := m.Packages[k]; v != nil {
			entry = appendMessage(entry, 2, v.appendWire(nil))
		}
		b = appendMessage(b, 1, entry)
	}
	return appendBytes(b, 2, m.AllPackagesHash)
}

func (m *PackagesAvailable) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			value := &PackageAvailable{}
			key, n, err := consumeMapEntry(b, value)
			if n < 0 || err != nil {
				return n, err
			}
			if m.Packages == nil {
				m.Packages = map[string]*PackageAvailable{}
			}
			m.Packages[key] = value
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			return consumeBytes(b, &m.AllPackagesHash), nil
		}
		return skipField(num, typ, b)
	})
}

func (m *PackageAvailable) appendWire(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.Type))
	b = appendString(b, 2, m.Version)
	if m.File != nil {
		b = appendMessage(b, 3, m.File.appendWire(nil))
	}
	return appendBytes(b, 4, m.Hash)
}

func (m *PackageAvailable) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			var v int32
			n := consumeInt32(b, &v)
			m.Type = PackageType(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			return consumeString(b, &m.Version)
		case num == 3 && typ == protowire.BytesType:
			m.File = &DownloadableFile{}
			return consumeMessage(b, m.File)
		case num == 4 && typ == protowire.BytesType:
			return consumeBytes(b, &m.Hash), nil
		}
		return skipField(num, typ, b)
	})
}

func (m *DownloadableFile) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.DownloadUrl)
	b = appendBytes(b, 2, m.ContentHash)
	return appendBytes(b, 3, m.Signature)
}

func (m *DownloadableFile) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.DownloadUrl)
		case num == 2 && typ == protowire.BytesType:
			return consumeBytes(b, &m.ContentHash), nil
		case num == 3 && typ == protowire.BytesType:
			return consumeBytes(b, &m.Signature), nil
		}
		return skipField(num, typ, b)
	})
}

func (m *PackageStatuses) appendWire(b []byte) []byte {
	for _, k := range sortedKeys(m.Packages) {
		entry := appendString(nil, 1, k)
		if v := m.Packages[k]; v != nil {
			entry = appendMessage(entry, 2, v.appendWire(nil))
		}
		b = appendMessage(b, 1, entry)
	}
	b = appendBytes(b, 2, m.ServerProvidedAllPackagesHash)
	return appendString(b, 3, m.ErrorMessage)
}

func (m *PackageStatuses) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			value := &PackageStatus{}
			key, n, err := consumeMapEntry(b, value)
			if n < 0 || err != nil {
				return n, err
			}
			if m.Packages == nil {
				m.Packages = map[string]*PackageStatus{}
			}
			m.Packages[key] = value
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			return consumeBytes(b, &m.ServerProvidedAllPackagesHash), nil
		case num == 3 && typ == protowire.BytesType:
			return consumeString(b, &m.ErrorMessage)
		}
		return skipField(num, typ, b)
	})
}

func (m *PackageStatus) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.AgentHasVersion)
	b = appendBytes(b, 3, m.AgentHasHash)
	b = appendString(b, 4, m.ServerOfferedVersion)
	b = appendBytes(b, 5, m.ServerOfferedHash)
	b = appendVarint(b, 6, uint64(m.Status))
	return appendString(b, 7, m.ErrorMessage)
}

func (m *PackageStatus) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.Name)
		case num == 2 && typ == protowire.BytesType:
			return consumeString(b, &m.AgentHasVersion)
		case num == 3 && typ == protowire.BytesType:
			return consumeBytes(b, &m.AgentHasHash), nil
		case num == 4 && typ == protowire.BytesType:
			return consumeString(b, &m.ServerOfferedVersion)
		case num == 5 && typ == protowire.BytesType:
			return consumeBytes(b, &m.ServerOfferedHash), nil
		case num == 6 && typ == protowire.VarintType:
			var v int32
			n := consumeInt32(b, &v)
			m.Status = PackageStatusEnum(v)
			return n, nil
		case num == 7 && typ == protowire.BytesType:
			return consumeString(b, &m.ErrorMessage)
		}
		return skipField(num, typ, b)
	})
}

// Errors and commands

func (m *ServerErrorResponse) appendWire(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.Type))
	b = appendString(b, 2, m.ErrorMessage)
	if m.RetryInfo != nil {
		b = appendMessage(b, 3, m.RetryInfo.appendWire(nil))
	}
	return b
}

func (m *ServerErrorResponse) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			var v int32
			n := consumeInt32(b, &v)
			m.Type = ServerErrorResponseType(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			return consumeString(b, &m.ErrorMessage)
		case num == 3 && typ == protowire.BytesType:
			m.RetryInfo = &RetryInfo{}
			return consumeMessage(b, m.RetryInfo)
		}
		return skipField(num, typ, b)
	})
}

func (m *RetryInfo) appendWire(b []byte) []byte {
	return appendVarint(b, 1, m.RetryAfterNanoseconds)
}

func (m *RetryInfo) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.VarintType {
			return consumeUint64(b, &m.RetryAfterNanoseconds), nil
		}
		return skipField(num, typ, b)
	})
}

func (m *ServerToAgentCommand) appendWire(b []byte) []byte {
	return appendVarint(b, 1, uint64(m.Type))
}

func (m *ServerToAgentCommand) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.VarintType {
			var v int32
			n := consumeInt32(b, &v)
			m.Type = CommandType(v)
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

func (m *AgentIdentification) appendWire(b []byte) []byte {
	return appendBytes(b, 1, m.NewInstanceUid)
}

func (m *AgentIdentification) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			return consumeBytes(b, &m.NewInstanceUid), nil
		}
		return skipField(num, typ, b)
	})
}

// Agent status

func (m *AgentDescription) appendWire(b []byte) []byte {
	for _, kv := range m.IdentifyingAttributes {
		if kv != nil {
			b = appendMessage(b, 1, kv.appendWire(nil))
		}
	}
	for _, kv := range m.NonIdentifyingAttributes {
		if kv != nil {
			b = appendMessage(b, 2, kv.appendWire(nil))
		}
	}
	return b
}

func (m *AgentDescription) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			kv := &KeyValue{}
			m.IdentifyingAttributes = append(m.IdentifyingAttributes, kv)
			return consumeMessage(b, kv)
		case num == 2 && typ == protowire.BytesType:
			kv := &KeyValue{}
			m.NonIdentifyingAttributes = append(m.NonIdentifyingAttributes, kv)
			return consumeMessage(b, kv)
		}
		return skipField(num, typ, b)
	})
}

func (m *ComponentHealth) appendWire(b []byte) []byte {
	b = appendBool(b, 1, m.Healthy)
	b = appendFixed64(b, 2, m.StartTimeUnixNano)
	b = appendString(b, 3, m.LastError)
	b = appendString(b, 4, m.Status)
	b = appendFixed64(b, 5, m.StatusTimeUnixNano)
	for _, k := range sortedKeys(m.ComponentHealthMap) {
		entry := appendString(nil, 1, k)
		if v := m.ComponentHealthMap[k]; v != nil {
			entry = appendMessage(entry, 2, v.appendWire(nil))
		}
		b = appendMessage(b, 6, entry)
	}
	return b
}

func (m *ComponentHealth) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			return consumeBool(b, &m.Healthy), nil
		case num == 2 && typ == protowire.Fixed64Type:
			return consumeFixed64(b, &m.StartTimeUnixNano), nil
		case num == 3 && typ == protowire.BytesType:
			return consumeString(b, &m.LastError)
		case num == 4 && typ == protowire.BytesType:
			return consumeString(b, &m.Status)
		case num == 5 && typ == protowire.Fixed64Type:
			return consumeFixed64(b, &m.StatusTimeUnixNano), nil
		case num == 6 && typ == protowire.BytesType:
			value := &ComponentHealth{}
			key, n, err := consumeMapEntry(b, value)
			if n < 0 || err != nil {
				return n, err
			}
			if m.ComponentHealthMap == nil {
				m.ComponentHealthMap = map[string]*ComponentHealth{}
			}
			m.ComponentHealthMap[key] = value
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

func (m *EffectiveConfig) appendWire(b []byte) []byte {
	if m.ConfigMap != nil {
		b = appendMessage(b, 1, m.ConfigMap.appendWire(nil))
	}
	return b
}

func (m *EffectiveConfig) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			m.ConfigMap = &AgentConfigMap{}
			return consumeMessage(b, m.ConfigMap)
		}
		return skipField(num, typ, b)
	})
}

func (m *RemoteConfigStatus) appendWire(b []byte) []byte {
	b = appendBytes(b, 1, m.LastRemoteConfigHash)
	b = appendVarint(b, 2, uint64(m.Status))
	return appendString(b, 3, m.ErrorMessage)
}

func (m *RemoteConfigStatus) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeBytes(b, &m.LastRemoteConfigHash), nil
		case num == 2 && typ == protowire.VarintType:
			var v int32
			n := consumeInt32(b, &v)
			m.Status = RemoteConfigStatuses(v)
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			return consumeString(b, &m.ErrorMessage)
		}
		return skipField(num, typ, b)
	})
}

// Remote configuration

func (m *AgentRemoteConfig) appendWire(b []byte) []byte {
	if m.Config != nil {
		b = appendMessage(b, 1, m.Config.appendWire(nil))
	}
	return appendBytes(b, 2, m.ConfigHash)
}

func (m *AgentRemoteConfig) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			m.Config = &AgentConfigMap{}
			return consumeMessage(b, m.Config)
		case num == 2 && typ == protowire.BytesType:
			return consumeBytes(b, &m.ConfigHash), nil
		}
		return skipField(num, typ, b)
	})
}

func (m *AgentConfigMap) appendWire(b []byte) []byte {
	for _, k := range sortedKeys(m.ConfigMap) {
		entry := appendString(nil, 1, k)
		if v := m.ConfigMap[k]; v != nil {
			entry = appendMessage(entry, 2, v.appendWire(nil))
		}
		b = appendMessage(b, 1, entry)
	}
	return b
}

func (m *AgentConfigMap) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			value := &AgentConfigFile{}
			key, n, err := consumeMapEntry(b, value)
			if n < 0 || err != nil {
				return n, err
			}
			if m.ConfigMap == nil {
				m.ConfigMap = map[string]*AgentConfigFile{}
			}
			m.ConfigMap[key] = value
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

func (m *AgentConfigFile) appendWire(b []byte) []byte {
	b = appendBytes(b, 1, m.Body)
	return appendString(b, 2, m.ContentType)
}

func (m *AgentConfigFile) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeBytes(b, &m.Body), nil
		case num == 2 && typ == protowire.BytesType:
			return consumeString(b, &m.ContentType)
		}
		return skipField(num, typ, b)
	})
}

// Custom capabilities

func (m *CustomCapabilities) appendWire(b []byte) []byte {
	for _, c := range m.Capabilities {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, c)
	}
	return b
}

func (m *CustomCapabilities) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			var c string
			n, err := consumeString(b, &c)
			if err == nil && n >= 0 {
				m.Capabilities = append(m.Capabilities, c)
			}
			return n, err
		}
		return skipField(num, typ, b)
	})
}

func (m *CustomMessage) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Capability)
	b = appendString(b, 2, m.Type)
	return appendBytes(b, 3, m.Data)
}

func (m *CustomMessage) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.Capability)
		case num == 2 && typ == protowire.BytesType:
			return consumeString(b, &m.Type)
		case num == 3 && typ == protowire.BytesType:
			return consumeBytes(b, &m.Data), nil
		}
		return skipField(num, typ, b)
	})
}

// Common values

func (m *KeyValue) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Key)
	if m.Value != nil {
		b = appendMessage(b, 2, m.Value.appendWire(nil))
	}
	return b
}

func (m *KeyValue) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.Key)
		case num == 2 && typ == protowire.BytesType:
			m.Value = &AnyValue{}
			return consumeMessage(b, m.Value)
		}
		return skipField(num, typ, b)
	})
}

// appendWire always writes the selected oneof member, zero values included.
func (m *AnyValue) appendWire(b []byte) []byte {
	switch v := m.Value.(type) {
	case *AnyValue_StringValue:
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, v.StringValue)
	case *AnyValue_BoolValue:
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(v.BoolValue))
	case *AnyValue_IntValue:
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v.IntValue))
	case *AnyValue_DoubleValue:
		b = protowire.AppendTag(b, 4, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v.DoubleValue))
	case *AnyValue_ArrayValue:
		var inner []byte
		if v.ArrayValue != nil {
			inner = v.ArrayValue.appendWire(nil)
		}
		b = appendMessage(b, 5, inner)
	case *AnyValue_KvlistValue:
		var inner []byte
		if v.KvlistValue != nil {
			inner = v.KvlistValue.appendWire(nil)
		}
		b = appendMessage(b, 6, inner)
	case *AnyValue_BytesValue:
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendBytes(b, v.BytesValue)
	}
	return b
}

func (m *AnyValue) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v := &AnyValue_StringValue{}
			m.Value = v
			return consumeString(b, &v.StringValue)
		case num == 2 && typ == protowire.VarintType:
			v := &AnyValue_BoolValue{}
			m.Value = v
			return consumeBool(b, &v.BoolValue), nil
		case num == 3 && typ == protowire.VarintType:
			var u uint64
			n := consumeUint64(b, &u)
			m.Value = &AnyValue_IntValue{IntValue: int64(u)}
			return n, nil
		case num == 4 && typ == protowire.Fixed64Type:
			var u uint64
			n := consumeFixed64(b, &u)
			m.Value = &AnyValue_DoubleValue{DoubleValue: math.Float64frombits(u)}
			return n, nil
		case num == 5 && typ == protowire.BytesType:
			v := &AnyValue_ArrayValue{ArrayValue: &ArrayValue{}}
			m.Value = v
			return consumeMessage(b, v.ArrayValue)
		case num == 6 && typ == protowire.BytesType:
			v := &AnyValue_KvlistValue{KvlistValue: &KeyValueList{}}
			m.Value = v
			return consumeMessage(b, v.KvlistValue)
		case num == 7 && typ == protowire.BytesType:
			v := &AnyValue_BytesValue{}
			m.Value = v
			return consumeBytes(b, &v.BytesValue), nil
		}
		return skipField(num, typ, b)
	})
}

func (m *ArrayValue) appendWire(b []byte) []byte {
	for _, v := range m.Values {
		if v != nil {
			b = appendMessage(b, 1, v.appendWire(nil))
		}
	}
	return b
}

func (m *ArrayValue) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v := &AnyValue{}
			m.Values = append(m.Values, v)
			return consumeMessage(b, v)
		}
		return skipField(num, typ, b)
	})
}

func (m *KeyValueList) appendWire(b []byte) []byte {
	for _, kv := range m.Values {
		if kv != nil {
			b = appendMessage(b, 1, kv.appendWire(nil))
		}
	}
	return b
}

func (m *KeyValueList) unmarshalWire(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			kv := &KeyValue{}
			m.Values = append(m.Values, kv)
			return consumeMessage(b, kv)
		}
		return skipField(num, typ, b)
	})
}
