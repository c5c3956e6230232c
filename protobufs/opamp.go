// Package protobufs contains the OpAMP protocol messages exchanged between an Agent and
// a Server, along with their Protocol Buffers wire encoding.
//
// Field numbers follow opamp.proto. Only the fields used by an HTTP client are
// modelled; unknown fields are skipped on decode and their numbers recorded on
// ServerToAgent.
package protobufs

import "google.golang.org/protobuf/encoding/protowire"

// AgentToServer is the message sent from the Agent to the Server.
type AgentToServer struct {
	// Globally unique identifier of the running instance of the Agent. 16 bytes.
	InstanceUid []byte
	// Incremented by one for every AgentToServer message sent.
	SequenceNum        uint64
	AgentDescription   *AgentDescription
	Capabilities       uint64
	Health             *ComponentHealth
	EffectiveConfig    *EffectiveConfig
	RemoteConfigStatus *RemoteConfigStatus
	PackageStatuses    *PackageStatuses
	// Set in the last message sent before the Agent disconnects.
	AgentDisconnect    *AgentDisconnect
	Flags              uint64
	CustomCapabilities *CustomCapabilities
	CustomMessage      *CustomMessage
}

type AgentDisconnect struct{}

// ServerToAgent is the message sent from the Server to the Agent.
type ServerToAgent struct {
	InstanceUid         []byte
	ErrorResponse       *ServerErrorResponse
	RemoteConfig        *AgentRemoteConfig
	ConnectionSettings  *ConnectionSettingsOffers
	PackagesAvailable   *PackagesAvailable
	Flags               uint64
	Capabilities        uint64
	AgentIdentification *AgentIdentification
	Command             *ServerToAgentCommand
	CustomCapabilities  *CustomCapabilities
	CustomMessage       *CustomMessage

	// UnknownFields lists the field numbers found on the wire that this version of the
	// protocol does not know. Never encoded.
	UnknownFields []protowire.Number
}

type OpAMPConnectionSettings struct {
	DestinationEndpoint string
	Headers             *Headers
	Certificate         *TLSCertificate
	// Interval the Agent should use between heartbeats (polls for HTTP). 0 means
	// no change is offered.
	HeartbeatIntervalSeconds uint64
}

type TelemetryConnectionSettings struct {
	DestinationEndpoint string
	Headers             *Headers
	Certificate         *TLSCertificate
}

type OtherConnectionSettings struct {
	DestinationEndpoint string
	Headers             *Headers
	Certificate         *TLSCertificate
	OtherSettings       map[string]string
}

type Headers struct {
	Headers []*Header
}

type Header struct {
	Key   string
	Value string
}

type TLSCertificate struct {
	PublicKey   []byte
	PrivateKey  []byte
	CaPublicKey []byte
}

type ConnectionSettingsOffers struct {
	Hash             []byte
	Opamp            *OpAMPConnectionSettings
	OwnMetrics       *TelemetryConnectionSettings
	OwnTraces        *TelemetryConnectionSettings
	OwnLogs          *TelemetryConnectionSettings
	OtherConnections map[string]*OtherConnectionSettings
}

type PackagesAvailable struct {
	Packages        map[string]*PackageAvailable
	AllPackagesHash []byte
}

type PackageAvailable struct {
	Type    PackageType
	Version string
	File    *DownloadableFile
	Hash    []byte
}

type DownloadableFile struct {
	DownloadUrl string
	ContentHash []byte
	Signature   []byte
}

type ServerErrorResponse struct {
	Type         ServerErrorResponseType
	ErrorMessage string
	// Only set when Type is ServerErrorResponseType_Unavailable.
	RetryInfo *RetryInfo
}

type RetryInfo struct {
	RetryAfterNanoseconds uint64
}

type ServerToAgentCommand struct {
	Type CommandType
}

type AgentDescription struct {
	IdentifyingAttributes    []*KeyValue
	NonIdentifyingAttributes []*KeyValue
}

type ComponentHealth struct {
	Healthy            bool
	StartTimeUnixNano  uint64
	LastError          string
	Status             string
	StatusTimeUnixNano uint64
	ComponentHealthMap map[string]*ComponentHealth
}

type EffectiveConfig struct {
	ConfigMap *AgentConfigMap
}

type RemoteConfigStatus struct {
	LastRemoteConfigHash []byte
	Status               RemoteConfigStatuses
	ErrorMessage         string
}

type PackageStatuses struct {
	Packages                      map[string]*PackageStatus
	ServerProvidedAllPackagesHash []byte
	ErrorMessage                  string
}

type PackageStatus struct {
	Name                 string
	AgentHasVersion      string
	AgentHasHash         []byte
	ServerOfferedVersion string
	ServerOfferedHash    []byte
	Status               PackageStatusEnum
	ErrorMessage         string
}

type AgentIdentification struct {
	NewInstanceUid []byte
}

type AgentRemoteConfig struct {
	Config     *AgentConfigMap
	ConfigHash []byte
}

type AgentConfigMap struct {
	ConfigMap map[string]*AgentConfigFile
}

type AgentConfigFile struct {
	Body        []byte
	ContentType string
}

type CustomCapabilities struct {
	Capabilities []string
}

type CustomMessage struct {
	Capability string
	Type       string
	Data       []byte
}

// AnyValue holds one of the value kinds below.
type AnyValue struct {
	Value isAnyValue_Value
}

type isAnyValue_Value interface {
	isAnyValue_Value()
}

type AnyValue_StringValue struct {
	StringValue string
}

type AnyValue_BoolValue struct {
	BoolValue bool
}

type AnyValue_IntValue struct {
	IntValue int64
}

type AnyValue_DoubleValue struct {
	DoubleValue float64
}

type AnyValue_ArrayValue struct {
	ArrayValue *ArrayValue
}

type AnyValue_KvlistValue struct {
	KvlistValue *KeyValueList
}

type AnyValue_BytesValue struct {
	BytesValue []byte
}

func (*AnyValue_StringValue) isAnyValue_Value() {}
func (*AnyValue_BoolValue) isAnyValue_Value()   {}
func (*AnyValue_IntValue) isAnyValue_Value()    {}
func (*AnyValue_DoubleValue) isAnyValue_Value() {}
func (*AnyValue_ArrayValue) isAnyValue_Value()  {}
func (*AnyValue_KvlistValue) isAnyValue_Value() {}
func (*AnyValue_BytesValue) isAnyValue_Value()  {}

type ArrayValue struct {
	Values []*AnyValue
}

type KeyValueList struct {
	Values []*KeyValue
}

type KeyValue struct {
	Key   string
	Value *AnyValue
}
