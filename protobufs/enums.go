package protobufs

import "strconv"

// AgentCapabilities is a bitmask of the features an Agent supports.
type AgentCapabilities uint64

const (
	AgentCapabilities_Unspecified                    AgentCapabilities = 0
	AgentCapabilities_ReportsStatus                  AgentCapabilities = 0x00000001
	AgentCapabilities_AcceptsRemoteConfig            AgentCapabilities = 0x00000002
	AgentCapabilities_ReportsEffectiveConfig         AgentCapabilities = 0x00000004
	AgentCapabilities_AcceptsPackages                AgentCapabilities = 0x00000008
	AgentCapabilities_ReportsPackageStatuses         AgentCapabilities = 0x00000010
	AgentCapabilities_ReportsOwnTraces               AgentCapabilities = 0x00000020
	AgentCapabilities_ReportsOwnMetrics              AgentCapabilities = 0x00000040
	AgentCapabilities_ReportsOwnLogs                 AgentCapabilities = 0x00000080
	AgentCapabilities_AcceptsOpAMPConnectionSettings AgentCapabilities = 0x00000100
	AgentCapabilities_AcceptsOtherConnectionSettings AgentCapabilities = 0x00000200
	AgentCapabilities_AcceptsRestartCommand          AgentCapabilities = 0x00000400
	AgentCapabilities_ReportsHealth                  AgentCapabilities = 0x00000800
	AgentCapabilities_ReportsRemoteConfig            AgentCapabilities = 0x00001000
)

var AgentCapabilities_name = map[AgentCapabilities]string{
	AgentCapabilities_ReportsStatus:                  "ReportsStatus",
	AgentCapabilities_AcceptsRemoteConfig:            "AcceptsRemoteConfig",
	AgentCapabilities_ReportsEffectiveConfig:         "ReportsEffectiveConfig",
	AgentCapabilities_AcceptsPackages:                "AcceptsPackages",
	AgentCapabilities_ReportsPackageStatuses:         "ReportsPackageStatuses",
	AgentCapabilities_ReportsOwnTraces:               "ReportsOwnTraces",
	AgentCapabilities_ReportsOwnMetrics:              "ReportsOwnMetrics",
	AgentCapabilities_ReportsOwnLogs:                 "ReportsOwnLogs",
	AgentCapabilities_AcceptsOpAMPConnectionSettings: "AcceptsOpAMPConnectionSettings",
	AgentCapabilities_AcceptsOtherConnectionSettings: "AcceptsOtherConnectionSettings",
	AgentCapabilities_AcceptsRestartCommand:          "AcceptsRestartCommand",
	AgentCapabilities_ReportsHealth:                  "ReportsHealth",
	AgentCapabilities_ReportsRemoteConfig:            "ReportsRemoteConfig",
}

// Has reports whether every bit of c is set in x.
func (x AgentCapabilities) Has(c AgentCapabilities) bool {
	return x&c == c
}

func (x AgentCapabilities) String() string {
	if name, ok := AgentCapabilities_name[x]; ok {
		return name
	}
	return "AgentCapabilities(" + strconv.FormatUint(uint64(x), 10) + ")"
}

type AgentToServerFlags uint64

const (
	AgentToServerFlags_Unspecified        AgentToServerFlags = 0
	AgentToServerFlags_RequestInstanceUid AgentToServerFlags = 0x00000001
)

type ServerToAgentFlags uint64

const (
	ServerToAgentFlags_Unspecified     ServerToAgentFlags = 0
	ServerToAgentFlags_ReportFullState ServerToAgentFlags = 0x00000001
)

type ServerCapabilities uint64

const (
	ServerCapabilities_Unspecified                      ServerCapabilities = 0
	ServerCapabilities_AcceptsStatus                    ServerCapabilities = 0x00000001
	ServerCapabilities_OffersRemoteConfig               ServerCapabilities = 0x00000002
	ServerCapabilities_AcceptsEffectiveConfig           ServerCapabilities = 0x00000004
	ServerCapabilities_OffersPackages                   ServerCapabilities = 0x00000008
	ServerCapabilities_AcceptsPackagesStatus            ServerCapabilities = 0x00000010
	ServerCapabilities_OffersConnectionSettings         ServerCapabilities = 0x00000020
	ServerCapabilities_AcceptsConnectionSettingsRequest ServerCapabilities = 0x00000040
)

type PackageType int32

const (
	PackageType_TopLevel PackageType = 0
	PackageType_Addon    PackageType = 1
)

type ServerErrorResponseType int32

const (
	// Unknown error. Something went wrong, but it is not known what exactly.
	ServerErrorResponseType_Unknown ServerErrorResponseType = 0
	// The AgentToServer message was malformed.
	ServerErrorResponseType_BadRequest ServerErrorResponseType = 1
	// The server is overloaded and unable to process the request. The Agent should
	// retry the message later. RetryInfo may carry the recommended delay.
	ServerErrorResponseType_Unavailable ServerErrorResponseType = 2
)

var ServerErrorResponseType_name = map[int32]string{
	0: "UNKNOWN",
	1: "BAD_REQUEST",
	2: "UNAVAILABLE",
}

func (x ServerErrorResponseType) String() string {
	return enumName(ServerErrorResponseType_name, int32(x))
}

type CommandType int32

const (
	CommandType_Restart CommandType = 0
)

var CommandType_name = map[int32]string{
	0: "Restart",
}

func (x CommandType) String() string {
	return enumName(CommandType_name, int32(x))
}

type RemoteConfigStatuses int32

const (
	RemoteConfigStatuses_UNSET    RemoteConfigStatuses = 0
	RemoteConfigStatuses_APPLIED  RemoteConfigStatuses = 1
	RemoteConfigStatuses_APPLYING RemoteConfigStatuses = 2
	RemoteConfigStatuses_FAILED   RemoteConfigStatuses = 3
)

var RemoteConfigStatuses_name = map[int32]string{
	0: "UNSET",
	1: "APPLIED",
	2: "APPLYING",
	3: "FAILED",
}

func (x RemoteConfigStatuses) String() string {
	return enumName(RemoteConfigStatuses_name, int32(x))
}

type PackageStatusEnum int32

const (
	PackageStatusEnum_Installed      PackageStatusEnum = 0
	PackageStatusEnum_InstallPending PackageStatusEnum = 1
	PackageStatusEnum_Installing     PackageStatusEnum = 2
	PackageStatusEnum_InstallFailed  PackageStatusEnum = 3
)

var PackageStatusEnum_name = map[int32]string{
	0: "Installed",
	1: "InstallPending",
	2: "Installing",
	3: "InstallFailed",
}

func (x PackageStatusEnum) String() string {
	return enumName(PackageStatusEnum_name, int32(x))
}

func enumName(names map[int32]string, v int32) string {
	if name, ok := names[v]; ok {
		return name
	}
	return strconv.Itoa(int(v))
}
