package internal

import (
	"sync"

	"github.com/observiq/opamp-client-go/client/types"
	"github.com/observiq/opamp-client-go/protobufs"
)

type reportField int

const (
	fieldAgentDescription reportField = iota
	fieldHealth
	fieldEffectiveConfig
	fieldRemoteConfigStatus
	fieldPackageStatuses
	fieldCustomCapabilities
	fieldCount
)

// PendingReport accumulates the state that the next AgentToServer message carries.
//
// Every write of a field bumps its version. A field is dirty while its version is
// ahead of the last delivered version, so a value replaced while a message is in
// flight stays dirty after that message is delivered. Stored values are never
// mutated, only replaced, so built messages may share them.
type PendingReport struct {
	mux sync.Mutex

	instanceUid  types.InstanceUid
	capabilities protobufs.AgentCapabilities
	sequenceNum  uint64

	agentDescription   *protobufs.AgentDescription
	health             *protobufs.ComponentHealth
	effectiveConfig    *protobufs.EffectiveConfig
	remoteConfigStatus *protobufs.RemoteConfigStatus
	packageStatuses    *protobufs.PackageStatuses
	customCapabilities *protobufs.CustomCapabilities

	version   [fieldCount]uint64
	delivered [fieldCount]uint64

	lastRemoteConfigHash []byte
}

// OutboundMessage is a message built by PendingReport together with the versions of
// the fields it carries.
type OutboundMessage struct {
	Message *protobufs.AgentToServer

	// Zero for fields not included.
	versions [fieldCount]uint64
}

// NewPendingReport returns a report for the given agent. The first message built
// carries sequence number 1.
func NewPendingReport(instanceUid types.InstanceUid, capabilities protobufs.AgentCapabilities) *PendingReport {
	return &PendingReport{
		instanceUid:  instanceUid,
		capabilities: capabilities,
	}
}

// Next builds the next message from the dirty fields and consumes a sequence number.
func (r *PendingReport) Next() *OutboundMessage {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.sequenceNum++
	msg := &protobufs.AgentToServer{
		InstanceUid:  r.instanceUid.Bytes(),
		SequenceNum:  r.sequenceNum,
		Capabilities: uint64(r.capabilities),
	}
	out := &OutboundMessage{Message: msg}
	for f := reportField(0); f < fieldCount; f++ {
		if r.version[f] == r.delivered[f] {
			continue
		}
		out.versions[f] = r.version[f]
		switch f {
		case fieldAgentDescription:
			msg.AgentDescription = r.agentDescription
		case fieldHealth:
			msg.Health = r.health
		case fieldEffectiveConfig:
			msg.EffectiveConfig = r.effectiveConfig
		case fieldRemoteConfigStatus:
			msg.RemoteConfigStatus = r.remoteConfigStatus
		case fieldPackageStatuses:
			msg.PackageStatuses = r.packageStatuses
		case fieldCustomCapabilities:
			msg.CustomCapabilities = r.customCapabilities
		}
	}
	return out
}

// Resequence gives a retry of out a fresh sequence number. The content is unchanged.
func (r *PendingReport) Resequence(out *OutboundMessage) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.sequenceNum++
	out.Message.SequenceNum = r.sequenceNum
}

// Delivered clears the dirty state of the field versions carried by out.
func (r *PendingReport) Delivered(out *OutboundMessage) {
	r.mux.Lock()
	defer r.mux.Unlock()
	for f, v := range out.versions {
		if v > r.delivered[f] {
			r.delivered[f] = v
		}
	}
}

// MarkFullState marks every field holding a value as dirty.
func (r *PendingReport) MarkFullState() {
	r.mux.Lock()
	defer r.mux.Unlock()
	set := [fieldCount]bool{
		fieldAgentDescription:   r.agentDescription != nil,
		fieldHealth:             r.health != nil,
		fieldEffectiveConfig:    r.effectiveConfig != nil,
		fieldRemoteConfigStatus: r.remoteConfigStatus != nil,
		fieldPackageStatuses:    r.packageStatuses != nil,
		fieldCustomCapabilities: r.customCapabilities != nil,
	}
	for f, ok := range set {
		if ok {
			r.version[f]++
		}
	}
}

// Dirty reports whether any field waits to be delivered.
func (r *PendingReport) Dirty() bool {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.version != r.delivered
}

func (r *PendingReport) touch(f reportField) {
	r.version[f]++
}

func (r *PendingReport) SetAgentDescription(descr *protobufs.AgentDescription) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.agentDescription = descr
	r.touch(fieldAgentDescription)
}

func (r *PendingReport) SetHealth(health *protobufs.ComponentHealth) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.health = health
	r.touch(fieldHealth)
}

func (r *PendingReport) SetEffectiveConfig(cfg *protobufs.EffectiveConfig) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.effectiveConfig = cfg
	r.touch(fieldEffectiveConfig)
}

// SetRemoteConfigStatus stores status. An empty LastRemoteConfigHash is filled with
// the hash of the last remote config received from the Server.
func (r *PendingReport) SetRemoteConfigStatus(status *protobufs.RemoteConfigStatus) {
	r.mux.Lock()
	defer r.mux.Unlock()
	if len(status.LastRemoteConfigHash) == 0 && len(r.lastRemoteConfigHash) > 0 {
		status.LastRemoteConfigHash = append([]byte(nil), r.lastRemoteConfigHash...)
	}
	r.remoteConfigStatus = status
	r.touch(fieldRemoteConfigStatus)
}

func (r *PendingReport) SetPackageStatuses(statuses *protobufs.PackageStatuses) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.packageStatuses = statuses
	r.touch(fieldPackageStatuses)
}

func (r *PendingReport) SetCustomCapabilities(c *protobufs.CustomCapabilities) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.customCapabilities = c
	r.touch(fieldCustomCapabilities)
}

func (r *PendingReport) SetLastRemoteConfigHash(hash []byte) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.lastRemoteConfigHash = append([]byte(nil), hash...)
}

// SetInstanceUid replaces the instance uid used by messages built from now on.
func (r *PendingReport) SetInstanceUid(uid types.InstanceUid) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.instanceUid = uid
}

func (r *PendingReport) InstanceUid() types.InstanceUid {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.instanceUid
}

func (r *PendingReport) setCapabilities(capabilities protobufs.AgentCapabilities) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.capabilities = capabilities
}

func (r *PendingReport) Capabilities() protobufs.AgentCapabilities {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.capabilities
}

// AgentDescription returns a copy of the current description.
func (r *PendingReport) AgentDescription() *protobufs.AgentDescription {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.agentDescription.Clone()
}

// SequenceNum returns the sequence number of the last message built.
func (r *PendingReport) SequenceNum() uint64 {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.sequenceNum
}
