package protobufs

type wireMessage interface {
	appendWire(b []byte) []byte
	unmarshalWire(b []byte) error
}

// cloneInto deep-copies src into dst through the wire encoding.
func cloneInto(src, dst wireMessage) {
	if err := dst.unmarshalWire(src.appendWire(nil)); err != nil {
		panic("protobufs: cannot decode own encoding: " + err.Error())
	}
}

func (m *AgentDescription) Clone() *AgentDescription {
	if m == nil {
		return nil
	}
	out := &AgentDescription{}
	cloneInto(m, out)
	return out
}

func (m *ComponentHealth) Clone() *ComponentHealth {
	if m == nil {
		return nil
	}
	out := &ComponentHealth{}
	cloneInto(m, out)
	return out
}

func (m *EffectiveConfig) Clone() *EffectiveConfig {
	if m == nil {
		return nil
	}
	out := &EffectiveConfig{}
	cloneInto(m, out)
	return out
}

func (m *RemoteConfigStatus) Clone() *RemoteConfigStatus {
	if m == nil {
		return nil
	}
	out := &RemoteConfigStatus{}
	cloneInto(m, out)
	return out
}

func (m *PackageStatuses) Clone() *PackageStatuses {
	if m == nil {
		return nil
	}
	out := &PackageStatuses{}
	cloneInto(m, out)
	return out
}

func (m *CustomCapabilities) Clone() *CustomCapabilities {
	if m == nil {
		return nil
	}
	out := &CustomCapabilities{}
	cloneInto(m, out)
	return out
}
