package internal

import (
	"context"
	"math"
	"time"

	"github.com/observiq/opamp-client-go/client/types"
	"github.com/observiq/opamp-client-go/protobufs"
)

// pollingControl is the part of the Poller the processor drives.
type pollingControl interface {
	ScheduleSend()
	SetPollingInterval(d time.Duration)
}

// receivedProcessor handles the ServerToAgent messages received by the Agent.
type receivedProcessor struct {
	logger types.Logger

	// Callbacks to call for corresponding messages.
	callbacks types.Callbacks

	report       *PendingReport
	poller       pollingControl
	capabilities protobufs.AgentCapabilities
	metrics      *clientMetrics
}

func newReceivedProcessor(
	logger types.Logger,
	callbacks types.Callbacks,
	report *PendingReport,
	poller pollingControl,
	metrics *clientMetrics,
) receivedProcessor {
	return receivedProcessor{
		logger:       logger,
		callbacks:    callbacks,
		report:       report,
		poller:       poller,
		capabilities: report.Capabilities(),
		metrics:      metrics,
	}
}

// ProcessReceivedMessage dispatches the directives of msg to the callbacks. A non-nil
// error means the exchange must be treated as failed and retried.
func (r *receivedProcessor) ProcessReceivedMessage(ctx context.Context, msg *protobufs.ServerToAgent) error {
	if msg.Command != nil {
		// A command message carries no other directive.
		if r.hasCapability(protobufs.AgentCapabilities_AcceptsRestartCommand) {
			r.rcvCommand(ctx, msg.Command)
		} else {
			r.ignore(ctx, ignoredCommand, "AcceptsRestartCommand capability is not set")
		}
		return nil
	}

	for _, num := range msg.UnknownFields {
		r.ignore(ctx, ignoredUnknownField, "field %d is not known", num)
	}

	if msg.ErrorResponse != nil {
		if err := r.rcvErrorResponse(ctx, msg.ErrorResponse); err != nil {
			return err
		}
	}

	if msg.AgentIdentification != nil {
		if !r.rcvAgentIdentification(ctx, msg.AgentIdentification) {
			msg.AgentIdentification = nil
		}
	}

	if msg.RemoteConfig != nil {
		if r.hasCapability(protobufs.AgentCapabilities_AcceptsRemoteConfig) {
			r.report.SetLastRemoteConfigHash(msg.RemoteConfig.ConfigHash)
			r.callbacks.OnRemoteConfig(ctx, msg.RemoteConfig)
		} else {
			r.ignore(ctx, ignoredRemoteConfig, "AcceptsRemoteConfig capability is not set")
		}
	}

	if msg.ConnectionSettings != nil {
		r.rcvConnectionSettings(ctx, msg.ConnectionSettings)
	}

	r.rcvMessageData(ctx, msg)

	if protobufs.ServerToAgentFlags(msg.Flags)&protobufs.ServerToAgentFlags_ReportFullState != 0 {
		r.rcvFlags(ctx)
	}
	return nil
}

func (r *receivedProcessor) hasCapability(capability protobufs.AgentCapabilities) bool {
	return r.capabilities.Has(capability)
}

func (r *receivedProcessor) ignore(ctx context.Context, kind string, format string, v ...interface{}) {
	r.logger.Debugf(ctx, "Ignoring %s: "+format, append([]interface{}{kind}, v...)...)
	r.metrics.directiveIgnored(ctx, kind)
}

func (r *receivedProcessor) rcvCommand(ctx context.Context, command *protobufs.ServerToAgentCommand) {
	if err := r.callbacks.OnCommand(ctx, command); err != nil {
		r.logger.Errorf(ctx, "Failed to handle %s command: %v", command.Type, err)
	}
}

func (r *receivedProcessor) rcvErrorResponse(ctx context.Context, errResp *protobufs.ServerErrorResponse) error {
	r.callbacks.OnError(ctx, errResp)
	if errResp.Type != protobufs.ServerErrorResponseType_Unavailable {
		r.logger.Errorf(ctx, "Server returned an error response: %s %s", errResp.Type, errResp.ErrorMessage)
		return nil
	}
	unavailable := &ServerUnavailableError{Message: errResp.ErrorMessage}
	if errResp.RetryInfo != nil {
		unavailable.RetryAfter = time.Duration(errResp.RetryInfo.RetryAfterNanoseconds)
	}
	return unavailable
}

func (r *receivedProcessor) rcvAgentIdentification(ctx context.Context, id *protobufs.AgentIdentification) bool {
	uid, err := types.InstanceUidFromBytes(id.NewInstanceUid)
	if err != nil {
		r.ignore(ctx, ignoredAgentIdentification, "%v", err)
		return false
	}
	if uid.IsZero() {
		r.ignore(ctx, ignoredAgentIdentification, "new instance uid is zero")
		return false
	}
	r.report.SetInstanceUid(uid)
	r.logger.Debugf(ctx, "Instance uid changed to %s", uid)
	return true
}

// maxHeartbeatSeconds is the largest heartbeat interval a time.Duration can hold.
const maxHeartbeatSeconds = uint64(math.MaxInt64 / int64(time.Second))

// rcvConnectionSettings forwards the offers the Agent has capabilities for. The OpAMP
// heartbeat interval is applied in all cases.
func (r *receivedProcessor) rcvConnectionSettings(ctx context.Context, settings *protobufs.ConnectionSettingsOffers) {
	if settings.Opamp != nil {
		r.rcvHeartbeatInterval(ctx, settings.Opamp.HeartbeatIntervalSeconds)
	}

	offers := &protobufs.ConnectionSettingsOffers{Hash: settings.Hash}
	accepted := false
	gate := func(capability protobufs.AgentCapabilities, name string, present bool) bool {
		if !present {
			return false
		}
		if !r.hasCapability(capability) {
			r.ignore(ctx, ignoredConnectionSettings, "%s offered without the %s capability", name, capability)
			return false
		}
		accepted = true
		return true
	}
	// Without the capability a heartbeat-only offer has already been applied in full.
	opampOffered := settings.Opamp != nil &&
		(r.hasCapability(protobufs.AgentCapabilities_AcceptsOpAMPConnectionSettings) || !heartbeatOnly(settings.Opamp))
	if gate(protobufs.AgentCapabilities_AcceptsOpAMPConnectionSettings, "opamp", opampOffered) {
		offers.Opamp = settings.Opamp
	}
	if gate(protobufs.AgentCapabilities_ReportsOwnMetrics, "own_metrics", settings.OwnMetrics != nil) {
		offers.OwnMetrics = settings.OwnMetrics
	}
	if gate(protobufs.AgentCapabilities_ReportsOwnTraces, "own_traces", settings.OwnTraces != nil) {
		offers.OwnTraces = settings.OwnTraces
	}
	if gate(protobufs.AgentCapabilities_ReportsOwnLogs, "own_logs", settings.OwnLogs != nil) {
		offers.OwnLogs = settings.OwnLogs
	}
	if gate(protobufs.AgentCapabilities_AcceptsOtherConnectionSettings, "other_connections", len(settings.OtherConnections) > 0) {
		offers.OtherConnections = settings.OtherConnections
	}
	if !accepted {
		return
	}
	if err := r.callbacks.OnConnectionSettings(ctx, offers); err != nil {
		r.logger.Errorf(ctx, "Failed to apply connection settings: %v", err)
	}
}

func (r *receivedProcessor) rcvHeartbeatInterval(ctx context.Context, seconds uint64) {
	switch {
	case seconds == 0:
		return
	case seconds > maxHeartbeatSeconds:
		r.ignore(ctx, ignoredHeartbeatInterval, "%d seconds is out of range", seconds)
		return
	}
	interval := time.Duration(seconds) * time.Second
	r.poller.SetPollingInterval(interval)
	r.logger.Debugf(ctx, "Polling interval set to %s by the server", interval)
}

func heartbeatOnly(opamp *protobufs.OpAMPConnectionSettings) bool {
	return opamp.DestinationEndpoint == "" && opamp.Headers == nil && opamp.Certificate == nil
}

func (r *receivedProcessor) rcvMessageData(ctx context.Context, msg *protobufs.ServerToAgent) {
	data := &types.MessageData{
		AgentIdentification: msg.AgentIdentification,
		CustomCapabilities:  msg.CustomCapabilities,
		CustomMessage:       msg.CustomMessage,
	}
	if msg.PackagesAvailable != nil {
		if r.hasCapability(protobufs.AgentCapabilities_AcceptsPackages) {
			data.PackagesAvailable = msg.PackagesAvailable
		} else {
			r.ignore(ctx, ignoredPackagesAvailable, "AcceptsPackages capability is not set")
		}
	}
	if data.PackagesAvailable == nil && data.AgentIdentification == nil &&
		data.CustomCapabilities == nil && data.CustomMessage == nil {
		return
	}
	r.callbacks.OnMessage(ctx, data)
}

// rcvFlags handles ReportFullState: every known field is resent, with the effective
// config refreshed from the Agent first.
func (r *receivedProcessor) rcvFlags(ctx context.Context) {
	if r.hasCapability(protobufs.AgentCapabilities_ReportsEffectiveConfig) {
		cfg, err := r.callbacks.GetEffectiveConfig(ctx)
		switch {
		case err != nil:
			r.logger.Errorf(ctx, "Cannot get effective config: %v", err)
		case cfg != nil:
			r.report.SetEffectiveConfig(cfg.Clone())
		}
	}
	r.report.MarkFullState()
	r.poller.ScheduleSend()
}
