package models

// Phase is the canonical lifecycle state of a mirrored order. The current
// value on the order row is a cached projection of the latest StateTransition.
type Phase string

const (
	PhaseCreated       Phase = "created"
	PhasePlaced        Phase = "placed"
	PhaseForwarded     Phase = "forwarded"
	PhaseTransferred   Phase = "transferred"
	PhaseUnderRevision Phase = "under_revision"
	PhaseTransferError Phase = "transfer_error"
	PhaseOpenOrder     Phase = "open_order"
	PhaseShipped       Phase = "shipped"
	PhaseDelivered     Phase = "delivered"
	PhaseInvoiced      Phase = "invoiced"
)

func (p Phase) Valid() bool {
	_, ok := phaseRanks[p]
	return ok
}

func (p Phase) String() string { return string(p) }

// Confidence qualifies how direct the signal behind a detected phase was.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Provenance records whether a phase came from the authoritative system or a
// local inference.
type Provenance string

const (
	ProvenanceLocal    Provenance = "local"
	ProvenanceExternal Provenance = "external"
)

type UpsertAction string

const (
	UpsertActionInserted UpsertAction = "inserted"
	UpsertActionUpdated  UpsertAction = "updated"
	UpsertActionSkipped  UpsertAction = "skipped"
)

const (
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

const SyncTriggeredManual = "manual"

// ActorSystem is the actor recorded on transitions and audit events that were
// not attributable to a specific caller.
const ActorSystem = "system"

// PendingNumberPrefix marks order numbers assigned locally before the
// authoritative system hands out the canonical one.
const PendingNumberPrefix = "PENDING-"
