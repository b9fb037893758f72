package models

import (
	"fmt"
	"strings"
	"time"
)

// Detection is the state engine's verdict on one order: the canonical phase,
// how direct the signal was, and whether it came from the authoritative system
// or a local inference.
type Detection struct {
	Phase      Phase      `json:"phase"`
	Confidence Confidence `json:"confidence"`
	Provenance Provenance `json:"provenance"`
	Notes      string     `json:"notes,omitempty"`
}

// externalStatusVocabulary maps the known externally reported status strings
// (the gestionale reports them in Italian, some feeds translate) onto phases.
// Matching is case- and whitespace-insensitive.
var externalStatusVocabulary = map[string]Phase{
	"ordine aperto":         PhaseOpenOrder,
	"open order":            PhaseOpenOrder,
	"trasferito":            PhaseTransferred,
	"transferred":           PhaseTransferred,
	"in revisione":          PhaseUnderRevision,
	"under revision":        PhaseUnderRevision,
	"errore trasferimento":  PhaseTransferError,
	"transfer error":        PhaseTransferError,
	"spedito":               PhaseShipped,
	"shipped":               PhaseShipped,
	"consegnato":            PhaseDelivered,
	"delivered":             PhaseDelivered,
	"fatturato":             PhaseInvoiced,
	"invoiced":              PhaseInvoiced,
}

func phaseFromExternalStatus(status string) (Phase, bool) {
	phase, ok := externalStatusVocabulary[strings.ToLower(strings.TrimSpace(status))]
	return phase, ok
}

// DetectPhase computes the canonical lifecycle phase of one order from its
// current field values and the supplied clock. Pure function, no writes.
//
// Priority order: local creation signals first, then the externally reported
// status (ground truth when present), then time-derived shipment inference,
// then a low-confidence hold on the cached phase.
func DetectPhase(order *Order, now time.Time) Detection {
	// 1. No external-system identifier yet: the order only exists locally.
	if order.ExternalRef == "" {
		return Detection{Phase: PhaseCreated, Confidence: ConfidenceHigh, Provenance: ProvenanceLocal}
	}

	// 2. Known upstream but not yet forwarded to fulfillment.
	if order.ForwardedAt == nil {
		return Detection{Phase: PhasePlaced, Confidence: ConfidenceHigh, Provenance: ProvenanceLocal}
	}

	// 3a. The externally reported status wins over every local heuristic.
	if phase, ok := phaseFromExternalStatus(order.Status); ok {
		return Detection{Phase: phase, Confidence: ConfidenceHigh, Provenance: ProvenanceExternal}
	}

	// 3b. Shipment evidence: a DDT exists, so infer from its delivery date.
	if order.DdtNumber != "" {
		notes := fmt.Sprintf("inferred from DDT %s", order.DdtNumber)
		if order.DeliveryDate != nil && order.DeliveryDate.Before(now) {
			return Detection{Phase: PhaseDelivered, Confidence: ConfidenceHigh, Provenance: ProvenanceLocal, Notes: notes}
		}
		return Detection{Phase: PhaseShipped, Confidence: ConfidenceHigh, Provenance: ProvenanceLocal, Notes: notes}
	}

	// 3c. Ambiguous signal: hold the cached phase, flagged low confidence so
	// downstream consumers treat it as "needs re-check soon".
	cached := order.Phase
	if cached == "" {
		cached = PhaseForwarded
	}
	return Detection{Phase: cached, Confidence: ConfidenceLow, Provenance: ProvenanceLocal}
}

// phaseRanks fixes the total order over canonical phases. The three branch
// outcomes of "forwarded" share one rank: any of them counts as forward
// motion from forwarded, but moving between siblings does not.
var phaseRanks = map[Phase]int{
	PhaseCreated:       0,
	PhasePlaced:        1,
	PhaseForwarded:     2,
	PhaseTransferred:   3,
	PhaseUnderRevision: 3,
	PhaseTransferError: 3,
	PhaseOpenOrder:     4,
	PhaseShipped:       5,
	PhaseDelivered:     6,
	PhaseInvoiced:      7,
}

func rank(p Phase) int {
	if r, ok := phaseRanks[p]; ok {
		return r
	}
	return -1
}

// Progressed reports whether a proposed transition is forward-moving along
// the lifecycle. Equal phases (including two rank-3 siblings) and unknown
// phases are never progression.
func Progressed(oldPhase, newPhase Phase) bool {
	newRank := rank(newPhase)
	if newRank < 0 {
		return false
	}
	return newRank > rank(oldPhase)
}
