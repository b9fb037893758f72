package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint hashes the fixed subset of fields that counts as "meaningful
// change": internal id, order number, the three status strings and the total
// amount. Volatile/cosmetic fields stay out on purpose so re-syncing an
// unchanged order is a no-op.
func (input *NewOrder) Fingerprint() string {
	parts := []string{
		fmt.Sprint(input.ID),
		input.OrderNumber,
		input.Status,
		input.DeliveryStatus,
		input.InvoiceStatus,
		input.TotalAmount.String(),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
