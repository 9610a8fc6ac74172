package dibs

import (
	"time"

	"github.com/Kerhoff/dibs/internal/models"
)

// ApplyDelivery moves d between the claimed, delivered and undelivered
// states. DateDelivered is stamped only the first time a dib becomes
// delivered and is cleared when delivery is withdrawn. It returns true when
// the dib transitioned from undelivered to delivered.
func ApplyDelivery(d *models.Dib, delivered bool, now time.Time) bool {
	if !delivered {
		d.IsDelivered = false
		d.DateDelivered = nil
		return false
	}

	transitioned := !d.IsDelivered
	d.IsDelivered = true
	if d.DateDelivered == nil {
		stamp := now
		d.DateDelivered = &stamp
	}
	return transitioned
}
