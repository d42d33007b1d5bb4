package recon

import (
	"time"

	"github.com/shopspring/decimal"

	"recon-server/src/models"
)

// amountTolerance absorbs float noise carried in from upstream reports;
// amounts are stored at 2 decimal places so exact equality is the common case.
var amountTolerance = decimal.New(1, -9)

// staleAfterDays is how long a transaction may sit with no settlement at all
// before it is escalated to CRITICAL.
const staleAfterDays = 7

// DeriveStatus derives the settlement status and issue flag for a single
// transaction from its declared amount and the shape of its settlement
// history. It is the only place status/issue rules live: ingestion
// recomputation, the list read path and the dashboard all call it, so the
// three can never disagree.
//
// today is the evaluation date for the stale-transaction escalation; callers
// pass time.Now().
func DeriveStatus(net, amount decimal.Decimal, hadCredit, hasSettlement bool,
	txnDate time.Time, lastSettlementDate *time.Time, today time.Time) (models.SettlementStatus, models.IssueFlag) {

	var status models.SettlementStatus
	switch {
	case !hasSettlement || net.IsZero():
		status = models.StatusPending
	case net.GreaterThan(amount):
		status = models.StatusOverSettled
	case net.Sub(amount).Abs().LessThan(amountTolerance):
		status = models.StatusFullySettled
	case hadCredit && net.LessThan(amount):
		status = models.StatusRefunded
	case net.LessThan(amount):
		status = models.StatusPartial
	default:
		status = models.StatusPending
	}

	critical := net.GreaterThan(amount)
	if !hasSettlement && DaysBetween(txnDate, today) > staleAfterDays {
		critical = true
	}
	warning := net.LessThan(amount) && net.IsPositive() && !hadCredit

	issue := models.IssueNone
	if critical {
		issue = models.IssueCritical
	} else if warning {
		issue = models.IssueWarning
	}
	return status, issue
}

// DaysBetween returns the whole calendar days from a to b, ignoring the
// time-of-day component of either.
func DaysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
