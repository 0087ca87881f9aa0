package valueobject

// BucketAddress identifies one named balance bucket on an account.
// The set is fixed for the mortgage product; balances live either on the
// customer account or on the engine's internal income account.
type BucketAddress string

const (
	AddrPrincipal        BucketAddress = "PRINCIPAL"
	AddrPrincipalDue     BucketAddress = "PRINCIPAL_DUE"
	AddrPrincipalOverdue BucketAddress = "PRINCIPAL_OVERDUE"
	AddrInterestDue      BucketAddress = "INTEREST_DUE"
	AddrInterestOverdue  BucketAddress = "INTEREST_OVERDUE"

	AddrAccruedInterestReceivable BucketAddress = "ACCRUED_INTEREST_RECEIVABLE"
	// Accrued interest parks here while a repayment holiday blocks due
	// calculation; it is capitalised into PRINCIPAL when the holiday ends.
	AddrAccruedInterestPendingCap        BucketAddress = "ACCRUED_INTEREST_PENDING_CAPITALISATION"
	AddrAccruedOverdueInterestPendingCap BucketAddress = "ACCRUED_OVERDUE_INTEREST_PENDING_CAPITALISATION"

	AddrPenalties BucketAddress = "PENALTIES"

	AddrEMI                BucketAddress = "EMI"
	AddrEMIPrincipalExcess BucketAddress = "EMI_PRINCIPAL_EXCESS"

	AddrOverpayment                 BucketAddress = "OVERPAYMENT"
	AddrOverpaymentSincePrevDueCalc BucketAddress = "OVERPAYMENT_SINCE_PREV_DUE_CALC"
	AddrRemainingOverpaymentAllowance BucketAddress = "REMAINING_OVERPAYMENT_ALLOWANCE"

	AddrCapitalisedInterestTracker BucketAddress = "CAPITALISED_INTEREST_TRACKER"
	AddrDueCalcEventCounter        BucketAddress = "DUE_CALCULATION_EVENT_COUNTER"
)

// Internal-account income and offset addresses. The internal account is the
// double-entry counterparty for every engine posting.
const (
	AddrInterestReceived          BucketAddress = "INTEREST_RECEIVED"
	AddrPenaltyInterestReceived   BucketAddress = "PENALTY_INTEREST_RECEIVED"
	AddrLateRepaymentFeeIncome    BucketAddress = "LATE_REPAYMENT_FEE_INCOME"
	AddrEarlyRepaymentFeeIncome   BucketAddress = "EARLY_REPAYMENT_FEE_INCOME"
	AddrAllowanceFeeIncome        BucketAddress = "OVERPAYMENT_ALLOWANCE_FEE_INCOME"
	AddrPaymentTypeFeeIncome      BucketAddress = "PAYMENT_TYPE_FEE_INCOME"
	AddrCapitalisedInterestOffset BucketAddress = "CAPITALISED_INTEREST_RECEIVED"
	AddrPaymentsClearing          BucketAddress = "PAYMENTS_CLEARING"
	AddrTrackerOffset             BucketAddress = "TRACKER_OFFSET"
	AddrRoundingResidue           BucketAddress = "ROUNDING_RESIDUE"
)

// InternalAccountID is the ledger account that holds income and offset buckets.
const InternalAccountID = "MORTGAGE_INTERNAL_ACCOUNT"

// RepaymentHierarchy is the fixed priority order in which an incoming payment
// is applied across outstanding buckets. Product-level constant, not account
// state.
var RepaymentHierarchy = []BucketAddress{
	AddrPenalties,
	AddrInterestOverdue,
	AddrPrincipalOverdue,
	AddrInterestDue,
	AddrPrincipalDue,
	AddrEMIPrincipalExcess,
}

// LateRepaymentAddresses are the buckets whose combined balance drives
// delinquency evaluation and penalty interest.
var LateRepaymentAddresses = []BucketAddress{
	AddrPrincipalOverdue,
	AddrInterestOverdue,
	AddrPenalties,
}

// OutstandingDebtAddresses are the buckets summed when deciding whether a
// repayment settles the account in full. Accrued interest receivable is
// excluded: it is only owed once billed at the next due calculation.
var OutstandingDebtAddresses = []BucketAddress{
	AddrPrincipal,
	AddrPrincipalDue,
	AddrPrincipalOverdue,
	AddrInterestDue,
	AddrInterestOverdue,
	AddrPenalties,
	AddrAccruedInterestPendingCap,
	AddrAccruedOverdueInterestPendingCap,
}
