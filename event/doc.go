/*
Package event defines the notifications emitted by the yield engine and an
append-only, hash-chained journal that records them for audit.

Notifications

YieldDistributed is produced once per successful sweep.

	YieldDistributed:
	  - TotalDistributed  uint256, sum of yield minted in the sweep
	  - HoldersCount      number of registered holders at sweep time
	  - Timestamp         sweep time

ConversionRequested is produced once per successful conversion request.

	ConversionRequested:
	  - RequestID    sequential request id
	  - Requester    account that reserved the balance
	  - Amount       reserved amount
	  - RequestedAt  request time
	  - LockedUntil  RequestedAt + lock period

ConversionStatusChanged is produced on every owner transition of a request
(Processing, Completed, Cancelled).

YieldRateUpdated, DistributionPauseChanged and HoldersRegistered record
administrative changes.

Journal

Every record carries the blake2b-256 hash of its predecessor, so removing
or editing a record invalidates every later hash. Journal.Verify walks the
chain.
*/
package event
