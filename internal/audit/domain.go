// Package audit records every lifecycle action taken against a service order.
// Entries are append-only; the engine writes them inside its transactions and
// never mutates them afterwards.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action tags the kind of lifecycle event an entry records.
type Action string

const (
	ActionCreated      Action = "CREATED"
	ActionUpdated      Action = "UPDATED"
	ActionStatusChange Action = "STATUS_CHANGE"
	ActionDeleted      Action = "DELETED"
	ActionDuplicated   Action = "DUPLICATED"
)

// Entry is one immutable audit record. OrderID is nullable so entries can
// outlive the order they describe.
type Entry struct {
	ID      uuid.UUID  `json:"id"`
	Action  Action     `json:"action"`
	Details string     `json:"details"`
	At      time.Time  `json:"timestamp"`
	OrderID *uuid.UUID `json:"orderId,omitempty"`
	ActorID *uuid.UUID `json:"actorId,omitempty"`
}

// TimelineFilters narrows the audit listing.
type TimelineFilters struct {
	Action   string
	Page     int
	PageSize int
}

// PagingInfo describes the listing window that was returned.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
	PrevPage int  `json:"prevPage,omitempty"`
	NextPage int  `json:"nextPage,omitempty"`
}

// Result bundles timeline rows with paging information.
type Result struct {
	Rows   []Entry    `json:"data"`
	Paging PagingInfo `json:"pagination"`
}
