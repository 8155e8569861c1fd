package core

// OperationState is the lifecycle state of a background operation.
// Completed, Error and Cancelled are terminal: once reached, the state
// never changes again and re-observing it is idempotent.
type OperationState int

const (
	OperationStateInit OperationState = iota
	OperationStateRunning
	OperationStateCompleted
	OperationStateError
	OperationStateCancelled
)

// IsTerminal reports whether the state is final.
func (s OperationState) IsTerminal() bool {
	switch s {
	case OperationStateCompleted, OperationStateError, OperationStateCancelled:
		return true
	default:
		return false
	}
}

func OperationStateFromString(s string) OperationState {
	switch s {
	case OperationStateInit.String():
		return OperationStateInit
	case OperationStateRunning.String():
		return OperationStateRunning
	case OperationStateCompleted.String():
		return OperationStateCompleted
	case OperationStateError.String():
		return OperationStateError
	case OperationStateCancelled.String():
		return OperationStateCancelled
	default:
		return OperationStateInit
	}
}

func (s OperationState) String() string {
	switch s {
	case OperationStateInit:
		return "init"
	case OperationStateRunning:
		return "running"
	case OperationStateCompleted:
		return "completed"
	case OperationStateError:
		return "error"
	case OperationStateCancelled:
		return "cancelled"
	default:
		return "init"
	}
}

// OperationKind tells what driver call an operation wraps.
type OperationKind int

const (
	OperationConnect OperationKind = iota
	OperationListTables
	OperationQuery
	OperationQueryPage
	OperationQueryPageFiltered
	OperationCountRows
	OperationGetSchema
	OperationExec
)

func (k OperationKind) String() string {
	switch k {
	case OperationConnect:
		return "connect"
	case OperationListTables:
		return "list_tables"
	case OperationQuery:
		return "query"
	case OperationQueryPage:
		return "query_page"
	case OperationQueryPageFiltered:
		return "query_page_filtered"
	case OperationCountRows:
		return "count_rows"
	case OperationGetSchema:
		return "get_schema"
	case OperationExec:
		return "exec"
	default:
		return "unknown"
	}
}
