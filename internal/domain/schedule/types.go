package schedule

// OperationKind identifies the database operation that was performed on a
// schedulable entity.
type OperationKind string

const (
	OpCreate OperationKind = "create"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
)

func (k OperationKind) IsValid() bool {
	switch k {
	case OpCreate, OpUpdate, OpDelete:
		return true
	default:
		return false
	}
}

// Action is the calendar operation required to keep the external event in
// step with the entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionNone   Action = "none"
)

func (a Action) String() string {
	return string(a)
}
