package inventory

// Reason explains why a mutation was not applied
type Reason string

const (
	ReasonInvalidInput   Reason = "invalid_input"
	ReasonNotNumeric     Reason = "not_numeric"
	ReasonDuplicate      Reason = "duplicate"
	ReasonUnknownIcon    Reason = "unknown_icon"
	ReasonUnknownType    Reason = "unknown_type"
	ReasonUnchanged      Reason = "unchanged"
	ReasonNotFound       Reason = "not_found"
	ReasonBadCredentials Reason = "bad_credentials"
	ReasonUnconfirmed    Reason = "unconfirmed"
)

// Result is the outcome of a validated mutation. A rejected Result leaves
// the database untouched.
type Result struct {
	Applied  bool   `json:"applied"`
	Reason   Reason `json:"reason,omitempty"`
	ID       int64  `json:"id,omitempty"`
	Affected int64  `json:"affected,omitempty"`
}

func applied(id int64) Result {
	return Result{Applied: true, ID: id}
}

func rejected(reason Reason) Result {
	return Result{Reason: reason}
}

// appliedIf maps a rows-affected flag onto a Result
func appliedIf(ok bool, id int64) Result {
	if !ok {
		return rejected(ReasonNotFound)
	}
	return applied(id)
}
