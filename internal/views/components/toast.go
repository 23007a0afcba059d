package components

// Toast kinds.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// Toast is a transient notification.
type Toast struct {
	Kind    string
	Message string
}

func (t Toast) kind() string {
	if t.Kind == "" {
		return ToastInfo
	}
	return t.Kind
}
