package model

// ToastKind вид уведомления
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast всплывающее уведомление
type Toast struct {
	ID      string
	Kind    ToastKind
	Title   string
	Message string
}
