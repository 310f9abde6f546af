package domain

// Zone is a delivery region with a flat shipping fee.
type Zone struct {
	ID       string
	Name     string
	Fee      int64 // minor currency units
	Currency string
}
