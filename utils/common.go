package utils

// NODETOL is the absolute tolerance below which lengths and areas are zero
const (
	NODETOL = 1.e-12
)
