package nn

// ReLU clamps negative pre-activations to zero.
func ReLU(x float32) float32 {
	if x < 0 {
		return 0
	}
	return x
}
