package activation

import "fmt"

// NotFoundError indicates the key matches no license record.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("license not found: %s", e.Key)
}

// ProductMismatchError indicates the key was presented to the wrong
// product's validation path. Actual names the product the key belongs to;
// cross-product use is rejected, never silently accepted.
type ProductMismatchError struct {
	Requested string
	Actual    string
}

func (e *ProductMismatchError) Error() string {
	return fmt.Sprintf("license key belongs to product %q, not %q", e.Actual, e.Requested)
}

// InactiveLicenseError indicates the license exists but its status does not
// permit validation or activation.
type InactiveLicenseError struct {
	Status string
}

func (e *InactiveLicenseError) Error() string {
	return fmt.Sprintf("license is %s", e.Status)
}

// ActivationLimitError indicates a new machine would exceed the product's
// activation cap.
type ActivationLimitError struct {
	Max int
}

func (e *ActivationLimitError) Error() string {
	return fmt.Sprintf("maximum activations reached (%d machines)", e.Max)
}
