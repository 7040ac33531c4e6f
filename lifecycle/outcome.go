package lifecycle

// DegradedReason names the collaborator whose failure was absorbed
type DegradedReason string

// Degradations recorded during submission
const (
	DegradedTranslation    DegradedReason = "translation_unavailable"
	DegradedClassification DegradedReason = "classification_unavailable"
)

// Outcome is the result of a best-effort collaborator call. Value always holds
// something usable; Reason is set when it is a fallback.
type Outcome[T any] struct {
	Value  T
	Reason DegradedReason
	Err    error
}

// Degraded reports whether Value is a fallback
func (o Outcome[T]) Degraded() bool {
	return o.Reason != ""
}

// Degradation is one absorbed collaborator failure
type Degradation struct {
	Reason DegradedReason
	Err    error
}

// Receipt is returned by Submit
type Receipt struct {
	ID       string
	Degraded []Degradation
}

// IsDegraded reports whether the submission absorbed a failure for reason
func (r Receipt) IsDegraded(reason DegradedReason) bool {
	for _, d := range r.Degraded {
		if d.Reason == reason {
			return true
		}
	}
	return false
}

// Reasons lists the degradation reasons as strings
func (r Receipt) Reasons() []string {
	var out []string
	for _, d := range r.Degraded {
		out = append(out, string(d.Reason))
	}
	return out
}
