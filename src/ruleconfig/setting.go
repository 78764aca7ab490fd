package ruleconfig

// settingState distinguishes an absent setting from an explicit request to
// inherit and from a concrete value.
type settingState uint8

const (
	stateUnset settingState = iota
	stateInherit
	stateValue
)

// Setting is an optional configuration field with three states:
// Unset (key absent), Inherit (key set to "default") and Value.
// The zero Setting is Unset.
type Setting[T comparable] struct {
	state settingState
	value T
}

// Unset returns a Setting with no value.
func Unset[T comparable]() Setting[T] { return Setting[T]{} }

// Inherit returns a Setting that defers to the next configuration tier.
func Inherit[T comparable]() Setting[T] { return Setting[T]{state: stateInherit} }

// Value returns a Setting holding v.
func Value[T comparable](v T) Setting[T] { return Setting[T]{state: stateValue, value: v} }

// IsUnset reports whether the key was absent.
func (s Setting[T]) IsUnset() bool { return s.state == stateUnset }

// IsInherit reports whether the key asked to defer to the next tier.
func (s Setting[T]) IsInherit() bool { return s.state == stateInherit }

// Get returns the concrete value and whether one is present.
func (s Setting[T]) Get() (T, bool) {
	return s.value, s.state == stateValue
}

// Or returns the Setting itself when it holds a value, otherwise fallback.
func (s Setting[T]) Or(fallback Setting[T]) Setting[T] {
	if s.state == stateValue {
		return s
	}
	return fallback
}

func (s Setting[T]) String() string {
	switch s.state {
	case stateInherit:
		return "default"
	case stateValue:
		if st, ok := any(s.value).(interface{ String() string }); ok {
			return st.String()
		}
		return "value"
	default:
		return "unset"
	}
}
