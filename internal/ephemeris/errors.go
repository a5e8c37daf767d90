package ephemeris

import "fmt"

// InputError reports an invalid coordinate, elevation, date or time of day.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ConfigurationError reports a setting that cannot be used, most commonly an
// unknown timezone.
type ConfigurationError struct {
	Setting string
	Value   string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("bad %s %q", e.Setting, e.Value)
	}
	return fmt.Sprintf("bad %s %q: %v", e.Setting, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
