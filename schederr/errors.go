// Package schederr defines the scheduler core's error kinds as sentinel
// errors, matched with errors.Is and wrapped with fmt.Errorf("%w: ..."),
// following the teacher's ErrLinkExists / ErrLinkNotFound sentinel-error
// convention.
package schederr

import "errors"

var (
	// ErrInvalidLink: a component received input/output on an unknown port id.
	ErrInvalidLink = errors.New("invalid link: unknown port id")
	// ErrInvalidSignalType: the signal variant did not match the port's expected type.
	ErrInvalidSignalType = errors.New("invalid signal type for port")
	// ErrAllocationFailed: the component could not construct an outgoing signal.
	ErrAllocationFailed = errors.New("allocation failed for outgoing signal")
	// ErrIncompleteScenario: a named (ego/scenario) agent could not be spawned within the hold-back budget.
	ErrIncompleteScenario = errors.New("incomplete scenario: named agent could not be spawned")
	// ErrAgentGenerationError: a common-traffic agent could not be spawned and the shortfall is fatal.
	ErrAgentGenerationError = errors.New("agent generation error")
	// ErrConfigurationError: an input file is missing, malformed, or inconsistent.
	ErrConfigurationError = errors.New("configuration error")
	// ErrLocalizationFailure: an agent's reference point or both corners on one axis lie outside any lane.
	ErrLocalizationFailure = errors.New("localization failure")
)
