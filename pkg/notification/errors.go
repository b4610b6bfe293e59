package notification

import "fmt"

// ConfigError marks a channel that cannot be used with the current configuration.
type ConfigError struct {
	Channel string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s channel not configured: %s", e.Channel, e.Reason)
}

// DeliveryError wraps a transport failure or a rejection by the remote side.
type DeliveryError struct {
	Channel string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
