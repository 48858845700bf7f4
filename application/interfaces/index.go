package interfaces

import "net/http"

// ApplicationContext carries the transport context, parsed body and
// device identification for a request into controllers and usecases.
type ApplicationContext[T interface{}] struct {
	Ctx        any
	Body       *T
	Keys       map[string]any
	Header     http.Header
	DeviceID   string
	DeviceName string
	UserAgent  string
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	value := ac.Header.Get(key)
	if value == "" {
		return nil
	}
	return &value
}
