package registrationconsumer

import "errors"

var (
	ErrMissingNATSURL      = errors.New("nats_url is required")
	ErrMissingStreamName   = errors.New("stream_name is required")
	ErrMissingConsumerName = errors.New("consumer_name is required")
	ErrUnknownBackend      = errors.New("registration.backend must be couchdb or nats_kv")
	ErrInvalidWorkers      = errors.New("workers must be at least 1")
	ErrPasswordFileEmpty   = errors.New("registration password file is empty")
)
