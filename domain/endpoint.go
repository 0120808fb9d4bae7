package domain

// EndpointID identifies one transport connection. It is minted by the transport layer.
type EndpointID string
