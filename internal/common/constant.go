package common

// AuthorizationHeaderName carries "Bearer <token>" on inbound HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the session token in the Authorization header.
const BearerPrefix = "Bearer "
