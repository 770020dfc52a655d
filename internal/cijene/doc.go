// Package cijene is an HTTP client for the Cijene grocery price API.
//
// # Requests
//
// Every request is a GET carrying a static bearer token, an Accept header
// and a User-Agent. Each attempt runs under its own timeout (10s by default,
// 30s for archive downloads) and waits on a token-bucket limiter when
// RequestsPerSecond is set.
//
// # Retries
//
// Only 5xx responses are retried. A call makes at most RetryAttempts extra
// attempts, sleeping RetryDelay*n before attempt n+1. The budget is per call,
// so concurrent requests never share it.
//
// # Errors
//
// Failures are returned as *Error with a Kind, a machine-readable Code, a
// user-facing Message, optional Details, the HTTP Status and a Timestamp:
//
//   - no response: Network (DNS_ERROR, CONNECTION_REFUSED, TIMEOUT_ERROR or NETWORK_ERROR)
//   - 401: Authentication (UNAUTHORIZED)
//   - 403: Authorization (FORBIDDEN)
//   - 404: NotFound
//   - 400, 422: Validation
//   - 5xx after retries: Server
//   - anything else: Unknown, with the server's message and code when present
//
// Network and Server errors are retryable. Invalid request parameters fail
// before any I/O with a Validation error (VALIDATION_ERROR). A cancelled
// context is returned wrapped and unclassified.
//
// # Endpoints
//
//   - /v1/products/        SearchProducts, SuggestProducts, PopularProducts
//   - /v1/products/{id}/   GetProduct, GetProductByEAN
//   - /v1/stores/          SearchStores
//   - /v1/stores/{id}/     GetStore
//   - /v1/chains/ + /v1/chain-stats/  ListChains, GetChain
//   - /v1/prices/          GetPrices, ComparePrices
//   - /v0/list/            ListArchives
//   - /v0/archive/{date}.zip  DownloadArchive
//   - /health, /version    Health, Version
package cijene
