package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidAmount   Code = "INVALID_AMOUNT"
	CodeInvalidAddress  Code = "INVALID_ADDRESS"
	CodeNotFound        Code = "NOT_FOUND"
	CodeTokenNotFound   Code = "TOKEN_NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError  Code = "CONFIGURATION_ERROR"
	CodeUnsupportedNetwork  Code = "UNSUPPORTED_NETWORK"
	CodeServiceUnavailable  Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded   Code = "RATE_LIMIT_EXCEEDED"
	CodeInternalError       Code = "INTERNAL_ERROR"
	CodeUnknownError        Code = "UNKNOWN_ERROR"
	CodeWalletNotConfigured Code = "WALLET_NOT_CONFIGURED"
)

// Connector lifecycle and pricing pipeline
const (
	CodeNotReady                Code = "NOT_READY"
	CodeNoRouteFound            Code = "NO_ROUTE_FOUND"
	CodeEmptyPathSet            Code = "EMPTY_PATH_SET"
	CodeMalformedSlippageConfig Code = "MALFORMED_SLIPPAGE_CONFIG"
	CodeSimulationFailed        Code = "SIMULATION_FAILED"
	CodePriceLimitExceeded      Code = "PRICE_LIMIT_EXCEEDED"
	CodeEncodingFailed          Code = "ENCODING_FAILED"
)

// Remote collaborators
const (
	CodeBalancerAPIError Code = "BALANCER_API_ERROR"
	CodePoolNotFound     Code = "POOL_NOT_FOUND"
	CodeRPCError         Code = "RPC_ERROR"
	CodeConnectionFailed Code = "CONNECTION_FAILED"
	CodeSubscribeFailed  Code = "SUBSCRIBE_FAILED"
	CodeChainIDMismatch  Code = "CHAIN_ID_MISMATCH"
	CodeGasEstimation    Code = "GAS_ESTIMATION_FAILED"
	CodeBroadcastFailed  Code = "BROADCAST_FAILED"
	CodeTxNotFound       Code = "TX_NOT_FOUND"

	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
