package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidAmount:   "Invalid amount",
	CodeInvalidAddress:  "Invalid address",
	CodeNotFound:        "Resource not found",
	CodeTokenNotFound:   "Token not found in registry",
	CodeValidationError: "Validation error",

	CodeConfigurationError:  "Configuration error",
	CodeUnsupportedNetwork:  "Unsupported chain or network",
	CodeServiceUnavailable:  "Service temporarily unavailable",
	CodeRateLimitExceeded:   "Rate limit exceeded",
	CodeInternalError:       "Internal server error",
	CodeUnknownError:        "An unknown error occurred",
	CodeWalletNotConfigured: "No signing wallet configured",

	CodeNotReady:                "Connector is not initialized",
	CodeNoRouteFound:            "No route found for the requested pair and amount",
	CodeEmptyPathSet:            "Cannot build a quote from an empty path set",
	CodeMalformedSlippageConfig: "Malformed slippage value",
	CodeSimulationFailed:        "Swap simulation failed",
	CodePriceLimitExceeded:      "Price is outside the requested limit",
	CodeEncodingFailed:          "Failed to encode swap call",

	CodeBalancerAPIError: "Balancer API request failed",
	CodePoolNotFound:     "Pool not found",
	CodeRPCError:         "RPC call failed",
	CodeConnectionFailed: "Failed to connect to node",
	CodeSubscribeFailed:  "Failed to subscribe to chain events",
	CodeChainIDMismatch:  "Node reports a different chain id",
	CodeGasEstimation:    "Gas estimation failed",
	CodeBroadcastFailed:  "Failed to broadcast transaction",
	CodeTxNotFound:       "Transaction not found",

	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	CodeCircuitOpen: "Circuit breaker is open",
}
